package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/epic-events/crm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[string]string

func (f fakeSource) GetSecretOrEnv(_ context.Context, secretName, envName string) (string, error) {
	if v, ok := f[envName]; ok {
		return v, nil
	}
	if v, ok := f[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func validConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite"},
		Auth: config.AuthConfig{
			TokenValidityMinutes: 60,
			MaxEmailAttempts:     3,
			MaxPasswordAttempts:  3,
		},
		Storage: config.StorageConfig{Mode: "local", TokenSlotName: "token.txt"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 60, cfg.Auth.TokenValidityMinutes)
	assert.Equal(t, time.Hour, cfg.Auth.TokenValidity())
	assert.Equal(t, 3, cfg.Auth.MaxEmailAttempts)
	assert.Equal(t, 3, cfg.Auth.MaxPasswordAttempts)
	assert.Equal(t, "token.txt", cfg.Storage.TokenSlotName)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "epicevents.log", cfg.Logging.File)
	assert.Equal(t, 90*24*time.Hour, cfg.Jobs.AuditRetention())
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("AUTH_MAXEMAILATTEMPTS", "5")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Auth.MaxEmailAttempts)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Auth.MaxEmailAttempts = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Auth.TokenValidityMinutes = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Storage.Mode = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestResolveSecrets(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves key and salt", func(t *testing.T) {
		cfg := validConfig()
		err := config.ResolveSecrets(ctx, cfg, fakeSource{
			"AUTH_SECRETKEY": "key",
			"password-salt":  "salt",
		})
		require.NoError(t, err)
		assert.Equal(t, "key", cfg.Auth.SecretKey)
		assert.Equal(t, "salt", cfg.Auth.PasswordSalt)
	})

	t.Run("missing salt fails", func(t *testing.T) {
		cfg := validConfig()
		err := config.ResolveSecrets(ctx, cfg, fakeSource{"AUTH_SECRETKEY": "key"})
		assert.ErrorContains(t, err, "password salt is required")
	})

	t.Run("keeps configured values", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.SecretKey = "configured"
		cfg.Auth.PasswordSalt = "configured-salt"
		require.NoError(t, config.ResolveSecrets(ctx, cfg, fakeSource{}))
		assert.Equal(t, "configured", cfg.Auth.SecretKey)
	})
}

// chdir changes the working directory for the duration of the test (Go 1.21
// equivalent of testing.T.Chdir).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
