package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epic-events/crm/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Secrets  SecretsConfig
	Logging  LoggingConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AuthConfig holds the login and token settings.
// SecretKey and PasswordSalt are process-wide and never rotated at runtime.
type AuthConfig struct {
	SecretKey            string
	PasswordSalt         string
	TokenValidityMinutes int
	MaxEmailAttempts     int
	MaxPasswordAttempts  int
	BcryptCost           int
}

// StorageConfig selects where the session token slot lives
type StorageConfig struct {
	// Mode is "local" or "azure"
	Mode                  string
	LocalBasePath         string
	TokenSlotName         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
	// File receives the log output; "stderr" and "stdout" are accepted
	File string
}

type JobsConfig struct {
	AuditRetentionDays int
	AuditPurgeSchedule string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// TokenValidity returns the token lifetime as duration
func (a *AuthConfig) TokenValidity() time.Duration {
	return time.Duration(a.TokenValidityMinutes) * time.Minute
}

// AuditRetention returns the audit retention window as duration
func (j *JobsConfig) AuditRetention() time.Duration {
	return time.Duration(j.AuditRetentionDays) * 24 * time.Hour
}

// Validate checks the settings the login flow and token service depend on
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.MaxEmailAttempts < 1 {
		errs = append(errs, errors.New("auth.maxEmailAttempts must be at least 1"))
	}
	if c.Auth.MaxPasswordAttempts < 1 {
		errs = append(errs, errors.New("auth.maxPasswordAttempts must be at least 1"))
	}
	if c.Auth.TokenValidityMinutes < 1 {
		errs = append(errs, errors.New("auth.tokenValidityMinutes must be at least 1"))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver: %s", c.Database.Driver))
	}
	switch c.Storage.Mode {
	case "local", "azure", "cloud":
	default:
		errs = append(errs, fmt.Errorf("unsupported storage mode: %s", c.Storage.Mode))
	}
	if c.Storage.TokenSlotName == "" {
		errs = append(errs, errors.New("storage.tokenSlotName is required"))
	}
	return errors.Join(errs...)
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't resolve the signing key or salt
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if cfg.Storage.CloudConnectionString == "" {
		cfg.Storage.CloudConnectionString = v.GetString("STORAGE_CLOUDCONNECTIONSTRING")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves the token signing key and the
// password salt from the configured secret source. Both are required.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SecretSource(cfg.Secrets.Source),
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if err := ResolveSecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets resolved",
		zap.String("source", string(provider.Source())),
		zap.String("environment", cfg.App.Environment),
	)
	return cfg, nil
}

// SecretSource is the part of secrets.Provider the config loader needs
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// ResolveSecrets fills the auth secrets not already set in the config
func ResolveSecrets(ctx context.Context, cfg *Config, source SecretSource) error {
	if cfg.Auth.SecretKey == "" {
		key, err := source.GetSecretOrEnv(ctx, "token-secret-key", "AUTH_SECRETKEY")
		if err != nil {
			return fmt.Errorf("token signing key is required: %w", err)
		}
		cfg.Auth.SecretKey = key
	}
	if cfg.Auth.PasswordSalt == "" {
		salt, err := source.GetSecretOrEnv(ctx, "password-salt", "AUTH_PASSWORDSALT")
		if err != nil {
			return fmt.Errorf("password salt is required: %w", err)
		}
		cfg.Auth.PasswordSalt = salt
	}
	if cfg.Storage.Mode != "local" && cfg.Storage.CloudConnectionString == "" {
		connStr, err := source.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
		if err != nil {
			return fmt.Errorf("cloud connection string is required for storage mode %s: %w", cfg.Storage.Mode, err)
		}
		cfg.Storage.CloudConnectionString = connStr
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Epic Events CRM")
	v.SetDefault("app.environment", "development")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "epicevents")
	v.SetDefault("database.user", "epicevents")
	v.SetDefault("database.password", "epicevents")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "epicevents.db")
	v.SetDefault("database.maxOpenConns", 4)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", 300)

	v.SetDefault("auth.secretKey", "")
	v.SetDefault("auth.passwordSalt", "")
	v.SetDefault("auth.tokenValidityMinutes", 60)
	v.SetDefault("auth.maxEmailAttempts", 3)
	v.SetDefault("auth.maxPasswordAttempts", 3)
	v.SetDefault("auth.bcryptCost", 12)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", ".")
	v.SetDefault("storage.tokenSlotName", "token.txt")
	v.SetDefault("storage.cloudConnectionString", "")
	v.SetDefault("storage.cloudContainer", "epicevents-session")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.keyVaultName", "")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "epicevents.log")

	v.SetDefault("jobs.auditRetentionDays", 90)
	v.SetDefault("jobs.auditPurgeSchedule", "0 0 3 * * *") // 03:00 every day
}
