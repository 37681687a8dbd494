// Package secrets resolves process-wide secrets (token signing key, password salt,
// storage credentials) from the environment or from Azure Key Vault.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	// SourceEnvironment loads secrets from environment variables
	SourceEnvironment SecretSource = "environment"
	// SourceVault loads secrets from Azure Key Vault
	SourceVault SecretSource = "vault"
	// SourceAuto uses vault outside development, environment otherwise
	SourceAuto SecretSource = "auto"
)

// ErrSecretNotFound is returned when no source holds the requested secret
var ErrSecretNotFound = errors.New("secret not found")

// Store is a backend able to look up a secret by name
type Store interface {
	Get(ctx context.Context, name string) (string, error)
}

// EnvStore reads secrets from environment variables
type EnvStore struct {
	lookup func(string) (string, bool)
}

// NewEnvStore returns a store backed by the process environment
func NewEnvStore() *EnvStore {
	return &EnvStore{lookup: os.LookupEnv}
}

// Get returns the named environment variable
func (e *EnvStore) Get(_ context.Context, name string) (string, error) {
	value, ok := e.lookup(name)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: environment variable '%s' not set", ErrSecretNotFound, name)
	}
	return value, nil
}

// Provider resolves secrets from the configured store, letting environment
// variables override it
type Provider struct {
	source SecretSource
	store  Store
	env    Store
	logger *zap.Logger
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string // "development", "staging", "production"
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ResolveSource turns "auto" into a concrete source for the given environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto && source != "" {
		return source
	}
	switch environment {
	case "development", "local", "test", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider creates a new secrets provider
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)
	env := NewEnvStore()

	var store Store
	switch source {
	case SourceEnvironment:
		store = env
	case SourceVault:
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vaultClient, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		store = vaultClient
	default:
		return nil, fmt.Errorf("unknown secret source: %s", source)
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return NewProviderWithStore(source, store, env, logger), nil
}

// NewProviderWithStore builds a provider around explicit stores
func NewProviderWithStore(source SecretSource, store, env Store, logger *zap.Logger) *Provider {
	return &Provider{source: source, store: store, env: env, logger: logger}
}

// GetSecret retrieves a secret by name from the configured store
func (p *Provider) GetSecret(ctx context.Context, secretName string) (string, error) {
	return p.store.Get(ctx, secretName)
}

// GetSecretOrEnv returns the environment variable envName when set, otherwise
// the secret secretName from the configured store
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if p.env != nil {
		if value, err := p.env.Get(ctx, envName); err == nil {
			p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
			return value, nil
		}
	}
	return p.GetSecret(ctx, secretName)
}

// Source returns the current secret source
func (p *Provider) Source() SecretSource {
	return p.source
}
