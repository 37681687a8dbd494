package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/storage"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	ErrNoToken      = errors.New("no persisted token")
)

// Claims is the payload of a session token
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserLookup resolves a user by id
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// TokenConfig configures a TokenService
type TokenConfig struct {
	SecretKey string
	Validity  time.Duration
	SlotName  string
}

// TokenService issues and validates HS256 session tokens and keeps the last
// issued one in a single named storage slot shared by every user of the host
type TokenService struct {
	secret   []byte
	validity time.Duration
	slot     string
	users    UserLookup
	store    storage.Storage
	logger   *zap.Logger
	now      func() time.Time
}

// NewTokenService creates a token service
func NewTokenService(cfg TokenConfig, users UserLookup, store storage.Storage, logger *zap.Logger) *TokenService {
	return &TokenService{
		secret:   []byte(cfg.SecretKey),
		validity: cfg.Validity,
		slot:     cfg.SlotName,
		users:    users,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// Issue creates a token for user valid for the configured period
func (s *TokenService) Issue(user *domain.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: user.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Validate checks the signature and expiry of token and returns its claims.
// Errors are ErrTokenExpired or ErrTokenInvalid.
func (s *TokenService) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IsValid reports whether token passes Validate
func (s *TokenService) IsValid(token string) bool {
	_, err := s.Validate(token)
	return err == nil
}

// Resolve validates token and loads the user it names. A token naming a user
// that no longer exists is ErrTokenInvalid.
func (s *TokenService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.Validate(token)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed user id", ErrTokenInvalid)
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown user", ErrTokenInvalid)
	}
	return user, nil
}

// Persist overwrites the slot with token
func (s *TokenService) Persist(ctx context.Context, token string) error {
	if err := s.store.Write(ctx, s.slot, []byte(token)); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// Load returns the persisted token, or ErrNoToken when the slot is empty
func (s *TokenService) Load(ctx context.Context) (string, error) {
	data, err := s.store.Read(ctx, s.slot)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Discard removes the persisted token
func (s *TokenService) Discard(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.slot); err != nil {
		return fmt.Errorf("failed to discard token: %w", err)
	}
	return nil
}

// TokenMessage returns the user-facing message for a token validation failure
func TokenMessage(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "Your session has expired, please log in again."
	case errors.Is(err, ErrTokenInvalid):
		return "Your session token is invalid, please log in again."
	default:
		return "No usable session, please log in."
	}
}
