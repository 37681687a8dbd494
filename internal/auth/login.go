package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epic-events/crm/internal/display"
	"github.com/epic-events/crm/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrTooManyAttempts aborts a login attempt; it wraps the exhausted counter
	ErrTooManyAttempts         = errors.New("too many attempts, maybe a brute force attack")
	ErrTooManyEmailAttempts    = errors.New("too many attempts for email")
	ErrTooManyPasswordAttempts = errors.New("too many attempts for password")
	ErrUserNoRole              = errors.New("this user has no role, they cannot use the application")
)

// Messages shown while prompting for credentials
const (
	MsgUserNotFound = "User not found"
	MsgBadPassword  = "Bad password. Please try again."
)

// CredentialStore looks users up by email
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AuditRecorder appends an entry to the audit trail
type AuditRecorder interface {
	Record(ctx context.Context, entry *domain.AuditLog)
}

// LoginConfig bounds the credential prompts
type LoginConfig struct {
	MaxEmailAttempts    int
	MaxPasswordAttempts int
}

// LoginFlow authenticates the interactive actor, resuming from a persisted
// token when possible and otherwise prompting for email and password with
// bounded retries
type LoginFlow struct {
	users   CredentialStore
	hasher  *PasswordHasher
	tokens  *TokenService
	session *Session
	sink    display.Sink
	audit   AuditRecorder
	cfg     LoginConfig
	logger  *zap.Logger
}

// NewLoginFlow creates a login flow
func NewLoginFlow(
	cfg LoginConfig,
	users CredentialStore,
	hasher *PasswordHasher,
	tokens *TokenService,
	session *Session,
	sink display.Sink,
	audit AuditRecorder,
	logger *zap.Logger,
) *LoginFlow {
	return &LoginFlow{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		session: session,
		sink:    sink,
		audit:   audit,
		cfg:     cfg,
		logger:  logger,
	}
}

// Authenticate returns the authenticated user and binds it to the session.
// Exhausting either counter returns an error wrapping ErrTooManyAttempts; no
// token is persisted in that case.
func (f *LoginFlow) Authenticate(ctx context.Context) (*domain.User, error) {
	if user, ok := f.Resume(ctx); ok {
		return user, nil
	}

	f.sink.Show(display.Menu{Title: "Login"})

	emailAttempts := 0
	for emailAttempts < f.cfg.MaxEmailAttempts {
		email, err := f.sink.Prompt("Email:")
		if err != nil {
			return nil, err
		}
		email = strings.TrimSpace(email)

		user, err := f.users.GetByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to look up user: %w", err)
			}
			emailAttempts++
			f.recordFailure(ctx, nil, email, "unknown email")
			if emailAttempts >= f.cfg.MaxEmailAttempts {
				f.sink.ShowError(ErrTooManyEmailAttempts.Error())
				return nil, fmt.Errorf("%w: %w", ErrTooManyAttempts, ErrTooManyEmailAttempts)
			}
			f.sink.ShowError(MsgUserNotFound)
			continue
		}

		passwordAttempts := 0
		for passwordAttempts < f.cfg.MaxPasswordAttempts {
			password, err := f.sink.Prompt("Password:")
			if err != nil {
				return nil, err
			}
			if f.hasher.Verify(user.PasswordHash, password) {
				return f.complete(ctx, user)
			}
			passwordAttempts++
			f.recordFailure(ctx, user, email, "bad password")
			if passwordAttempts >= f.cfg.MaxPasswordAttempts {
				f.sink.ShowError(ErrTooManyPasswordAttempts.Error())
				emailAttempts = f.cfg.MaxEmailAttempts
				break
			}
			f.sink.ShowError(MsgBadPassword)
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrTooManyAttempts, ErrTooManyPasswordAttempts)
}

// Resume binds the user named by a valid persisted token. A rejected token is
// reported to the sink and discarded, leaving the session unauthenticated.
func (f *LoginFlow) Resume(ctx context.Context) (*domain.User, bool) {
	token, err := f.tokens.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			f.logger.Warn("Failed to load persisted token", zap.Error(err))
		}
		return nil, false
	}

	user, err := f.tokens.Resolve(ctx, token)
	if err != nil {
		f.logger.Info("Persisted token rejected", zap.Error(err))
		f.sink.Show(display.Warning(TokenMessage(err)))
		if err := f.tokens.Discard(ctx); err != nil {
			f.logger.Warn("Failed to discard rejected token", zap.Error(err))
		}
		return nil, false
	}
	if !user.Role.IsValid() {
		f.recordFailure(ctx, user, user.Email, "no role")
		f.sink.ShowError(ErrUserNoRole.Error())
		if err := f.tokens.Discard(ctx); err != nil {
			f.logger.Warn("Failed to discard rejected token", zap.Error(err))
		}
		return nil, false
	}

	f.session.Bind(user)
	f.logger.Info("Session resumed from token", zap.String("user_id", user.ID.String()))
	f.record(ctx, user, domain.AuditActionLogin, domain.AuditOutcomeSuccess, "resumed from token")
	return user, true
}

// Logout unbinds the session user, discarding the persisted token unless keepToken
func (f *LoginFlow) Logout(ctx context.Context, keepToken bool) error {
	user := f.session.User()
	f.session.Clear()

	if user != nil {
		detail := "token kept"
		if !keepToken {
			detail = "token discarded"
		}
		f.record(ctx, user, domain.AuditActionLogout, domain.AuditOutcomeSuccess, detail)
	}
	if keepToken {
		return nil
	}
	return f.tokens.Discard(ctx)
}

func (f *LoginFlow) complete(ctx context.Context, user *domain.User) (*domain.User, error) {
	if !user.Role.IsValid() {
		f.recordFailure(ctx, user, user.Email, "no role")
		f.sink.ShowError(ErrUserNoRole.Error())
		return nil, ErrUserNoRole
	}

	f.session.Bind(user)

	token, err := f.tokens.Issue(user)
	if err != nil {
		f.logger.Error("Failed to issue token", zap.Error(err))
	} else if err := f.tokens.Persist(ctx, token); err != nil {
		f.logger.Warn("Failed to persist token", zap.Error(err))
	}

	f.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	f.record(ctx, user, domain.AuditActionLogin, domain.AuditOutcomeSuccess, "")
	return user, nil
}

func (f *LoginFlow) recordFailure(ctx context.Context, user *domain.User, email, detail string) {
	f.logger.Warn("Login attempt failed", zap.String("email", email), zap.String("reason", detail))
	entry := &domain.AuditLog{
		UserEmail:   email,
		Action:      domain.AuditActionLogin,
		Outcome:     domain.AuditOutcomeFailure,
		EntityType:  "user",
		Detail:      detail,
		PerformedAt: time.Now(),
	}
	if user != nil {
		entry.UserID = user.ID.String()
		entry.EntityID = &user.ID
	}
	f.audit.Record(ctx, entry)
}

func (f *LoginFlow) record(ctx context.Context, user *domain.User, action domain.AuditAction, outcome domain.AuditOutcome, detail string) {
	f.audit.Record(ctx, &domain.AuditLog{
		UserID:      user.ID.String(),
		UserEmail:   user.Email,
		Action:      action,
		Outcome:     outcome,
		EntityType:  "user",
		EntityID:    &user.ID,
		EntityName:  user.Username,
		Detail:      detail,
		PerformedAt: time.Now(),
	})
}
