package auth

import (
	"context"

	"github.com/epic-events/crm/internal/domain"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser adds the acting user to the context
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext extracts the acting user from the context
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok && user != nil
}

// Session holds the single interactive actor of the process
type Session struct {
	user *domain.User
}

// NewSession returns an unauthenticated session
func NewSession() *Session {
	return &Session{}
}

// Bind makes user the authenticated actor
func (s *Session) Bind(user *domain.User) {
	s.user = user
}

// Clear returns the session to the unauthenticated state
func (s *Session) Clear() {
	s.user = nil
}

// User returns the authenticated actor, or nil
func (s *Session) User() *domain.User {
	return s.user
}

// Authenticated reports whether a user is bound
func (s *Session) Authenticated() bool {
	return s.user != nil
}

// Context returns ctx carrying the session's user
func (s *Session) Context(ctx context.Context) context.Context {
	if s.user == nil {
		return ctx
	}
	return WithUser(ctx, s.user)
}
