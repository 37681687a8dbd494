package auth_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/epic-events/crm/internal/auth"
	"github.com/epic-events/crm/internal/domain"
	"github.com/epic-events/crm/internal/repository"
	"github.com/epic-events/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordedAudit struct {
	entries []*domain.AuditLog
}

func (r *recordedAudit) Record(_ context.Context, entry *domain.AuditLog) {
	r.entries = append(r.entries, entry)
}

func (r *recordedAudit) outcomes(outcome domain.AuditOutcome) int {
	n := 0
	for _, e := range r.entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

type loginFixture struct {
	db      *gorm.DB
	user    *domain.User
	tokens  *auth.TokenService
	session *auth.Session
	audit   *recordedAudit
	flow    func(sink *testutil.ScriptedSink) *auth.LoginFlow
}

const loginPassword = "pa55word"

func newLoginFixture(t *testing.T) *loginFixture {
	db := testutil.SetupTestDB(t)
	hasher := auth.NewPasswordHasher("salt", bcrypt.MinCost)
	hash, err := hasher.Hash(loginPassword)
	require.NoError(t, err)

	users := repository.NewUserRepository(db)
	tokens, _ := newTokenService(t, "secret", users)
	f := &loginFixture{
		db:      db,
		user:    testutil.CreateUserWithHash(t, db, domain.RoleSales, hash),
		tokens:  tokens,
		session: auth.NewSession(),
		audit:   &recordedAudit{},
	}
	f.flow = func(sink *testutil.ScriptedSink) *auth.LoginFlow {
		return auth.NewLoginFlow(auth.LoginConfig{MaxEmailAttempts: 3, MaxPasswordAttempts: 3},
			users, hasher, tokens, f.session, sink, f.audit, zap.NewNop())
	}
	return f
}

func TestLoginFlow_Success(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()
	sink := testutil.NewScriptedSink("unknown@example.com", f.user.Email, "wrong", loginPassword)

	user, err := f.flow(sink).Authenticate(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)
	assert.True(t, f.session.Authenticated())
	assert.Equal(t, []string{auth.MsgUserNotFound, auth.MsgBadPassword}, sink.Errors)

	token, err := f.tokens.Load(ctx)
	require.NoError(t, err)
	claims, err := f.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID.String(), claims.UserID)

	assert.Equal(t, 2, f.audit.outcomes(domain.AuditOutcomeFailure))
	assert.Equal(t, 1, f.audit.outcomes(domain.AuditOutcomeSuccess))
}

func TestLoginFlow_TooManyEmailAttempts(t *testing.T) {
	f := newLoginFixture(t)
	sink := testutil.NewScriptedSink("a@example.com", "b@example.com", "c@example.com", f.user.Email)

	_, err := f.flow(sink).Authenticate(context.Background())
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	assert.ErrorIs(t, err, auth.ErrTooManyEmailAttempts)
	assert.Equal(t, 1, sink.Remaining())
	assert.Equal(t, auth.ErrTooManyEmailAttempts.Error(), sink.Errors[len(sink.Errors)-1])
	assert.False(t, f.session.Authenticated())

	_, err = f.tokens.Load(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestLoginFlow_TooManyPasswordAttempts(t *testing.T) {
	f := newLoginFixture(t)
	sink := testutil.NewScriptedSink(f.user.Email, "one", "two", "three", loginPassword)

	_, err := f.flow(sink).Authenticate(context.Background())
	assert.ErrorIs(t, err, auth.ErrTooManyAttempts)
	assert.ErrorIs(t, err, auth.ErrTooManyPasswordAttempts)
	assert.Equal(t, 1, sink.Remaining())
	assert.False(t, f.session.Authenticated())

	_, err = f.tokens.Load(context.Background())
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestLoginFlow_ClosedInput(t *testing.T) {
	f := newLoginFixture(t)

	_, err := f.flow(testutil.NewScriptedSink()).Authenticate(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestLoginFlow_Resume(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Persist(ctx, token))

	sink := testutil.NewScriptedSink()
	user, err := f.flow(sink).Authenticate(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, user.ID)
	assert.Empty(t, sink.Prompts)
	assert.True(t, f.session.Authenticated())
}

func TestLoginFlow_ResumeExpired(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	f.tokens.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	token, err := f.tokens.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Persist(ctx, token))
	f.tokens.WithClock(time.Now)

	sink := testutil.NewScriptedSink()
	_, ok := f.flow(sink).Resume(ctx)
	assert.False(t, ok)
	assert.False(t, f.session.Authenticated())
	assert.Equal(t, []string{auth.TokenMessage(auth.ErrTokenExpired)}, sink.Notices())

	_, err = f.tokens.Load(ctx)
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestLoginFlow_ResumeWithoutRole(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	token, err := f.tokens.Issue(f.user)
	require.NoError(t, err)
	require.NoError(t, f.tokens.Persist(ctx, token))
	require.NoError(t, f.db.Model(f.user).Update("role", "INTERN").Error)

	sink := testutil.NewScriptedSink()
	_, ok := f.flow(sink).Resume(ctx)
	assert.False(t, ok)
	assert.False(t, f.session.Authenticated())
	assert.Equal(t, []string{auth.ErrUserNoRole.Error()}, sink.Errors)
	assert.Equal(t, 1, f.audit.outcomes(domain.AuditOutcomeFailure))

	_, err = f.tokens.Load(ctx)
	assert.ErrorIs(t, err, auth.ErrNoToken)
}

func TestLoginFlow_Logout(t *testing.T) {
	ctx := context.Background()

	for _, keep := range []bool{true, false} {
		f := newLoginFixture(t)
		flow := f.flow(testutil.NewScriptedSink(f.user.Email, loginPassword))
		_, err := flow.Authenticate(ctx)
		require.NoError(t, err)

		require.NoError(t, flow.Logout(ctx, keep))
		assert.False(t, f.session.Authenticated())

		_, err = f.tokens.Load(ctx)
		if keep {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, auth.ErrNoToken)
		}
	}
}
