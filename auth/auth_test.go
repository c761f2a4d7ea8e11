package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-api/access"
	"blog-api/models"
	"blog-api/repository/sqlite"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return NewService(st, NewTokens("test-secret", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, models.RegisterReq{Name: " Ada ", Email: "Ada@Example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", reg.User.Name)
	assert.Equal(t, "ada@example.com", reg.User.Email)
	assert.NotEqual(t, "s3cret!", reg.User.PasswordHash)
	require.NotEmpty(t, reg.Token)

	who, err := svc.Identify("Bearer " + reg.Token)
	require.NoError(t, err)
	assert.Equal(t, access.User(reg.User.ID), who)

	login, err := svc.Login(ctx, models.LoginReq{Email: "ADA@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	me, err := svc.Me(ctx, who)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterReq{Name: "Ada", Email: "ada@example.com", Password: "password"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, models.RegisterReq{Name: "Other", Email: "ADA@example.com", Password: "password"})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	tests := []struct {
		name string
		req  models.RegisterReq
	}{
		{"missing name", models.RegisterReq{Email: "a@example.com", Password: "password"}},
		{"bad email", models.RegisterReq{Name: "A", Email: "not-an-email", Password: "password"}},
		{"display name email", models.RegisterReq{Name: "A", Email: "A <a@example.com>", Password: "password"}},
		{"short password", models.RegisterReq{Name: "A", Email: "a@example.com", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, models.RegisterReq{Name: "Ada", Email: "ada@example.com", Password: "password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, models.LoginReq{Email: "ada@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginReq{Email: "nobody@example.com", Password: "password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginReq{Email: "garbage", Password: "password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIdentify(t *testing.T) {
	svc := newTestService(t)

	who, err := svc.Identify("")
	require.NoError(t, err)
	assert.True(t, who.IsAnonymous())

	for _, header := range []string{"Basic abc", "Bearer", "Bearer   ", "Bearer not.a.jwt"} {
		who, err := svc.Identify(header)
		assert.ErrorIs(t, err, ErrInvalidToken, header)
		assert.True(t, who.IsAnonymous(), header)
	}
}

func TestMeRequiresKnownUser(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Me(context.Background(), access.Anonymous)
	require.ErrorIs(t, err, access.ErrUnauthenticated)
	_, err = svc.Me(context.Background(), access.User("deleted"))
	require.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestTokenExpiry(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)
	issued := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	raw, exp, err := tokens.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Minute), exp)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	tokens.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = tokens.Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSignedWithOtherSecretIsRejected(t *testing.T) {
	raw, _, err := NewTokens("one", time.Hour).Issue("user-1")
	require.NoError(t, err)
	_, err = NewTokens("two", time.Hour).Verify(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "correct horse"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("", "correct horse"))

	_, err = HashPassword("short")
	require.ErrorIs(t, err, ErrInvalidInput)
}
