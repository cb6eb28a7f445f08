package authsvc

import (
	"context"
	"testing"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "test-secret"
	testUser     = "owner"
	testPassword = "correct horse"
	client       = "127.0.0.1"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func newTestService(t *testing.T, clock *testClock, opts ...option) *AuthService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	base := []option{
		WithCredentials(testUser, string(hash)),
		WithSecret(testSecret),
		WithClock(clock.Now),
		WithLockout(5, 15*time.Minute),
	}

	return MustNewAuthService(append(base, opts...)...)
}

func TestLogin_Success(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	session, err := svc.Login(context.Background(), client, testUser, testPassword)
	require.NoError(t, err)

	assert.Equal(t, User{Username: testUser, Role: RoleOwner}, session.User)
	assert.Equal(t, "8h", session.ExpiresIn)
	assert.Equal(t, clock.now.Add(8*time.Hour), session.ExpiresAt)

	claims, err := svc.Authorize(session.Token)
	require.NoError(t, err)
	assert.Equal(t, testUser, claims.Username)
	assert.Equal(t, clock.now.UnixMilli(), claims.LoginTime)
	assert.Equal(t, clock.now.Unix(), claims.IssuedAt.Unix())
}

func TestLogin_MissingFields(t *testing.T) {
	svc := newTestService(t, &testClock{now: time.Now()})

	_, err := svc.Login(context.Background(), client, testUser, "")

	var v *apperr.ValidationError
	assert.ErrorAs(t, err, &v)
}

func TestLogin_LockoutBoundary(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock)

	// N-1 failures leave the account usable
	for i := 1; i <= 4; i++ {
		_, err := svc.Login(context.Background(), client, testUser, "wrong")
		var cred *apperr.CredentialsError
		require.ErrorAs(t, err, &cred)
		assert.Equal(t, 5-i, cred.AttemptsRemaining)
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	}

	// the Nth failure locks
	_, err := svc.Login(context.Background(), client, "intruder", "wrong")
	var cred *apperr.CredentialsError
	require.ErrorAs(t, err, &cred)
	assert.Equal(t, 0, cred.AttemptsRemaining)

	// correct credentials are rejected while locked
	clock.now = clock.now.Add(time.Minute)
	_, err = svc.Login(context.Background(), client, testUser, testPassword)
	var locked *apperr.RateLimitError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 14, locked.RemainingMinutes())

	// other addresses are unaffected
	_, err = svc.Login(context.Background(), "::1", testUser, testPassword)
	require.NoError(t, err)

	// the lock runs out
	clock.now = clock.now.Add(14 * time.Minute)
	_, err = svc.Login(context.Background(), client, testUser, testPassword)
	require.NoError(t, err)
}

func TestLogin_SuccessResetsCount(t *testing.T) {
	clock := &testClock{now: time.Now()}
	svc := newTestService(t, clock)

	for i := 0; i < 4; i++ {
		_, _ = svc.Login(context.Background(), client, testUser, "wrong")
	}
	_, err := svc.Login(context.Background(), client, testUser, testPassword)
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), client, testUser, "wrong")
	var cred *apperr.CredentialsError
	require.ErrorAs(t, err, &cred)
	assert.Equal(t, 4, cred.AttemptsRemaining)
}

func TestVerify(t *testing.T) {
	clock := &testClock{now: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	svc := newTestService(t, clock, WithSessionTTL(time.Hour))

	session, err := svc.Login(context.Background(), client, testUser, testPassword)
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: testUser,
		Role:     RoleOwner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	foreignToken, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	viewer := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: "viewer",
		Role:     "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
	})
	viewerToken, err := viewer.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		advance time.Duration
		code    string
	}{
		{name: "empty", token: "", code: apperr.CodeNoToken},
		{name: "garbage", token: "not.a.token", code: apperr.CodeInvalidToken},
		{name: "wrong key", token: foreignToken, code: apperr.CodeInvalidToken},
		{name: "expired", token: session.Token, advance: 2 * time.Hour, code: apperr.CodeTokenExpired},
		{name: "wrong role", token: viewerToken, code: apperr.CodeInsufficientRole},
	}

	start := clock.now
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.now = start.Add(tt.advance)

			_, err := svc.Authorize(tt.token)

			var authErr *apperr.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.code, authErr.Code)
		})
	}
}

func TestParseTTL(t *testing.T) {
	tests := map[string]time.Duration{
		"8h":   8 * time.Hour,
		"90m":  90 * time.Minute,
		"1d":   24 * time.Hour,
		"3600": time.Hour,
	}
	for in, want := range tests {
		got, err := ParseTTL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTTL("soon")
	assert.Error(t, err)

	assert.Equal(t, "8h", FormatTTL(8*time.Hour))
	assert.Equal(t, "90m", FormatTTL(90*time.Minute))
	assert.Equal(t, "45s", FormatTTL(45*time.Second))
}
