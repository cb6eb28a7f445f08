package authsvc

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/dal/repositories/loginattempt/memory"
	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleOwner = "owner"

	defaultSessionTTL  = 8 * time.Hour
	defaultMaxAttempts = 5
	defaultLockout     = 15 * time.Minute
)

type attemptStore interface {
	LockedFor(key string) time.Duration
	RegisterFailure(key string, maxAttempts int, lockout time.Duration) memory.Record
	Reset(key string)
}

// User is the identity carried by a session.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Claims are the JWT claims of a session token.
type Claims struct {
	Username  string `json:"username"`
	Role      string `json:"role"`
	LoginTime int64  `json:"loginTime"`
	jwt.RegisteredClaims
}

// Session is an issued token.
type Session struct {
	Token     string
	User      User
	ExpiresIn string
	ExpiresAt time.Time
}

// AuthService checks the owner credentials and issues session tokens.
type AuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
	sessionTTL   time.Duration
	maxAttempts  int
	lockout      time.Duration
	attempts     attemptStore
	now          func() time.Time
}

// option is a function that configures the AuthService.
type option func(*AuthService)

// MustNewAuthService creates a new AuthService.
func MustNewAuthService(opts ...option) *AuthService {
	s := &AuthService{
		sessionTTL:  defaultSessionTTL,
		maxAttempts: defaultMaxAttempts,
		lockout:     defaultLockout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if len(s.secret) == 0 {
		panic("authsvc: JWT secret is required")
	}
	if s.attempts == nil {
		s.attempts = memory.NewLoginAttemptRepository(s.now)
	}

	return s
}

// WithCredentials sets the owner username and bcrypt password hash.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCredentials(username, passwordHash string) option {
	return func(s *AuthService) {
		s.username = username
		s.passwordHash = []byte(passwordHash)
	}
}

// WithSecret sets the HS256 signing key.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSecret(secret string) option {
	return func(s *AuthService) {
		s.secret = []byte(secret)
	}
}

// WithSessionTTL sets the token lifetime. Non-positive values are ignored.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSessionTTL(ttl time.Duration) option {
	return func(s *AuthService) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithLockout sets the failure threshold and the lockout duration.
// Non-positive values keep the defaults.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithLockout(maxAttempts int, lockout time.Duration) option {
	return func(s *AuthService) {
		if maxAttempts > 0 {
			s.maxAttempts = maxAttempts
		}
		if lockout > 0 {
			s.lockout = lockout
		}
	}
}

// WithAttemptStore sets the failed login store.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithAttemptStore(store attemptStore) option {
	return func(s *AuthService) {
		s.attempts = store
	}
}

// WithClock replaces time.Now.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *AuthService) {
		s.now = now
	}
}

// Login checks the credentials for a client address. It returns
// *apperr.ValidationError for missing fields, *apperr.RateLimitError while the
// address is locked and *apperr.CredentialsError for wrong credentials.
func (s *AuthService) Login(_ context.Context, clientAddr, username, password string) (Session, error) {
	if username == "" || password == "" {
		return Session{}, &apperr.ValidationError{Message: "Username and password are required"}
	}

	if remaining := s.attempts.LockedFor(clientAddr); remaining > 0 {
		return Session{}, &apperr.RateLimitError{RetryAfter: remaining}
	}

	if !s.checkCredentials(username, password) {
		rec := s.attempts.RegisterFailure(clientAddr, s.maxAttempts, s.lockout)
		if !rec.LockedUntil.IsZero() && rec.Count == s.maxAttempts {
			slog.Warn("Client locked out after failed logins", "client", clientAddr, "attempts", rec.Count)
		}
		slog.Warn("Failed login attempt",
			"username", username,
			"client", clientAddr,
			"attempt", rec.Count,
			"max_attempts", s.maxAttempts)

		return Session{}, &apperr.CredentialsError{AttemptsRemaining: max(0, s.maxAttempts-rec.Count)}
	}

	s.attempts.Reset(clientAddr)

	session, err := s.issue(username)
	if err != nil {
		return Session{}, err
	}

	slog.Info("Successful login", "username", username, "client", clientAddr)

	return session, nil
}

func (s *AuthService) checkCredentials(username, password string) bool {
	userOK := s.username != "" && subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	if !userOK {
		return false
	}

	return bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
}

func (s *AuthService) issue(username string) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)

	claims := Claims{
		Username:  username,
		Role:      RoleOwner,
		LoginTime: now.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return Session{
		Token:     token,
		User:      User{Username: username, Role: RoleOwner},
		ExpiresIn: FormatTTL(s.sessionTTL),
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of token.
func (s *AuthService) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, &apperr.AuthError{Code: apperr.CodeNoToken}
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &apperr.AuthError{Code: apperr.CodeTokenExpired, Err: err}
	default:
		return nil, &apperr.AuthError{Code: apperr.CodeInvalidToken, Err: err}
	}
}

// Authorize verifies token and requires the owner role.
func (s *AuthService) Authorize(token string) (*Claims, error) {
	claims, err := s.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleOwner {
		return nil, &apperr.AuthError{Code: apperr.CodeInsufficientRole}
	}

	return claims, nil
}

// ParseTTL reads a session lifetime written as a Go duration ("8h", "90m"),
// a number of days ("1d") or a number of seconds ("3600").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}

	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}

		return time.Duration(n) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// FormatTTL renders a lifetime in the short form clients expect ("8h", "30m").
func FormatTTL(d time.Duration) string {
	switch {
	case d%time.Hour == 0:
		return strconv.Itoa(int(d/time.Hour)) + "h"
	case d%time.Minute == 0:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	default:
		return strconv.Itoa(int(d/time.Second)) + "s"
	}
}
