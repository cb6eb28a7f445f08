// Package auth guards routes with a bearer session token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
)

type ctxKey struct{}

type authorizer[T any] interface {
	Authorize(token string) (T, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

// NewAuthMiddleware rejects requests without a valid owner session and
// stores the session claims in the request context.
func NewAuthMiddleware[T any](a authorizer[T]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				reject(w, &apperr.AuthError{Code: apperr.CodeNoToken})

				return
			}

			claims, err := a.Authorize(token)
			if err != nil {
				reject(w, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

// FromContext returns the claims stored by the middleware.
func FromContext[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(ctxKey{}).(T)

	return claims, ok
}

func reject(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	body := map[string]string{"error": "Unauthorized"}

	var authErr *apperr.AuthError
	switch {
	case errors.As(err, &authErr) && authErr.Code == apperr.CodeInsufficientRole:
		status = http.StatusForbidden
		body["error"] = "Forbidden"
		body["message"] = "Insufficient permissions"
		body["code"] = authErr.Code
	case errors.As(err, &authErr):
		body["code"] = authErr.Code
		body["message"] = messageFor(authErr.Code)
	default:
		slog.Error("Authentication failed", "error", err)
		status = http.StatusInternalServerError
		body["error"] = "Internal Server Error"
		body["message"] = "Authentication failed"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func messageFor(code string) string {
	switch code {
	case apperr.CodeNoToken:
		return "No token provided"
	case apperr.CodeTokenExpired:
		return "Token expired"
	default:
		return "Invalid token"
	}
}
