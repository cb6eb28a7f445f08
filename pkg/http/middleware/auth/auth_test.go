package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type claims struct {
	User string
}

type stubAuthorizer map[string]error

func (s stubAuthorizer) Authorize(token string) (claims, error) {
	if err, ok := s[token]; ok {
		return claims{}, err
	}

	return claims{User: "owner:" + token}, nil
}

func TestAuthMiddleware(t *testing.T) {
	a := stubAuthorizer{
		"old":    &apperr.AuthError{Code: apperr.CodeTokenExpired},
		"forged": &apperr.AuthError{Code: apperr.CodeInvalidToken},
		"viewer": &apperr.AuthError{Code: apperr.CodeInsufficientRole},
		"boom":   errors.New("unexpected"),
	}

	var seen claims
	h := NewAuthMiddleware[claims](a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext[claims](r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{name: "no header", header: "", status: http.StatusUnauthorized, code: apperr.CodeNoToken},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized, code: apperr.CodeNoToken},
		{name: "expired", header: "Bearer old", status: http.StatusUnauthorized, code: apperr.CodeTokenExpired},
		{name: "invalid", header: "Bearer forged", status: http.StatusUnauthorized, code: apperr.CodeInvalidToken},
		{name: "wrong role", header: "Bearer viewer", status: http.StatusForbidden, code: apperr.CodeInsufficientRole},
		{name: "internal", header: "Bearer boom", status: http.StatusInternalServerError},
		{name: "valid", header: "Bearer good", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.code, body["code"])
			}
		})
	}

	assert.Equal(t, "owner:good", seen.User)
}
