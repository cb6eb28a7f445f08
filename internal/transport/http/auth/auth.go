package auth

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/service/services/authsvc"
	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/respond"
	authmw "github.com/corray333/backend-labs/adminlocal/pkg/http/middleware/auth"
)

type service interface {
	Login(ctx context.Context, clientAddr, username, password string) (authsvc.Session, error)
	Verify(token string) (*authsvc.Claims, error)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	User      authsvc.User `json:"user"`
	ExpiresIn string       `json:"expiresIn"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type verifyResponse struct {
	Valid bool          `json:"valid"`
	User  *authsvc.User `json:"user,omitempty"`
}

// Login handles POST /api/auth/login.
func Login(w http.ResponseWriter, r *http.Request, service service) {
	req := loginRequest{}
	if err := respond.Decode(r, &req, "Username and password are required"); err != nil {
		respond.Error(w, r, err, "Login failed")

		return
	}

	session, err := service.Login(r.Context(), ClientAddr(r), req.Username, req.Password)
	if err != nil {
		respond.Error(w, r, err, "Login failed")

		return
	}

	respond.JSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     session.Token,
		User:      session.User,
		ExpiresIn: session.ExpiresIn,
		ExpiresAt: session.ExpiresAt,
	})
}

// Verify handles POST /api/auth/verify. Only a missing header is a 401; a
// bad token is reported as {"valid":false}.
func Verify(w http.ResponseWriter, r *http.Request, service service) {
	token, ok := authmw.BearerToken(r)
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, verifyResponse{Valid: false})

		return
	}

	claims, err := service.Verify(token)
	if err != nil {
		respond.JSON(w, http.StatusOK, verifyResponse{Valid: false})

		return
	}

	respond.JSON(w, http.StatusOK, verifyResponse{
		Valid: true,
		User:  &authsvc.User{Username: claims.Username, Role: claims.Role},
	})
}

// Logout handles POST /api/auth/logout. Sessions are stateless, so the
// client just drops its token.
func Logout(w http.ResponseWriter, r *http.Request) {
	slog.InfoContext(r.Context(), "User logged out", "client", ClientAddr(r))

	respond.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// ClientAddr is the socket peer host used to key login attempts.
func ClientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
