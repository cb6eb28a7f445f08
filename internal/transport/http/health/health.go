package health

import (
	"net/http"
	"time"

	"github.com/corray333/backend-labs/adminlocal/internal/transport/http/respond"
)

const Version = "1.0.0"

type healthResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// Health handles GET /api/health.
func Health(w http.ResponseWriter, _ *http.Request, environment string, now time.Time) {
	respond.JSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Message:     "Admin server is running",
		Timestamp:   now.UTC(),
		Environment: environment,
	})
}

// Root handles GET /.
func Root(w http.ResponseWriter, _ *http.Request, storeName string) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"message": storeName + " Admin API",
		"version": Version,
		"access":  "localhost-only",
	})
}

// NotFound answers unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusNotFound, map[string]string{
		"error":   "Not Found",
		"message": "Route " + r.Method + " " + r.URL.Path + " not found",
	})
}
