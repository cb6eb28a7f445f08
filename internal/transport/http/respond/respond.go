// Package respond writes JSON bodies and maps service errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/corray333/backend-labs/adminlocal/internal/service/models/apperr"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}

// Decode reads a JSON body into v and runs its validate tags. Failures come
// back as *apperr.ValidationError carrying message.
func Decode(r *http.Request, v any, message string) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &apperr.ValidationError{Message: message}
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &apperr.ValidationError{Field: verrs[0].Field(), Message: message}
		}

		return &apperr.ValidationError{Message: message}
	}

	return nil
}

// Error writes the response for err. fallback is the message used for
// unexpected errors.
func Error(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var (
		validationErr *apperr.ValidationError
		credErr       *apperr.CredentialsError
		rateErr       *apperr.RateLimitError
		formatErr     *apperr.PrintFormatError
		directiveErr  *apperr.UnsupportedDirectiveError
	)

	switch {
	case errors.As(err, &validationErr):
		JSON(w, http.StatusBadRequest, map[string]any{
			"error":   "Bad Request",
			"message": validationErr.Message,
		})
	case errors.As(err, &credErr):
		JSON(w, http.StatusUnauthorized, map[string]any{
			"error":             "Unauthorized",
			"message":           "Invalid credentials",
			"attemptsRemaining": credErr.AttemptsRemaining,
		})
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds()+0.5)))
		JSON(w, http.StatusTooManyRequests, map[string]any{
			"error":   "Too Many Requests",
			"message": "Account locked. Try again in " + strconv.Itoa(rateErr.RemainingMinutes()) + " minutes.",
			"code":    "ACCOUNT_LOCKED",
		})
	case errors.Is(err, apperr.ErrOrderNotFound):
		JSON(w, http.StatusNotFound, map[string]any{"error": "Order not found"})
	case errors.Is(err, apperr.ErrPrinterNotConnected),
		errors.As(err, &formatErr),
		errors.As(err, &directiveErr):
		JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
	default:
		slog.ErrorContext(r.Context(), fallback, "error", err, "path", r.URL.Path)
		JSON(w, http.StatusInternalServerError, map[string]any{"error": fallback})
	}
}
