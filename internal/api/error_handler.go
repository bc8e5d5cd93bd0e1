package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/backoffice/users-api/internal/core/domain"
)

// errorBody is the payload of the error envelope.
type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// errorEnvelope is the canonical shape of every error response.
type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     errorBody `json:"error"`
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
}

// pgErrorStatus maps known Postgres error codes to HTTP statuses and client
// messages. Unknown codes fall through to a generic 500.
var pgErrorStatus = map[string]struct {
	status  int
	message string
}{
	"23505": {http.StatusConflict, "a record with those unique values already exists"},
	"23503": {http.StatusBadRequest, "reference to a record that does not exist"},
	"23502": {http.StatusBadRequest, "required field missing"},
	"22001": {http.StatusBadRequest, "value too long for field"},
	"08006": {http.StatusInternalServerError, "database connection failure"},
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Logs method, path, user agent and cause for every error.
//   - Maps tagged domain errors to their declared status codes.
//   - Maps known Postgres constraint codes (unique, FK, not-null, length,
//     connection) to deterministic statuses, so the unique-constraint race on
//     user creation surfaces as 409 instead of 500.
//   - Renders the {success:false, error:{…}, timestamp, path} envelope.
//   - Exposes internal detail only in development mode.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Str("user_agent", c.Request().UserAgent()).
			Msg("request failed")

		status, body := resolveError(err, development)
		_ = c.JSON(status, errorEnvelope{
			Success:   false,
			Error:     body,
			Timestamp: time.Now().UTC(),
			Path:      c.Request().URL.Path,
		})
	}
}

func resolveError(err error, development bool) (int, errorBody) {
	// Tagged domain errors carry their own status and payload.
	var de *domain.Error
	if errors.As(err, &de) {
		body := errorBody{Message: de.Message, Field: de.Field, Details: de.Details}
		if (de.Kind == domain.KindDatabase || de.Kind == domain.KindInternal) && !development {
			body.Details = ""
		}
		return de.Status(), body
	}

	// Postgres failures: constraint violations and connectivity.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if known, ok := pgErrorStatus[pgErr.Code]; ok {
			body := errorBody{Message: known.message}
			if pgErr.Detail != "" {
				body.Details = pgErr.Detail
			} else if pgErr.ConstraintName != "" {
				body.Details = pgErr.ConstraintName
			}
			return known.status, body
		}
		body := errorBody{Message: "database error"}
		if development {
			body.Details = pgErr.Message
		}
		return http.StatusInternalServerError, body
	}

	// Malformed JSON in the request body.
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return http.StatusBadRequest, errorBody{Message: "invalid JSON in request body"}
	}

	// Echo's own errors: bind failures, method not allowed, router 404.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if inner := he.Internal; inner != nil {
			if errors.As(inner, &syntaxErr) || errors.As(inner, &typeErr) {
				return http.StatusBadRequest, errorBody{Message: "invalid JSON in request body"}
			}
		}
		return he.Code, errorBody{Message: fmt.Sprintf("%v", he.Message)}
	}

	body := errorBody{Message: "internal server error"}
	if development {
		body.Details = err.Error()
	}
	return http.StatusInternalServerError, body
}
