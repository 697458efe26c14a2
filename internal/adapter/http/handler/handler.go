package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/operman-code/petme/internal/adapter/http/middleware"
	"github.com/operman-code/petme/internal/listing/domain"
	"github.com/operman-code/petme/internal/platform/logger"
	"go.uber.org/zap"
)

type messageResponse struct {
	Message string              `json:"message"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeError maps domain errors onto HTTP responses. Only validation, ownership and
// not-found errors reach the client with detail; everything else is logged and
// reported as a generic failure.
func writeError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error, notFound string) {
	var (
		validation *domain.ValidationError
		param      *domain.InvalidParameterError
		rule       *domain.RuleError
	)
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.As(err, &validation):
		msg := "Validation failed"
		if len(validation.Fields) == 1 {
			msg = validation.Fields[0].Message
		}
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: msg, Errors: validation.Fields})
	case errors.As(err, &param):
		writeJSON(w, http.StatusBadRequest, messageResponse{
			Message: "Invalid query parameter: " + param.Param,
			Errors:  []domain.FieldError{{Field: param.Param, Message: param.Reason}},
		})
	case errors.As(err, &rule):
		writeMessage(w, http.StatusBadRequest, rule.Message)
	case errors.Is(err, domain.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, domain.ErrForbidden):
		writeMessage(w, http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	default:
		log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Bool("retryable", errors.Is(err, domain.ErrUnavailable)),
			zap.Error(err))
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// callerID reads the id JWTAuth put in the context. Routes using it are always
// mounted behind JWTAuth.
func callerID(r *http.Request) string {
	id, _ := middleware.UserIDFromContext(r.Context())
	return id
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
