package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/foxzi/campaigner/internal/dispatch"
	"github.com/foxzi/campaigner/internal/models"
	"github.com/foxzi/campaigner/internal/store"
)

// ErrorResponse is the error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// maxBodyBytes caps request bodies; contact imports are the largest payloads
const maxBodyBytes = 16 << 20

// newValidator returns a validator that reports JSON field names and knows
// campaign statuses.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("campaign_status", func(fl validator.FieldLevel) bool {
		s := models.CampaignStatus(fl.Field().String())
		return s == "" || s.Valid()
	})
	return v
}

// sendJSON sends a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message})
}

// decode reads a JSON body into v and validates it. On failure the error
// response is already written and false is returned.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.sendError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.sendError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// validationMessage flattens validator errors into one line
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		parts = append(parts, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// sendDomainError maps domain errors to HTTP statuses
func (s *Server) sendDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.sendError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, dispatch.ErrDispatchInProgress):
		s.sendError(w, http.StatusConflict, err.Error())
	case errors.Is(err, dispatch.ErrScheduleInPast), errors.Is(err, dispatch.ErrNoCredential):
		s.sendError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		s.sendError(w, http.StatusInternalServerError, "Internal error")
	}
}

func slogLevelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
