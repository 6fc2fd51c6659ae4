package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/api/authz"
	"github.com/codr1/leaguedesk/internal/models"
)

// ExposeInternalErrors adds the underlying error text to 500 responses. It is
// switched off in production.
var ExposeInternalErrors = true

// ErrRateLimited marks a request refused by the login limiter.
var ErrRateLimited = errors.New("rate limited")

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
	// RetryAfter sets the Retry-After header when positive.
	RetryAfter time.Duration
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// Envelope is the body of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

// DecodeBody decodes a JSON request body and reports malformed input as a 400.
func DecodeBody(r *http.Request, dst any) error {
	if err := DecodeJSON(r, dst); err != nil {
		return HandlerError{Status: http.StatusBadRequest, Message: "Invalid request body: " + err.Error(), Err: err}
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteSuccess writes {"success": true, "data": data}.
func WriteSuccess(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, Envelope{Success: true, Data: data})
}

// WriteSuccessMessage writes a success envelope carrying both data and a
// message.
func WriteSuccessMessage(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	write(w, r, status, Envelope{Success: true, Data: data, Message: message})
}

// WriteList writes a success envelope with the item count.
func WriteList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	write(w, r, http.StatusOK, Envelope{Success: true, Data: items, Count: &count})
}

// WriteMessage writes a success envelope without data.
func WriteMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	write(w, r, status, Envelope{Success: true, Message: message})
}

// WriteError maps err to a status code and writes the failure envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := StatusForError(err)

	logger := log.Ctx(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Err(err).Msg("Request failed")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		logEvent := logger.Warn().Str("reason", message)
		if user := authz.UserFromContext(r.Context()); user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		logEvent.Msg("Access denied")
	default:
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}

	var handlerErr HandlerError
	if errors.As(err, &handlerErr) && handlerErr.RetryAfter > 0 {
		seconds := int(handlerErr.RetryAfter.Round(time.Second) / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	write(w, r, status, Envelope{Success: false, Error: message})
}

// StatusForError maps the error taxonomy to HTTP status codes and the message
// shown to the client.
func StatusForError(err error) (int, string) {
	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		return handlerErr.Status, handlerErr.Message
	}
	var fieldErr FieldError
	if errors.As(err, &fieldErr) {
		return http.StatusBadRequest, fieldErr.Error()
	}

	message := models.PublicMessage(err)
	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		return http.StatusUnauthorized, orDefault(message, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		return http.StatusForbidden, orDefault(message, "You do not have permission to perform this action")
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, orDefault(message, "Resource not found")
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidState):
		return http.StatusBadRequest, orDefault(message, "Invalid request")
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict, orDefault(message, "Resource already exists")
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "Too many attempts, try again later"
	}

	if ExposeInternalErrors && err != nil {
		return http.StatusInternalServerError, "Internal server error: " + err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

func write(w http.ResponseWriter, r *http.Request, status int, payload Envelope) {
	if err := WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write JSON response")
	}
}
