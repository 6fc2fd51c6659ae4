// internal/api/middleware.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/leaguedesk/internal/api/apiutil"
	"github.com/codr1/leaguedesk/internal/api/auth"
	"github.com/codr1/leaguedesk/internal/api/authz"
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

// RequestIDFromContext returns the id assigned by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	})
}

// WithRecovery turns a panic into a 500 envelope. The panic value is only
// shown to clients when exposeDetail is set.
func WithRecovery(exposeDetail bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger := log.Ctx(r.Context())
					// Log the full stack trace
					stack := debug.Stack()
					logger.Error().
						Interface("error", err).
						Str("stack", string(stack)).
						Msg("Panic recovered")

					body := apiutil.Envelope{Success: false, Error: "Something went wrong!"}
					if exposeDetail {
						body.Error = fmt.Sprintf("Something went wrong! %v", err)
					}
					if writeErr := apiutil.WriteJSON(w, http.StatusInternalServerError, body); writeErr != nil {
						logger.Error().Err(writeErr).Msg("Failed to write panic response")
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithTimeout bounds the request context, and with it every query the
// handler runs.
func WithTimeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Protect authenticates the caller unless the action is public, evaluates the
// access policy and only then runs h. For ActionSelfOrAdmin the owner is the
// {id} path value.
func Protect(action authz.Action, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if action == authz.ActionPublic {
			h(w, r)
			return
		}

		user, err := auth.UserFromRequest(r)
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		r = r.WithContext(authz.ContextWithUser(r.Context(), user))

		var ownerID int64
		if action == authz.ActionSelfOrAdmin {
			if ownerID, err = apiutil.PathID(r); err != nil {
				apiutil.WriteError(w, r, err)
				return
			}
		}

		if err := authz.Evaluate(user, action, ownerID); err != nil {
			log.Ctx(r.Context()).Warn().
				Int64("user_id", user.ID).
				Str("action", action.String()).
				Str("path", r.URL.Path).
				Msg("Access policy denied request")
			apiutil.WriteError(w, r, authz.Deny(err, "Access denied. Insufficient permissions."))
			return
		}

		h(w, r)
	}
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
