package api

import (
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blogicum/errs"
)

const requestIDHeader = "X-Request-ID"

type authMiddleware struct {
	responder Responder
	tokens    tokenIssuer
	users     userStore
}

func newAuthMiddleware(tokens tokenIssuer, users userStore) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		tokens:    tokens,
		users:     users,
	}
}

// authenticate admits requests carrying a valid bearer token of a staff user
func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		userID, err := m.tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			m.responder.WriteError(w, err)
			return
		}

		user, err := m.users.FindByID(r.Context(), userID)
		if err != nil {
			if errs.IsNotFound(err) {
				m.responder.WriteError(w, errs.NewInvalidTokenError())
				return
			}
			m.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if !user.IsStaff {
			m.responder.WriteError(w, errs.NewInsufficientRoleError("staff"))
			return
		}

		next.ServeHTTP(w, r.WithContext(ctxWithUser(r.Context(), user)))
	})
}

type statusResponseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.status = statusCode
		w.wroteHeader = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *statusResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// RequestID tags every request with an id, echoed in the response header
// and attached to the request-scoped logger
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		defer func() {
			if err := recover(); err != nil {
				zerolog.Ctx(r.Context()).Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Msg("Recovered from panic")

				// Write 500 if nothing written yet
				if !srw.wroteHeader {
					srw.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()

		next.ServeHTTP(srw, r)

		if srw.status == http.StatusInternalServerError {
			zerolog.Ctx(r.Context()).Error().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("500 error response")
		}
	})
}

// ColoredHTTPLoggingMiddleware logs HTTP requests with colored output based on status codes
func ColoredHTTPLoggingMiddleware(next http.Handler) http.Handler {
	colorLogger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	return requestLogger(colorLogger, next)
}

// JSONHTTPLoggingMiddleware logs HTTP requests through the global logger
func JSONHTTPLoggingMiddleware(next http.Handler) http.Handler {
	return requestLogger(log.Logger, next)
}

func requestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusResponseWriter{ResponseWriter: w, status: 200}

		next.ServeHTTP(srw, r)

		var logEvent *zerolog.Event
		switch {
		case srw.status >= 500:
			logEvent = logger.Error()
		case srw.status >= 400:
			logEvent = logger.Warn()
		default:
			logEvent = logger.Info()
		}

		logEvent.
			Str("request_id", w.Header().Get(requestIDHeader)).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", srw.status).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("HTTP Request")
	})
}

// CORSCheckMiddleware rejects preflight requests from origins outside
// allowedOrigins with a JSON error instead of a bare response
func CORSCheckMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// If no origin header, it's likely a same-origin request
			if origin == "" || r.Method != http.MethodOptions || originAllowed(allowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			responder := NewResponder(log.Logger)
			responder.WriteError(w, errs.NewCORSError(origin))
		})
	}
}

func originAllowed(allowedOrigins []string, origin string) bool {
	for _, allowedOrigin := range allowedOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}
	return false
}

// corsMiddleware sets the CORS headers on admin responses
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
