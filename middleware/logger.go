package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type StatusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *StatusRecorder) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *StatusRecorder) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *StatusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// requestInfo is filled in by handlers further down the chain for the access log.
type requestInfo struct {
	userID string
}

// LoggerMiddleware puts a request-scoped logger in the context and writes one access log
// line per request. It expects RequestIDMiddleware to have run.
func LoggerMiddleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := RequestIDFromContext(r.Context())
			reqLogger := logger.With().Str("request_id", requestID).Logger()

			info := &requestInfo{userID: "unknown"}
			ctx := reqLogger.WithContext(r.Context())
			ctx = contextWithInfo(ctx, info)

			recorder := &StatusRecorder{ResponseWriter: w}
			next.ServeHTTP(recorder, r.WithContext(ctx))

			event := reqLogger.Info()
			if recorder.Status() >= http.StatusInternalServerError {
				event = reqLogger.Error()
			}
			event.
				Str("user_id", info.userID).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", recorder.Status()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}
