// Package middleware holds the HTTP middleware specific to this service.
// Generic middleware (request ids, panic recovery) comes from chi.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/schools-api/internal/logger"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// TraceHeader is the response header carrying the request's trace id.
const TraceHeader = "X-Trace-ID"

type traceKey struct{}

// Trace gives every request a trace id and a logger tagged with it.
//
// The id is stored in the request context (see TraceID) and echoed in the
// X-Trace-ID response header. The logger is stored with logger.NewContext so
// handlers and services log through it. When the request finishes one line
// is written with its status and duration.
func Trace(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := uuid.NewString()

			log := base.With(slog.String("trace_id", traceID))
			if reqID := chimw.GetReqID(r.Context()); reqID != "" {
				log = log.With(slog.String("request_id", reqID))
			}

			ctx := context.WithValue(r.Context(), traceKey{}, traceID)
			ctx = logger.NewContext(ctx, log)

			w.Header().Set(TraceHeader, traceID)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			log.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				log.Info("request completed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Int("status", status),
					slog.Int("bytes", ww.BytesWritten()),
					slog.Duration("duration", time.Since(start)))
			}()

			next.ServeHTTP(ww, r.WithContext(ctx))
		})
	}
}

// TraceID returns the trace id stored by Trace, or "" outside a request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
