package middleware

import (
	"log/slog"
	"net/http"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/api/shared"
)

// TraceMiddleware attaches a trace ID to every request context. The same
// ID flows through submission, the dispatch hop, the worker invocation
// and the completion webhook, so one task's lifecycle can be correlated
// across log lines and error responses. Applied before any handler that
// logs or writes an error envelope.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		slog.Debug("request received",
			slog.String("trace_id", shared.GetTraceID(ctx)),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
