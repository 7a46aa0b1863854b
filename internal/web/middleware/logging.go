// Package middleware provides HTTP middleware for the portal server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ai4biz/portal/internal/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logger writes one structured line per request.
//
// Log fields:
//   - method, path, status
//   - duration_ms: time spent in the handler chain
//   - bytes: response body size
//   - ip: client address after TrustedRealIP
//   - user_agent
//   - actor: admin username, for authenticated requests
//
// Server errors are logged at error level, client errors at warn.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		slot := new(string)
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), actorSlotKey{}, slot)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.BytesWritten(),
			"ip", ClientIP(r),
			"user_agent", r.UserAgent(),
		}
		if *slot != "" {
			attrs = append(attrs, "actor", *slot)
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logging.FromContext(r.Context()).Log(r.Context(), level, "request", attrs...)
	})
}

type actorSlotKey struct{}

// recordActor lets Logger report who made an authenticated request. It is a
// no-op outside Logger.
func recordActor(ctx context.Context, actor string) {
	if slot, ok := ctx.Value(actorSlotKey{}).(*string); ok {
		*slot = actor
	}
}
