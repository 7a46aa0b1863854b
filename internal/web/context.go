package web

import (
	"net/http"

	"github.com/ai4biz/portal/internal/core"
	mw "github.com/ai4biz/portal/internal/web/middleware"
)

// requestMetadata adds the client IP and User-Agent to the request context
// so store mutations can attribute their audit lines.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithIPAddress(r.Context(), mw.ClientIP(r))
		ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
