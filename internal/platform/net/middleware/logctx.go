package middleware

import (
	"net/http"

	"zeitgeist/internal/platform/logger"
	znet "zeitgeist/internal/platform/net"
)

// LogContext copies the request id into the logger's context so every
// logger.C call downstream carries it. Mount after RequestID
func LogContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithRequest(r.Context(), znet.RequestID(r.Context()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
