package middleware

import (
	"context"
	"net/http"
	"net/netip"

	"gatehouse/internal/security"
)

type clientIPKey struct{}

// ClientIP 解析请求来源 IP 并放入上下文；trusted 为空时始终使用 RemoteAddr。
func ClientIP(trusted []netip.Prefix) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := security.ClientIP(r, trusted)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey{}, ip)))
		})
	}
}

func GetClientIP(ctx context.Context) string {
	s, _ := ctx.Value(clientIPKey{}).(string)
	return s
}
