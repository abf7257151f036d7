package middleware

import (
	"log/slog"
	"net/http"

	"gatehouse/internal/auth"
)

// SessionAuth 为每个请求创建鉴权上下文（auth.Proxy），并尝试由会话 token 恢复身份。
//
// 会话由外层（cookie 会话传输）通过 auth.WithSession 放入上下文；缺失时按空会话处理且不落盘。
// 本中间件从不拦截请求，是否要求登录由具体 handler 调用 Proxy.Authenticate 决定。
func SessionAuth(m *auth.Manager) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := auth.SessionFromContext(r.Context())
			if !ok {
				sess = auth.NewSession(auth.SessionState{}, nil)
			}

			ctx := auth.WithSession(r.Context(), sess)
			p := m.Begin(ctx, &sess.State)
			if p.Changed() {
				// 过期 token 已被清除；保存失败只影响下次请求，不阻断本次。
				if err := sess.Save(); err != nil {
					slog.Error("保存会话失败", "request_id", GetRequestID(ctx), "err", err)
				}
			}

			ctx = auth.WithProxy(ctx, p)
			if id, ok := p.User(); ok {
				ctx = auth.WithPrincipal(ctx, auth.Principal{UserID: id.ID, Username: id.Username})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
