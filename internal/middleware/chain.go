// Package middleware 提供 net/http 中间件与组合工具：request_id、会话鉴权、访问日志、一次性 flash。
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler

// Chain 按参数顺序由外到内包裹 h，即 mws[0] 最先执行。
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		h = mws[i](h)
	}
	return h
}
