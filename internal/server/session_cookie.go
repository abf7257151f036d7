package server

import (
	"net/http"

	"github.com/gin-contrib/sessions"

	"gatehouse/internal/config"
)

const SessionCookieName = "gatehouse_session"

// sessionOptions 返回会话 cookie 属性。
//
// SameSite 必须是 Lax：鉴权失败后的“改道 → 重定向到登录页 → 登录后回跳”链路依赖 cookie 随顶层导航发送。
func sessionOptions(cfg config.Config) sessions.Options {
	maxAge := cfg.Security.SessionMaxAgeSeconds
	if maxAge <= 0 {
		maxAge = 7 * 24 * 3600
	}
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Env != "dev" && !cfg.Security.DisableSecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
