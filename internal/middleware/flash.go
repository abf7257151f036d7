package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	flashNoticeCookieName = "gh_flash_notice"
	flashErrorCookieName  = "gh_flash_error"

	maxFlashLen = 500
)

type flashContextKey struct{}

type flashData struct {
	Notice string
	Error  string
}

func FlashNotice(ctx context.Context) string {
	fd, _ := ctx.Value(flashContextKey{}).(flashData)
	return fd.Notice
}

func FlashError(ctx context.Context) string {
	fd, _ := ctx.Value(flashContextKey{}).(flashData)
	return fd.Error
}

// SetFlashNotice 写入一次性成功提示，下一次 GET 渲染时读取并清除。
func SetFlashNotice(w http.ResponseWriter, r *http.Request, msg string) {
	setFlash(w, r, flashNoticeCookieName, msg)
}

func SetFlashError(w http.ResponseWriter, r *http.Request, msg string) {
	setFlash(w, r, flashErrorCookieName, msg)
}

func setFlash(w http.ResponseWriter, r *http.Request, cookieName string, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if len(msg) > maxFlashLen {
		msg = msg[:maxFlashLen] + "..."
	}
	enc := base64.RawURLEncoding.EncodeToString([]byte(msg))
	setCookie(w, r, cookieName, enc, 2*time.Minute)
}

// FlashFromCookies 只在 GET/HEAD 上消费 flash，POST 之后的重定向链路不会提前把它读掉。
func FlashFromCookies(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead:
		default:
			next.ServeHTTP(w, r)
			return
		}
		notice := popFlash(w, r, flashNoticeCookieName)
		errMsg := popFlash(w, r, flashErrorCookieName)
		if notice == "" && errMsg == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), flashContextKey{}, flashData{
			Notice: notice,
			Error:  errMsg,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func popFlash(w http.ResponseWriter, r *http.Request, cookieName string) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	clearCookie(w, r, cookieName)
	raw := strings.TrimSpace(c.Value)
	if raw == "" {
		return ""
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func setCookie(w http.ResponseWriter, r *http.Request, name string, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
