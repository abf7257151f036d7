package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"gatehouse/internal/auth"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(p)
	w.bytes += int64(n)
	return n, err
}

func (w *statusWriter) Flush() {
	if fl, ok := w.ResponseWriter.(http.Flusher); ok {
		fl.Flush()
	}
}

// AccessLog 记录结构化访问日志；不记录请求体、查询串与任何请求头。
//
// user_id 取请求结束时的鉴权结果，因此本次请求内登录/登出也会如实反映。
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(sw, r)
		lat := time.Since(start)

		var userID any
		if p, ok := auth.ProxyFromContext(r.Context()); ok {
			if id, ok := p.User(); ok {
				userID = id.ID
			}
		} else if pr, ok := auth.PrincipalFromContext(r.Context()); ok {
			userID = pr.UserID
		}
		status := sw.status
		if status == 0 {
			status = http.StatusOK
		}
		slog.Info("access",
			"request_id", GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", GetClientIP(r.Context()),
			"status", status,
			"bytes", sw.bytes,
			"latency_ms", lat.Milliseconds(),
			"user_id", userID,
		)
	})
}
