package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/sjson"
)

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	dbOK := a.store.Ping(ctx) == nil

	out := `{"ok":true}`
	fields := []struct {
		path  string
		value any
	}{
		{"env", a.cfg.Env},
		{"version", a.version.Version},
		{"commit", a.version.Commit},
		{"date", a.version.Date},
		{"db_ok", dbOK},
		{"db_dialect", string(a.store.Dialect())},
	}
	for _, f := range fields {
		next, err := sjson.Set(out, f.path, f.value)
		if err != nil {
			slog.Error("构造 healthz 响应失败", "field", f.path, "err", err)
			continue
		}
		out = next
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(out))
}
