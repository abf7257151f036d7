package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewLogger_LevelByEnv(t *testing.T) {
	cases := []struct {
		env       string
		wantDebug bool
	}{
		{env: "dev", wantDebug: true},
		{env: "prod", wantDebug: false},
		{env: "", wantDebug: false},
	}
	for _, tc := range cases {
		t.Run(tc.env, func(t *testing.T) {
			var buf bytes.Buffer
			l := newLogger(&buf, tc.env)
			if got := l.Enabled(context.Background(), slog.LevelDebug); got != tc.wantDebug {
				t.Fatalf("debug enabled=%v, want %v", got, tc.wantDebug)
			}
		})
	}
}

func TestNewLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Info("登录成功", "user_id", int64(7))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "登录成功" {
		t.Fatalf("msg=%v", entry["msg"])
	}
	if entry["user_id"] != float64(7) {
		t.Fatalf("user_id=%v", entry["user_id"])
	}
}
