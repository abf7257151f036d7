package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"gatehouse/internal/config"
	"gatehouse/internal/store"
	"gatehouse/internal/version"
)

func testConfig() config.Config {
	return config.Config{
		Env:    "dev",
		Server: config.ServerConfig{Addr: ":0"},
		DB:     config.DBConfig{Driver: "sqlite"},
		Security: config.SecurityConfig{
			SessionSecret:        "test-secret",
			SessionMaxAgeSeconds: 3600,
		},
		Auth: config.AuthConfig{
			FailurePath:  "/auth/unauthenticated",
			LoginPath:    "/auth/login",
			SeedUsername: "admin",
			SeedPassword: "admin",
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func newTestApp(t *testing.T, cfg config.Config) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "gatehouse.db") + "?_busy_timeout=1000"
	db, err := store.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.EnsureSchema(db, store.DialectSQLite); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	app, err := NewApp(AppOptions{
		Config:  cfg,
		DB:      db,
		Version: version.BuildInfo{Version: "1.0.0", Commit: "abc", Date: "2026-01-01"},
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

func TestNewApp_SeedsUserOnce(t *testing.T) {
	app := newTestApp(t, testConfig())
	ctx := context.Background()

	n, err := app.store.CountUsers(ctx)
	if err != nil || n != 1 {
		t.Fatalf("CountUsers=%d err=%v", n, err)
	}
	if _, err := app.store.GetUserByUsername(ctx, "admin"); err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}

	if err := app.seedUser(ctx); err != nil {
		t.Fatalf("seedUser (2): %v", err)
	}
	if n, _ := app.store.CountUsers(ctx); n != 1 {
		t.Fatalf("expected seed to be skipped, users=%d", n)
	}
}

func TestNewApp_SeedDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.SeedUsername = ""
	app := newTestApp(t, cfg)

	if n, _ := app.store.CountUsers(context.Background()); n != 0 {
		t.Fatalf("expected no users, got %d", n)
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, testConfig())

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !gjson.Valid(body) {
		t.Fatalf("invalid json: %s", body)
	}
	if !gjson.Get(body, "ok").Bool() || !gjson.Get(body, "db_ok").Bool() {
		t.Fatalf("unexpected healthz: %s", body)
	}
	if gjson.Get(body, "version").String() != "1.0.0" || gjson.Get(body, "db_dialect").String() != "sqlite" {
		t.Fatalf("unexpected healthz: %s", body)
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	app := newTestApp(t, testConfig())

	form := url.Values{"user[username]": {"admin"}, "user[password]": {"admin"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/" {
		t.Fatalf("status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
	var found bool
	for _, c := range rr.Result().Cookies() {
		if c.Name != SessionCookieName {
			continue
		}
		found = true
		if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode || c.Secure {
			t.Fatalf("unexpected session cookie attributes: %+v", c)
		}
	}
	if !found {
		t.Fatalf("expected %s cookie", SessionCookieName)
	}
}

func TestSessionOptions_SecureOutsideDev(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "prod"
	if !sessionOptions(cfg).Secure {
		t.Fatalf("expected secure cookie outside dev")
	}
	cfg.Security.DisableSecureCookies = true
	if sessionOptions(cfg).Secure {
		t.Fatalf("expected secure cookie disabled")
	}
	cfg.Security.SessionMaxAgeSeconds = 0
	if got := sessionOptions(cfg).MaxAge; got != 7*24*3600 {
		t.Fatalf("MaxAge=%d", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig())

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	app.Handler().ServeHTTP(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	app.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"gatehouse_auth_attempts_total", "gatehouse_auth_denials_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestRandomSecret(t *testing.T) {
	if randomSecret(0) != "" {
		t.Fatalf("expected empty secret")
	}
	a, b := randomSecret(32), randomSecret(32)
	if a == "" || a == b {
		t.Fatalf("unexpected secrets %q %q", a, b)
	}
}

func TestNewApp_RejectsBadTrustedProxy(t *testing.T) {
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "gatehouse.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.EnsureSchema(db, store.DialectSQLite); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	cfg := testConfig()
	cfg.Security.TrustProxyHeaders = true
	cfg.Security.TrustedProxyCIDRs = []string{"not-an-ip"}
	if _, err := NewApp(AppOptions{Config: cfg, DB: db}); err == nil {
		t.Fatalf("expected error for invalid trusted proxy")
	}
}
