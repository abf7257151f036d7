package router

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"gatehouse/internal/auth"
	"gatehouse/internal/store"
	"gatehouse/internal/web"
)

const testSessionCookie = "gatehouse_session"

type testEnv struct {
	t      *testing.T
	engine *gin.Engine
	store  *store.Store
	jar    http.CookieJar
	base   *url.URL
	userID int64
}

func newTestEnv(t *testing.T, vague bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "gatehouse.db") + "?_busy_timeout=1000"
	db, err := store.OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.EnsureSQLiteSchema(db); err != nil {
		t.Fatalf("EnsureSQLiteSchema: %v", err)
	}
	st := store.New(db)
	st.SetDialect(store.DialectSQLite)

	pwHash, err := auth.HashPassword("admin")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	userID, err := st.CreateUser(context.Background(), "admin", pwHash)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	creds := auth.NewStoreCredentials(st)
	webSrv, err := web.NewServer(web.Options{LoginPath: "/auth/login"})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	m, err := auth.NewManager(auth.ManagerOptions{
		Strategies:     []auth.Strategy{auth.NewPasswordStrategy(creds, vague)},
		Serializer:     auth.NewSerializer(creds),
		FailureHandler: http.HandlerFunc(webSrv.Unauthenticated),
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	webSrv.SetManager(m)

	engine := gin.New()
	engine.Use(gin.Recovery())
	sessionStore := cookie.NewStore([]byte("test-secret"))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(testSessionCookie, sessionStore))

	SetRouter(engine, Options{
		Manager:   m,
		Web:       webSrv,
		LoginPath: "/auth/login",
		Assets:    web.AssetsFS(),
		Healthz: func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = io.WriteString(w, `{"ok":true}`)
		},
	})

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	base, _ := url.Parse("http://example.com/")
	return &testEnv{t: t, engine: engine, store: st, jar: jar, base: base, userID: userID}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	e.t.Helper()
	for _, c := range e.jar.Cookies(e.base) {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.engine.ServeHTTP(rr, req)
	e.jar.SetCookies(e.base, rr.Result().Cookies())
	return rr
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil))
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "http://example.com"+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func (e *testEnv) login(username, password string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.postForm("/auth/login", url.Values{
		"user[username]": {username},
		"user[password]": {password},
	})
}

func (e *testEnv) hasSessionCookie() bool {
	for _, c := range e.jar.Cookies(e.base) {
		if c.Name == testSessionCookie {
			return true
		}
	}
	return false
}

func expectRedirect(t *testing.T, rr *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rr.Code != http.StatusFound {
		t.Fatalf("expected status %d, got %d body=%s", http.StatusFound, rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != location {
		t.Fatalf("expected Location %q, got %q", location, got)
	}
}

func expectBody(t *testing.T, rr *httptest.ResponseRecorder, needle string) {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), needle) {
		t.Fatalf("expected body to contain %q, got:\n%s", needle, rr.Body.String())
	}
}
