// Package server 组装存储、鉴权、页面与路由，使 main 保持简单可读。
package server

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/security"
	"gatehouse/internal/store"
	"gatehouse/internal/version"
	"gatehouse/internal/web"
	"gatehouse/router"
)

type AppOptions struct {
	Config  config.Config
	DB      *sql.DB
	Version version.BuildInfo
}

type App struct {
	cfg     config.Config
	db      *sql.DB
	store   *store.Store
	manager *auth.Manager
	web     *web.Server
	version version.BuildInfo
	engine  *gin.Engine
}

func NewApp(opts AppOptions) (*App, error) {
	st := store.New(opts.DB)
	st.SetDialect(store.Dialect(opts.Config.DB.Driver))

	creds := auth.NewStoreCredentials(st)

	// 失败处理器需要先于 Manager 构造，Manager 就绪后再回填给页面层。
	webSrv, err := web.NewServer(web.Options{LoginPath: opts.Config.Auth.LoginPath})
	if err != nil {
		return nil, fmt.Errorf("加载页面模板失败: %w", err)
	}
	manager, err := auth.NewManager(auth.ManagerOptions{
		Strategies: []auth.Strategy{
			auth.NewPasswordStrategy(creds, opts.Config.Auth.VagueFailures),
		},
		Serializer:     auth.NewSerializer(creds),
		FailureHandler: http.HandlerFunc(webSrv.Unauthenticated),
		FailurePath:    opts.Config.Auth.FailurePath,
		Logger:         slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("初始化鉴权失败: %w", err)
	}
	webSrv.SetManager(manager)

	app := &App{
		cfg:     opts.Config,
		db:      opts.DB,
		store:   st,
		manager: manager,
		web:     webSrv,
		version: opts.Version,
	}
	if err := app.bootstrap(); err != nil {
		return nil, err
	}

	sessionSecret := strings.TrimSpace(opts.Config.Security.SessionSecret)
	if sessionSecret == "" {
		slog.Warn("未配置 session_secret，使用进程内随机密钥（重启后会话失效）")
		sessionSecret = randomSecret(32)
	}

	if opts.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	sessionStore := cookie.NewStore([]byte(sessionSecret))
	sessionStore.Options(sessionOptions(opts.Config))
	engine.Use(sessions.Sessions(SessionCookieName, sessionStore))

	var trustedProxies []netip.Prefix
	if opts.Config.Security.TrustProxyHeaders {
		trustedProxies, err = security.ParseTrustedProxies(opts.Config.Security.TrustedProxyCIDRs)
		if err != nil {
			return nil, err
		}
	}

	var metrics http.Handler
	if opts.Config.Metrics.Enabled {
		metrics = promhttp.Handler()
	}

	router.SetRouter(engine, router.Options{
		Manager:     manager,
		Web:         webSrv,
		LoginPath:   opts.Config.Auth.LoginPath,
		FailurePath: manager.FailurePath(),
		Assets:      web.AssetsFS(),

		TrustedProxies: trustedProxies,

		Healthz:     app.handleHealthz,
		Metrics:     metrics,
		MetricsPath: opts.Config.Metrics.Path,
	})

	app.engine = engine
	return app, nil
}

func (a *App) Handler() http.Handler {
	return a.engine
}

func (a *App) bootstrap() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.seedUser(ctx)
}

// seedUser 在用户表为空时写入初始账号，便于首次启动即可登录。
func (a *App) seedUser(ctx context.Context) error {
	username := strings.TrimSpace(a.cfg.Auth.SeedUsername)
	if username == "" || a.db == nil {
		return nil
	}
	n, err := a.store.CountUsers(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := auth.HashPassword(a.cfg.Auth.SeedPassword)
	if err != nil {
		return fmt.Errorf("生成初始账号密码哈希失败: %w", err)
	}
	userID, err := a.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			return nil
		}
		return fmt.Errorf("写入初始账号失败: %w", err)
	}
	slog.Info("已创建初始账号", "user_id", userID, "username", username)
	return nil
}

func randomSecret(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
