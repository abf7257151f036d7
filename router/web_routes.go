package router

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"gatehouse/internal/middleware"
	"gatehouse/internal/web"
)

func setWebRoutes(r *gin.Engine, opts Options) {
	if opts.Web == nil || opts.Manager == nil {
		return
	}

	// gzip 只作用于此后注册的页面与静态资源；/healthz、/metrics 已在之前注册。
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	if opts.Assets != nil {
		r.Use(static.Serve("/assets", &embedFileSystem{FileSystem: http.FS(opts.Assets)}))
	}

	webChain := func(h http.HandlerFunc, extra ...middleware.Middleware) gin.HandlerFunc {
		mws := []middleware.Middleware{
			middleware.RequestID,
			middleware.ClientIP(opts.TrustedProxies),
			middleware.SessionAuth(opts.Manager),
			middleware.AccessLog,
			middleware.FlashFromCookies,
		}
		return wrapHTTP(middleware.Chain(h, append(mws, extra...)...))
	}

	pages := r.Group("/")
	pages.Use(attachSession())

	pages.GET("/", webChain(opts.Web.Index))
	pages.GET(opts.loginPath(), webChain(opts.Web.LoginPage))
	pages.POST(opts.loginPath(), webChain(opts.Web.Login, middleware.MaxBytes(web.MaxLoginBodyBytes)))
	pages.GET("/auth/logout", webChain(opts.Web.Logout))
	pages.POST(opts.failurePath(), webChain(opts.Web.Unauthenticated))
	pages.GET("/protected", webChain(opts.Web.Protected))
}

// embedFileSystem 把 embed.FS 子目录适配为 static.ServeFileSystem；目录本身不对外暴露。
type embedFileSystem struct {
	http.FileSystem
}

// static.Serve 传入的是完整 URL 路径，需要先去掉挂载前缀。
func (e *embedFileSystem) Exists(prefix string, p string) bool {
	if prefix != "" && prefix != "/" {
		rest := strings.TrimPrefix(p, prefix)
		if len(rest) == len(p) {
			return false
		}
		p = rest
	}
	if p == "" || p == "/" {
		return false
	}
	f, err := e.Open(p)
	if err != nil {
		return false
	}
	defer f.Close()
	st, err := f.Stat()
	return err == nil && !st.IsDir()
}

func (e *embedFileSystem) Open(name string) (http.File, error) {
	if name == "/" {
		return nil, os.ErrNotExist
	}
	return e.FileSystem.Open(name)
}
