package router

import (
	"io/fs"
	"net/http"
	"net/netip"

	"gatehouse/internal/auth"
	"gatehouse/internal/web"
)

type Options struct {
	Manager *auth.Manager
	Web     *web.Server

	// LoginPath/FailurePath 与 Manager、web.Server 的配置保持一致。
	LoginPath   string
	FailurePath string

	// TrustedProxies 非空时访问日志按 X-Forwarded-For 还原来源 IP。
	TrustedProxies []netip.Prefix

	// Assets 以资源根目录为根，挂载到 /assets。
	Assets fs.FS

	// system
	Healthz http.HandlerFunc
	// Metrics 为空表示不暴露指标。
	Metrics     http.Handler
	MetricsPath string
}

func (o Options) loginPath() string {
	if o.LoginPath == "" {
		return "/auth/login"
	}
	return o.LoginPath
}

func (o Options) failurePath() string {
	if o.FailurePath != "" {
		return o.FailurePath
	}
	if o.Manager != nil {
		return o.Manager.FailurePath()
	}
	return auth.DefaultFailurePath
}
