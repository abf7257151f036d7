// Package router 把页面与系统路由注册到 gin 引擎上。
package router

import (
	"github.com/gin-gonic/gin"
)

// SetRouter 注册全部路由。调用方需先在 r 上挂好 sessions.Sessions 中间件。
func SetRouter(r *gin.Engine, opts Options) {
	setSystemRoutes(r, opts)
	setWebRoutes(r, opts)
}
