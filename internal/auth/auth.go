// Package auth 实现可插拔的请求鉴权：密码策略、会话序列化与按请求的鉴权状态机。
//
// 组件自底向上：CredentialStore（凭据查询与校验）→ Strategy（一次鉴权尝试）→
// Serializer（身份 ⇄ 会话 token）→ Manager/Proxy（编排策略、缓存结果、失败改道）。
package auth

import (
	"context"
)

// Principal 是写入请求上下文的已鉴权主体，供访问日志与页面渲染读取。
type Principal struct {
	UserID   int64
	Username string
}

type ctxKey int

const (
	principalKey ctxKey = iota + 1
	denialKey
)

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	v := ctx.Value(principalKey)
	if v == nil {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// WithDenial 把拒绝信息挂到改道后的请求上，失败处理器通过 DenialFromContext 读取。
func WithDenial(ctx context.Context, d Denial) context.Context {
	return context.WithValue(ctx, denialKey, d)
}

func DenialFromContext(ctx context.Context) (Denial, bool) {
	v := ctx.Value(denialKey)
	if v == nil {
		return Denial{}, false
	}
	d, ok := v.(Denial)
	return d, ok
}
