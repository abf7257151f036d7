package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"gatehouse/internal/obs"
)

const DefaultFailurePath = "/auth/unauthenticated"

// State 是单个请求内的鉴权状态：Unattempted → Authenticated | Denied。
type State int

const (
	StateUnattempted State = iota
	StateAuthenticated
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateDenied:
		return "denied"
	default:
		return "unattempted"
	}
}

// Denial 描述一次被拒绝的鉴权：提示文案与最初请求的路径（用于登录后回跳）。
type Denial struct {
	Reason        string
	AttemptedPath string
}

// Outcome 是 Proxy.Authenticate 的返回：Identity 与 Denial 恰有一个非空。
type Outcome struct {
	Identity *Identity
	Denial   *Denial
}

func (o Outcome) Authenticated() bool {
	return o.Identity != nil
}

type ManagerOptions struct {
	// Strategies 按声明顺序执行，首个成功者胜出。
	Strategies []Strategy
	Serializer Serializer

	// FailureHandler 处理被改道的请求（以 POST FailurePath 的形式调用），通常负责记录回跳路径并重定向到登录页。
	FailureHandler http.Handler
	FailurePath    string

	Logger *slog.Logger
}

// Manager 编排鉴权策略。构造后只读，可在请求间共享；每个请求通过 Begin 获得独立的 Proxy。
type Manager struct {
	strategies  []Strategy
	serializer  Serializer
	failure     http.Handler
	failurePath string
	log         *slog.Logger
}

func NewManager(opts ManagerOptions) (*Manager, error) {
	failurePath := strings.TrimSpace(opts.FailurePath)
	if failurePath == "" {
		failurePath = DefaultFailurePath
	}
	if !strings.HasPrefix(failurePath, "/") || strings.HasPrefix(failurePath, "//") {
		return nil, fmt.Errorf("failure_path 必须是站内绝对路径: %q", failurePath)
	}
	strategies := make([]Strategy, 0, len(opts.Strategies))
	for i, s := range opts.Strategies {
		if s == nil {
			return nil, fmt.Errorf("strategies[%d] 为空", i)
		}
		strategies = append(strategies, s)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		strategies:  strategies,
		serializer:  opts.Serializer,
		failure:     opts.FailureHandler,
		failurePath: failurePath,
		log:         logger,
	}, nil
}

func (m *Manager) FailurePath() string {
	return m.failurePath
}

// Begin 为一次请求创建鉴权上下文，并尝试从会话 token 恢复身份。
//
// token 指向的身份已不存在时会从 sess 中清除；存储不可用时保留 token，本次请求按未登录处理。
func (m *Manager) Begin(ctx context.Context, sess *SessionState) *Proxy {
	if sess == nil {
		sess = &SessionState{}
	}
	p := &Proxy{m: m, sess: sess}
	if !sess.Token.Valid() {
		return p
	}

	id, err := m.serializer.FromToken(ctx, sess.Token)
	switch {
	case err == nil:
		p.state = StateAuthenticated
		p.user = &id
		obs.RecordSessionResolve("hit")
	case errors.Is(err, ErrNotFound):
		sess.Token = 0
		p.changed = true
		obs.RecordSessionResolve("stale")
	default:
		m.log.Error("会话身份恢复失败", "err", err)
		obs.RecordSessionResolve("error")
	}
	return p
}

// Fail 把被拒绝的请求改道到失败处理器：方法改为 POST、路径改为 FailurePath，并通过上下文携带 Denial。
func (m *Manager) Fail(w http.ResponseWriter, r *http.Request, d Denial) {
	if m.failure == nil {
		m.log.Error("未配置鉴权失败处理器", "failure_path", m.failurePath)
		http.Error(w, "内部错误", http.StatusInternalServerError)
		return
	}
	if d.AttemptedPath == "" {
		d.AttemptedPath = attemptedPath(r)
	}

	fr := r.Clone(WithDenial(r.Context(), d))
	u := *r.URL
	u.Path = m.failurePath
	u.RawPath = ""
	u.RawQuery = ""
	fr.URL = &u
	fr.Method = http.MethodPost
	fr.RequestURI = u.RequestURI()
	m.failure.ServeHTTP(w, fr)
}

// attemptedPath 只记录可安全回跳的 GET/HEAD 站内路径；表单提交等请求不作为回跳目标。
func attemptedPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		return ""
	}
	p := strings.TrimSpace(r.URL.RequestURI())
	if !SafeReturnPath(p) {
		return ""
	}
	return p
}

// SafeReturnPath 判断 p 是否是可用作重定向目标的站内路径。
func SafeReturnPath(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") {
		return false
	}
	if strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return false
	}
	return true
}

// Proxy 是单个请求的鉴权上下文，只在该请求的 goroutine 中使用。
type Proxy struct {
	m       *Manager
	sess    *SessionState
	state   State
	user    *Identity
	message string
	changed bool
}

// Authenticate 返回当前请求的鉴权结果。
//
// 会话已恢复出身份时直接返回缓存结果；否则依序执行可用的策略，首个成功者写入会话 token。
// 全部失败时返回 Denial，原因取最后一个执行的策略；没有策略执行时为 MsgAuthRequired。
func (p *Proxy) Authenticate(ctx context.Context, params Params) Outcome {
	if p.state == StateAuthenticated && p.user != nil {
		id := *p.user
		return Outcome{Identity: &id}
	}

	reason := ""
	for _, s := range p.m.strategies {
		if !s.Valid(params) {
			continue
		}
		res := s.Authenticate(ctx, params)
		obs.RecordAuthAttempt(s.Name(), res.OK())
		if res.OK() {
			id := *res.Identity
			p.state = StateAuthenticated
			p.user = &id
			p.message = MsgLoggedIn
			p.sess.Token = p.m.serializer.ToToken(id)
			p.changed = true
			p.m.log.Info("登录成功", "strategy", s.Name(), "user_id", id.ID)
			return Outcome{Identity: &id}
		}
		reason = res.Reason
		p.m.log.Info("鉴权未通过", "strategy", s.Name(), "reason", res.Reason)
	}

	if reason == "" {
		reason = MsgAuthRequired
	}
	p.state = StateDenied
	p.user = nil
	p.message = reason
	obs.RecordDenial()
	return Outcome{Denial: &Denial{Reason: reason}}
}

// Logout 清除会话 token 与缓存的身份；重复调用结果相同。回跳路径不受影响。
func (p *Proxy) Logout() {
	if p.sess.Token.Valid() {
		p.changed = true
		obs.RecordLogout()
	}
	p.sess.Token = 0
	p.user = nil
	p.state = StateUnattempted
	p.message = MsgLoggedOut
}

func (p *Proxy) User() (Identity, bool) {
	if p.state != StateAuthenticated || p.user == nil {
		return Identity{}, false
	}
	return *p.user, true
}

func (p *Proxy) State() State {
	return p.state
}

// Message 返回最近一次的失败原因或成功提示，供渲染层写入一次性 flash。
func (p *Proxy) Message() string {
	return p.message
}

// Changed 报告本次请求是否修改了会话 token，调用方据此决定是否需要持久化会话。
func (p *Proxy) Changed() bool {
	return p.changed
}
