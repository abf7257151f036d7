package auth

import "context"

// Session 把 SessionState 与其持久化动作绑定，随请求上下文传递；
// 传输层（cookie 会话）负责提供 save。
type Session struct {
	State SessionState
	save  func(SessionState) error
}

func NewSession(state SessionState, save func(SessionState) error) *Session {
	return &Session{State: state, save: save}
}

func (s *Session) Save() error {
	if s == nil || s.save == nil {
		return nil
	}
	return s.save(s.State)
}

// ConsumeReturnTo 取出并清除回跳路径（需调用 Save 才会落盘）。
func (s *Session) ConsumeReturnTo() string {
	if s == nil {
		return ""
	}
	p := s.State.ReturnTo
	s.State.ReturnTo = ""
	if !SafeReturnPath(p) {
		return ""
	}
	return p
}

type sessionKey struct{}

type proxyKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil
}

func WithProxy(ctx context.Context, p *Proxy) context.Context {
	return context.WithValue(ctx, proxyKey{}, p)
}

func ProxyFromContext(ctx context.Context) (*Proxy, bool) {
	p, ok := ctx.Value(proxyKey{}).(*Proxy)
	return p, ok && p != nil
}
