// Package web 实现服务端渲染的最小页面：首页、登录/登出、鉴权失败改道与受保护页。
package web

import (
	"bytes"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"gatehouse/internal/auth"
	"gatehouse/internal/middleware"
)

const siteName = "Gatehouse"

type Options struct {
	Manager *auth.Manager
	// LoginPath 是失败改道后重定向到的登录页。
	LoginPath string
}

type Server struct {
	manager   *auth.Manager
	loginPath string
	tmpl      *template.Template
}

func NewServer(opts Options) (*Server, error) {
	t, err := template.New("web").ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	loginPath := strings.TrimSpace(opts.LoginPath)
	if loginPath == "" {
		loginPath = "/auth/login"
	}
	return &Server{
		manager:   opts.Manager,
		loginPath: loginPath,
		tmpl:      t,
	}, nil
}

// SetManager 供装配阶段回填 Manager：失败处理器需要先于 Manager 创建。
func (s *Server) SetManager(m *auth.Manager) {
	s.manager = m
}

type UserView struct {
	ID       int64
	Username string
}

type TemplateData struct {
	Title     string
	User      *UserView
	Notice    string
	Error     string
	LoginPath string

	ContentHTML template.HTML
}

func (s *Server) Render(w http.ResponseWriter, r *http.Request, name string, data TemplateData) {
	if data.Notice == "" {
		data.Notice = middleware.FlashNotice(r.Context())
	}
	if data.Error == "" {
		data.Error = middleware.FlashError(r.Context())
	}
	if data.User == nil {
		data.User = currentUser(r)
	}
	data.LoginPath = s.loginPath

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("渲染模板失败", "template", name, "err", err)
		http.Error(w, "页面渲染失败", http.StatusInternalServerError)
		return
	}
	data.ContentHTML = template.HTML(buf.String())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "base", data); err != nil {
		slog.Error("渲染模板失败", "template", "base", "err", err)
		http.Error(w, "页面渲染失败", http.StatusInternalServerError)
		return
	}
}

func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL != nil && r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.Render(w, r, "page_index", TemplateData{Title: siteName})
}

func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Render(w, r, "page_login", TemplateData{Title: "Log in - " + siteName})
}

// Login 执行一次鉴权。成功后写入会话并回跳到 return_to（取出即清除）或首页；失败交给 Manager.Fail 改道。
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	p, sess, ok := s.requestAuth(w, r)
	if !ok {
		return
	}
	params, err := ParamsFromRequest(r)
	if err != nil {
		// 请求体无法解析时按“未提供凭据”处理，仍走失败处理器回到登录页。
		slog.Warn("登录请求体解析失败", "request_id", middleware.GetRequestID(r.Context()), "err", err)
		params = auth.Params{}
	}

	out := p.Authenticate(r.Context(), params)
	if !out.Authenticated() {
		s.manager.Fail(w, r, *out.Denial)
		return
	}

	target := sess.ConsumeReturnTo()
	if target == "" {
		target = "/"
	}
	if err := sess.Save(); err != nil {
		slog.Error("保存会话失败", "request_id", middleware.GetRequestID(r.Context()), "err", err)
		http.Error(w, "内部错误", http.StatusInternalServerError)
		return
	}
	msg := p.Message()
	if msg == "" {
		msg = auth.MsgLoggedIn
	}
	middleware.SetFlashNotice(w, r, msg)
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	p, sess, ok := s.requestAuth(w, r)
	if !ok {
		return
	}
	p.Logout()
	if p.Changed() {
		if err := sess.Save(); err != nil {
			slog.Error("保存会话失败", "request_id", middleware.GetRequestID(r.Context()), "err", err)
			http.Error(w, "内部错误", http.StatusInternalServerError)
			return
		}
	}
	middleware.SetFlashNotice(w, r, auth.MsgLoggedOut)
	http.Redirect(w, r, "/", http.StatusFound)
}

// Unauthenticated 是鉴权失败处理器（由 Manager.Fail 以 POST 调用）：记录回跳路径、写入错误提示并重定向到登录页。
//
// 已有回跳路径时不覆盖，保证多次被拒后仍回到最初想访问的页面。
func (s *Server) Unauthenticated(w http.ResponseWriter, r *http.Request) {
	reason := auth.MsgAuthRequired
	d, hasDenial := auth.DenialFromContext(r.Context())
	if hasDenial && strings.TrimSpace(d.Reason) != "" {
		reason = d.Reason
	}

	if sess, ok := auth.SessionFromContext(r.Context()); ok {
		if hasDenial && sess.State.ReturnTo == "" && auth.SafeReturnPath(d.AttemptedPath) {
			sess.State.ReturnTo = d.AttemptedPath
			if err := sess.Save(); err != nil {
				slog.Error("保存会话失败", "request_id", middleware.GetRequestID(r.Context()), "err", err)
				http.Error(w, "内部错误", http.StatusInternalServerError)
				return
			}
		}
	}

	middleware.SetFlashError(w, r, reason)
	http.Redirect(w, r, s.loginPath, http.StatusFound)
}

func (s *Server) Protected(w http.ResponseWriter, r *http.Request) {
	p, _, ok := s.requestAuth(w, r)
	if !ok {
		return
	}
	out := p.Authenticate(r.Context(), auth.Params{})
	if !out.Authenticated() {
		s.manager.Fail(w, r, *out.Denial)
		return
	}
	s.Render(w, r, "page_protected", TemplateData{
		Title: "Protected - " + siteName,
		User:  &UserView{ID: out.Identity.ID, Username: out.Identity.Username},
	})
}

var errNoAuthContext = errors.New("请求上下文缺少鉴权信息")

// requestAuth 取出 SessionAuth 放入的 Proxy 与会话；缺失说明路由装配有误，直接 500。
func (s *Server) requestAuth(w http.ResponseWriter, r *http.Request) (*auth.Proxy, *auth.Session, bool) {
	p, okP := auth.ProxyFromContext(r.Context())
	sess, okS := auth.SessionFromContext(r.Context())
	if !okP || !okS || s.manager == nil {
		slog.Error("鉴权中间件未装配", "path", r.URL.Path, "err", errNoAuthContext)
		http.Error(w, "内部错误", http.StatusInternalServerError)
		return nil, nil, false
	}
	return p, sess, true
}

func currentUser(r *http.Request) *UserView {
	if p, ok := auth.ProxyFromContext(r.Context()); ok {
		if id, ok := p.User(); ok {
			return &UserView{ID: id.ID, Username: id.Username}
		}
		return nil
	}
	if pr, ok := auth.PrincipalFromContext(r.Context()); ok {
		return &UserView{ID: pr.UserID, Username: pr.Username}
	}
	return nil
}
