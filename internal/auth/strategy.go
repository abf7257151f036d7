package auth

import (
	"context"
	"errors"
	"strings"
)

// 用户可见的提示文案。
const (
	MsgUnknownUsername = "The username you entered does not exist."
	MsgBadCredentials  = "The username and password combination is incorrect."
	MsgUnavailable     = "Authentication is temporarily unavailable, please try again."
	MsgAuthRequired    = "You must log in"
	MsgLoggedIn        = "Successfully logged in"
	MsgLoggedOut       = "Successfully logged out"
)

// Params 是请求携带的登录凭据，由路由层从表单或 JSON 中提取。
type Params struct {
	Username string
	Password string
}

// Strategy 是一次鉴权尝试的算法。Valid 为 false 时 Manager 不会调用 Authenticate。
type Strategy interface {
	Name() string
	Valid(p Params) bool
	Authenticate(ctx context.Context, p Params) Result
}

// PasswordStrategy 以用户名 + 密码对照 CredentialStore 鉴权。
type PasswordStrategy struct {
	Credentials CredentialStore

	// VagueFailures 为 true 时“用户不存在”与“密码错误”返回同一条提示，避免用户名枚举。
	VagueFailures bool
}

func NewPasswordStrategy(creds CredentialStore, vague bool) *PasswordStrategy {
	return &PasswordStrategy{Credentials: creds, VagueFailures: vague}
}

func (s *PasswordStrategy) Name() string {
	return "password"
}

func (s *PasswordStrategy) Valid(p Params) bool {
	return strings.TrimSpace(p.Username) != "" && p.Password != ""
}

func (s *PasswordStrategy) Authenticate(ctx context.Context, p Params) Result {
	if s.Credentials == nil {
		return Failure(MsgUnavailable)
	}
	id, err := s.Credentials.FindByUsername(ctx, strings.TrimSpace(p.Username))
	switch {
	case errors.Is(err, ErrNotFound):
		// 与“密码错误”分支耗时一致，否则仅靠响应时间即可枚举用户名。
		CheckPassword(nil, p.Password)
		if s.VagueFailures {
			return Failure(MsgBadCredentials)
		}
		return Failure(MsgUnknownUsername)
	case err != nil:
		return Failure(MsgUnavailable)
	}
	if !s.Credentials.Verify(id, p.Password) {
		return Failure(MsgBadCredentials)
	}
	return Success(id)
}
