package auth

import "errors"

// Identity 是已鉴权主体的只读记录；PasswordHash 对鉴权层是不透明的字节串。
type Identity struct {
	ID           int64
	Username     string
	PasswordHash []byte
}

// Token 是写入会话的身份引用，取值即 Identity.ID；<= 0 表示会话中没有 token。
type Token int64

func (t Token) Valid() bool {
	return t > 0
}

// SessionState 是鉴权层关心的全部会话内容：身份 token 与登录后回跳路径。
// 与具体会话传输（cookie/服务端存储）的映射由路由层负责。
type SessionState struct {
	Token    Token
	ReturnTo string
}

var (
	// ErrNotFound 表示按用户名或 id 未找到身份，属于正常分支而非存储故障。
	ErrNotFound = errors.New("identity not found")
	// ErrInvalidCredentials 表示密码与记录不匹配。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrStoreUnavailable 表示凭据存储 I/O 失败；调用方应按“未通过鉴权”处理。
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
