package auth

import "context"

// Serializer 在身份与会话 token 之间转换；token 只保存 id，完整记录每次从存储重新加载。
type Serializer struct {
	Credentials CredentialStore
}

func NewSerializer(creds CredentialStore) Serializer {
	return Serializer{Credentials: creds}
}

func (s Serializer) ToToken(id Identity) Token {
	return Token(id.ID)
}

// FromToken 加载 token 指向的身份。身份已被删除时返回 ErrNotFound 而不是其他错误。
func (s Serializer) FromToken(ctx context.Context, tok Token) (Identity, error) {
	if !tok.Valid() {
		return Identity{}, ErrNotFound
	}
	if s.Credentials == nil {
		return Identity{}, ErrStoreUnavailable
	}
	return s.Credentials.FindByID(ctx, int64(tok))
}
