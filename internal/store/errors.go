package store

import "errors"

var (
	// ErrUsernameTaken 表示账号名已存在（唯一约束冲突）。
	ErrUsernameTaken = errors.New("账号名已被占用")
)
