package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gatehouse/internal/store"
)

// CredentialStore 按用户名/id 查找身份并校验明文密码。
//
// 查找未命中返回 ErrNotFound；底层 I/O 失败返回包装了 ErrStoreUnavailable 的错误，
// 调用方不应把原始存储错误透传给终端用户。
type CredentialStore interface {
	FindByUsername(ctx context.Context, username string) (Identity, error)
	FindByID(ctx context.Context, id int64) (Identity, error)
	Verify(id Identity, password string) bool
}

// UserSource 是 StoreCredentials 依赖的最小用户查询能力，*store.Store 即满足。
type UserSource interface {
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
	GetUserByID(ctx context.Context, userID int64) (store.User, error)
}

// StoreCredentials 把 SQL 用户表适配为 CredentialStore。
type StoreCredentials struct {
	users UserSource
}

func NewStoreCredentials(users UserSource) *StoreCredentials {
	return &StoreCredentials{users: users}
}

func (s *StoreCredentials) FindByUsername(ctx context.Context, username string) (Identity, error) {
	if s == nil || s.users == nil {
		return Identity{}, ErrStoreUnavailable
	}
	u, err := s.users.GetUserByUsername(ctx, username)
	return identityFromUser(u, err)
}

func (s *StoreCredentials) FindByID(ctx context.Context, id int64) (Identity, error) {
	if s == nil || s.users == nil {
		return Identity{}, ErrStoreUnavailable
	}
	if id <= 0 {
		return Identity{}, ErrNotFound
	}
	u, err := s.users.GetUserByID(ctx, id)
	return identityFromUser(u, err)
}

func (s *StoreCredentials) Verify(id Identity, password string) bool {
	return CheckPassword(id.PasswordHash, password)
}

func identityFromUser(u store.User, err error) (Identity, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		slog.Error("凭据存储查询失败", "err", err)
		return Identity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if u.ID <= 0 {
		return Identity{}, ErrNotFound
	}
	return Identity{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
	}, nil
}

// MemoryCredentials 是进程内的 CredentialStore，适合测试与演示。
type MemoryCredentials struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Identity
}

func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{byID: make(map[int64]Identity)}
}

// Add 以 bcrypt 哈希保存密码并分配新 id；用户名重复时报错。
func (m *MemoryCredentials) Add(username string, password string) (Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Identity{}, fmt.Errorf("账号名不能为空")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Identity{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.byID {
		if id.Username == username {
			return Identity{}, fmt.Errorf("账号名已被占用: %s", username)
		}
	}
	m.nextID++
	id := Identity{ID: m.nextID, Username: username, PasswordHash: hash}
	m.byID[id.ID] = id
	return id, nil
}

func (m *MemoryCredentials) Delete(id int64) {
	m.mu.Lock()
	delete(m.byID, id)
	m.mu.Unlock()
}

func (m *MemoryCredentials) FindByUsername(_ context.Context, username string) (Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.byID {
		if id.Username == username {
			return id, nil
		}
	}
	return Identity{}, ErrNotFound
}

func (m *MemoryCredentials) FindByID(_ context.Context, id int64) (Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.byID[id]
	if !ok {
		return Identity{}, ErrNotFound
	}
	return v, nil
}

func (m *MemoryCredentials) Verify(id Identity, password string) bool {
	return CheckPassword(id.PasswordHash, password)
}
