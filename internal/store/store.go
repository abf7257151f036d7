package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB) *Store {
	return &Store{
		db:      db,
		dialect: DialectSQLite,
	}
}

func (s *Store) SetDialect(d Dialect) {
	if strings.TrimSpace(string(d)) == "" {
		return
	}
	s.dialect = d
}

func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping 用于 healthz；db 未初始化时返回错误而不是 panic。
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("db 未初始化")
	}
	return s.db.PingContext(ctx)
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("统计用户失败: %w", err)
	}
	return n, nil
}

func (s *Store) CreateUser(ctx context.Context, username string, passwordHash []byte) (int64, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return 0, err
	}
	if len(passwordHash) == 0 {
		return 0, fmt.Errorf("密码哈希不能为空")
	}
	if _, err = s.GetUserByUsername(ctx, username); err == nil {
		return 0, ErrUsernameTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO users(username, password_hash, created_at, updated_at)
	VALUES(?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("创建用户失败: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取用户 id 失败: %w", err)
	}
	return id, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
	SELECT id, username, password_hash, created_at, updated_at
	FROM users
	WHERE id=?
	`, userID).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sql.ErrNoRows
		}
		return User{}, fmt.Errorf("查询用户失败: %w", err)
	}
	return u, nil
}

// GetUserByUsername 按账号名精确匹配（区分大小写）。
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `
	SELECT id, username, password_hash, created_at, updated_at
	FROM users
	WHERE username=?
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sql.ErrNoRows
		}
		return User{}, fmt.Errorf("查询用户失败: %w", err)
	}
	return u, nil
}

// DeleteUser 删除用户；不存在时返回 sql.ErrNoRows。
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return fmt.Errorf("删除用户失败: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("删除用户失败: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
