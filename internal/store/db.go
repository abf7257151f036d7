// Package store 负责数据库连接与 schema 初始化，并提供用户记录的读写。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

func OpenDB(env string, driver string, mysqlDSN string, sqlitePath string) (*sql.DB, Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		db, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, "", err
		}
		return db, DialectSQLite, nil
	case "mysql":
		db, err := OpenMySQL(env, mysqlDSN)
		if err != nil {
			return nil, "", err
		}
		return db, DialectMySQL, nil
	default:
		return nil, "", fmt.Errorf("不支持的 db.driver：%s", driver)
	}
}

// EnsureSchema 按方言初始化表结构：MySQL 执行内置迁移，SQLite 执行内置 schema。
func EnsureSchema(db *sql.DB, d Dialect) error {
	switch d {
	case DialectMySQL:
		return ApplyMigrations(db)
	case DialectSQLite:
		return EnsureSQLiteSchema(db)
	default:
		return fmt.Errorf("未知数据库方言: %s", d)
	}
}

func OpenMySQL(env string, dsn string) (*sql.DB, error) {
	dsn, err := normalizeMySQLDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)

	wait := 2 * time.Second
	if env == "dev" {
		// 开发环境 MySQL 容器常与服务同时启动，多等一会儿。
		wait = 30 * time.Second
	}
	if err := pingWithRetry(db, wait); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// normalizeMySQLDSN 强制 parseTime 与 UTC，保证 created_at/updated_at 可直接扫描为 time.Time。
func normalizeMySQLDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", errors.New("mysql dsn 不能为空")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql.ParseDSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["time_zone"] = "'+00:00'"
	return cfg.FormatDSN(), nil
}

func pingWithRetry(db *sql.DB, maxWait time.Duration) error {
	const maxBackoff = 2 * time.Second

	deadline := time.Now().Add(maxWait)
	backoff := 200 * time.Millisecond
	var lastErr error
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := db.PingContext(ctx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		// 账号/权限错误重试也没用。
		if isAccessDeniedError(err) || time.Now().Add(backoff).After(deadline) {
			break
		}
		slog.Info("等待 MySQL 就绪", "err", err, "backoff", backoff.String())
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
	return fmt.Errorf("db.Ping: %w", lastErr)
}

func isAccessDeniedError(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	// 1045: ER_ACCESS_DENIED_ERROR
	// 1044: ER_DBACCESS_DENIED_ERROR
	return myErr.Number == 1045 || myErr.Number == 1044
}

func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite_path 不能为空")
	}

	// 允许通过 query 参数传递 driver 选项（例如 ?_busy_timeout=30000），这里需要先确保文件目录存在。
	filePath := path
	if i := strings.IndexByte(filePath, '?'); i >= 0 {
		filePath = filePath[:i]
	}
	if filePath != "" && filePath != ":memory:" && !strings.HasPrefix(filePath, "file::memory:") {
		dir := filepath.Dir(filePath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("创建 sqlite 数据目录失败: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open(sqlite): %w", err)
	}
	// SQLite 多连接写入容易触发锁竞争；单机默认收敛为单连接更稳。
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping(sqlite): %w", err)
	}

	_, _ = db.Exec(`PRAGMA journal_mode=WAL`)
	return db, nil
}
