package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ApplyMigrations 按文件名顺序执行 MySQL 内置迁移，已执行的版本记录在 schema_migrations 中。
func ApplyMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("db 为空")
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version VARCHAR(255) PRIMARY KEY,
  applied_at DATETIME NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`); err != nil {
		return fmt.Errorf("创建 schema_migrations: %w", err)
	}

	files, err := migrationFiles(migrationsFS)
	if err != nil {
		return err
	}
	for _, file := range files {
		applied, err := isMigrationApplied(db, file)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		b, err := migrationsFS.ReadFile("migrations/" + file)
		if err != nil {
			return fmt.Errorf("读取迁移 %s: %w", file, err)
		}
		if err := applyMigration(db, file, string(b)); err != nil {
			return err
		}
		slog.Info("已执行数据库迁移", "version", file)
	}
	return nil
}

func migrationFiles(fsys fs.ReadDirFS) ([]string, error) {
	entries, err := fsys.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("读取 migrations 目录: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	return files, nil
}

func isMigrationApplied(db *sql.DB, version string) (bool, error) {
	var v string
	err := db.QueryRow(`SELECT version FROM schema_migrations WHERE version=?`, version).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("查询迁移状态: %w", err)
	}
	return true, nil
}

func applyMigration(db *sql.DB, version, sqlText string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("开始迁移事务: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := splitSQLStatements(sqlText)
	for i, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("执行迁移 %s (stmt %d/%d): %w", version, i+1, len(stmts), err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version, applied_at) VALUES(?, CURRENT_TIMESTAMP)`, version); err != nil {
		return fmt.Errorf("记录迁移 %s: %w", version, err)
	}
	return tx.Commit()
}

// splitSQLStatements 按分号切分语句；内置 SQL 不含字符串内分号。
func splitSQLStatements(sqlText string) []string {
	parts := strings.Split(sqlText, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if stmt := strings.TrimSpace(p); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
