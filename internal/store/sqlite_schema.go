package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
)

//go:embed schema_sqlite.sql
var sqliteSchemaFS embed.FS

// EnsureSQLiteSchema 执行内置 schema；语句均为 IF NOT EXISTS，可重复调用。
func EnsureSQLiteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("db 为空")
	}
	b, err := sqliteSchemaFS.ReadFile("schema_sqlite.sql")
	if err != nil {
		return fmt.Errorf("读取 sqlite schema: %w", err)
	}
	for i, stmt := range splitSQLStatements(string(b)) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("初始化 sqlite schema（stmt %d）: %w", i+1, err)
		}
	}
	return nil
}
