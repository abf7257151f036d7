package store

// Dialect 表示数据库方言；用户表的 SQL 两者通用，差异只在建表与迁移。
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)
