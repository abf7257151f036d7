// Package config 负责读取并合并服务配置（环境变量为主，可选读取 YAML 配置），避免在业务代码里散落解析逻辑。
package config

import (
	"errors"
	"fmt"
	"strings"

	"gatehouse/internal/security"
)

type Config struct {
	Env      string         `yaml:"env"`
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Security SecurityConfig `yaml:"security"`
	Auth     AuthConfig     `yaml:"auth"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DBConfig struct {
	// Driver 支持 mysql/sqlite；为空时会根据 dsn 自动推断。
	// - 当 dsn 非空且 driver 为空：推断为 mysql
	// - 其他情况默认 sqlite
	Driver string `yaml:"driver"`
	// DSN 仅用于 MySQL（示例：user:pass@tcp(127.0.0.1:3306)/gatehouse?charset=utf8mb4）
	DSN string `yaml:"dsn"`
	// SQLitePath 是 SQLite 数据库文件路径（可包含 DSN query，如 ?_busy_timeout=30000）。
	SQLitePath string `yaml:"sqlite_path"`
}

type SecurityConfig struct {
	// SessionSecret 用于签名会话 cookie；为空时进程启动随机生成（重启后已有会话失效）。
	SessionSecret        string `yaml:"session_secret"`
	DisableSecureCookies bool   `yaml:"disable_secure_cookies"`
	SessionMaxAgeSeconds int    `yaml:"session_max_age_seconds"`

	// 仅当直连方命中 TrustedProxyCIDRs 时，访问日志才采用 X-Forwarded-For 作为来源 IP。
	TrustProxyHeaders bool     `yaml:"trust_proxy_headers"`
	TrustedProxyCIDRs []string `yaml:"trusted_proxy_cidrs"`
}

type AuthConfig struct {
	// FailurePath 是认证失败时内部改写成 POST 的目标路径。
	FailurePath string `yaml:"failure_path"`
	LoginPath   string `yaml:"login_path"`
	// VagueFailures 开启后“用户不存在”与“密码错误”返回同一条提示。
	VagueFailures bool `yaml:"vague_failures"`

	// 用户表为空时写入的初始账号；SeedUsername 为空表示不写入。
	SeedUsername string `yaml:"seed_username"`
	SeedPassword string `yaml:"seed_password"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoadFromEnv 仅从环境变量加载配置（不读取任何配置文件）。
func LoadFromEnv() (Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(&cfg)
	return normalizeAndValidate(cfg)
}

func normalizeAndValidate(cfg Config) (Config, error) {
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env == "" {
		cfg.Env = "dev"
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, errors.New("server.addr 不能为空")
	}

	cfg.DB.Driver = strings.ToLower(strings.TrimSpace(cfg.DB.Driver))
	cfg.DB.DSN = strings.TrimSpace(cfg.DB.DSN)
	cfg.DB.SQLitePath = strings.TrimSpace(cfg.DB.SQLitePath)
	if cfg.DB.Driver == "" {
		if cfg.DB.DSN != "" {
			cfg.DB.Driver = "mysql"
		} else {
			cfg.DB.Driver = "sqlite"
		}
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if cfg.DB.SQLitePath == "" {
			cfg.DB.SQLitePath = "./data/gatehouse.db?_busy_timeout=30000"
		}
	case "mysql":
		if cfg.DB.DSN == "" {
			return Config{}, errors.New("db.dsn 不能为空（db.driver=mysql）")
		}
	default:
		return Config{}, fmt.Errorf("db.driver 不支持：%s（仅支持 mysql/sqlite）", cfg.DB.Driver)
	}

	if cfg.Security.SessionMaxAgeSeconds < 0 {
		return Config{}, errors.New("security.session_max_age_seconds 不能为负数")
	}
	if cfg.Security.SessionMaxAgeSeconds == 0 {
		cfg.Security.SessionMaxAgeSeconds = 7 * 24 * 3600
	}

	if cfg.Security.TrustProxyHeaders {
		if _, err := security.ParseTrustedProxies(cfg.Security.TrustedProxyCIDRs); err != nil {
			return Config{}, err
		}
	}

	var err error
	cfg.Auth.FailurePath, err = normalizeLocalPath(cfg.Auth.FailurePath, "/auth/unauthenticated", "auth.failure_path")
	if err != nil {
		return Config{}, err
	}
	cfg.Auth.LoginPath, err = normalizeLocalPath(cfg.Auth.LoginPath, "/auth/login", "auth.login_path")
	if err != nil {
		return Config{}, err
	}
	if cfg.Auth.FailurePath == cfg.Auth.LoginPath {
		return Config{}, errors.New("auth.failure_path 不能与 auth.login_path 相同")
	}
	cfg.Auth.SeedUsername = strings.TrimSpace(cfg.Auth.SeedUsername)
	if cfg.Auth.SeedUsername != "" && cfg.Auth.SeedPassword == "" {
		return Config{}, errors.New("auth.seed_password 不能为空（已配置 auth.seed_username）")
	}

	cfg.Metrics.Path, err = normalizeLocalPath(cfg.Metrics.Path, "/metrics", "metrics.path")
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func normalizeLocalPath(raw string, fallback string, label string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return fallback, nil
	}
	if !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") || strings.ContainsAny(v, "?#\\") {
		return "", fmt.Errorf("%s 必须是站内绝对路径：%q", label, v)
	}
	if len(v) > 1 {
		v = strings.TrimRight(v, "/")
	}
	return v, nil
}

func defaultConfig() Config {
	return Config{
		Env: "dev",
		Server: ServerConfig{
			Addr: ":8080",
		},
		DB: DBConfig{
			SQLitePath: "./data/gatehouse.db?_busy_timeout=30000",
		},
		Security: SecurityConfig{
			SessionMaxAgeSeconds: 7 * 24 * 3600,
		},
		Auth: AuthConfig{
			FailurePath:  "/auth/unauthenticated",
			LoginPath:    "/auth/login",
			SeedUsername: "admin",
			SeedPassword: "admin",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
