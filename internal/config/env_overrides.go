package config

import (
	"os"
	"strconv"
	"strings"
)

func applyEnvOverrides(cfg *Config) {
	applyCoreEnvOverrides(cfg)
	applyServerEnvOverrides(cfg)
	applyDBEnvOverrides(cfg)
	applySecurityEnvOverrides(cfg)
	applyAuthEnvOverrides(cfg)
	applyMetricsEnvOverrides(cfg)
}

func applyCoreEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEHOUSE_ENV"); v != "" {
		cfg.Env = v
	}
}

func applyServerEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEHOUSE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

func applyDBEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEHOUSE_DB_DRIVER"); v != "" {
		cfg.DB.Driver = v
	}
	if v := os.Getenv("GATEHOUSE_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("GATEHOUSE_SQLITE_PATH"); v != "" {
		cfg.DB.SQLitePath = v
	}
}

func applySecurityEnvOverrides(cfg *Config) {
	// SESSION_SECRET 为兼容常见部署习惯保留的无前缀写法；带前缀的变量优先。
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Security.SessionSecret = v
	}
	if v := os.Getenv("GATEHOUSE_SESSION_SECRET"); v != "" {
		cfg.Security.SessionSecret = v
	}
	if v := os.Getenv("GATEHOUSE_DISABLE_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Security.DisableSecureCookies = b
		}
	}
	if v := os.Getenv("GATEHOUSE_SESSION_MAX_AGE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Security.SessionMaxAgeSeconds = n
		}
	}
	if v := os.Getenv("GATEHOUSE_TRUST_PROXY_HEADERS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Security.TrustProxyHeaders = b
		}
	}
	if v := os.Getenv("GATEHOUSE_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.Security.TrustedProxyCIDRs = splitCSV(v)
	}
}

func applyAuthEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEHOUSE_AUTH_FAILURE_PATH"); v != "" {
		cfg.Auth.FailurePath = v
	}
	if v := os.Getenv("GATEHOUSE_AUTH_LOGIN_PATH"); v != "" {
		cfg.Auth.LoginPath = v
	}
	if v := os.Getenv("GATEHOUSE_AUTH_VAGUE_FAILURES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Auth.VagueFailures = b
		}
	}
	if v, ok := os.LookupEnv("GATEHOUSE_AUTH_SEED_USERNAME"); ok {
		cfg.Auth.SeedUsername = v
	}
	if v := os.Getenv("GATEHOUSE_AUTH_SEED_PASSWORD"); v != "" {
		cfg.Auth.SeedPassword = v
	}
}

func applyMetricsEnvOverrides(cfg *Config) {
	if v := os.Getenv("GATEHOUSE_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if v := os.Getenv("GATEHOUSE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
