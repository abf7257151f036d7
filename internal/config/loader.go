package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load 按 默认值 → YAML 文件 → 环境变量 → 校验 的顺序合并配置。
//
// path 为空时读取 GATEHOUSE_CONFIG；两者都为空则等价于 LoadFromEnv。
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	p := strings.TrimSpace(path)
	if p == "" {
		p = strings.TrimSpace(os.Getenv("GATEHOUSE_CONFIG"))
	}
	if p != "" {
		if err := loadYAMLFile(p, &cfg); err != nil {
			return Config{}, fmt.Errorf("加载配置文件失败（%s）: %w", p, err)
		}
	}

	applyEnvOverrides(&cfg)
	return normalizeAndValidate(cfg)
}

// 文件里未出现的字段保留默认值。
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		// 空文件
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}
