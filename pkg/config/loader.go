package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load 加载配置文件
// 文件不存在时返回默认配置；支持 ${ENV} 形式的环境变量替换
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析YAML内容，未出现的字段使用默认值
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
