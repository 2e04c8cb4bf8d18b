package config

import "strings"

// Config 是 croprec 的主配置载体。
type Config struct {
	App   AppConfig   `toml:"app"`
	Data  DataConfig  `toml:"data"`
	Model ModelConfig `toml:"model"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	// LogFormat 为 text 或 json。
	LogFormat string `toml:"log_format"`
	HTTPAddr  string `toml:"http_addr"`
	// LogPath 为空时只输出到 stdout。
	LogPath string `toml:"log_path"`
}

// DataConfig 描述静态 JSON 配置目录与训练数据集。
type DataConfig struct {
	ConfigDir    string  `toml:"config_dir"`
	DatasetPath  string  `toml:"dataset_path"`
	TargetColumn string  `toml:"target_column"`
	TestRatio    float64 `toml:"test_ratio"`
	Seed         int64   `toml:"seed"`
	IQRFactor    float64 `toml:"iqr_factor"`
}

type ModelConfig struct {
	Path string `toml:"path"`
}

// IsProduction 判断是否运行在生产环境。
func (a AppConfig) IsProduction() bool {
	switch strings.ToLower(strings.TrimSpace(a.Env)) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
