package config

import (
	"fmt"
	"strings"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Data.validate(); err != nil {
		return err
	}
	if err := c.Model.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(a.LogLevel)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(a.LogFormat)) {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", a.LogFormat)
	}
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	return nil
}

func (d *DataConfig) validate() error {
	if strings.TrimSpace(d.ConfigDir) == "" {
		return fmt.Errorf("data.config_dir cannot be empty")
	}
	if d.TestRatio <= 0 || d.TestRatio >= 1 {
		return fmt.Errorf("data.test_ratio must be in (0, 1), got %v", d.TestRatio)
	}
	if d.IQRFactor <= 0 {
		return fmt.Errorf("data.iqr_factor must be > 0")
	}
	if strings.TrimSpace(d.TargetColumn) == "" {
		return fmt.Errorf("data.target_column cannot be empty")
	}
	return nil
}

func (m *ModelConfig) validate() error {
	if strings.TrimSpace(m.Path) == "" {
		return fmt.Errorf("model.path cannot be empty")
	}
	return nil
}
