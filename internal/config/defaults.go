package config

import "strings"

// 默认值常量
const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppLogFormat  = "text"
	defaultAppHTTPAddr   = ":5000"
	defaultConfigDir     = "config"
	defaultDatasetPath   = "data/Crop_Recommendation.csv"
	defaultTargetColumn  = "Crop"
	defaultTestRatio     = 0.2
	defaultSeed          = 42
	defaultIQRFactor     = 1.5
	defaultModelPath     = "model/forest.json"
	DefaultConfigPath    = "configs/config.yaml"
	EnvConfigPath        = "CROPREC_CONFIG"
	envPrefix            = "CROPREC"
	configPathEnvBinding = "config"
)

// Default 返回全部使用默认值的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(nil)
	return cfg
}

// applyDefaults 为所有子配置应用默认值，keys 中已显式设置的键保持不变。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Data.applyDefaults(keys)
	c.Model.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (d *DataConfig) applyDefaults(keys keySet) {
	if d == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("data.config_dir", &d.ConfigDir, defaultConfigDir),
		stringFieldDefault("data.dataset_path", &d.DatasetPath, defaultDatasetPath),
		stringFieldDefault("data.target_column", &d.TargetColumn, defaultTargetColumn),
		fieldDefault{
			key:   "data.test_ratio",
			need:  func() bool { return d.TestRatio == 0 },
			apply: func() { d.TestRatio = defaultTestRatio },
		},
		fieldDefault{
			key:   "data.seed",
			need:  func() bool { return d.Seed == 0 },
			apply: func() { d.Seed = defaultSeed },
		},
		fieldDefault{
			key:   "data.iqr_factor",
			need:  func() bool { return d.IQRFactor <= 0 },
			apply: func() { d.IQRFactor = defaultIQRFactor },
		},
	)
}

func (m *ModelConfig) applyDefaults(keys keySet) {
	if m == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("model.path", &m.Path, defaultModelPath),
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
