package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"croprec/internal/config"
	"croprec/internal/logger"
)

// loadConfig 读取配置并完成日志初始化；返回的 closer 负责关闭日志文件。
func loadConfig(opts *rootOptions) (*config.Config, string, func(), error) {
	path := config.ResolvePath(opts.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", nil, err
	}
	if lvl := strings.TrimSpace(opts.logLevel); lvl != "" {
		cfg.App.LogLevel = lvl
	}
	logFile, err := setupLogOutput(cfg.App.LogPath, cfg.App.LogFormat)
	if err != nil {
		return nil, "", nil, err
	}
	logger.SetLevel(cfg.App.LogLevel)
	closer := func() {
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return cfg, path, closer, nil
}

func setupLogOutput(path, format string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		logger.SetFormat(format, os.Stdout)
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetFormat(format, mw)
	return file, nil
}
