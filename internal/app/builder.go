package app

import (
	"context"
	"fmt"

	"croprec/internal/config"
	"croprec/internal/config/featureset"
	"croprec/internal/logger"
	"croprec/internal/metrics"
	"croprec/internal/model"
	"croprec/internal/pkg/apperr"
	"croprec/internal/predict"
	httptransport "croprec/internal/transport/http"
)

type AppBuilder struct {
	cfg *config.Config

	featureSetFn func(dir string) (*featureset.FeatureSet, error)
	modelFn      func(path string) (model.Model, error)
	httpFn       func(config.AppConfig, *Runtime) (*httptransport.Server, error)

	configPath string
}

type AppBuilderOption func(*AppBuilder)

// WithModel 使用给定模型替代从 model.path 加载。
func WithModel(m model.Model) AppBuilderOption {
	return func(b *AppBuilder) {
		b.modelFn = func(string) (model.Model, error) { return m, nil }
	}
}

// WithConfigWatch 监听配置文件，热更新日志级别。
func WithConfigWatch(path string) AppBuilderOption {
	return func(b *AppBuilder) { b.configPath = path }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:          cfg,
		featureSetFn: featureset.Load,
		modelFn:      model.Load,
		httpFn:       buildHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	rt, err := b.buildRuntime(cfg)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Infof("✓ loaded %d training columns: %v", rt.FeatureSet.NumFeatures(), rt.FeatureSet.TrainingColumns)

	server, err := b.httpFn(cfg.App, rt)
	if err != nil {
		return nil, err
	}

	if b.configPath != "" {
		if err := config.WatchLogLevel(b.configPath, logger.SetLevel); err != nil {
			logger.Warnf("config watch disabled (%s): %v", b.configPath, err)
		}
	}

	return &App{
		cfg:     cfg,
		runtime: rt,
		http:    server,
		Summary: newStartupSummary(cfg, rt),
	}, nil
}

func (b *AppBuilder) buildRuntime(cfg *config.Config) (*Runtime, error) {
	fset, err := b.featureSetFn(cfg.Data.ConfigDir)
	if err != nil {
		return nil, err
	}
	m, err := b.modelFn(cfg.Model.Path)
	if err != nil {
		return nil, err
	}
	if shaper, ok := m.(model.Shaper); ok && shaper.NumFeatures() != fset.NumFeatures() {
		return nil, apperr.Config("load model",
			fmt.Errorf("model expects %d features but %d training columns are configured", shaper.NumFeatures(), fset.NumFeatures()))
	}
	reg := metrics.New()
	svc, err := predict.NewService(fset, m, predict.WithObserver(reg))
	if err != nil {
		return nil, err
	}
	reg.SetModelInfo(fset.NumFeatures(), svc.Decodes())
	return &Runtime{FeatureSet: fset, Model: m, Service: svc, Metrics: reg}, nil
}

func buildHTTPServer(cfg config.AppConfig, rt *Runtime) (*httptransport.Server, error) {
	return httptransport.NewServer(httptransport.ServerConfig{
		Addr:      cfg.HTTPAddr,
		Predictor: rt.Service,
		Metrics:   rt.Metrics,
	})
}
