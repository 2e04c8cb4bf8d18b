package app

import (
	"context"
	"fmt"

	"croprec/internal/config"
	"croprec/internal/logger"
	httptransport "croprec/internal/transport/http"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→加载模型→启动 HTTP 服务。
type App struct {
	cfg     *config.Config
	runtime *Runtime
	http    *httptransport.Server
	Summary *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）。配置或模型无效时返回 KindConfig 错误。
func NewApp(cfg *config.Config, opts ...AppBuilderOption) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg, opts)
}

// Run 启动 HTTP 服务，直到 ctx 取消。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.Summary != nil {
		a.Summary.Print()
	}
	if a.http == nil {
		return fmt.Errorf("http server not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Runtime 返回启动时构建的只读运行期依赖。
func (a *App) Runtime() *Runtime {
	if a == nil {
		return nil
	}
	return a.runtime
}
