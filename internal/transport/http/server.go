// Package httptransport 提供推荐服务的 HTTP 接口与表单页面。
package httptransport

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"croprec/internal/logger"
	"croprec/internal/metrics"
	"croprec/internal/predict"
	webassets "croprec/internal/transport/web"

	"github.com/gin-gonic/gin"
)

// Predictor 是 HTTP 层依赖的推理能力，由 *predict.Service 实现。
type Predictor interface {
	Predict(ctx context.Context, features []float64) (predict.Prediction, error)
	Features() []string
	Importances() ([]float64, bool)
	Decodes() bool
}

// Server 承载 JSON 接口与表单页面。
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig 描述 HTTP 服务依赖。
type ServerConfig struct {
	Addr      string
	Predictor Predictor
	// Metrics 为 nil 时不注册 /metrics。
	Metrics *metrics.Metrics
	// TemplateDir 非空时优先从磁盘加载模板，便于调整页面。
	TemplateDir string
}

// NewServer 构建 HTTP server。
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Predictor == nil {
		return nil, errors.New("http server requires a predictor")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(cfg.Metrics))

	if err := loadTemplates(router, cfg.TemplateDir); err != nil {
		return nil, err
	}
	if err := serveStatic(router); err != nil {
		return nil, err
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "features": len(cfg.Predictor.Features())})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	NewRouter(cfg.Predictor).Register(router)
	NewFormHandler(cfg.Predictor).Register(router)

	return &Server{addr: cfg.Addr, router: router}, nil
}

func loadTemplates(router *gin.Engine, dir string) error {
	if dir != "" {
		if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
			files, _ := filepath.Glob(filepath.Join(dir, "*.html"))
			if len(files) > 0 {
				router.SetFuncMap(formTemplateFuncs)
				router.LoadHTMLFiles(files...)
				return nil
			}
		}
		logger.Warnf("template dir %s has no templates, using embedded ones", dir)
	}
	tmpl, err := template.New("pages").Funcs(formTemplateFuncs).ParseFS(webassets.Templates, "templates/*.html")
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

func serveStatic(router *gin.Engine) error {
	sub, err := fs.Sub(webassets.Static, "static")
	if err != nil {
		return err
	}
	fileServer := http.FileServer(http.FS(sub))
	router.GET("/static/*filepath", func(c *gin.Context) {
		c.Request.URL.Path = c.Param("filepath")
		fileServer.ServeHTTP(c.Writer, c.Request)
	})
	return nil
}

// requestLogger 记录每次请求，并按路由统计状态码。
func requestLogger(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		m.ObserveRequest(method, c.FullPath(), status)
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}

// Addr 返回监听地址。
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler 返回底层 http.Handler，主要用于测试。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 启动 HTTP 服务，直到 ctx 取消或出现错误。
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("http server listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}
