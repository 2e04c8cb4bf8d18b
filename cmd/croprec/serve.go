package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"croprec/internal/app"
	"croprec/internal/logger"

	"github.com/spf13/cobra"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service (JSON endpoint and form UI)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, path, closeLog, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer closeLog()
	logger.Infof("✓ config loaded (env=%s, path=%s)", cfg.App.Env, path)

	watch := []app.AppBuilderOption{}
	if _, statErr := os.Stat(path); statErr == nil {
		watch = append(watch, app.WithConfigWatch(path))
	}
	a, err := app.NewApp(cfg, watch...)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	logger.Infof("shutdown complete")
	return nil
}
