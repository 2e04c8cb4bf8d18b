// Package main 是 croprec 的命令行入口。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "croprec"
)

// BuildTime 在发布构建时通过 -ldflags 注入。
var BuildTime = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Crop recommendation service",
		Long: `croprec serves crop recommendations from a pre-trained classifier.

Without a subcommand it starts the HTTP service (same as "croprec serve").`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML); defaults to $CROPREC_CONFIG or configs/config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override app.log_level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(opts),
		preprocessCmd(opts),
		importanceCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}
