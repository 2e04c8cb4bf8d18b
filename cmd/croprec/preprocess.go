package main

import (
	"fmt"
	"os"

	"croprec/internal/preprocess"

	"github.com/spf13/cobra"
)

func preprocessCmd(opts *rootOptions) *cobra.Command {
	var (
		dataset string
		out     string
	)
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Run the preprocessing pipeline and print a YAML summary",
		Long: `Loads the dataset, projects it onto the configured columns, removes IQR
outliers, encodes the target, splits train/test and fits the scaler on the
training rows. The summary includes the fitted scaler and label table; use
--out to keep them next to the model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closeLog, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			defer closeLog()

			popts := preprocess.Options{
				DatasetPath:  cfg.Data.DatasetPath,
				ConfigDir:    cfg.Data.ConfigDir,
				TargetColumn: cfg.Data.TargetColumn,
				TestRatio:    cfg.Data.TestRatio,
				Seed:         cfg.Data.Seed,
				IQRFactor:    cfg.Data.IQRFactor,
			}
			if dataset != "" {
				popts.DatasetPath = dataset
			}
			res, err := preprocess.Run(cmd.Context(), popts)
			if err != nil {
				return err
			}
			summary, err := res.Summarize(popts)
			if err != nil {
				return err
			}
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := summary.WriteYAML(f); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			return summary.WriteYAML(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&dataset, "dataset", "", "Dataset CSV path (overrides data.dataset_path)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Also write the summary (scaler and labels) to this file")
	return cmd
}
