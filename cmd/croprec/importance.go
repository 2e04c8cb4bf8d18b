package main

import (
	"errors"
	"fmt"
	"os"

	"croprec/internal/analysis/visual"
	"croprec/internal/config/featureset"
	"croprec/internal/model"

	"github.com/spf13/cobra"
)

func importanceCmd(opts *rootOptions) *cobra.Command {
	var (
		out string
		png bool
	)
	cmd := &cobra.Command{
		Use:   "importance",
		Short: "Render the model's feature-importance chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, closeLog, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			defer closeLog()

			fset, err := featureset.Load(cfg.Data.ConfigDir)
			if err != nil {
				return err
			}
			m, err := model.Load(cfg.Model.Path)
			if err != nil {
				return err
			}
			values, ok := model.Importances(m)
			if !ok {
				return errors.New("model does not expose feature importances")
			}
			ranked, err := visual.RankImportances(fset.TrainingColumns, values)
			if err != nil {
				return err
			}

			var data []byte
			if png {
				img, err := visual.RenderImportancePNG(cmd.Context(), ranked)
				if err != nil {
					return err
				}
				data = img.Bytes
				if out == "" {
					out = img.Filename
				}
			} else {
				data, err = visual.RenderImportanceHTML(ranked)
				if err != nil {
					return err
				}
				if out == "" {
					out = "feature_importance.html"
				}
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			for _, r := range ranked {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %.4f\n", r.Feature, r.Value)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "chart written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default feature_importance.html or .png)")
	cmd.Flags().BoolVar(&png, "png", false, "Render a PNG through a local headless Chrome")
	return cmd
}
