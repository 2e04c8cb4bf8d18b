package app

import (
	"fmt"
	"strconv"
	"strings"

	"croprec/internal/config"
	"croprec/internal/logger"
)

// StartupSummary 在服务启动前打印一次关键配置。
type StartupSummary struct {
	Env          string
	Addr         string
	ConfigDir    string
	ModelPath    string
	Features     []string
	LabelMapping bool
	Classes      []int
	Importances  bool
}

func newStartupSummary(cfg *config.Config, rt *Runtime) *StartupSummary {
	s := &StartupSummary{
		Env:       cfg.App.Env,
		Addr:      cfg.App.HTTPAddr,
		ConfigDir: cfg.Data.ConfigDir,
		ModelPath: cfg.Model.Path,
	}
	if rt != nil && rt.FeatureSet != nil {
		s.Features = rt.FeatureSet.TrainingColumns
		s.LabelMapping = rt.FeatureSet.HasLabelMapping()
		s.Classes = rt.FeatureSet.Classes()
	}
	if rt != nil && rt.Service != nil {
		_, s.Importances = rt.Service.Importances()
	}
	return s
}

// Print 逐行写入日志，log_path 配置时也会落盘。
func (s *StartupSummary) Print() {
	logger.InfoBlock(s.String())
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	title := "STARTUP SUMMARY"
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "%*s\n", 30+len(title)/2, title)
	b.WriteString(strings.Repeat("=", 60) + "\n")

	b.WriteString("[SERVER]\n")
	fmt.Fprintf(&b, "  env:  %s\n", s.Env)
	fmt.Fprintf(&b, "  addr: %s\n", s.Addr)
	b.WriteString("[MODEL]\n")
	fmt.Fprintf(&b, "  path:        %s\n", s.ModelPath)
	fmt.Fprintf(&b, "  importances: %t\n", s.Importances)
	b.WriteString("[FEATURES]\n")
	fmt.Fprintf(&b, "  config dir: %s\n", s.ConfigDir)
	fmt.Fprintf(&b, "  columns:    %s\n", formatList(s.Features))
	if s.LabelMapping {
		classes := make([]string, len(s.Classes))
		for i, c := range s.Classes {
			classes[i] = strconv.Itoa(c)
		}
		fmt.Fprintf(&b, "  classes:    %s\n", formatList(classes))
	} else {
		b.WriteString("  classes:    (no label mapping, raw class index)\n")
	}
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
