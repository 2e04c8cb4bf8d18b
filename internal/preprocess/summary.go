package preprocess

import (
	"fmt"
	"io"

	"croprec/internal/dataset"
	"croprec/internal/stats"

	"gopkg.in/yaml.v3"
)

// Summary 是预处理结果的可序列化摘要，同时保存预测时需要的 scaler 与标签表。
type Summary struct {
	Dataset         string                `yaml:"dataset"`
	TargetColumn    string                `yaml:"target_column"`
	RowsLoaded      int                   `yaml:"rows_loaded"`
	RowsKept        int                   `yaml:"rows_kept"`
	TrainRows       int                   `yaml:"train_rows"`
	TestRows        int                   `yaml:"test_rows"`
	TrainingColumns []string              `yaml:"training_columns"`
	Filters         []dataset.FilterStep  `yaml:"filters"`
	Labels          map[int]string        `yaml:"labels"`
	Scaler          *stats.StandardScaler `yaml:"scaler"`
}

// Summarize 生成结果摘要。
func (r *Result) Summarize(opts Options) (Summary, error) {
	opts.applyDefaults()
	s := Summary{
		Dataset:      opts.DatasetPath,
		TargetColumn: opts.TargetColumn,
		RowsLoaded:   r.RowsLoaded,
		RowsKept:     r.RowsKept,
		TrainRows:    len(r.XTrain),
		TestRows:     len(r.XTest),
		Filters:      r.Filters,
		Scaler:       r.Scaler,
	}
	if r.FeatureSet != nil {
		s.TrainingColumns = r.FeatureSet.TrainingColumns
	}
	if r.Decoder != nil {
		s.Labels = make(map[int]string)
		for _, class := range r.Decoder.Classes() {
			name, err := r.Decoder.Decode(class)
			if err != nil {
				return Summary{}, err
			}
			s.Labels[class] = name
		}
	}
	return s, nil
}

// WriteYAML 以 YAML 输出摘要。
func (s Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}
