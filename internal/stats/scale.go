package stats

import (
	"errors"
	"fmt"
	"math"
)

var ErrNotFitted = errors.New("scaler is not fitted")

// StandardScaler 把每列标准化为零均值、单位方差；参数只由 Fit 学习一次。
type StandardScaler struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

func NewStandardScaler() *StandardScaler { return &StandardScaler{} }

// Fit 学习每列均值与总体标准差，方差为 0 的列 scale 取 1。
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("scaler: empty input")
	}
	r, c := len(X), len(X[0])
	if c == 0 {
		return errors.New("scaler: rows have no columns")
	}
	for i := range X {
		if len(X[i]) != c {
			return fmt.Errorf("scaler: row %d has %d columns, want %d", i, len(X[i]), c)
		}
	}
	mean := make([]float64, c)
	scale := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = X[i][j]
		}
		mean[j] = Mean(col)
		scale[j] = Std(col)
		if scale[j] == 0 || math.IsNaN(scale[j]) {
			scale[j] = 1
		}
	}
	s.Mean, s.Scale = mean, scale
	return nil
}

func (s *StandardScaler) Fitted() bool {
	return s != nil && len(s.Mean) > 0 && len(s.Mean) == len(s.Scale)
}

// Transform 返回标准化后的副本。
func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i := range X {
		row, err := s.TransformRow(X[i])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}

func (s *StandardScaler) TransformRow(x []float64) ([]float64, error) {
	if !s.Fitted() {
		return nil, ErrNotFitted
	}
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("scaler: got %d features, fitted on %d", len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}

func (s *StandardScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
