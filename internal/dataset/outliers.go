package dataset

import (
	"math"

	"croprec/internal/stats"
)

// DefaultIQRFactor 是 Tukey 规则中的 1.5。
const DefaultIQRFactor = 1.5

// FilterStep 记录单列过滤的边界与行数变化。
type FilterStep struct {
	Column     string  `json:"column" yaml:"column"`
	Q1         float64 `json:"q1" yaml:"q1"`
	Q3         float64 `json:"q3" yaml:"q3"`
	Lower      float64 `json:"lower" yaml:"lower"`
	Upper      float64 `json:"upper" yaml:"upper"`
	RowsBefore int     `json:"rows_before" yaml:"rows_before"`
	RowsAfter  int     `json:"rows_after" yaml:"rows_after"`
}

// FilterIQR 依次对 columns 中的每一列按 [Q1-k*IQR, Q3+k*IQR] 删除行。
// 每一列的四分位数都基于上一列过滤后的数据计算，因此结果依赖列顺序。
// 缺失值（NaN）不参与四分位数计算，且所在行会被删除。
func FilterIQR(f *Frame, columns []string, k float64) (*Frame, []FilterStep, error) {
	cur := f
	steps := make([]FilterStep, 0, len(columns))
	for _, col := range columns {
		vals, err := cur.Floats(col)
		if err != nil {
			return nil, nil, err
		}
		present := make([]float64, 0, len(vals))
		for _, v := range vals {
			if !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		step := FilterStep{Column: col, RowsBefore: cur.Len()}
		if len(present) == 0 {
			cur = cur.Filter(func(int) bool { return false })
			steps = append(steps, step)
			continue
		}
		step.Q1, step.Q3, step.Lower, step.Upper = stats.IQRBounds(present, k)
		cur = cur.Filter(func(i int) bool {
			v := vals[i]
			return v >= step.Lower && v <= step.Upper
		})
		step.RowsAfter = cur.Len()
		steps = append(steps, step)
	}
	return cur, steps, nil
}
