// Package stats 提供预处理使用的描述统计与标准化。
package stats

import (
	"math"
	"sort"
)

// Mean 返回算术平均值，空切片返回 0。
func Mean(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(n)
}

// Variance 是总体方差（ddof = 0），两遍计算。
func Variance(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	mean := Mean(x)
	acc := 0.0
	for _, v := range x {
		d := v - mean
		acc += d * d
	}
	return acc / float64(n)
}

// Std 是总体标准差。
func Std(x []float64) float64 {
	return math.Sqrt(Variance(x))
}

func MinMax(x []float64) (float64, float64) {
	if len(x) == 0 {
		return 0, 0
	}
	lo, hi := x[0], x[0]
	for _, v := range x[1:] {
		if v < lo {
			lo = v
		} else if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Quantile 返回第 q 分位数（0 <= q <= 1），在相邻秩之间线性插值，不修改 x。
func Quantile(x []float64, q float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	lo, hi := MinMax(x)
	if q <= 0 {
		return lo
	}
	if q >= 1 {
		return hi
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	rank := q * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return cp[lower]
	}
	return cp[lower]*(1-weight) + cp[upper]*weight
}

// Quartiles 返回 Q1 与 Q3。
func Quartiles(x []float64) (q1, q3 float64) {
	return Quantile(x, 0.25), Quantile(x, 0.75)
}

// IQRBounds 返回四分位数与 [Q1-k*IQR, Q3+k*IQR] 边界。
func IQRBounds(x []float64, k float64) (q1, q3, lower, upper float64) {
	q1, q3 = Quartiles(x)
	iqr := q3 - q1
	return q1, q3, q1 - k*iqr, q3 + k*iqr
}
