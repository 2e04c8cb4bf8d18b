// Package report 生成可下载的推荐报告。
package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Filename    = "crop_recommendation.csv"
	ContentType = "text/csv"
	// CropColumn 是报告中预测结果的列名。
	CropColumn = "Recommended Crop"
)

// Field 是一个输入特征及其取值。
type Field struct {
	Name  string
	Value decimal.Decimal
}

// Recommendation 是单次推荐的输入与结果。
type Recommendation struct {
	Inputs []Field
	Crop   string
}

// BuildCSV 生成 CSV 数据，首行为列头，第二行为输入与推荐结果。
func BuildCSV(rec Recommendation) string {
	var b strings.Builder
	for _, f := range rec.Inputs {
		b.WriteString(escape(f.Name))
		b.WriteByte(',')
	}
	b.WriteString(escape(CropColumn))
	b.WriteByte('\n')
	for _, f := range rec.Inputs {
		b.WriteString(f.Value.String())
		b.WriteByte(',')
	}
	b.WriteString(escape(rec.Crop))
	b.WriteByte('\n')
	return b.String()
}

func escape(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
