// Package model 定义预训练分类器的能力边界，并提供 JSON 森林格式的加载实现。
package model

// Model 是预训练分类器：输入按训练列排序的特征批次，返回每行的原始类别值。
type Model interface {
	Predict(batch [][]float64) ([]float64, error)
}

// Importancer 是可选能力：按训练列顺序给出特征重要性。
type Importancer interface {
	FeatureImportances() []float64
}

// Shaper 是可选能力：声明模型期望的输入宽度。
type Shaper interface {
	NumFeatures() int
}

// Func 把普通函数适配为 Model。
type Func func(batch [][]float64) ([]float64, error)

func (f Func) Predict(batch [][]float64) ([]float64, error) { return f(batch) }

// Importances 返回模型的特征重要性；模型不支持时 ok 为 false。
func Importances(m Model) (values []float64, ok bool) {
	imp, ok := m.(Importancer)
	if !ok {
		return nil, false
	}
	values = imp.FeatureImportances()
	return values, len(values) > 0
}
