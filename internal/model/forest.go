package model

import (
	"errors"
	"fmt"

	"croprec/internal/stats"
)

// Node 是扁平数组中的一个树节点；Left == Right == -1 表示叶子。
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     int     `json:"value"`
}

func (n Node) leaf() bool { return n.Left < 0 && n.Right < 0 }

type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest 是多棵决策树的多数投票分类器。
type Forest struct {
	Format      string                `json:"format"`
	NFeatures   int                   `json:"n_features"`
	Trees       []Tree                `json:"trees"`
	Importances []float64             `json:"feature_importances,omitempty"`
	Scaler      *stats.StandardScaler `json:"scaler,omitempty"`
}

// Validate 检查节点引用与特征下标，确保每棵树从根出发无环且有界。
func (f *Forest) Validate() error {
	if f.NFeatures <= 0 {
		return errors.New("forest: n_features must be positive")
	}
	if len(f.Trees) == 0 {
		return errors.New("forest: no trees")
	}
	if len(f.Importances) > 0 && len(f.Importances) != f.NFeatures {
		return fmt.Errorf("forest: %d feature importances for %d features", len(f.Importances), f.NFeatures)
	}
	if f.Scaler != nil {
		if len(f.Scaler.Mean) != f.NFeatures || len(f.Scaler.Scale) != f.NFeatures {
			return fmt.Errorf("forest: scaler must have %d entries", f.NFeatures)
		}
		for j, s := range f.Scaler.Scale {
			if s == 0 {
				return fmt.Errorf("forest: scaler.scale[%d] is zero", j)
			}
		}
	}
	for ti, tree := range f.Trees {
		if err := f.validateTree(tree); err != nil {
			return fmt.Errorf("forest: tree %d: %w", ti, err)
		}
	}
	return nil
}

func (f *Forest) validateTree(t Tree) error {
	n := len(t.Nodes)
	if n == 0 {
		return errors.New("empty tree")
	}
	visited := make([]bool, n)
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[i] {
			return fmt.Errorf("node %d reachable twice", i)
		}
		visited[i] = true
		node := t.Nodes[i]
		if node.leaf() {
			continue
		}
		if node.Left < 0 || node.Right < 0 || node.Left >= n || node.Right >= n {
			return fmt.Errorf("node %d has invalid children (%d, %d)", i, node.Left, node.Right)
		}
		if node.Feature < 0 || node.Feature >= f.NFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, node.Feature, f.NFeatures)
		}
		stack = append(stack, node.Left, node.Right)
	}
	return nil
}

// Predict 对每一行做多数投票，平票时取较小的类别。
func (f *Forest) Predict(batch [][]float64) ([]float64, error) {
	out := make([]float64, len(batch))
	votes := make(map[int]int, 8)
	for i, row := range batch {
		if len(row) != f.NFeatures {
			return nil, fmt.Errorf("forest: row %d has %d features, want %d", i, len(row), f.NFeatures)
		}
		x := row
		if f.Scaler != nil {
			scaled, err := f.Scaler.TransformRow(row)
			if err != nil {
				return nil, err
			}
			x = scaled
		}
		clear(votes)
		for _, tree := range f.Trees {
			votes[tree.classify(x)]++
		}
		out[i] = float64(majority(votes))
	}
	return out, nil
}

func (t Tree) classify(x []float64) int {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[i]
		if node.leaf() {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
	return t.Nodes[i].Value
}

func majority(votes map[int]int) int {
	best, bestCount := 0, -1
	for class, count := range votes {
		if count > bestCount || (count == bestCount && class < best) {
			best, bestCount = class, count
		}
	}
	return best
}

func (f *Forest) NumFeatures() int { return f.NFeatures }

// FeatureImportances 返回拷贝，调用方可自由修改。
func (f *Forest) FeatureImportances() []float64 {
	return append([]float64(nil), f.Importances...)
}

// opaqueForest 隐藏 Importancer 能力，用于没有特征重要性的模型文件。
type opaqueForest struct {
	f *Forest
}

func (o opaqueForest) Predict(batch [][]float64) ([]float64, error) { return o.f.Predict(batch) }

func (o opaqueForest) NumFeatures() int { return o.f.NFeatures }
