// Package labels 负责目标列的编码与预测结果的解码。
package labels

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

var (
	ErrUnknownLabel = errors.New("label has no class index")
	ErrUnknownClass = errors.New("class index has no label")
)

// Codec 在展示名与数字类别之间双向转换。
type Codec interface {
	Encode(label string) (int, error)
	Decode(class int) (string, error)
	Classes() []int
}

// Encoder 是从训练数据拟合出的编码器：去重后按字典序编号 0..k-1。
type Encoder struct {
	Labels []string `json:"labels" yaml:"labels"`

	index map[string]int
}

// Fit 根据出现过的标签构建 Encoder。
func Fit(values []string) (*Encoder, error) {
	if len(values) == 0 {
		return nil, errors.New("cannot fit label encoder on empty target")
	}
	seen := make(map[string]struct{}, len(values))
	uniq := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		uniq = append(uniq, v)
	}
	sort.Strings(uniq)
	return NewEncoder(uniq), nil
}

// NewEncoder 以给定顺序构建 Encoder，第 i 个标签编码为 i。
func NewEncoder(ordered []string) *Encoder {
	e := &Encoder{Labels: append([]string(nil), ordered...)}
	e.index = make(map[string]int, len(ordered))
	for i, l := range e.Labels {
		e.index[l] = i
	}
	return e
}

func (e *Encoder) Encode(label string) (int, error) {
	if e.index == nil {
		*e = *NewEncoder(e.Labels)
	}
	idx, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return idx, nil
}

func (e *Encoder) Decode(class int) (string, error) {
	if class < 0 || class >= len(e.Labels) {
		return "", fmt.Errorf("%w: %d", ErrUnknownClass, class)
	}
	return e.Labels[class], nil
}

func (e *Encoder) Classes() []int {
	out := make([]int, len(e.Labels))
	for i := range out {
		out[i] = i
	}
	return out
}

// Mapping 使用外部提供的 "类别 -> 展示名" 映射。
type Mapping struct {
	Names map[string]string `json:"names" yaml:"names"`

	reverse map[string]int
}

// NewMapping 构建映射型 Codec，键必须是整数字符串且展示名不可重复。
func NewMapping(names map[string]string) (*Mapping, error) {
	if len(names) == 0 {
		return nil, errors.New("label mapping is empty")
	}
	m := &Mapping{Names: make(map[string]string, len(names)), reverse: make(map[string]int, len(names))}
	for key, name := range names {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("label mapping key %q is not an integer", key)
		}
		norm := strconv.Itoa(idx)
		if prev, dup := m.Names[norm]; dup {
			return nil, fmt.Errorf("label mapping key %q duplicates class %d (already %q)", key, idx, prev)
		}
		if prev, dup := m.reverse[name]; dup {
			return nil, fmt.Errorf("label %q mapped by both %d and %d", name, prev, idx)
		}
		m.Names[norm] = name
		m.reverse[name] = idx
	}
	return m, nil
}

func (m *Mapping) Encode(label string) (int, error) {
	idx, ok := m.reverse[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return idx, nil
}

func (m *Mapping) Decode(class int) (string, error) {
	name, ok := m.Names[strconv.Itoa(class)]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownClass, class)
	}
	return name, nil
}

func (m *Mapping) Classes() []int {
	out := make([]int, 0, len(m.reverse))
	for _, idx := range m.reverse {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// EncodeAll 将整列标签编码为模型使用的数值向量。
func EncodeAll(c Codec, values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		idx, err := c.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = float64(idx)
	}
	return out, nil
}
