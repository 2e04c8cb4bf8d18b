// Package dataset 提供最小化的表格数据结构：CSV 读取、列投影与按行过滤。
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	ErrMissingColumns = errors.New("dataset is missing required columns")
	ErrNotNumeric     = errors.New("column is not numeric")
)

// Frame 是按行存储的字符串表，列顺序固定。
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New 用列名与行数据构建 Frame，行宽必须与列数一致。
func New(columns []string, rows [][]string) (*Frame, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(row), len(columns))
		}
	}
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	return &Frame{columns: cols, index: index, rows: rows}, nil
}

// ReadCSV 读取带表头的 CSV 文件。
func ReadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return f, nil
}

// ParseCSV 解析 CSV 流，首行为列名。
func ParseCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv: header row required")
		}
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return New(header, rows)
}

func (f *Frame) Columns() []string { return append([]string(nil), f.columns...) }

func (f *Frame) Len() int { return len(f.rows) }

func (f *Frame) Has(column string) bool {
	_, ok := f.index[column]
	return ok
}

// Missing 返回 wanted 中不存在于 Frame 的列，保持 wanted 的顺序。
func (f *Frame) Missing(wanted []string) []string {
	var out []string
	for _, c := range wanted {
		if !f.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Select 投影到给定列（按给定顺序）。
func (f *Frame) Select(columns []string) (*Frame, error) {
	if missing := f.Missing(columns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	idx := make([]int, len(columns))
	for i, c := range columns {
		idx[i] = f.index[c]
	}
	rows := make([][]string, len(f.rows))
	for r, src := range f.rows {
		row := make([]string, len(idx))
		for i, j := range idx {
			row[i] = src[j]
		}
		rows[r] = row
	}
	return New(columns, rows)
}

// Filter 返回仅包含 keep 为 true 的行的新 Frame，行本身共享。
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	rows := make([][]string, 0, len(f.rows))
	for i, row := range f.rows {
		if keep(i) {
			rows = append(rows, row)
		}
	}
	return &Frame{columns: f.columns, index: f.index, rows: rows}
}

// Strings 返回某列的原始字符串值。
func (f *Frame) Strings(column string) ([]string, error) {
	j, ok := f.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, column)
	}
	out := make([]string, len(f.rows))
	for i, row := range f.rows {
		out[i] = strings.TrimSpace(row[j])
	}
	return out, nil
}

// Floats 将某列解析为 float64；空值与 NA 记为 NaN。
func (f *Frame) Floats(column string) ([]float64, error) {
	raw, err := f.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := parseCell(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %q", ErrNotNumeric, column, i+1, s)
		}
		out[i] = v
	}
	return out, nil
}

// Matrix 按给定列顺序返回数值矩阵（行优先）。
func (f *Frame) Matrix(columns []string) ([][]float64, error) {
	cols := make([][]float64, len(columns))
	for j, c := range columns {
		vals, err := f.Floats(c)
		if err != nil {
			return nil, err
		}
		cols[j] = vals
	}
	out := make([][]float64, len(f.rows))
	for i := range out {
		row := make([]float64, len(columns))
		for j := range columns {
			row[j] = cols[j][i]
		}
		out[i] = row
	}
	return out, nil
}

func parseCell(s string) (float64, error) {
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
