// Package featureset 读取训练列与标签映射等静态 JSON 配置。
package featureset

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"croprec/internal/labels"
	"croprec/internal/pkg/apperr"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

const (
	ColumnsFile         = "columns.json"
	TrainingColumnsFile = "training_columns.json"
	LabelMappingFile    = "label_mapping.json"
)

var (
	ErrNotFound = errors.New("config file not found")
	ErrParse    = errors.New("config file is not valid JSON")
	ErrSchema   = errors.New("config file does not match schema")
)

//go:embed schemas/*.json
var schemaFS embed.FS

// FeatureSet 是启动时加载的一组只读列配置。
type FeatureSet struct {
	Columns         []string
	TrainingColumns []string
	// LabelMapping 为空表示未配置显式映射。
	LabelMapping map[string]string

	mapping *labels.Mapping
}

// LoadJSON 读取 JSON 文件并以 map 形式返回。
func LoadJSON(path string) (map[string]any, error) {
	op := "load " + filepath.Base(path)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Config(op, fmt.Errorf("%w: %s", ErrNotFound, path))
		}
		return nil, apperr.Config(op, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, apperr.Config(op, fmt.Errorf("%w: %s", ErrParse, path))
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return nil, apperr.Config(op, fmt.Errorf("%w: %s: root must be an object", ErrParse, path))
	}
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, apperr.Config(op, fmt.Errorf("%w: %s: %v", ErrParse, path, err))
	}
	return out, nil
}

// Load 从目录读取 columns.json、training_columns.json 与可选的 label_mapping.json。
func Load(dir string) (*FeatureSet, error) {
	columnsDoc, err := loadValidated(filepath.Join(dir, ColumnsFile), ColumnsFile)
	if err != nil {
		return nil, err
	}
	trainingDoc, err := loadValidated(filepath.Join(dir, TrainingColumnsFile), TrainingColumnsFile)
	if err != nil {
		return nil, err
	}
	fset := &FeatureSet{
		Columns:         stringList(columnsDoc["columns"]),
		TrainingColumns: stringList(trainingDoc["training_columns"]),
	}

	// 只有文件不存在才视为未配置映射，其余读取错误照常返回。
	mappingDoc, err := loadValidated(filepath.Join(dir, LabelMappingFile), LabelMappingFile)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		fset.LabelMapping = make(map[string]string, len(mappingDoc))
		for k, v := range mappingDoc {
			name, _ := v.(string)
			fset.LabelMapping[strings.TrimSpace(k)] = name
		}
	}
	if err := fset.init(); err != nil {
		return nil, apperr.Config("load feature set", err)
	}
	return fset, nil
}

// New 直接由内存数据构建 FeatureSet，主要用于测试与工具。
func New(columns, training []string, mapping map[string]string) (*FeatureSet, error) {
	fset := &FeatureSet{
		Columns:         append([]string(nil), columns...),
		TrainingColumns: append([]string(nil), training...),
	}
	if len(mapping) > 0 {
		fset.LabelMapping = make(map[string]string, len(mapping))
		for k, v := range mapping {
			fset.LabelMapping[k] = v
		}
	}
	if err := fset.init(); err != nil {
		return nil, apperr.Config("build feature set", err)
	}
	return fset, nil
}

func (f *FeatureSet) init() error {
	if len(f.TrainingColumns) == 0 {
		return fmt.Errorf("training_columns cannot be empty")
	}
	known := make(map[string]struct{}, len(f.Columns))
	for _, c := range f.Columns {
		if _, dup := known[c]; dup {
			return fmt.Errorf("duplicate column %q", c)
		}
		known[c] = struct{}{}
	}
	seen := make(map[string]struct{}, len(f.TrainingColumns))
	for _, c := range f.TrainingColumns {
		if _, ok := known[c]; !ok {
			return fmt.Errorf("training column %q is not listed in %s", c, ColumnsFile)
		}
		if _, dup := seen[c]; dup {
			return fmt.Errorf("duplicate training column %q", c)
		}
		seen[c] = struct{}{}
	}
	if len(f.LabelMapping) == 0 {
		return nil
	}
	m, err := labels.NewMapping(f.LabelMapping)
	if err != nil {
		return err
	}
	f.mapping = m
	return nil
}

// NumFeatures 返回模型输入向量的长度。
func (f *FeatureSet) NumFeatures() int {
	if f == nil {
		return 0
	}
	return len(f.TrainingColumns)
}

func (f *FeatureSet) HasLabelMapping() bool {
	return f != nil && len(f.LabelMapping) > 0
}

// Classes 返回映射中的类别，升序。
func (f *FeatureSet) Classes() []int {
	if f == nil || f.mapping == nil {
		return nil
	}
	return f.mapping.Classes()
}

// Mapping 返回显式标签映射；未配置时为 nil。
func (f *FeatureSet) Mapping() *labels.Mapping {
	if f == nil {
		return nil
	}
	return f.mapping
}

func loadValidated(path, schemaName string) (map[string]any, error) {
	doc, err := LoadJSON(path)
	if err != nil {
		return nil, err
	}
	schema, err := compileSchema(schemaName)
	if err != nil {
		return nil, apperr.Config("compile schema "+schemaName, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, apperr.Config("validate "+filepath.Base(path), fmt.Errorf("%w: %v", ErrSchema, err))
	}
	return doc, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile(name)
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
