package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"croprec/internal/pkg/apperr"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

//go:embed schemas/forest.json
var forestSchema []byte

var ErrUnsupportedFormat = errors.New("unsupported model format")

// Load 读取模型文件并返回 Model；文件包含 feature_importances 时返回值同时实现 Importancer。
func Load(path string) (Model, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.Config("load model", fmt.Errorf("model artifact not found: %s", path))
		}
		return nil, apperr.Config("load model", err)
	}
	m, err := Parse(raw)
	if err != nil {
		return nil, apperr.Config("load model "+path, err)
	}
	return m, nil
}

// Parse 解析内存中的模型文档。
func Parse(raw []byte) (Model, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("model artifact is not valid JSON")
	}
	format := strings.TrimSpace(gjson.GetBytes(raw, "format").String())
	if format != "forest" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}
	var forest Forest
	if err := json.Unmarshal(raw, &forest); err != nil {
		return nil, fmt.Errorf("decode forest: %w", err)
	}
	if err := forest.Validate(); err != nil {
		return nil, err
	}
	if len(forest.Importances) == 0 {
		return opaqueForest{f: &forest}, nil
	}
	return &forest, nil
}

func validateSchema(raw []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("forest.json", bytes.NewReader(forestSchema)); err != nil {
		return err
	}
	schema, err := compiler.Compile("forest.json")
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("model artifact does not match schema: %w", err)
	}
	return nil
}
