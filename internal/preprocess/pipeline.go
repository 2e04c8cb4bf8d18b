// Package preprocess 把原始 CSV 数据集转换为可训练/评估的矩阵：
// 列投影、IQR 去异常、标签编码、训练/测试切分与标准化。
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"croprec/internal/config/featureset"
	"croprec/internal/dataset"
	"croprec/internal/labels"
	"croprec/internal/logger"
	"croprec/internal/pkg/apperr"
	"croprec/internal/stats"
)

const (
	DefaultTargetColumn = "Crop"
	DefaultTestRatio    = 0.2
)

// Options 描述一次预处理的输入。
type Options struct {
	DatasetPath  string
	ConfigDir    string
	TargetColumn string
	TestRatio    float64
	// Seed 原样使用，0 也是合法种子；默认值由配置层的 data.seed 提供。
	Seed int64
	// IQRFactor 为 0 时使用 dataset.DefaultIQRFactor。
	IQRFactor float64
}

func (o *Options) applyDefaults() {
	if strings.TrimSpace(o.TargetColumn) == "" {
		o.TargetColumn = DefaultTargetColumn
	}
	if o.TestRatio == 0 {
		o.TestRatio = DefaultTestRatio
	}
	if o.IQRFactor == 0 {
		o.IQRFactor = dataset.DefaultIQRFactor
	}
}

// Result 汇总预处理输出；解码器与 scaler 必须与矩阵一起保存，预测时需要两者。
type Result struct {
	XTrain [][]float64
	XTest  [][]float64
	YTrain []float64
	YTest  []float64

	Decoder    labels.Codec
	Scaler     *stats.StandardScaler
	FeatureSet *featureset.FeatureSet

	Filters    []dataset.FilterStep
	RowsLoaded int
	RowsKept   int
}

// Error 是预处理失败时唯一对外暴露的错误类型，Stage 标明失败的步骤。
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("an error occurred during preprocessing (%s): %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type state struct {
	opts   Options
	fset   *featureset.FeatureSet
	frame  *dataset.Frame
	X      [][]float64
	y      []float64
	result *Result
}

type stage struct {
	name string
	run  func(*state) error
}

// 顺序固定：先过滤再编码、先切分再拟合 scaler。
var stages = []stage{
	{"load config", loadConfig},
	{"load dataset", loadDataset},
	{"project columns", projectColumns},
	{"filter outliers", filterOutliers},
	{"encode target", encodeTarget},
	{"split", splitRows},
	{"scale features", scaleFeatures},
}

// Run 执行全部步骤；任一步失败都不返回部分结果。
func Run(ctx context.Context, opts Options) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	opts.applyDefaults()
	st := &state{opts: opts, result: &Result{}}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return nil, &Error{Stage: s.name, Err: err}
		}
		if err := s.run(st); err != nil {
			return nil, &Error{Stage: s.name, Err: err}
		}
		logger.Debugf("preprocess stage %q done rows=%d", s.name, frameLen(st.frame))
	}
	return st.result, nil
}

func frameLen(f *dataset.Frame) int {
	if f == nil {
		return 0
	}
	return f.Len()
}

func loadConfig(st *state) error {
	fset, err := featureset.Load(st.opts.ConfigDir)
	if err != nil {
		return err
	}
	st.fset = fset
	st.result.FeatureSet = fset
	return nil
}

func loadDataset(st *state) error {
	frame, err := dataset.ReadCSV(st.opts.DatasetPath)
	if err != nil {
		return apperr.Validation("load "+filepath.Base(st.opts.DatasetPath), err)
	}
	if missing := frame.Missing(st.fset.Columns); len(missing) > 0 {
		return apperr.Validation("check columns",
			fmt.Errorf("dataset columns do not match the configuration file: missing %s", strings.Join(missing, ", ")))
	}
	st.frame = frame
	st.result.RowsLoaded = frame.Len()
	return nil
}

func projectColumns(st *state) error {
	projected, err := st.frame.Select(st.fset.Columns)
	if err != nil {
		return apperr.Validation("project columns", err)
	}
	st.frame = projected
	return nil
}

func filterOutliers(st *state) error {
	filtered, steps, err := dataset.FilterIQR(st.frame, st.fset.TrainingColumns, st.opts.IQRFactor)
	if err != nil {
		return apperr.Validation("filter outliers", err)
	}
	for _, s := range steps {
		logger.Debugf("iqr %s bounds=[%.4f, %.4f] rows %d -> %d", s.Column, s.Lower, s.Upper, s.RowsBefore, s.RowsAfter)
	}
	st.frame = filtered
	st.result.Filters = steps
	st.result.RowsKept = filtered.Len()
	if filtered.Len() == 0 {
		return apperr.Validation("filter outliers", errors.New("no rows left after outlier filtering"))
	}
	return nil
}

func encodeTarget(st *state) error {
	target := st.opts.TargetColumn
	if !st.frame.Has(target) {
		return apperr.Validation("encode target", fmt.Errorf("target column '%s' is missing from the dataset", target))
	}
	values, err := st.frame.Strings(target)
	if err != nil {
		return apperr.Validation("encode target", err)
	}
	var codec labels.Codec
	if m := st.fset.Mapping(); m != nil {
		codec = m
	} else {
		enc, err := labels.Fit(values)
		if err != nil {
			return apperr.Validation("encode target", err)
		}
		codec = enc
	}
	y, err := labels.EncodeAll(codec, values)
	if err != nil {
		return apperr.Validation("encode target", err)
	}
	X, err := st.frame.Matrix(st.fset.TrainingColumns)
	if err != nil {
		return apperr.Validation("build feature matrix", err)
	}
	st.X, st.y = X, y
	st.result.Decoder = codec
	return nil
}

func splitRows(st *state) error {
	XTrain, XTest, YTrain, YTest, err := TrainTestSplit(st.X, st.y, st.opts.TestRatio, st.opts.Seed)
	if err != nil {
		return apperr.Validation("split", err)
	}
	st.result.XTrain, st.result.XTest = XTrain, XTest
	st.result.YTrain, st.result.YTest = YTrain, YTest
	return nil
}

func scaleFeatures(st *state) error {
	scaler := stats.NewStandardScaler()
	train, err := scaler.FitTransform(st.result.XTrain)
	if err != nil {
		return err
	}
	test, err := scaler.Transform(st.result.XTest)
	if err != nil {
		return err
	}
	st.result.XTrain, st.result.XTest = train, test
	st.result.Scaler = scaler
	return nil
}
