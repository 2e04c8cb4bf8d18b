// Package predict 是模型推理的服务层：校验输入形状、调用模型并解码类别。
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"croprec/internal/config/featureset"
	"croprec/internal/labels"
	"croprec/internal/logger"
	"croprec/internal/model"
	"croprec/internal/pkg/apperr"

	"github.com/google/uuid"
)

var (
	ErrFeatureCount = errors.New("input features do not match the training columns")
	ErrNonFinite    = errors.New("input features must be finite numbers")
	ErrEmptyOutput  = errors.New("model returned no prediction")
	ErrBadOutput    = errors.New("model returned a non-integral class")
)

// Prediction 是一次推理的结果。
type Prediction struct {
	ID      string
	Raw     float64
	Class   int
	Label   string
	Decoded bool
}

// Value 返回对外展示的预测值：有映射时为展示名，否则为整数类别。
func (p Prediction) Value() any {
	if p.Decoded {
		return p.Label
	}
	return p.Class
}

// Observer 接收每次推理的结果，用于指标统计。
type Observer interface {
	ObservePrediction(p Prediction, err error, elapsed time.Duration)
}

// Service 持有启动时加载的只读配置与模型。
type Service struct {
	features *featureset.FeatureSet
	model    model.Model
	decoder  labels.Codec
	observer Observer
}

// Option 配置 Service。
type Option func(*Service)

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

// NewService 构建推理服务。
func NewService(fset *featureset.FeatureSet, m model.Model, opts ...Option) (*Service, error) {
	if fset == nil {
		return nil, apperr.Config("new predict service", errors.New("feature set is required"))
	}
	if m == nil {
		return nil, apperr.Config("new predict service", errors.New("model is required"))
	}
	s := &Service{features: fset, model: m}
	if mapping := fset.Mapping(); mapping != nil {
		s.decoder = mapping
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Features 返回训练列（调用方不得修改）。
func (s *Service) Features() []string { return s.features.TrainingColumns }

// Decodes 表示预测结果是否会被解码为展示名。
func (s *Service) Decodes() bool { return s.decoder != nil }

// Importances 返回模型的特征重要性（若模型支持）。
func (s *Service) Importances() ([]float64, bool) {
	values, ok := model.Importances(s.model)
	if !ok || len(values) != s.features.NumFeatures() {
		return nil, false
	}
	return values, true
}

// Predict 对单个特征向量推理。错误均为 *apperr.Error：
// 形状不符为 KindValidation，解码失败为 KindDecode，其余为 KindUnexpected。
func (s *Service) Predict(ctx context.Context, features []float64) (pred Prediction, err error) {
	start := time.Now()
	pred.ID = uuid.NewString()
	defer func() {
		if s.observer != nil {
			s.observer.ObservePrediction(pred, err, time.Since(start))
		}
	}()

	if err := s.validate(features); err != nil {
		return pred, err
	}
	if ctx != nil {
		if cerr := ctx.Err(); cerr != nil {
			return pred, apperr.Unexpected("predict", cerr)
		}
	}

	raw, err := s.invoke(features)
	if err != nil {
		logger.With("request_id", pred.ID).Error("model invocation failed", "err", err)
		return pred, apperr.Unexpected("predict", err)
	}
	pred.Raw = raw
	pred.Class = int(raw)

	if s.decoder != nil {
		label, derr := s.decoder.Decode(pred.Class)
		if derr != nil {
			return pred, apperr.Decode("decode prediction", derr)
		}
		pred.Label = label
		pred.Decoded = true
	}
	logger.With("request_id", pred.ID).Debug("prediction", "class", pred.Class, "label", pred.Label)
	return pred, nil
}

func (s *Service) validate(features []float64) error {
	want := s.features.NumFeatures()
	if len(features) != want {
		return apperr.Validation("", fmt.Errorf("%w (got %d, want %d)", ErrFeatureCount, len(features), want))
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apperr.Validation("", fmt.Errorf("%w: %s", ErrNonFinite, s.features.TrainingColumns[i]))
		}
	}
	return nil
}

// invoke 以单行批次调用模型，并把 panic 转为错误。
func (s *Service) invoke(features []float64) (raw float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()
	row := append([]float64(nil), features...)
	out, err := s.model.Predict([][]float64{row})
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, ErrEmptyOutput
	}
	// 类别必须是有限整数，否则转换为 int 的结果没有意义。
	raw = out[0]
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw != math.Trunc(raw) {
		return 0, fmt.Errorf("%w: %v", ErrBadOutput, raw)
	}
	return raw, nil
}
