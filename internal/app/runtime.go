package app

import (
	"croprec/internal/config/featureset"
	"croprec/internal/metrics"
	"croprec/internal/model"
	"croprec/internal/predict"
)

// Runtime 汇集启动后不再变化的依赖，按引用传给各个处理器。
type Runtime struct {
	FeatureSet *featureset.FeatureSet
	Model      model.Model
	Service    *predict.Service
	Metrics    *metrics.Metrics
}
