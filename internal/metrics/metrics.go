// Package metrics 暴露推理与 HTTP 请求的 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"croprec/internal/pkg/apperr"
	"croprec/internal/predict"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "croprec"

// Metrics 持有独立的 Registry，避免测试之间共享全局状态。
type Metrics struct {
	registry    *prometheus.Registry
	predictions *prometheus.CounterVec
	latency     prometheus.Histogram
	requests    *prometheus.CounterVec
	info        *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served, by outcome.",
		}, []string{"outcome", "label"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent validating, invoking and decoding a prediction.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_info",
			Help:      "Static information about the loaded model.",
		}, []string{"features", "label_mapping"}),
	}
	m.registry.MustRegister(
		m.predictions, m.latency, m.requests, m.info,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePrediction 实现 predict.Observer。
func (m *Metrics) ObservePrediction(p predict.Prediction, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.latency.Observe(elapsed.Seconds())
	if err != nil {
		m.predictions.WithLabelValues(apperr.KindOf(err).String(), "").Inc()
		return
	}
	label := p.Label
	if !p.Decoded {
		label = strconv.Itoa(p.Class)
	}
	m.predictions.WithLabelValues("ok", label).Inc()
}

// ObserveRequest 记录一次 HTTP 请求。
func (m *Metrics) ObserveRequest(method, route string, code int) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

// SetModelInfo 记录启动时加载的模型信息。
func (m *Metrics) SetModelInfo(features int, hasMapping bool) {
	if m == nil {
		return
	}
	m.info.Reset()
	m.info.WithLabelValues(strconv.Itoa(features), strconv.FormatBool(hasMapping)).Set(1)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
