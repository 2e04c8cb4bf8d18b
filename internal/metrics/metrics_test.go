package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"croprec/internal/pkg/apperr"
	"croprec/internal/predict"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservePrediction(t *testing.T) {
	m := New()
	m.ObservePrediction(predict.Prediction{Label: "Rice", Decoded: true}, nil, time.Millisecond)
	m.ObservePrediction(predict.Prediction{Class: 3}, nil, time.Millisecond)
	m.ObservePrediction(predict.Prediction{}, apperr.Validation("", errors.New("bad")), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("ok", "Rice")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("ok", "3")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.predictions.WithLabelValues("validation", "")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.SetModelInfo(7, true)
	m.ObserveRequest(http.MethodGet, "/healthz", http.StatusOK)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `croprec_model_info{features="7",label_mapping="true"} 1`)
	assert.Contains(t, body, `croprec_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePrediction(predict.Prediction{}, nil, 0)
		m.ObserveRequest(http.MethodGet, "/", 200)
		m.SetModelInfo(1, false)
	})
}
