package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"croprec/internal/config/featureset"
	"croprec/internal/metrics"
	"croprec/internal/predict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var trainingColumns = []string{"Nitrogen", "Phosphorus", "Potassium", "Temperature", "Humidity", "pH_Value", "Rainfall"}

type stubModel struct {
	class       float64
	err         error
	importances []float64
}

func (s stubModel) Predict(batch [][]float64) ([]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float64{s.class}, nil
}

func (s stubModel) FeatureImportances() []float64 { return s.importances }

func newTestServer(t *testing.T, mapping map[string]string, m stubModel) (*Server, *metrics.Metrics) {
	t.Helper()
	columns := append(append([]string(nil), trainingColumns...), "Crop")
	fset, err := featureset.New(columns, trainingColumns, mapping)
	require.NoError(t, err)
	reg := metrics.New()
	svc, err := predict.NewService(fset, m, predict.WithObserver(reg))
	require.NoError(t, err)
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Predictor: svc, Metrics: reg})
	require.NoError(t, err)
	return srv, reg
}

var riceMapping = map[string]string{"0": "Rice", "1": "Maize", "2": "Coffee"}

func do(t *testing.T, srv *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPredictZeroVectorReturnsMappedLabel(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{class: 0})
	rec := do(t, srv, http.MethodPost, "/predict", "application/json", `{"features":[0,0,0,0,0,0,0]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"prediction": "Rice"}, decode(t, rec))
}

func TestPredictWithoutMappingReturnsInteger(t *testing.T) {
	srv, _ := newTestServer(t, nil, stubModel{class: 2})
	rec := do(t, srv, http.MethodPost, "/predict", "application/json", `{"features":[90,42,43,20.8,82,6.5,202.9]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prediction":2}`, rec.Body.String())
}

func TestPredictRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{})
	cases := []struct {
		name string
		body string
		want string
	}{
		{"wrong length", `{"features":[1,2,3]}`, "do not match"},
		{"missing key", `{"values":[1,2,3,4,5,6,7]}`, msgMissingFeatures},
		{"invalid json", `{"features":`, msgMissingFeatures},
		{"empty body", ``, msgMissingFeatures},
		{"not an array", `{"features":"1,2,3"}`, "must be an array"},
		{"null features", `{"features":null}`, "must be an array"},
		{"non numeric", `{"features":[1,2,"x",4,5,6,7]}`, "features[2]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/predict", "application/json", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			msg, _ := decode(t, rec)["error"].(string)
			assert.Contains(t, msg, tc.want)
		})
	}
}

func TestPredictServerErrors(t *testing.T) {
	zero := `{"features":[0,0,0,0,0,0,0]}`

	srv, _ := newTestServer(t, riceMapping, stubModel{err: errors.New("tree exploded")})
	rec := do(t, srv, http.MethodPost, "/predict", "application/json", zero)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "An error occurred")

	srv, _ = newTestServer(t, riceMapping, stubModel{class: 9})
	rec = do(t, srv, http.MethodPost, "/predict", "application/json", zero)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "class index has no label")

	srv, _ = newTestServer(t, nil, stubModel{class: math.NaN()})
	rec = do(t, srv, http.MethodPost, "/predict", "application/json", zero)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "non-integral class")
}

func TestHealthzAndColumns(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{importances: []float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.1, 0.3}})

	rec := do(t, srv, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","features":7}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/columns", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, true, body["feature_importances"])
	assert.Equal(t, true, body["label_mapping"])
	assert.Len(t, body["training_columns"], 7)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{})
	do(t, srv, http.MethodPost, "/predict", "application/json", `{"features":[0,0,0,0,0,0,0]}`)

	rec := do(t, srv, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `croprec_predictions_total{label="Rice",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `croprec_http_requests_total{code="200",method="POST",route="/predict"} 1`)
}

func formBody(values map[string]string) string {
	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	return q.Encode()
}

func validForm() map[string]string {
	return map[string]string{
		"Nitrogen": "90", "Phosphorus": "42", "Potassium": "43",
		"Temperature": "20.87", "Humidity": "82.0", "pH_Value": "6.5", "Rainfall": "202.93",
	}
}

func TestIndexRendersForm(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{})
	rec := do(t, srv, http.MethodGet, "/", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Crop Recommendation System")
	assert.Contains(t, body, "Nitrogen (integer)")
	assert.Contains(t, body, `step="1"`)
	assert.Contains(t, body, "Nitrogen content ratio in the soil (integer value).")
	assert.NotContains(t, body, "Recommended Crop:")
}

func TestSubmitRendersRecommendation(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{class: 1, importances: []float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.1, 0.3}})
	rec := do(t, srv, http.MethodPost, "/", "application/x-www-form-urlencoded", formBody(validForm()))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Recommended Crop: <strong>Maize</strong>")
	assert.Contains(t, body, "<td>202.93</td>")
	assert.Contains(t, body, "/importance.html")
	assert.Contains(t, body, "<td>Rainfall</td><td>0.3000</td>")
	assert.Contains(t, body, "/report.csv?")
}

func TestSubmitRejectsInvalidForm(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{})

	form := validForm()
	form["Nitrogen"] = "90.5"
	rec := do(t, srv, http.MethodPost, "/", "application/x-www-form-urlencoded", formBody(form))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Nitrogen must be an integer")

	form = validForm()
	delete(form, "Rainfall")
	rec = do(t, srv, http.MethodPost, "/", "application/x-www-form-urlencoded", formBody(form))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rainfall is required")
}

func TestReportDownload(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{class: 2})
	rec := do(t, srv, http.MethodGet, "/report.csv?"+formBody(validForm()), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="crop_recommendation.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.Equal(t,
		"Nitrogen,Phosphorus,Potassium,Temperature,Humidity,pH_Value,Rainfall,Recommended Crop\n"+
			"90,42,43,20.87,82,6.5,202.93,Coffee\n",
		rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/report.csv?Nitrogen=abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportanceChart(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{importances: []float64{0.1, 0.1, 0.1, 0.1, 0.2, 0.1, 0.3}})
	rec := do(t, srv, http.MethodGet, "/importance.html", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Feature Importance")

	srv, _ = newTestServer(t, riceMapping, stubModel{})
	rec = do(t, srv, http.MethodGet, "/importance.html", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t, riceMapping, stubModel{})
	rec := do(t, srv, http.MethodGet, "/static/style.css", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ".form-style")
}

func TestStartStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	srv, _ := newTestServer(t, riceMapping, stubModel{})
	srv.addr = addr
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
