package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"croprec/internal/config"
	"croprec/internal/model"
	"croprec/internal/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testForest = `{
  "format": "forest",
  "n_features": 2,
  "trees": [{"nodes": [{"feature": 1, "threshold": 100, "left": 1, "right": 2}, {"left": -1, "right": -1, "value": 0}, {"left": -1, "right": -1, "value": 1}]}],
  "feature_importances": [0.25, 0.75]
}`

func writeFixture(t *testing.T, withMapping bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	confDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	write := func(path, body string) {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write(filepath.Join(confDir, "columns.json"), `{"columns": ["Humidity", "Rainfall", "Crop"]}`)
	write(filepath.Join(confDir, "training_columns.json"), `{"training_columns": ["Humidity", "Rainfall"]}`)
	if withMapping {
		write(filepath.Join(confDir, "label_mapping.json"), `{"0": "Chickpea", "1": "Rice"}`)
	}
	modelPath := filepath.Join(dir, "forest.json")
	write(modelPath, testForest)

	cfg := config.Default()
	cfg.App.HTTPAddr = "127.0.0.1:0"
	cfg.Data.ConfigDir = confDir
	cfg.Model.Path = modelPath
	return cfg
}

func TestNewAppBuildsRuntime(t *testing.T) {
	a, err := NewApp(writeFixture(t, true))
	require.NoError(t, err)
	rt := a.Runtime()
	require.NotNil(t, rt)
	assert.Equal(t, []string{"Humidity", "Rainfall"}, rt.FeatureSet.TrainingColumns)

	pred, err := rt.Service.Predict(context.Background(), []float64{80, 250})
	require.NoError(t, err)
	assert.Equal(t, "Rice", pred.Value())

	require.NotNil(t, a.Summary)
	assert.True(t, a.Summary.Importances)
	assert.Contains(t, a.Summary.String(), "Humidity, Rainfall")
	assert.Contains(t, a.Summary.String(), "classes:    0, 1")
}

func TestNewAppWithoutMapping(t *testing.T) {
	a, err := NewApp(writeFixture(t, false))
	require.NoError(t, err)
	pred, err := a.Runtime().Service.Predict(context.Background(), []float64{80, 50})
	require.NoError(t, err)
	assert.Equal(t, 0, pred.Value())
	assert.Contains(t, a.Summary.String(), "no label mapping")
}

func TestNewAppConfigErrors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		cfg := writeFixture(t, true)
		cfg.Model.Path = filepath.Join(t.TempDir(), "absent.json")
		_, err := NewApp(cfg)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConfig))
	})
	t.Run("missing config dir", func(t *testing.T) {
		cfg := writeFixture(t, true)
		cfg.Data.ConfigDir = filepath.Join(t.TempDir(), "nowhere")
		_, err := NewApp(cfg)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConfig))
	})
	t.Run("width mismatch", func(t *testing.T) {
		cfg := writeFixture(t, true)
		m, err := model.Parse([]byte(`{"format": "forest", "n_features": 3, "trees": [{"nodes": [{"left": -1, "right": -1, "value": 0}]}]}`))
		require.NoError(t, err)
		_, err = NewApp(cfg, WithModel(m))
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindConfig))
		assert.Contains(t, err.Error(), "expects 3 features")
	})
	t.Run("nil config", func(t *testing.T) {
		_, err := NewApp(nil)
		assert.Error(t, err)
	})
}

func TestWithModelOverride(t *testing.T) {
	cfg := writeFixture(t, true)
	stub := model.Func(func(batch [][]float64) ([]float64, error) { return []float64{0}, nil })
	a, err := NewApp(cfg, WithModel(stub))
	require.NoError(t, err)
	pred, err := a.Runtime().Service.Predict(context.Background(), []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "Chickpea", pred.Value())
	assert.False(t, a.Summary.Importances)
}

func TestRunStopsWithContext(t *testing.T) {
	a, err := NewApp(writeFixture(t, true))
	require.NoError(t, err)
	a.Summary = nil
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}

func TestRunRequiresInit(t *testing.T) {
	var a *App
	assert.Error(t, a.Run(context.Background()))
}
