package preprocess

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) ([][]float64, []float64) {
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		X[i] = []float64{float64(i)}
		y[i] = float64(i)
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	for _, n := range []int{5, 10, 21, 99} {
		X, y := seq(n)
		XTrain, XTest, YTrain, YTest, err := TrainTestSplit(X, y, 0.2, 42)
		require.NoError(t, err)
		nTest := (n*2 + 9) / 10
		assert.Len(t, XTest, nTest, "n=%d", n)
		assert.Len(t, YTest, nTest)
		assert.Len(t, XTrain, n-nTest)
		assert.Len(t, YTrain, n-nTest)
		for i := range XTrain {
			assert.Equal(t, XTrain[i][0], YTrain[i], "rows and labels stay aligned")
		}
	}
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	X, y := seq(50)
	a, _, _, _, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)
	b, _, _, _, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different splits (-a +b):\n%s", diff)
	}
	c, _, _, _, err := TrainTestSplit(X, y, 0.2, 7)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestTrainTestSplitErrors(t *testing.T) {
	X, y := seq(1)
	_, _, _, _, err := TrainTestSplit(X, y, 0.2, 42)
	assert.Error(t, err)
	X, y = seq(10)
	_, _, _, _, err = TrainTestSplit(X, y[:5], 0.2, 42)
	assert.Error(t, err)
	_, _, _, _, err = TrainTestSplit(X, y, 1.5, 42)
	assert.Error(t, err)
}
