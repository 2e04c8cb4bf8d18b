package preprocess

import (
	"fmt"
	"math"
	"math/rand"
)

// TrainTestSplit 以固定种子打乱行后切分，测试集大小为 ceil(n*testRatio)。
// 相同的输入与种子总是得到相同的切分。
func TrainTestSplit(X [][]float64, y []float64, testRatio float64, seed int64) (XTrain, XTest [][]float64, YTrain, YTest []float64, err error) {
	n := len(X)
	if n != len(y) {
		return nil, nil, nil, nil, fmt.Errorf("split: %d feature rows but %d labels", n, len(y))
	}
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("split: test ratio %.3f must be in (0,1)", testRatio)
	}
	nTest := int(math.Ceil(float64(n) * testRatio))
	if nTest < 1 || n-nTest < 1 {
		return nil, nil, nil, nil, fmt.Errorf("split: %d rows are not enough for a %.0f/%.0f split", n, (1-testRatio)*100, testRatio*100)
	}
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	XTest = make([][]float64, 0, nTest)
	YTest = make([]float64, 0, nTest)
	XTrain = make([][]float64, 0, n-nTest)
	YTrain = make([]float64, 0, n-nTest)
	for i, idx := range indices {
		if i < nTest {
			XTest = append(XTest, X[idx])
			YTest = append(YTest, y[idx])
		} else {
			XTrain = append(XTrain, X[idx])
			YTrain = append(YTrain, y[idx])
		}
	}
	return XTrain, XTest, YTrain, YTest, nil
}
