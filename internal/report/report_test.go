package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func fields(names []string, values ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Field{Name: n, Value: decimal.RequireFromString(values[i])}
	}
	return out
}

func TestBuildCSV(t *testing.T) {
	rec := Recommendation{
		Inputs: fields([]string{"Nitrogen", "Temperature", "pH_Value"}, "90", "20.879744", "6.5"),
		Crop:   "Rice",
	}
	assert.Equal(t, "Nitrogen,Temperature,pH_Value,Recommended Crop\n90,20.879744,6.5,Rice\n", BuildCSV(rec))
}

func TestBuildCSVNumericPredictionAndQuoting(t *testing.T) {
	rec := Recommendation{Inputs: fields([]string{"a,b"}, "0.1"), Crop: "3"}
	assert.Equal(t, "\"a,b\",Recommended Crop\n0.1,3\n", BuildCSV(rec))

	rec.Crop = `Kidney "Beans"`
	assert.Contains(t, BuildCSV(rec), `"Kidney ""Beans"""`)
}
