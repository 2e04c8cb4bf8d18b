package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trainingLabels = []string{"Rice", "Maize", "Coffee", "Rice", "Jute", "Maize"}

func TestEncoderRoundTrip(t *testing.T) {
	enc, err := Fit(trainingLabels)
	require.NoError(t, err)
	assert.Equal(t, []string{"Coffee", "Jute", "Maize", "Rice"}, enc.Labels)

	for _, label := range trainingLabels {
		idx, err := enc.Encode(label)
		require.NoError(t, err)
		got, err := enc.Decode(idx)
		require.NoError(t, err)
		assert.Equal(t, label, got)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, enc.Classes())
}

func TestMappingRoundTrip(t *testing.T) {
	m, err := NewMapping(map[string]string{"0": "Coffee", "1": "Jute", "2": "Maize", "3": "Rice"})
	require.NoError(t, err)

	for _, label := range trainingLabels {
		idx, err := m.Encode(label)
		require.NoError(t, err)
		got, err := m.Decode(idx)
		require.NoError(t, err)
		assert.Equal(t, label, got)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, m.Classes())
}

func TestUnknownValues(t *testing.T) {
	enc, err := Fit([]string{"Rice"})
	require.NoError(t, err)
	_, err = enc.Encode("Wheat")
	assert.ErrorIs(t, err, ErrUnknownLabel)
	_, err = enc.Decode(4)
	assert.ErrorIs(t, err, ErrUnknownClass)
	_, err = enc.Decode(-1)
	assert.ErrorIs(t, err, ErrUnknownClass)

	m, err := NewMapping(map[string]string{"7": "Rice"})
	require.NoError(t, err)
	_, err = m.Decode(0)
	assert.ErrorIs(t, err, ErrUnknownClass)
	_, err = m.Encode("Maize")
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestEncodeAll(t *testing.T) {
	enc, err := Fit(trainingLabels)
	require.NoError(t, err)
	y, err := EncodeAll(enc, trainingLabels)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 0, 3, 1, 2}, y)

	_, err = EncodeAll(enc, []string{"Rice", "Wheat"})
	assert.ErrorIs(t, err, ErrUnknownLabel)
}

func TestNewMappingValidation(t *testing.T) {
	_, err := NewMapping(nil)
	assert.Error(t, err)
	_, err = NewMapping(map[string]string{"x": "Rice"})
	assert.Error(t, err)
	_, err = NewMapping(map[string]string{"0": "Rice", "1": "Rice"})
	assert.Error(t, err)
	_, err = NewMapping(map[string]string{"1": "Rice", "01": "Maize"})
	assert.ErrorContains(t, err, "duplicates class 1")
	_, err = NewMapping(map[string]string{"0": "Rice", "-0": "Maize"})
	assert.Error(t, err)
	_, err = Fit(nil)
	assert.Error(t, err)
}

func TestEncoderWithoutIndex(t *testing.T) {
	enc := &Encoder{Labels: []string{"a", "b"}}
	idx, err := enc.Encode("b")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}
