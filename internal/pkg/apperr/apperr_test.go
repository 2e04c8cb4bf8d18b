package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", Validation("predict", base))

	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, Is(err, KindValidation))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(nil))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Decode("decode", errors.New("x"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Unexpected("model", errors.New("x"))))
}

func TestNewNil(t *testing.T) {
	assert.Nil(t, New(KindConfig, "op", nil))
	assert.False(t, Is(nil, KindConfig))
}

func TestErrorMessage(t *testing.T) {
	err := Config("load columns.json", errors.New("missing"))
	assert.Equal(t, "load columns.json: missing", err.Error())
	assert.Equal(t, "config", KindOf(err).String())
}
