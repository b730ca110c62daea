package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSONOutsideLocal(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Environment: "production", Level: "warn", Output: &buf})

	log.Component("dataset").Info("dropped")
	log.Component("dataset").WithField("month", "202401").Warn("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "dataset", line["component"])
	assert.Equal(t, "202401", line["month"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, logrus.ErrorLevel, parseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLevel(""))
}

func TestWithRequestKeepsCallerID(t *testing.T) {
	log := Nop()
	r := httptest.NewRequest("GET", "/feedback?floor=1F", nil)
	r.Header.Set("X-Request-ID", "abc")

	e := log.WithRequest(r)
	assert.Equal(t, "abc", e.Data["req_id"])
	assert.Equal(t, "/feedback", e.Data["path"])
}

func TestRequestIDGeneratedOnce(t *testing.T) {
	r := httptest.NewRequest("GET", "/healthz", nil)
	first := RequestID(r)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, RequestID(r))
}

func TestWithError(t *testing.T) {
	log := Nop()
	assert.Equal(t, "boom", log.WithError(errors.New("boom")).Data["error"])
	assert.NotContains(t, log.WithError(nil).Data, "error")
}
