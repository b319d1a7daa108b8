package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONOutput(t *testing.T) {
	l := NewLogger()

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewLoggerWithService_CarriesServiceField(t *testing.T) {
	l := NewLoggerWithService("almanac")

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.Warn("check")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "almanac", entry["service"])
}

func TestFields(t *testing.T) {
	l := NewLogger()
	entry := l.WithFields(Fields{"a": 1, "b": "two"})
	require.NotNil(t, entry)
	assert.Equal(t, logrus.Fields{"a": 1, "b": "two"}, entry.Data)
}
