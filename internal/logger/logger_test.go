package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)

	l := slog.New(h)
	l.Debug("hidden")
	l.Info("classified", "request_type", "Billing")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"request_type":"Billing"`)

	buf.Reset()
	h, err = NewHandler(&buf, slog.LevelDebug, "text")
	require.NoError(t, err)
	slog.New(h).Debug("shown")
	assert.Contains(t, buf.String(), "msg=shown")

	_, err = NewHandler(&buf, slog.LevelInfo, "xml")
	assert.Error(t, err)
}
