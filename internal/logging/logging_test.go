package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/appconf"
)

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("disk on fire")
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(appconf.Production, false, &buf)

	LogOperation(logger, "graph_built", slog.Int("vertices", 4))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "graph_built", entry["msg"])
	assert.Equal(t, "graph_built", entry["operation"])
	assert.Equal(t, float64(4), entry["vertices"])
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	New(appconf.Development, true, &buf).Debug("visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	New(appconf.Development, false, &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestLogError_IncludesError(t *testing.T) {
	var buf bytes.Buffer
	logger := New(appconf.Development, false, &buf)

	LogError(logger, "load failed", errors.New("boom"), slog.String("source", "feed.zip"))

	out := buf.String()
	assert.Contains(t, out, "load failed")
	assert.Contains(t, out, "error=boom")
	assert.Contains(t, out, "source=feed.zip")
}

func TestNilLoggerIsIgnored(t *testing.T) {
	assert.NotPanics(t, func() {
		LogOperation(nil, "noop")
		LogError(nil, "noop", errors.New("x"))
	})
}

func TestSafeCloseWithLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := New(appconf.Development, false, &buf)
	c := &failingCloser{}

	SafeCloseWithLogging(c, logger, "input_file")

	assert.True(t, c.closed)
	assert.Contains(t, buf.String(), "resource=input_file")
	assert.NotPanics(t, func() { SafeCloseWithLogging(nil, logger, "nothing") })
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(appconf.Test, false, &buf)

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
