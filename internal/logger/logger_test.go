package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatsPerEnv(t *testing.T) {
	t.Run("prod is JSON at info", func(t *testing.T) {
		var buf bytes.Buffer
		log := New(&buf, "prod")

		log.Debug("hidden")
		log.Info("shown", slog.String("k", "v"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "shown", rec["msg"])
		assert.Equal(t, "v", rec["k"])
		assert.NotContains(t, buf.String(), "hidden")
	})

	t.Run("staging is JSON at debug", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "staging").Debug("verbose")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "DEBUG", rec["level"])
	})

	t.Run("dev is text at debug", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "dev").Debug("verbose", slog.Int("n", 1))

		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "msg=verbose")
		assert.Contains(t, buf.String(), "n=1")
	})
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "dev").With(slog.String("trace_id", "abc"))

	ctx := NewContext(context.Background(), l)
	FromContext(ctx).Info("hello")

	assert.Contains(t, buf.String(), "trace_id=abc")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
