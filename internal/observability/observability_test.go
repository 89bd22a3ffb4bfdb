package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := GlobalLogger
	t.Cleanup(func() { GlobalLogger = prev })

	var buf bytes.Buffer
	SetGlobalLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	return &buf
}

func TestRepoLogger_IncludesTableAndOperation(t *testing.T) {
	buf := captureLogger(t)

	NewRepoLogger("posts").LogCreate(context.Background(), map[string]any{"post_id": 7})

	out := buf.String()
	assert.Contains(t, out, `"table":"posts"`)
	assert.Contains(t, out, `"operation":"create"`)
	assert.Contains(t, out, `"post_id":7`)
}

func TestRepoLogger_LogErrorSkipsNil(t *testing.T) {
	buf := captureLogger(t)

	l := NewRepoLogger("follows")
	l.LogError(context.Background(), nil, "create")
	assert.Empty(t, buf.String())

	l.LogError(context.Background(), errors.New("boom"), "create")
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "boom")
}

func TestCacheLogger_LogClear(t *testing.T) {
	buf := captureLogger(t)

	NewCacheLogger("memory").LogClear(context.Background(), "post_edited", 3)

	out := buf.String()
	assert.Contains(t, out, "response cache cleared")
	assert.Contains(t, out, `"reason":"post_edited"`)
	assert.Contains(t, out, `"epoch":3`)
}

func TestObserveFeed_RecordsOutcome(t *testing.T) {
	before := testutil.CollectAndCount(FeedComputeLatency)
	ObserveFeed("observability_test", time.Now(), nil)
	ObserveFeed("observability_test", time.Now(), errors.New("x"))
	after := testutil.CollectAndCount(FeedComputeLatency)
	require.GreaterOrEqual(t, after, before+2)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{ServiceName: "blogfeed-test"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "unit")
	assert.NotNil(t, ctx)
	EndSpan(span, errors.New("recorded"))
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
