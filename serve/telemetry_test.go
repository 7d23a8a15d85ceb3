package serve

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

func TestLogSpanExporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tp := NewTracerProvider(ServerInfo{Name: "devflow", Version: "test"}, NewLogSpanExporter(logger, slog.LevelDebug), logger)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "tool.call")
	span.SetAttributes(
		attribute.String("tool.name", "webapp_deploy"),
		attribute.Bool("tool.is_error", true),
		attribute.Int64("attempt", 1),
	)
	span.SetStatus(codes.Error, "boom")
	span.End()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "span", rec["msg"])
	assert.Equal(t, "trace", rec["component"])
	assert.Equal(t, "tool.call", rec["name"])
	assert.Equal(t, "webapp_deploy", rec["tool.name"])
	assert.Equal(t, true, rec["tool.is_error"])
	assert.Equal(t, float64(1), rec["attempt"])
	assert.Equal(t, "error", rec["status"])
	assert.Equal(t, "boom", rec["status_message"])
	assert.Len(t, rec["trace_id"], 32)
}

func TestLogSpanExporter_LevelDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	tp := NewTracerProvider(ServerInfo{Name: "devflow"}, NewLogSpanExporter(logger, slog.LevelDebug), logger)
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "tool.call")
	span.End()

	assert.Empty(t, buf.String())
}

func TestLogMetricExporter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mp := NewMeterProvider(ServerInfo{Name: "devflow", Version: "test"}, NewLogMetricExporter(logger, slog.LevelDebug), time.Hour, logger)
	meter := mp.Meter("test")

	calls, err := meter.Int64Counter("devflow.tool.calls")
	require.NoError(t, err)
	duration, err := meter.Float64Histogram("devflow.tool.duration", metric.WithUnit("ms"))
	require.NoError(t, err)

	attrs := metric.WithAttributes(attribute.String("tool.name", "compress_code"), attribute.String("outcome", "ok"))
	calls.Add(context.Background(), 2, attrs)
	duration.Record(context.Background(), 12.5, attrs)

	// Shutdown runs a final collection through the exporter.
	require.NoError(t, mp.Shutdown(context.Background()))

	records := make(map[string]map[string]any)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		if rec["msg"] == "metric" {
			records[rec["name"].(string)] = rec
		}
	}

	require.Contains(t, records, "devflow.tool.calls")
	counter := records["devflow.tool.calls"]
	assert.Equal(t, "metric", counter["component"])
	assert.Equal(t, float64(2), counter["value"])
	assert.Equal(t, "ok", counter["outcome"])
	assert.Equal(t, "compress_code", counter["tool.name"])

	require.Contains(t, records, "devflow.tool.duration")
	hist := records["devflow.tool.duration"]
	assert.Equal(t, "ms", hist["unit"])
	assert.Equal(t, float64(1), hist["count"])
	assert.Equal(t, 12.5, hist["sum"])
	assert.Equal(t, 12.5, hist["max"])
}

func TestLogMetricExporter_LevelDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	mp := NewMeterProvider(ServerInfo{Name: "devflow"}, NewLogMetricExporter(logger, slog.LevelDebug), time.Hour, logger)
	counter, err := mp.Meter("test").Int64Counter("devflow.tool.calls")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
	require.NoError(t, mp.Shutdown(context.Background()))

	assert.Empty(t, buf.String())
}
