package serve

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// LogSpanExporter writes finished spans to a structured logger. stdout
// belongs to the transport, so spans go wherever the logger points.
//
// Export errors cannot happen; ExportSpans always returns nil.
type LogSpanExporter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSpanExporter creates an exporter that logs spans at level.
func NewLogSpanExporter(logger *slog.Logger, level slog.Level) *LogSpanExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSpanExporter{
		logger: logger.With("component", "trace"),
		level:  level,
	}
}

// ExportSpans logs one record per span.
func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		if !e.logger.Enabled(ctx, e.level) {
			return nil
		}
		e.logger.LogAttrs(ctx, e.level, "span", spanAttrs(span)...)
	}
	return nil
}

// Shutdown is a no-op; the logger outlives the exporter.
func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

func spanAttrs(span sdktrace.ReadOnlySpan) []slog.Attr {
	sc := span.SpanContext()
	attrs := []slog.Attr{
		slog.String("name", span.Name()),
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
		slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
	}
	if span.Parent().IsValid() {
		attrs = append(attrs, slog.String("parent_span_id", span.Parent().SpanID().String()))
	}

	status := span.Status()
	switch status.Code {
	case codes.Ok:
		attrs = append(attrs, slog.String("status", "ok"))
	case codes.Error:
		attrs = append(attrs, slog.String("status", "error"), slog.String("status_message", status.Description))
	}

	for _, kv := range span.Attributes() {
		attrs = append(attrs, attributeToSlog(kv))
	}
	for _, ev := range span.Events() {
		attrs = append(attrs, slog.String("event", ev.Name))
	}
	return attrs
}

func attributeToSlog(kv attribute.KeyValue) slog.Attr {
	key := string(kv.Key)
	switch kv.Value.Type() {
	case attribute.BOOL:
		return slog.Bool(key, kv.Value.AsBool())
	case attribute.INT64:
		return slog.Int64(key, kv.Value.AsInt64())
	case attribute.FLOAT64:
		return slog.Float64(key, kv.Value.AsFloat64())
	default:
		return slog.String(key, kv.Value.Emit())
	}
}

// LogMetricExporter writes collected metrics to a structured logger, one
// record per data point. Sums and histograms are logged; other aggregations
// are skipped.
type LogMetricExporter struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogMetricExporter creates an exporter that logs data points at level.
func NewLogMetricExporter(logger *slog.Logger, level slog.Level) *LogMetricExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMetricExporter{
		logger: logger.With("component", "metric"),
		level:  level,
	}
}

// Temporality uses the SDK default, cumulative for every instrument.
func (e *LogMetricExporter) Temporality(kind sdkmetric.InstrumentKind) metricdata.Temporality {
	return sdkmetric.DefaultTemporalitySelector(kind)
}

// Aggregation uses the SDK default for kind.
func (e *LogMetricExporter) Aggregation(kind sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.DefaultAggregationSelector(kind)
}

// Export logs every data point in rm.
func (e *LogMetricExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	if !e.logger.Enabled(ctx, e.level) {
		return nil
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			for _, attrs := range metricAttrs(m) {
				e.logger.LogAttrs(ctx, e.level, "metric", attrs...)
			}
		}
	}
	return nil
}

// ForceFlush is a no-op; Export writes synchronously.
func (e *LogMetricExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown is a no-op; the logger outlives the exporter.
func (e *LogMetricExporter) Shutdown(ctx context.Context) error {
	return nil
}

func metricAttrs(m metricdata.Metrics) [][]slog.Attr {
	head := func(set attribute.Set) []slog.Attr {
		attrs := []slog.Attr{slog.String("name", m.Name)}
		if m.Unit != "" {
			attrs = append(attrs, slog.String("unit", m.Unit))
		}
		for _, kv := range set.ToSlice() {
			attrs = append(attrs, attributeToSlog(kv))
		}
		return attrs
	}

	var out [][]slog.Attr
	switch data := m.Data.(type) {
	case metricdata.Sum[int64]:
		for _, dp := range data.DataPoints {
			out = append(out, append(head(dp.Attributes), slog.Int64("value", dp.Value)))
		}
	case metricdata.Sum[float64]:
		for _, dp := range data.DataPoints {
			out = append(out, append(head(dp.Attributes), slog.Float64("value", dp.Value)))
		}
	case metricdata.Histogram[float64]:
		for _, dp := range data.DataPoints {
			attrs := append(head(dp.Attributes),
				slog.Uint64("count", dp.Count),
				slog.Float64("sum", dp.Sum))
			if v, ok := dp.Max.Value(); ok {
				attrs = append(attrs, slog.Float64("max", v))
			}
			out = append(out, attrs)
		}
	}
	return out
}

func newResource(info ServerInfo, logger *slog.Logger) *resource.Resource {
	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(info.Name),
			semconv.ServiceVersionKey.String(info.Version),
		),
	)
	if err != nil {
		logger.Warn("failed to create resource, using default", "error", err)
		return resource.Default()
	}
	return res
}

// NewTracerProvider returns a provider that sends every finished span to
// exporter as soon as it ends.
func NewTracerProvider(info ServerInfo, exporter sdktrace.SpanExporter, logger *slog.Logger) *sdktrace.TracerProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(newResource(info, logger)),
	)
}

// NewMeterProvider returns a provider that hands collected metrics to
// exporter every interval, and once more on Shutdown.
func NewMeterProvider(info ServerInfo, exporter sdkmetric.Exporter, interval time.Duration, logger *slog.Logger) *sdkmetric.MeterProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(newResource(info, logger)),
	)
}
