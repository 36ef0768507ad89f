package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Storage call outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the proxy's instruments. A nil *Metrics records nothing.
type Metrics struct {
	requests        metric.Int64Counter
	requestDuration metric.Float64Histogram
	inflight        metric.Int64UpDownCounter
	transferred     metric.Int64Counter
	storageCalls    metric.Int64Counter
	storageDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	b := builder{meter: meter}
	m := &Metrics{
		requests:        b.counter("fileproxy.http.requests", "Completed HTTP requests", "{request}"),
		requestDuration: b.histogram("fileproxy.http.duration", "HTTP request latency"),
		inflight:        b.upDown("fileproxy.http.inflight", "HTTP requests being served"),
		transferred:     b.counter("fileproxy.transfer.bytes", "Request and response body bytes", "By"),
		storageCalls:    b.counter("fileproxy.storage.calls", "Object store calls by outcome", "{call}"),
		storageDuration: b.histogram("fileproxy.storage.duration", "Object store call latency"),
	}
	if b.err != nil {
		return nil, b.err
	}
	return m, nil
}

// RequestSample describes one finished request.
type RequestSample struct {
	Method   string
	Route    string
	Status   int
	Duration time.Duration
	BytesIn  int64
	BytesOut int64
}

// RequestStarted counts a request as in flight until RequestFinished.
func (m *Metrics) RequestStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.inflight.Add(ctx, 1)
}

func (m *Metrics) RequestFinished(ctx context.Context, s RequestSample) {
	if m == nil {
		return
	}
	route := metric.WithAttributes(
		attribute.String("method", s.Method),
		attribute.String("route", s.Route),
	)
	m.inflight.Add(ctx, -1)
	m.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", s.Method),
		attribute.String("route", s.Route),
		attribute.String("status", strconv.Itoa(s.Status)),
	))
	m.requestDuration.Record(ctx, s.Duration.Seconds(), route)
	if s.BytesIn > 0 {
		m.transferred.Add(ctx, s.BytesIn, metric.WithAttributes(attribute.String("direction", "in")))
	}
	if s.BytesOut > 0 {
		m.transferred.Add(ctx, s.BytesOut, metric.WithAttributes(attribute.String("direction", "out")))
	}
}

// StorageCall records one object store operation.
func (m *Metrics) StorageCall(ctx context.Context, op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.storageCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
	m.storageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("operation", op)))
}

// builder keeps the first instrument error so construction reads linearly.
type builder struct {
	meter metric.Meter
	err   error
}

func (b *builder) keep(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

func (b *builder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.keep(err)
	return c
}

func (b *builder) upDown(name, desc string) metric.Int64UpDownCounter {
	c, err := b.meter.Int64UpDownCounter(name, metric.WithDescription(desc), metric.WithUnit("{request}"))
	b.keep(err)
	return c
}

func (b *builder) histogram(name, desc string) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	b.keep(err)
	return h
}
