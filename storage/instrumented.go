package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fileproxy/observability"
)

// Instrument decorates s so every call produces a span and operation
// metrics. A nil Metrics records spans only.
func Instrument(s Storage, m *observability.Metrics) Storage {
	return &instrumented{next: s, metrics: m}
}

type instrumented struct {
	next    Storage
	metrics *observability.Metrics
}

func (i *instrumented) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "storage."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("storage.key", key)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)

	outcome := observability.OutcomeOK
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = observability.OutcomeNotFound
	case err != nil:
		outcome = observability.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("storage.outcome", outcome))
	i.metrics.StorageCall(ctx, op, outcome, time.Since(start))
	return err
}

func (i *instrumented) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (*Object, error) {
	var obj *Object
	err := i.observe(ctx, "put", key, func(ctx context.Context) error {
		var err error
		obj, err = i.next.Put(ctx, key, body, opts)
		return err
	})
	return obj, err
}

func (i *instrumented) Get(ctx context.Context, key string) (*Object, io.ReadCloser, error) {
	var (
		obj  *Object
		body io.ReadCloser
	)
	err := i.observe(ctx, "get", key, func(ctx context.Context) error {
		var err error
		obj, body, err = i.next.Get(ctx, key)
		return err
	})
	return obj, body, err
}

func (i *instrumented) Head(ctx context.Context, key string) (*Object, error) {
	var obj *Object
	err := i.observe(ctx, "head", key, func(ctx context.Context) error {
		var err error
		obj, err = i.next.Head(ctx, key)
		return err
	})
	return obj, err
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	return i.observe(ctx, "delete", key, func(ctx context.Context) error {
		return i.next.Delete(ctx, key)
	})
}

func (i *instrumented) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	var res *ListResult
	err := i.observe(ctx, "list", opts.Prefix, func(ctx context.Context) error {
		var err error
		res, err = i.next.List(ctx, opts)
		return err
	})
	return res, err
}
