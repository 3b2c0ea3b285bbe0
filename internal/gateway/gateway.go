// Package gateway decides whether an incoming document is validated before it
// is written and applies the schema registered for its collection.
package gateway

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docgate/internal/model"
	"docgate/internal/schema"
)

const tracerName = "docgate/internal/gateway"

// SchemaSource yields the schemas registered for a collection in application order.
type SchemaSource interface {
	Load(ctx context.Context, db, collection string) ([]*schema.Entry, error)
}

var _ SchemaSource = (*schema.Store)(nil)

// Gateway validates documents against collection schemas when enabled.
// The enabled flag is fixed at construction and never changes afterwards.
type Gateway struct {
	enabled bool
	source  SchemaSource
	logger  *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

type Option func(*Gateway)

// WithMetrics records every outcome in m.
func WithMetrics(m *Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) { g.tracer = t }
}

func New(enabled bool, source SchemaSource, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		enabled: enabled,
		source:  source,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Enabled reports whether documents are validated at all.
func (g *Gateway) Enabled() bool { return g.enabled }

// Validate returns the document to persist. When validation is disabled or the
// collection has no schema, doc is returned unchanged. Otherwise the first
// schema in lexical order is applied and the result carries filled-in defaults.
// A failing document yields *schema.ValidationError; schema files that cannot
// be read or parsed surface as *schema.StorageError or *schema.ParseError.
func (g *Gateway) Validate(ctx context.Context, db, collection string, doc model.Document) (model.Document, error) {
	if !g.enabled {
		return doc, nil
	}

	ctx, span := g.tracer.Start(ctx, "gateway.Validate", trace.WithAttributes(
		attribute.String("docgate.database", db),
		attribute.String("docgate.collection", collection),
	))
	defer span.End()

	entries, err := g.source.Load(ctx, db, collection)
	if err != nil {
		g.metrics.observe(resultError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema load failed")
		g.logger.Error("schema load failed",
			zap.String("database", db),
			zap.String("collection", collection),
			zap.Error(err),
		)
		return nil, err
	}
	if len(entries) == 0 {
		g.metrics.observe(resultSkipped)
		span.SetAttributes(attribute.Bool("docgate.schema_found", false))
		return doc, nil
	}

	entry := entries[0]
	span.SetAttributes(
		attribute.Bool("docgate.schema_found", true),
		attribute.String("docgate.schema", entry.Key.Name),
	)

	out, err := entry.Validator.Validate(doc)
	if err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			g.metrics.observe(resultFailed)
			span.SetAttributes(attribute.Int("docgate.failed_fields", len(ve.Fields)))
			span.SetStatus(codes.Error, "document rejected")
			g.logger.Debug("document rejected",
				zap.String("schema", entry.Key.String()),
				zap.Any("fields", ve.Fields),
			)
			return nil, err
		}
		g.metrics.observe(resultError)
		span.RecordError(err)
		return nil, err
	}

	g.metrics.observe(resultPassed)
	return out, nil
}
