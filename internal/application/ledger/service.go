// Package ledger mantiene la consistencia entre eventos de origen (producciones, entregas,
// bitácoras de consumo), lotes y cantidades agregadas de cada SKU.
//
// Invariante: el agregado de un item o materia prima es igual a la suma de sus lotes.
// Toda mutación corre en una sola transacción (TxRunner); los eventos se publican después del Commit.
package ledger

import (
	"context"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/gmz-api/pkg/logger"
)

const tracerName = "github.com/jhoicas/gmz-api/internal/application/ledger"

// Service es el servicio de ledger de inventario.
type Service struct {
	txRunner  TxRunner
	read      Repositories // atados al pool, solo lecturas fuera de transacción
	publisher EventPublisher
	log       *logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configura el Service.
type Option func(*Service)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTracer reemplaza el tracer global de OpenTelemetry.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService construye el servicio. publisher puede ser nil (no se publican eventos).
func NewService(txRunner TxRunner, read Repositories, publisher EventPublisher, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		txRunner:  txRunner,
		read:      read,
		publisher: publisher,
		log:       log,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ledger."+name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish envía los eventos tras el Commit. Un fallo se registra pero no revierte la operación.
func (s *Service) publish(ctx context.Context, events []Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Ctx(ctx).Warn().Err(err).
			Str("event", events[0].Type).
			Str("source_id", events[0].SourceID).
			Int("count", len(events)).
			Msg("no se pudieron publicar eventos de inventario")
	}
}

// sortedUnique devuelve los ids sin repetir y ordenados; los bloqueos se toman en ese orden para evitar deadlocks.
func sortedUnique(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
