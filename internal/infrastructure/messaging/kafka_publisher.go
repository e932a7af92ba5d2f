// Package messaging publica los eventos del ledger en Kafka.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	otelkafka "github.com/Trendyol/otel-kafka-konsumer"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/pkg/config"
)

var _ ledger.EventPublisher = (*KafkaPublisher)(nil)

const headerEventType = "event-type"

// Producer lo mínimo que se usa de un writer de Kafka.
type Producer interface {
	WriteMessage(ctx context.Context, msg kafka.Message) error
	Close() error
}

// NewProducer crea un writer instrumentado: cada mensaje lleva el contexto de traza en sus headers.
func NewProducer(cfg config.KafkaConfig, serviceName string, tp trace.TracerProvider) (Producer, error) {
	base := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}
	w, err := otelkafka.NewWriter(base,
		otelkafka.WithTracerProvider(tp),
		otelkafka.WithPropagator(propagation.TraceContext{}),
		otelkafka.WithAttributes(
			[]attribute.KeyValue{
				semconv.MessagingDestinationNameKey.String(cfg.Topic),
				attribute.String("messaging.kafka.client_id", serviceName),
			},
		),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka writer: %w", err)
	}
	return w, nil
}

// KafkaPublisher implementa ledger.EventPublisher. La clave del mensaje es el SKU
// para que los eventos de un mismo SKU queden en la misma partición y en orden.
type KafkaPublisher struct {
	producer Producer
}

func NewKafkaPublisher(producer Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish envía un mensaje por evento. Sigue con los demás si uno falla y devuelve los errores unidos.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ledger.Event) error {
	var errs []error
	for _, ev := range events {
		msg, err := toMessage(ev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := p.producer.WriteMessage(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("kafka publish %s %s: %w", ev.Type, ev.SourceID, err))
		}
	}
	return errors.Join(errs...)
}

// Close cierra el writer subyacente.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

func toMessage(ev ledger.Event) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: serializar evento %s: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.SKUID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(ev.Type)},
		},
	}, nil
}
