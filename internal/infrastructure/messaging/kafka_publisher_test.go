package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gmz-api/internal/application/ledger"
	"github.com/jhoicas/gmz-api/internal/domain/entity"
)

type fakeProducer struct {
	msgs   []kafka.Message
	failOn string
	closed bool
}

func (f *fakeProducer) WriteMessage(_ context.Context, msg kafka.Message) error {
	if f.failOn != "" && string(msg.Key) == f.failOn {
		return errors.New("broker caído")
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	at := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	prod := &fakeProducer{}
	pub := NewKafkaPublisher(prod)

	err := pub.Publish(context.Background(), ledger.Event{
		Type: ledger.EventMaterialConsumed, SourceID: "log-1", Kind: entity.LedgerKindMaterial,
		SKUID: "mat-1", BatchID: "b-1", Delta: decimal.NewFromInt(-20), OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, prod.msgs, 1)

	msg := prod.msgs[0]
	assert.Equal(t, "mat-1", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, headerEventType, msg.Headers[0].Key)
	assert.Equal(t, ledger.EventMaterialConsumed, string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "material", got["kind"])
	assert.Equal(t, "-20", got["delta"])
	assert.Equal(t, "b-1", got["batch_id"])
}

func TestKafkaPublisher_SigueTrasUnFallo(t *testing.T) {
	prod := &fakeProducer{failOn: "a"}
	pub := NewKafkaPublisher(prod)

	err := pub.Publish(context.Background(),
		ledger.Event{Type: ledger.EventProductionRecorded, SourceID: "p1", SKUID: "a"},
		ledger.Event{Type: ledger.EventProductionRecorded, SourceID: "p2", SKUID: "b"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p1")
	require.Len(t, prod.msgs, 1)
	assert.Equal(t, "b", string(prod.msgs[0].Key))

	require.NoError(t, pub.Close())
	assert.True(t, prod.closed)
}
