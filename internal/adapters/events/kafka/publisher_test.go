package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/fieldservice/internal/core/event"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	f.records = append(f.records, rs...)
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestPublisher_PublishSync(t *testing.T) {
	t.Parallel()

	producer := &fakeProducer{}
	pub := NewPublisher(producer, "fieldservice.events")

	occurred := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	err := pub.PublishSync(context.Background(), event.Event{
		Type:       event.TypeTaskCreated,
		Key:        "task-1",
		OccurredAt: occurred,
		Payload:    map[string]string{"title": "Install meter"},
	})
	if err != nil {
		t.Fatalf("PublishSync returned error: %v", err)
	}

	if len(producer.records) != 1 {
		t.Fatalf("expected one record, got %d", len(producer.records))
	}
	record := producer.records[0]
	if record.Topic != "fieldservice.events" {
		t.Fatalf("unexpected topic %s", record.Topic)
	}
	if string(record.Key) != "task-1" {
		t.Fatalf("expected entity id as record key, got %s", record.Key)
	}

	var env envelope
	if err := json.Unmarshal(record.Value, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.Type != string(event.TypeTaskCreated) {
		t.Fatalf("unexpected event type %s", env.Type)
	}
	if env.ID == "" {
		t.Fatalf("expected generated event id")
	}
	if !env.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected occurred_at %v", env.OccurredAt)
	}
}

func TestPublisher_PublishSync_ProduceError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("broker unavailable")
	pub := NewPublisher(&fakeProducer{err: wantErr}, "fieldservice.events")

	err := pub.PublishSync(context.Background(), event.Event{Type: event.TypeOrderCreated, Key: "order-1"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected produce error, got %v", err)
	}
}
