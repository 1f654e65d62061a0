package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/fieldservice/internal/core/event"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer は kgo.Client のうちこのパッケージが利用する操作です。
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher は Kafka へドメインイベントを発行する event.Publisher の実装です。
type Publisher struct {
	client Producer
	topic  string
}

// NewPublisher は Publisher を生成します。
func NewPublisher(client Producer, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// envelope はトピックに書き込まれるイベントのワイヤ形式です。
type envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// PublishSync はイベントを同期発行します。エンティティ ID をレコードキーに使う
// ことで、同一エンティティのイベント順序をパーティション内で保証します。
func (p *Publisher) PublishSync(ctx context.Context, evt event.Event) error {
	value, err := json.Marshal(envelope{
		ID:         uuid.NewString(),
		Type:       string(evt.Type),
		OccurredAt: evt.OccurredAt,
		Payload:    evt.Payload,
	})
	if err != nil {
		return fmt.Errorf("kafka: serialize event: %w", err)
	}

	record := &kgo.Record{Topic: p.topic, Key: []byte(evt.Key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka: publish event: %w", err)
	}

	return nil
}
