package event

import (
	"context"
	"time"
)

// Type はドメインイベントの種別です。
type Type string

const (
	TypeTaskCreated  Type = "task.created"
	TypeTaskUpdated  Type = "task.updated"
	TypeTaskDeleted  Type = "task.deleted"
	TypeOrderCreated Type = "order.created"
)

// Event はブローカーへ発行されるドメインイベントです。Key はパーティショニングに
// 使用され、Payload はエンティティのスナップショットを保持します。
type Event struct {
	Type       Type
	Key        string
	OccurredAt time.Time
	Payload    any
}

// Publisher はドメインイベントの発行ポートです。
type Publisher interface {
	PublishSync(ctx context.Context, evt Event) error
}

// NopPublisher はブローカーが設定されていない場合に使用される実装です。
type NopPublisher struct{}

func (NopPublisher) PublishSync(context.Context, Event) error {
	return nil
}
