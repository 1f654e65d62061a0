package task

import (
	"context"
	"time"
)

// Repository はタスクエンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, t *Task) (*Task, error)
	Update(ctx context.Context, t *Task) (*Task, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Task, error)
	// FindOverlapping は作業員の既存タスクのうち [start, end) と重なる最初の 1 件を
	// 返します。excludeID が空でない場合、その ID のタスクは対象外です。該当が
	// なければ ErrTaskNotFound を返します。
	FindOverlapping(ctx context.Context, workerID string, start, end time.Time, excludeID string) (*Task, error)
	List(ctx context.Context, filter ListTasksFilter) ([]*Task, string, error)
	// LockWorker は作業員単位の排他ロックを取得します。チェックと書き込みを同一
	// トランザクション内で直列化するために使用します。
	LockWorker(ctx context.Context, workerID string) error
}

// ListTasksFilter は一覧取得の絞り込み条件です。
type ListTasksFilter struct {
	Status   *Status
	Priority *Priority
	Search   string
	Limit    int
	Offset   int
}
