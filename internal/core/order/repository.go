package order

import "context"

// Repository は注文エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	Update(ctx context.Context, o *Order) (*Order, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Order, error)
	// LatestOrderNumber は作成日時が最新の注文の番号を返します。注文が 1 件も
	// なければ空文字列を返します (エラーにはなりません)。
	LatestOrderNumber(ctx context.Context) (string, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]*Order, string, error)
	ListByProject(ctx context.Context, projectID string) ([]*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	// LockSequence は注文番号の採番を直列化する排他ロックを取得します。
	LockSequence(ctx context.Context) error
}

// ListOrdersFilter は一覧取得の絞り込み条件です。Search は注文番号と ERP 番号に
// 対する部分一致です。
type ListOrdersFilter struct {
	Status *Status
	Search string
	Limit  int
	Offset int
}
