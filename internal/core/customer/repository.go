package customer

import "context"

// Repository は顧客エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, c *Customer) (*Customer, error)
	Update(ctx context.Context, c *Customer) (*Customer, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context, filter ListCustomersFilter) ([]*Customer, string, error)
}

// ListCustomersFilter は一覧取得の絞り込み条件です。Search は名前とメールアドレス
// に対する部分一致です。
type ListCustomersFilter struct {
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}
