package asset

import "context"

// Repository は資産エンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, a *Asset) (*Asset, error)
	Update(ctx context.Context, a *Asset) (*Asset, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Asset, error)
	List(ctx context.Context, filter ListAssetsFilter) ([]*Asset, string, error)
	ListByOrder(ctx context.Context, orderID string) ([]*Asset, error)
	ListByProject(ctx context.Context, projectID string) ([]*Asset, error)
}

// ListAssetsFilter は一覧取得の絞り込み条件です。Search はタイトル・シリアル番号・
// バーコードに対する部分一致です。
type ListAssetsFilter struct {
	Status   *Status
	Category string
	Search   string
	Limit    int
	Offset   int
}
