package project

import "context"

// Repository はプロジェクトエンティティの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, p *Project) (*Project, error)
	Update(ctx context.Context, p *Project) (*Project, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter ListProjectsFilter) ([]*Project, string, error)
	ListByCustomer(ctx context.Context, customerID string) ([]*Project, error)
}

// ListProjectsFilter は一覧取得の絞り込み条件です。Search はタイトルと連絡先名に
// 対する部分一致です。
type ListProjectsFilter struct {
	Status *Status
	Search string
	Limit  int
	Offset int
}
