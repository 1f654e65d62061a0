package timeline

import "context"

// Repository はタイムラインの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, t *Timeline) (*Timeline, error)
	Update(ctx context.Context, t *Timeline) (*Timeline, error)
	// FindByEmployeeAndDate は従業員と日付の組で 1 件を取得します。
	FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*Timeline, error)
	// ListAll は作成日時の新しい順に全件を返します。
	ListAll(ctx context.Context) ([]*Timeline, error)
	ListByDate(ctx context.Context, date string) ([]*Timeline, error)
	// ListByEmployee は日付の新しい順に返します。
	ListByEmployee(ctx context.Context, employeeID string) ([]*Timeline, error)
}
