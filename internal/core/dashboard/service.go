package dashboard

import (
	"context"

	"github.com/ogurasousui/fieldservice/internal/core/order"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	"github.com/ogurasousui/fieldservice/internal/core/task"
)

// 直近の活動として返す件数。
const recentLimit = 5

// Stats はダッシュボードに表示する集計値です。
type Stats struct {
	TotalEmployees    int64
	TotalCustomers    int64
	TotalProjects     int64
	TotalOrders       int64
	TotalTasks        int64
	TotalAssets       int64
	ActiveProjects    int64
	CompletedProjects int64
	CompletedTasks    int64
	InProgressTasks   int64
	PendingOrders     int64
	CompletedOrders   int64
}

// RecentActivities は直近に作成されたレコードのまとまりです。
type RecentActivities struct {
	Orders   []*order.Order
	Projects []*project.Project
	Tasks    []*task.Task
}

// Repository はダッシュボード用の集計クエリを提供します。
type Repository interface {
	CountStats(ctx context.Context) (*Stats, error)
	RecentOrders(ctx context.Context, limit int) ([]*order.Order, error)
	RecentProjects(ctx context.Context, limit int) ([]*project.Project, error)
	RecentTasks(ctx context.Context, limit int) ([]*task.Task, error)
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// Service はダッシュボードに関するユースケースをまとめます。
type Service struct {
	repo Repository
	tx   TransactionManager
}

// UseCase はダッシュボードユースケースの公開インターフェースです。
type UseCase interface {
	GetStats(ctx context.Context) (*Stats, error)
	GetRecentActivities(ctx context.Context) (*RecentActivities, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, tx TransactionManager) *Service {
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, tx: tx}
}

// GetStats はエンティティごとの件数とステータス別の内訳を返します。すべての
// 集計は 1 つの読み取りトランザクションで行われ、互いに整合します。
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	var stats *Stats
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.CountStats(txCtx)
		if err != nil {
			return err
		}
		stats = result
		return nil
	}); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetRecentActivities は直近に作成された注文・プロジェクト・タスクを返します。
func (s *Service) GetRecentActivities(ctx context.Context) (*RecentActivities, error) {
	activities := &RecentActivities{}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		orders, err := s.repo.RecentOrders(txCtx, recentLimit)
		if err != nil {
			return err
		}
		projects, err := s.repo.RecentProjects(txCtx, recentLimit)
		if err != nil {
			return err
		}
		tasks, err := s.repo.RecentTasks(txCtx, recentLimit)
		if err != nil {
			return err
		}
		activities.Orders = orders
		activities.Projects = projects
		activities.Tasks = tasks
		return nil
	}); err != nil {
		return nil, err
	}
	return activities, nil
}
