package postgres

import (
	"context"

	"github.com/ogurasousui/fieldservice/internal/core/dashboard"
	"github.com/ogurasousui/fieldservice/internal/core/order"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	"github.com/ogurasousui/fieldservice/internal/core/task"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

// DashboardRepository は PostgreSQL を利用したダッシュボード集計の実装です。
type DashboardRepository struct {
	pool pgdb.Queryer
}

// NewDashboardRepository は DashboardRepository を生成します。
func NewDashboardRepository(pool pgdb.Queryer) *DashboardRepository {
	return &DashboardRepository{pool: pool}
}

// CountStats はエンティティごとの件数とステータス別の内訳を 1 クエリで集計します。
func (r *DashboardRepository) CountStats(ctx context.Context) (*dashboard.Stats, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT (SELECT COUNT(*) FROM users),
               (SELECT COUNT(*) FROM customers),
               (SELECT COUNT(*) FROM projects),
               (SELECT COUNT(*) FROM orders),
               (SELECT COUNT(*) FROM tasks),
               (SELECT COUNT(*) FROM assets),
               (SELECT COUNT(*) FROM projects WHERE status = 'Active'),
               (SELECT COUNT(*) FROM projects WHERE status = 'Completed'),
               (SELECT COUNT(*) FROM tasks WHERE status = 'Completed'),
               (SELECT COUNT(*) FROM tasks WHERE status = 'In Progress'),
               (SELECT COUNT(*) FROM orders WHERE status = 'Pending'),
               (SELECT COUNT(*) FROM orders WHERE status = 'Completed')
    `)

	var stats dashboard.Stats
	if err := row.Scan(
		&stats.TotalEmployees,
		&stats.TotalCustomers,
		&stats.TotalProjects,
		&stats.TotalOrders,
		&stats.TotalTasks,
		&stats.TotalAssets,
		&stats.ActiveProjects,
		&stats.CompletedProjects,
		&stats.CompletedTasks,
		&stats.InProgressTasks,
		&stats.PendingOrders,
		&stats.CompletedOrders,
	); err != nil {
		return nil, err
	}

	return &stats, nil
}

// RecentOrders は直近に作成された注文を返します。
func (r *DashboardRepository) RecentOrders(ctx context.Context, limit int) ([]*order.Order, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+orderColumns+`
          FROM orders
         ORDER BY created_at DESC, id DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, translateOrderPgError(err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, translateOrderPgError(err)
		}
		orders = append(orders, o)
	}

	return orders, rows.Err()
}

// RecentProjects は直近に作成されたプロジェクトを返します。
func (r *DashboardRepository) RecentProjects(ctx context.Context, limit int) ([]*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+projectColumns+`
          FROM projects
         ORDER BY created_at DESC, id DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, translateProjectPgError(err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

// RecentTasks は直近に作成されたタスクを返します。
func (r *DashboardRepository) RecentTasks(ctx context.Context, limit int) ([]*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+taskColumns+`
          FROM tasks
         ORDER BY created_at DESC, id DESC
         LIMIT $1
    `, limit)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	defer rows.Close()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, translateTaskPgError(err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}
