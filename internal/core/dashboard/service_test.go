package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/fieldservice/internal/core/order"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	"github.com/ogurasousui/fieldservice/internal/core/task"
)

type fakeDashboardRepo struct {
	stats    *Stats
	orders   []*order.Order
	projects []*project.Project
	tasks    []*task.Task
	err      error

	lastLimit int
}

func (r *fakeDashboardRepo) CountStats(_ context.Context) (*Stats, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.stats, nil
}

func (r *fakeDashboardRepo) RecentOrders(_ context.Context, limit int) ([]*order.Order, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.lastLimit = limit
	return r.orders, nil
}

func (r *fakeDashboardRepo) RecentProjects(_ context.Context, limit int) ([]*project.Project, error) {
	return r.projects, nil
}

func (r *fakeDashboardRepo) RecentTasks(_ context.Context, limit int) ([]*task.Task, error) {
	return r.tasks, nil
}

func TestService_GetStats(t *testing.T) {
	t.Parallel()

	want := &Stats{
		TotalEmployees:  4,
		TotalOrders:     10,
		PendingOrders:   3,
		CompletedOrders: 2,
	}
	svc := NewService(&fakeDashboardRepo{stats: want}, nil)

	got, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats returned error: %v", err)
	}
	if *got != *want {
		t.Fatalf("stats mismatch: got %+v want %+v", got, want)
	}
}

func TestService_GetStats_PropagatesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("query failed")
	svc := NewService(&fakeDashboardRepo{err: wantErr}, nil)

	if _, err := svc.GetStats(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestService_GetRecentActivities(t *testing.T) {
	t.Parallel()

	repo := &fakeDashboardRepo{
		orders:   []*order.Order{{ID: "o1"}, {ID: "o2"}},
		projects: []*project.Project{{ID: "p1"}},
		tasks:    []*task.Task{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}},
	}
	svc := NewService(repo, nil)

	got, err := svc.GetRecentActivities(context.Background())
	if err != nil {
		t.Fatalf("GetRecentActivities returned error: %v", err)
	}
	if len(got.Orders) != 2 || len(got.Projects) != 1 || len(got.Tasks) != 3 {
		t.Fatalf("unexpected activities: %+v", got)
	}
	if repo.lastLimit != recentLimit {
		t.Fatalf("expected limit %d, got %d", recentLimit, repo.lastLimit)
	}
}
