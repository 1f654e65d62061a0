package rest

import (
	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/dashboard"
)

// DashboardResource はダッシュボードの REST エンドポイントを提供します。
type DashboardResource struct {
	svc dashboard.UseCase
}

// NewDashboardResource は DashboardResource を生成します。
func NewDashboardResource(svc dashboard.UseCase) *DashboardResource {
	return &DashboardResource{svc: svc}
}

// WebService はダッシュボードのルーティング定義を返します。
func (r *DashboardResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/dashboard").
		Produces(restful.MIME_JSON)

	ws.Route(ws.GET("/stats").To(r.stats))
	ws.Route(ws.GET("/activities").To(r.activities))

	return ws
}

type statsView struct {
	TotalEmployees    int64 `json:"total_employees"`
	TotalCustomers    int64 `json:"total_customers"`
	TotalProjects     int64 `json:"total_projects"`
	TotalOrders       int64 `json:"total_orders"`
	TotalTasks        int64 `json:"total_tasks"`
	TotalAssets       int64 `json:"total_assets"`
	ActiveProjects    int64 `json:"active_projects"`
	CompletedProjects int64 `json:"completed_projects"`
	CompletedTasks    int64 `json:"completed_tasks"`
	InProgressTasks   int64 `json:"in_progress_tasks"`
	PendingOrders     int64 `json:"pending_orders"`
	CompletedOrders   int64 `json:"completed_orders"`
}

func (r *DashboardResource) stats(req *restful.Request, resp *restful.Response) {
	stats, err := r.svc.GetStats(req.Request.Context())
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(statsView{
		TotalEmployees:    stats.TotalEmployees,
		TotalCustomers:    stats.TotalCustomers,
		TotalProjects:     stats.TotalProjects,
		TotalOrders:       stats.TotalOrders,
		TotalTasks:        stats.TotalTasks,
		TotalAssets:       stats.TotalAssets,
		ActiveProjects:    stats.ActiveProjects,
		CompletedProjects: stats.CompletedProjects,
		CompletedTasks:    stats.CompletedTasks,
		InProgressTasks:   stats.InProgressTasks,
		PendingOrders:     stats.PendingOrders,
		CompletedOrders:   stats.CompletedOrders,
	})
}

type activitiesView struct {
	Orders   []orderView     `json:"orders"`
	Projects []projectView   `json:"projects"`
	Tasks    []taskEntryView `json:"tasks"`
}

func (r *DashboardResource) activities(req *restful.Request, resp *restful.Response) {
	activities, err := r.svc.GetRecentActivities(req.Request.Context())
	if err != nil {
		writeError(resp, err)
		return
	}

	out := activitiesView{
		Orders:   toOrderViews(activities.Orders),
		Projects: toProjectViews(activities.Projects),
		Tasks:    make([]taskEntryView, 0, len(activities.Tasks)),
	}
	for _, t := range activities.Tasks {
		out.Tasks = append(out.Tasks, toTaskView(t))
	}
	_ = resp.WriteEntity(out)
}
