package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/task"
)

// TaskResource はタスクの REST エンドポイントを提供します。
type TaskResource struct {
	svc task.UseCase
}

// NewTaskResource は TaskResource を生成します。
func NewTaskResource(svc task.UseCase) *TaskResource {
	return &TaskResource{svc: svc}
}

// WebService はタスクのルーティング定義を返します。
func (r *TaskResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/tasks").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.create))
	ws.Route(ws.GET("").To(r.list))
	ws.Route(ws.POST("/check-schedule").To(r.checkSchedule))
	ws.Route(ws.GET("/{id}").To(r.get))
	ws.Route(ws.PUT("/{id}").To(r.update))
	ws.Route(ws.DELETE("/{id}").To(r.delete))

	return ws
}

type taskEntryView struct {
	ID                 string         `json:"id"`
	WorkerID           string         `json:"worker_id"`
	WorkerName         string         `json:"worker_name"`
	AssetID            string         `json:"asset_id,omitempty"`
	OrderID            string         `json:"order_id,omitempty"`
	ProjectID          string         `json:"project_id,omitempty"`
	CustomerID         string         `json:"customer_id,omitempty"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	PlanDuration       int            `json:"plan_duration"`
	StartTime          time.Time      `json:"start_time"`
	EndTime            time.Time      `json:"end_time"`
	ActualStartTime    *time.Time     `json:"actual_start_time,omitempty"`
	ActualEndTime      *time.Time     `json:"actual_end_time,omitempty"`
	FileUpload         string         `json:"file_upload,omitempty"`
	Priority           task.Priority  `json:"priority"`
	Status             task.Status    `json:"status"`
	Completed          bool           `json:"completed"`
	PercentageComplete int            `json:"percentage_complete"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	CreatedUser        string         `json:"created_user,omitempty"`
	ModifiedUser       string         `json:"modified_user,omitempty"`
}

func toTaskView(t *task.Task) taskEntryView {
	return taskEntryView{
		ID:                 t.ID,
		WorkerID:           t.Worker.ID,
		WorkerName:         t.Worker.Name,
		AssetID:            t.AssetID,
		OrderID:            t.OrderID,
		ProjectID:          t.ProjectID,
		CustomerID:         t.CustomerID,
		Title:              t.Title,
		Description:        t.Description,
		PlanDuration:       t.PlanDuration,
		StartTime:          t.StartTime,
		EndTime:            t.EndTime,
		ActualStartTime:    t.ActualStartTime,
		ActualEndTime:      t.ActualEndTime,
		FileUpload:         t.FileUpload,
		Priority:           t.Priority,
		Status:             t.Status,
		Completed:          t.Completed,
		PercentageComplete: t.PercentageComplete,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
		CreatedUser:        t.CreatedUser,
		ModifiedUser:       t.ModifiedUser,
	}
}

type createTaskRequest struct {
	WorkerID     string         `json:"worker_id"`
	WorkerName   string         `json:"worker_name"`
	AssetID      string         `json:"asset_id"`
	OrderID      string         `json:"order_id"`
	ProjectID    string         `json:"project_id"`
	CustomerID   string         `json:"customer_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	PlanDuration int            `json:"plan_duration"`
	StartTime    *time.Time     `json:"start_time"`
	EndTime      *time.Time     `json:"end_time"`
	FileUpload   string         `json:"file_upload"`
	Priority     *task.Priority `json:"priority"`
	CreatedUser  string         `json:"created_user"`
}

func (r *TaskResource) create(req *restful.Request, resp *restful.Response) {
	var body createTaskRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	created, err := r.svc.CreateTask(req.Request.Context(), task.CreateTaskInput{
		Worker:       task.WorkerRef{ID: body.WorkerID, Name: body.WorkerName},
		AssetID:      body.AssetID,
		OrderID:      body.OrderID,
		ProjectID:    body.ProjectID,
		CustomerID:   body.CustomerID,
		Title:        body.Title,
		Description:  body.Description,
		PlanDuration: body.PlanDuration,
		StartTime:    body.StartTime,
		EndTime:      body.EndTime,
		FileUpload:   body.FileUpload,
		Priority:     body.Priority,
		CreatedUser:  body.CreatedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusCreated, toTaskView(created))
}

type updateTaskRequest struct {
	WorkerID           *string        `json:"worker_id"`
	WorkerName         *string        `json:"worker_name"`
	AssetID            *string        `json:"asset_id"`
	OrderID            *string        `json:"order_id"`
	ProjectID          *string        `json:"project_id"`
	CustomerID         *string        `json:"customer_id"`
	Title              *string        `json:"title"`
	Description        *string        `json:"description"`
	PlanDuration       *int           `json:"plan_duration"`
	StartTime          *time.Time     `json:"start_time"`
	EndTime            *time.Time     `json:"end_time"`
	ActualStartTime    *time.Time     `json:"actual_start_time"`
	ActualEndTime      *time.Time     `json:"actual_end_time"`
	FileUpload         *string        `json:"file_upload"`
	Priority           *task.Priority `json:"priority"`
	Status             *task.Status   `json:"status"`
	PercentageComplete *int           `json:"percentage_complete"`
	ModifiedUser       string         `json:"modified_user"`
}

func (r *TaskResource) update(req *restful.Request, resp *restful.Response) {
	var body updateTaskRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	in := task.UpdateTaskInput{
		ID:                 req.PathParameter("id"),
		AssetID:            body.AssetID,
		OrderID:            body.OrderID,
		ProjectID:          body.ProjectID,
		CustomerID:         body.CustomerID,
		Title:              body.Title,
		Description:        body.Description,
		PlanDuration:       body.PlanDuration,
		StartTime:          body.StartTime,
		EndTime:            body.EndTime,
		ActualStartTime:    body.ActualStartTime,
		ActualEndTime:      body.ActualEndTime,
		FileUpload:         body.FileUpload,
		Priority:           body.Priority,
		Status:             body.Status,
		PercentageComplete: body.PercentageComplete,
		ModifiedUser:       body.ModifiedUser,
	}
	if body.WorkerID != nil {
		worker := task.WorkerRef{ID: *body.WorkerID}
		if body.WorkerName != nil {
			worker.Name = *body.WorkerName
		}
		in.Worker = &worker
	}

	updated, err := r.svc.UpdateTask(req.Request.Context(), in)
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTaskView(updated))
}

func (r *TaskResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetTask(req.Request.Context(), task.GetTaskInput{ID: req.PathParameter("id")})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTaskView(found))
}

type taskListResponse struct {
	Tasks         []taskEntryView `json:"tasks"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

func (r *TaskResource) list(req *restful.Request, resp *restful.Response) {
	in := task.ListTasksInput{
		Search:    req.QueryParameter("search"),
		PageSize:  intQueryParameter(req, "page_size"),
		PageToken: req.QueryParameter("page_token"),
	}
	if raw := req.QueryParameter("status"); raw != "" {
		status := task.Status(raw)
		in.Status = &status
	}
	if raw := req.QueryParameter("priority"); raw != "" {
		priority := task.Priority(raw)
		in.Priority = &priority
	}

	result, err := r.svc.ListTasks(req.Request.Context(), in)
	if err != nil {
		writeError(resp, err)
		return
	}

	out := taskListResponse{Tasks: make([]taskEntryView, 0, len(result.Tasks)), NextPageToken: result.NextPageToken}
	for _, t := range result.Tasks {
		out.Tasks = append(out.Tasks, toTaskView(t))
	}
	_ = resp.WriteEntity(out)
}

func (r *TaskResource) delete(req *restful.Request, resp *restful.Response) {
	if err := r.svc.DeleteTask(req.Request.Context(), task.DeleteTaskInput{ID: req.PathParameter("id")}); err != nil {
		writeError(resp, err)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}

type checkScheduleRequest struct {
	WorkerID      string    `json:"worker_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	ExcludeTaskID string    `json:"exclude_task_id"`
}

type checkScheduleResponse struct {
	Conflict bool             `json:"conflict"`
	Task     *conflictSummary `json:"task,omitempty"`
}

// checkSchedule は書き込みを伴わない衝突チェックです。衝突していても 200 を
// 返し、結果はボディで表現します。
func (r *TaskResource) checkSchedule(req *restful.Request, resp *restful.Response) {
	var body checkScheduleRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	result, err := r.svc.CheckSchedule(req.Request.Context(), task.CheckScheduleInput{
		WorkerID:      body.WorkerID,
		StartTime:     body.StartTime,
		EndTime:       body.EndTime,
		ExcludeTaskID: body.ExcludeTaskID,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	out := checkScheduleResponse{Conflict: result.Conflict}
	if result.Task != nil {
		out.Task = &conflictSummary{
			ID:        result.Task.ID,
			Title:     result.Task.Title,
			StartTime: result.Task.StartTime,
			EndTime:   result.Task.EndTime,
		}
	}
	_ = resp.WriteEntity(out)
}
