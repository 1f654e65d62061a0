package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/fieldservice/internal/core/task"
)

type fakeTaskService struct {
	createFn        func(ctx context.Context, in task.CreateTaskInput) (*task.Task, error)
	getFn           func(ctx context.Context, in task.GetTaskInput) (*task.Task, error)
	listFn          func(ctx context.Context, in task.ListTasksInput) (*task.ListTasksResult, error)
	updateFn        func(ctx context.Context, in task.UpdateTaskInput) (*task.Task, error)
	deleteFn        func(ctx context.Context, in task.DeleteTaskInput) error
	checkScheduleFn func(ctx context.Context, in task.CheckScheduleInput) (*task.CheckScheduleResult, error)
}

func (f *fakeTaskService) CreateTask(ctx context.Context, in task.CreateTaskInput) (*task.Task, error) {
	return f.createFn(ctx, in)
}

func (f *fakeTaskService) GetTask(ctx context.Context, in task.GetTaskInput) (*task.Task, error) {
	return f.getFn(ctx, in)
}

func (f *fakeTaskService) ListTasks(ctx context.Context, in task.ListTasksInput) (*task.ListTasksResult, error) {
	return f.listFn(ctx, in)
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, in task.UpdateTaskInput) (*task.Task, error) {
	return f.updateFn(ctx, in)
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, in task.DeleteTaskInput) error {
	return f.deleteFn(ctx, in)
}

func (f *fakeTaskService) CheckSchedule(ctx context.Context, in task.CheckScheduleInput) (*task.CheckScheduleResult, error) {
	return f.checkScheduleFn(ctx, in)
}

func taskServer(svc task.UseCase) *httptest.Server {
	return httptest.NewServer(NewContainer(Services{Task: svc}))
}

func TestTaskResource_Create_Success(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	svc := &fakeTaskService{
		createFn: func(_ context.Context, in task.CreateTaskInput) (*task.Task, error) {
			if in.Worker.ID != "worker-1" || in.Title != "Install meter" {
				t.Errorf("unexpected input %+v", in)
			}
			return &task.Task{
				ID:        "task-1",
				Worker:    task.WorkerRef{ID: in.Worker.ID, Name: in.Worker.Name},
				Title:     in.Title,
				StartTime: *in.StartTime,
				EndTime:   *in.EndTime,
				Priority:  task.PriorityMedium,
				Status:    task.StatusTodo,
			}, nil
		},
	}

	server := taskServer(svc)
	defer server.Close()

	body := `{"worker_id":"worker-1","worker_name":"Alice","title":"Install meter","start_time":"` +
		start.Format(time.RFC3339) + `","end_time":"` + end.Format(time.RFC3339) + `"}`
	resp, err := http.Post(server.URL+"/api/tasks", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var view taskEntryView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.ID != "task-1" || view.Status != task.StatusTodo {
		t.Fatalf("unexpected response %+v", view)
	}
}

func TestTaskResource_Create_ScheduleConflict(t *testing.T) {
	t.Parallel()

	conflictStart := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	conflictEnd := conflictStart.Add(time.Hour)

	svc := &fakeTaskService{
		createFn: func(context.Context, task.CreateTaskInput) (*task.Task, error) {
			return nil, &task.ConflictError{Task: task.ConflictTask{
				ID:        "task-9",
				Title:     "Repair pump",
				StartTime: conflictStart,
				EndTime:   conflictEnd,
			}}
		},
	}

	server := taskServer(svc)
	defer server.Close()

	body := `{"worker_id":"worker-1","title":"Install meter","start_time":"2025-04-01T10:30:00Z","end_time":"2025-04-01T11:30:00Z"}`
	resp, err := http.Post(server.URL+"/api/tasks", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	var errResp errorBody
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if errResp.Conflict == nil {
		t.Fatalf("expected colliding task summary in body")
	}
	if errResp.Conflict.ID != "task-9" || errResp.Conflict.Title != "Repair pump" {
		t.Fatalf("unexpected conflict summary %+v", errResp.Conflict)
	}
	if !errResp.Conflict.StartTime.Equal(conflictStart) || !errResp.Conflict.EndTime.Equal(conflictEnd) {
		t.Fatalf("unexpected conflict window %+v", errResp.Conflict)
	}
}

func TestTaskResource_Create_MissingSchedule(t *testing.T) {
	t.Parallel()

	svc := &fakeTaskService{
		createFn: func(context.Context, task.CreateTaskInput) (*task.Task, error) {
			return nil, task.ErrMissingSchedule
		},
	}

	server := taskServer(svc)
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/tasks", "application/json", strings.NewReader(`{"worker_id":"worker-1","title":"x"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestTaskResource_Get_NotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeTaskService{
		getFn: func(context.Context, task.GetTaskInput) (*task.Task, error) {
			return nil, task.ErrTaskNotFound
		},
	}

	server := taskServer(svc)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/tasks/missing")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTaskResource_List_Filters(t *testing.T) {
	t.Parallel()

	svc := &fakeTaskService{
		listFn: func(_ context.Context, in task.ListTasksInput) (*task.ListTasksResult, error) {
			if in.Status == nil || *in.Status != task.StatusTodo {
				t.Errorf("expected status filter, got %+v", in.Status)
			}
			if in.PageSize != 10 || in.PageToken != "20" {
				t.Errorf("unexpected pagination %d %s", in.PageSize, in.PageToken)
			}
			return &task.ListTasksResult{
				Tasks:         []*task.Task{{ID: "task-1", Title: "Install meter"}},
				NextPageToken: "30",
			}, nil
		},
	}

	server := taskServer(svc)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/tasks?status=Todo&page_size=10&page_token=20")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out taskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(out.Tasks) != 1 || out.NextPageToken != "30" {
		t.Fatalf("unexpected response %+v", out)
	}
}

func TestTaskResource_Delete(t *testing.T) {
	t.Parallel()

	svc := &fakeTaskService{
		deleteFn: func(_ context.Context, in task.DeleteTaskInput) error {
			if in.ID != "task-1" {
				t.Errorf("unexpected id %s", in.ID)
			}
			return nil
		},
	}

	server := taskServer(svc)
	defer server.Close()

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/tasks/task-1", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestTaskResource_CheckSchedule(t *testing.T) {
	t.Parallel()

	svc := &fakeTaskService{
		checkScheduleFn: func(_ context.Context, in task.CheckScheduleInput) (*task.CheckScheduleResult, error) {
			if in.WorkerID != "worker-1" || in.ExcludeTaskID != "task-5" {
				t.Errorf("unexpected input %+v", in)
			}
			return &task.CheckScheduleResult{
				Conflict: true,
				Task: &task.ConflictTask{
					ID:    "task-9",
					Title: "Repair pump",
				},
			}, nil
		},
	}

	server := taskServer(svc)
	defer server.Close()

	body := `{"worker_id":"worker-1","start_time":"2025-04-01T10:00:00Z","end_time":"2025-04-01T11:00:00Z","exclude_task_id":"task-5"}`
	resp, err := http.Post(server.URL+"/api/tasks/check-schedule", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// 読み取り専用チェックは衝突していても 200 で結果を返す。
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out checkScheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !out.Conflict || out.Task == nil || out.Task.ID != "task-9" {
		t.Fatalf("unexpected response %+v", out)
	}
}
