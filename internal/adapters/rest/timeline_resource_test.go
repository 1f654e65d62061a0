package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ogurasousui/fieldservice/internal/core/timeline"
)

type fakeTimelineService struct {
	saveEntryFn      func(ctx context.Context, in timeline.SaveEntryInput) (*timeline.Timeline, bool, error)
	listFn           func(ctx context.Context) ([]*timeline.Timeline, error)
	listByDateFn     func(ctx context.Context, date string) ([]*timeline.Timeline, error)
	listByEmployeeFn func(ctx context.Context, employeeID string) ([]*timeline.Timeline, error)
	getFn            func(ctx context.Context, employeeID, date string) (*timeline.Timeline, error)
	setEntryEndFn    func(ctx context.Context, in timeline.SetEntryEndInput) (*timeline.Timeline, error)
}

func (f *fakeTimelineService) SaveEntry(ctx context.Context, in timeline.SaveEntryInput) (*timeline.Timeline, bool, error) {
	return f.saveEntryFn(ctx, in)
}

func (f *fakeTimelineService) ListTimelines(ctx context.Context) ([]*timeline.Timeline, error) {
	return f.listFn(ctx)
}

func (f *fakeTimelineService) ListTimelinesByDate(ctx context.Context, date string) ([]*timeline.Timeline, error) {
	return f.listByDateFn(ctx, date)
}

func (f *fakeTimelineService) ListTimelinesByEmployee(ctx context.Context, employeeID string) ([]*timeline.Timeline, error) {
	return f.listByEmployeeFn(ctx, employeeID)
}

func (f *fakeTimelineService) GetTimeline(ctx context.Context, employeeID, date string) (*timeline.Timeline, error) {
	return f.getFn(ctx, employeeID, date)
}

func (f *fakeTimelineService) SetEntryEnd(ctx context.Context, in timeline.SetEntryEndInput) (*timeline.Timeline, error) {
	return f.setEntryEndFn(ctx, in)
}

func timelineServer(svc timeline.UseCase) *httptest.Server {
	return httptest.NewServer(NewContainer(Services{Timeline: svc}))
}

func TestTimelineResource_SaveEntry_CreatesDay(t *testing.T) {
	t.Parallel()

	svc := &fakeTimelineService{
		saveEntryFn: func(_ context.Context, in timeline.SaveEntryInput) (*timeline.Timeline, bool, error) {
			if in.EmployeeID != "emp-1" || in.Date != "2025-04-01" {
				t.Errorf("unexpected input %+v", in)
			}
			return &timeline.Timeline{
				ID:           "tl-1",
				EmployeeID:   in.EmployeeID,
				EmployeeName: in.EmployeeName,
				Date:         in.Date,
				Office:       timeline.DefaultOffice,
				Entries:      []timeline.Entry{in.Entry},
			}, true, nil
		},
	}

	server := timelineServer(svc)
	defer server.Close()

	body := `{"employee_id":"emp-1","employee_name":"Alice","date":"2025-04-01","lat":25.3,"lng":51.5,"title":"Site visit"}`
	resp, err := http.Post(server.URL+"/api/timeline", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	// 新規作成された日は 201。
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var view timelineView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if view.Office.Title != timeline.DefaultOffice.Title || len(view.Entries) != 1 {
		t.Fatalf("unexpected response %+v", view)
	}
}

func TestTimelineResource_SaveEntry_AppendsToExistingDay(t *testing.T) {
	t.Parallel()

	svc := &fakeTimelineService{
		saveEntryFn: func(_ context.Context, in timeline.SaveEntryInput) (*timeline.Timeline, bool, error) {
			return &timeline.Timeline{
				ID:      "tl-1",
				Date:    in.Date,
				Entries: []timeline.Entry{{Title: "Earlier stop"}, in.Entry},
			}, false, nil
		},
	}

	server := timelineServer(svc)
	defer server.Close()

	body := `{"employee_id":"emp-1","employee_name":"Alice","date":"2025-04-01","title":"Site visit"}`
	resp, err := http.Post(server.URL+"/api/timeline", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTimelineResource_SetEntryEnd(t *testing.T) {
	t.Parallel()

	end := time.Date(2025, 4, 1, 17, 0, 0, 0, time.UTC)

	svc := &fakeTimelineService{
		setEntryEndFn: func(_ context.Context, in timeline.SetEntryEndInput) (*timeline.Timeline, error) {
			if in.EntryTitle != "Site visit" || in.EndTime == nil || !in.EndTime.Equal(end) {
				t.Errorf("unexpected input %+v", in)
			}
			return &timeline.Timeline{
				ID:      "tl-1",
				Entries: []timeline.Entry{{Title: in.EntryTitle, EndTime: in.EndTime}},
			}, nil
		},
	}

	server := timelineServer(svc)
	defer server.Close()

	body := `{"employee_id":"emp-1","date":"2025-04-01","entry_title":"Site visit","end_time":"2025-04-01T17:00:00Z"}`
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/timeline/end-time", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTimelineResource_SetEntryEnd_EntryNotFound(t *testing.T) {
	t.Parallel()

	svc := &fakeTimelineService{
		setEntryEndFn: func(context.Context, timeline.SetEntryEndInput) (*timeline.Timeline, error) {
			return nil, timeline.ErrEntryNotFound
		},
	}

	server := timelineServer(svc)
	defer server.Close()

	body := `{"employee_id":"emp-1","date":"2025-04-01","entry_title":"Unknown"}`
	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/timeline/end-time", strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestTimelineResource_GetByEmployeeAndDate(t *testing.T) {
	t.Parallel()

	svc := &fakeTimelineService{
		getFn: func(_ context.Context, employeeID, date string) (*timeline.Timeline, error) {
			if employeeID != "emp-1" || date != "2025-04-01" {
				t.Errorf("unexpected path parameters %s %s", employeeID, date)
			}
			return &timeline.Timeline{ID: "tl-1", EmployeeID: employeeID, Date: date}, nil
		},
	}

	server := timelineServer(svc)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/timeline/employee/emp-1/date/2025-04-01")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
