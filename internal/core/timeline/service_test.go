package timeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeTimelineRepo struct {
	timelines map[string]*Timeline
	order     []string
	sequence  int
}

func newFakeTimelineRepo() *fakeTimelineRepo {
	return &fakeTimelineRepo{timelines: make(map[string]*Timeline)}
}

func (r *fakeTimelineRepo) Create(_ context.Context, t *Timeline) (*Timeline, error) {
	clone := cloneTimeline(t)
	r.sequence++
	clone.ID = fmt.Sprintf("tl-%d", r.sequence)
	r.timelines[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneTimeline(clone), nil
}

func (r *fakeTimelineRepo) Update(_ context.Context, t *Timeline) (*Timeline, error) {
	if _, ok := r.timelines[t.ID]; !ok {
		return nil, ErrTimelineNotFound
	}
	r.timelines[t.ID] = cloneTimeline(t)
	return cloneTimeline(t), nil
}

func (r *fakeTimelineRepo) FindByEmployeeAndDate(_ context.Context, employeeID, date string) (*Timeline, error) {
	for _, id := range r.order {
		t := r.timelines[id]
		if t.EmployeeID == employeeID && t.Date == date {
			return cloneTimeline(t), nil
		}
	}
	return nil, ErrTimelineNotFound
}

func (r *fakeTimelineRepo) ListAll(_ context.Context) ([]*Timeline, error) {
	result := make([]*Timeline, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		result = append(result, cloneTimeline(r.timelines[r.order[i]]))
	}
	return result, nil
}

func (r *fakeTimelineRepo) ListByDate(_ context.Context, date string) ([]*Timeline, error) {
	var result []*Timeline
	for i := len(r.order) - 1; i >= 0; i-- {
		if r.timelines[r.order[i]].Date == date {
			result = append(result, cloneTimeline(r.timelines[r.order[i]]))
		}
	}
	return result, nil
}

func (r *fakeTimelineRepo) ListByEmployee(_ context.Context, employeeID string) ([]*Timeline, error) {
	var result []*Timeline
	for _, id := range r.order {
		if r.timelines[id].EmployeeID == employeeID {
			result = append(result, cloneTimeline(r.timelines[id]))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date > result[j].Date
	})
	return result, nil
}

func cloneTimeline(t *Timeline) *Timeline {
	if t == nil {
		return nil
	}
	copy := *t
	copy.Entries = make([]Entry, len(t.Entries))
	for i, e := range t.Entries {
		entry := e
		if e.StartTime != nil {
			start := *e.StartTime
			entry.StartTime = &start
		}
		if e.EndTime != nil {
			end := *e.EndTime
			entry.EndTime = &end
		}
		copy.Entries[i] = entry
	}
	return &copy
}

func entry(title string) Entry {
	return Entry{Lat: 25.3, Lng: 51.5, Title: title}
}

func TestService_SaveEntry_CreateThenAppend(t *testing.T) {
	t.Parallel()

	repo := newFakeTimelineRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}, nil)

	saved, created, err := svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeID:   "emp-1",
		EmployeeName: "Alice",
		Date:         "2025-04-01",
		Entry:        entry("Install meter"),
	})
	if err != nil {
		t.Fatalf("SaveEntry returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected first save to create a timeline")
	}
	if saved.Office != DefaultOffice {
		t.Fatalf("expected default office, got %+v", saved.Office)
	}
	if len(saved.Entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(saved.Entries))
	}

	saved, created, err = svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeID:   "emp-1",
		EmployeeName: "Alice",
		Date:         "2025-04-01",
		Entry:        entry("Replace valve"),
	})
	if err != nil {
		t.Fatalf("SaveEntry returned error: %v", err)
	}
	if created {
		t.Fatalf("expected second save to append, not create")
	}
	if len(saved.Entries) != 2 || saved.Entries[1].Title != "Replace valve" {
		t.Fatalf("expected appended entry, got %+v", saved.Entries)
	}

	// 別の日付は独立したタイムラインになる。
	_, created, err = svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeID:   "emp-1",
		EmployeeName: "Alice",
		Date:         "2025-04-02",
		Entry:        entry("Inspection"),
	})
	if err != nil {
		t.Fatalf("SaveEntry returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected a new timeline for a new date")
	}
}

func TestService_SaveEntry_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeTimelineRepo(), &stubClock{now: time.Now().UTC()}, nil)

	if _, _, err := svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeName: "Alice", Date: "2025-04-01", Entry: entry("x"),
	}); !errors.Is(err, ErrInvalidEmployee) {
		t.Fatalf("expected ErrInvalidEmployee, got %v", err)
	}

	if _, _, err := svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeID: "emp-1", EmployeeName: "Alice", Date: "04/01/2025", Entry: entry("x"),
	}); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	if _, _, err := svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeID: "emp-1", EmployeeName: "Alice", Date: "2025-04-01", Entry: Entry{Title: " "},
	}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestService_SetEntryEnd(t *testing.T) {
	t.Parallel()

	repo := newFakeTimelineRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)}, nil)

	if _, _, err := svc.SaveEntry(context.Background(), SaveEntryInput{
		EmployeeID:   "emp-1",
		EmployeeName: "Alice",
		Date:         "2025-04-01",
		Entry:        entry("Install meter"),
	}); err != nil {
		t.Fatalf("SaveEntry returned error: %v", err)
	}

	end := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	updated, err := svc.SetEntryEnd(context.Background(), SetEntryEndInput{
		EmployeeID: "emp-1",
		Date:       "2025-04-01",
		EntryTitle: "Install meter",
		EndTime:    &end,
	})
	if err != nil {
		t.Fatalf("SetEntryEnd returned error: %v", err)
	}
	if updated.Entries[0].EndTime == nil || !updated.Entries[0].EndTime.Equal(end) {
		t.Fatalf("expected end time to be set, got %+v", updated.Entries[0])
	}

	// nil を渡すと終了時刻を取り消せる。
	updated, err = svc.SetEntryEnd(context.Background(), SetEntryEndInput{
		EmployeeID: "emp-1",
		Date:       "2025-04-01",
		EntryTitle: "Install meter",
		EndTime:    nil,
	})
	if err != nil {
		t.Fatalf("SetEntryEnd returned error: %v", err)
	}
	if updated.Entries[0].EndTime != nil {
		t.Fatalf("expected end time to be cleared")
	}

	if _, err := svc.SetEntryEnd(context.Background(), SetEntryEndInput{
		EmployeeID: "emp-1",
		Date:       "2025-04-01",
		EntryTitle: "missing",
	}); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("expected ErrEntryNotFound, got %v", err)
	}

	if _, err := svc.SetEntryEnd(context.Background(), SetEntryEndInput{
		EmployeeID: "emp-2",
		Date:       "2025-04-01",
		EntryTitle: "Install meter",
	}); !errors.Is(err, ErrTimelineNotFound) {
		t.Fatalf("expected ErrTimelineNotFound, got %v", err)
	}
}

func TestService_ListTimelines(t *testing.T) {
	t.Parallel()

	repo := newFakeTimelineRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	for _, in := range []SaveEntryInput{
		{EmployeeID: "emp-1", EmployeeName: "Alice", Date: "2025-04-01", Entry: entry("a")},
		{EmployeeID: "emp-1", EmployeeName: "Alice", Date: "2025-04-02", Entry: entry("b")},
		{EmployeeID: "emp-2", EmployeeName: "Bob", Date: "2025-04-01", Entry: entry("c")},
	} {
		if _, _, err := svc.SaveEntry(context.Background(), in); err != nil {
			t.Fatalf("SaveEntry returned error: %v", err)
		}
	}

	all, err := svc.ListTimelines(context.Background())
	if err != nil {
		t.Fatalf("ListTimelines returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 timelines, got %d", len(all))
	}

	byDate, err := svc.ListTimelinesByDate(context.Background(), "2025-04-01")
	if err != nil {
		t.Fatalf("ListTimelinesByDate returned error: %v", err)
	}
	if len(byDate) != 2 {
		t.Fatalf("expected 2 timelines for 2025-04-01, got %d", len(byDate))
	}

	byEmployee, err := svc.ListTimelinesByEmployee(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("ListTimelinesByEmployee returned error: %v", err)
	}
	if len(byEmployee) != 2 || byEmployee[0].Date != "2025-04-02" {
		t.Fatalf("expected newest date first, got %+v", byEmployee)
	}

	got, err := svc.GetTimeline(context.Background(), "emp-2", "2025-04-01")
	if err != nil {
		t.Fatalf("GetTimeline returned error: %v", err)
	}
	if got.EmployeeName != "Bob" {
		t.Fatalf("expected Bob's timeline, got %+v", got)
	}
}
