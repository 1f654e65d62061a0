package project

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeProjectRepo struct {
	projects map[string]*Project
	order    []string
	sequence int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*Project)}
}

func (r *fakeProjectRepo) Create(_ context.Context, p *Project) (*Project, error) {
	clone := cloneProject(p)
	r.sequence++
	clone.ID = fmt.Sprintf("proj-%d", r.sequence)
	r.projects[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneProject(clone), nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *Project) (*Project, error) {
	if _, ok := r.projects[p.ID]; !ok {
		return nil, ErrProjectNotFound
	}
	r.projects[p.ID] = cloneProject(p)
	return cloneProject(p), nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return ErrProjectNotFound
	}
	delete(r.projects, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, ErrProjectNotFound
	}
	return cloneProject(p), nil
}

func (r *fakeProjectRepo) List(_ context.Context, filter ListProjectsFilter) ([]*Project, string, error) {
	var filtered []*Project
	for _, id := range r.order {
		p := r.projects[id]
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(p.Title, filter.Search) &&
			!strings.Contains(p.ContactName, filter.Search) {
			continue
		}
		filtered = append(filtered, cloneProject(p))
	}

	if filter.Offset > len(filtered) {
		return []*Project{}, "", nil
	}

	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := filtered[filter.Offset:end]

	nextToken := ""
	if end < len(filtered) {
		nextToken = strconv.Itoa(end)
	}

	return page, nextToken, nil
}

func (r *fakeProjectRepo) ListByCustomer(_ context.Context, customerID string) ([]*Project, error) {
	var result []*Project
	for _, id := range r.order {
		if r.projects[id].Customer.ID == customerID {
			result = append(result, cloneProject(r.projects[id]))
		}
	}
	return result, nil
}

func cloneProject(p *Project) *Project {
	if p == nil {
		return nil
	}
	copy := *p
	if p.StartDate != nil {
		start := *p.StartDate
		copy.StartDate = &start
	}
	if p.EndDate != nil {
		end := *p.EndDate
		copy.EndDate = &end
	}
	return &copy
}

func validInput(title string) CreateProjectInput {
	return CreateProjectInput{
		Customer: Ref{ID: "cust-1", Name: "Acme"},
		Employee: Ref{ID: "user-1", Name: "Alice"},
		Title:    title,
	}
}

func TestService_CreateProject(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo()
	clk := &stubClock{now: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk)

	created, err := svc.CreateProject(context.Background(), validInput("  Site Survey  "))
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	if created.Title != "Site Survey" {
		t.Fatalf("expected trimmed title, got %q", created.Title)
	}
	if created.Status != StatusActive {
		t.Fatalf("expected default status Active, got %s", created.Status)
	}
	if !created.CreatedAt.Equal(clk.now) {
		t.Fatalf("expected clock timestamp")
	}
}

func TestService_CreateProject_Validation(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeProjectRepo(), &stubClock{now: time.Now().UTC()})

	if _, err := svc.CreateProject(context.Background(), validInput(" ")); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	in := validInput("ok")
	in.Customer = Ref{}
	if _, err := svc.CreateProject(context.Background(), in); !errors.Is(err, ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}

	in = validInput("ok")
	in.Employee = Ref{}
	if _, err := svc.CreateProject(context.Background(), in); !errors.Is(err, ErrInvalidEmployee) {
		t.Fatalf("expected ErrInvalidEmployee, got %v", err)
	}

	in = validInput("ok")
	start := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	in.StartDate = &start
	in.EndDate = &end
	if _, err := svc.CreateProject(context.Background(), in); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestService_UpdateProject_PartialAndDateRange(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo()
	clk := &stubClock{now: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk)

	in := validInput("original")
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	in.StartDate = &start
	created, err := svc.CreateProject(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}

	status := StatusOnHold
	budget := 5000.0
	updated, err := svc.UpdateProject(context.Background(), UpdateProjectInput{
		ID:     created.ID,
		Status: &status,
		Budget: &budget,
	})
	if err != nil {
		t.Fatalf("UpdateProject returned error: %v", err)
	}
	if updated.Status != StatusOnHold || updated.Budget != 5000 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.Title != "original" {
		t.Fatalf("untouched fields must survive: %+v", updated)
	}

	// 保存済みの開始日とマージして検証する。
	badEnd := start.Add(-time.Hour)
	if _, err := svc.UpdateProject(context.Background(), UpdateProjectInput{
		ID:      created.ID,
		EndDate: &badEnd,
	}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestService_ListProjectsByCustomer(t *testing.T) {
	t.Parallel()

	repo := newFakeProjectRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()})

	if _, err := svc.CreateProject(context.Background(), validInput("one")); err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}
	other := validInput("two")
	other.Customer = Ref{ID: "cust-2", Name: "Other"}
	if _, err := svc.CreateProject(context.Background(), other); err != nil {
		t.Fatalf("CreateProject returned error: %v", err)
	}

	projects, err := svc.ListProjectsByCustomer(context.Background(), "cust-1")
	if err != nil {
		t.Fatalf("ListProjectsByCustomer returned error: %v", err)
	}
	if len(projects) != 1 || projects[0].Title != "one" {
		t.Fatalf("expected one project for cust-1, got %+v", projects)
	}

	if _, err := svc.ListProjectsByCustomer(context.Background(), " "); !errors.Is(err, ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}
