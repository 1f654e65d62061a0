package user

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

type fakeUserRepo struct {
	users     map[string]*User
	order     []string
	sequence  int
	lockCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *User) (*User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, ErrEmailAlreadyExists
		}
		if existing.Code == u.Code {
			return nil, ErrEmployeeCodeTaken
		}
	}

	clone := cloneUser(u)
	r.sequence++
	clone.ID = fmt.Sprintf("user-%d", r.sequence)
	r.users[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return cloneUser(clone), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *User) (*User, error) {
	if _, ok := r.users[u.ID]; !ok {
		return nil, ErrUserNotFound
	}
	r.users[u.ID] = cloneUser(u)
	return cloneUser(u), nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	for idx, existingID := range r.order {
		if existingID == id {
			r.order = append(r.order[:idx], r.order[idx+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *fakeUserRepo) LatestEmployeeCode(_ context.Context) (string, error) {
	if len(r.order) == 0 {
		return "", nil
	}
	return r.users[r.order[len(r.order)-1]].Code, nil
}

func (r *fakeUserRepo) List(_ context.Context, filter ListUsersFilter) ([]*User, string, error) {
	var filtered []*User
	for _, id := range r.order {
		u := r.users[id]
		if filter.Status != nil && u.Status != *filter.Status {
			continue
		}
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(u.Name, filter.Search) &&
			!strings.Contains(u.Email, filter.Search) &&
			!strings.Contains(u.Phone, filter.Search) {
			continue
		}
		filtered = append(filtered, cloneUser(u))
	}

	if filter.Offset > len(filtered) {
		return []*User{}, "", nil
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

func (r *fakeUserRepo) LockSequence(_ context.Context) error {
	r.lockCalls++
	return nil
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	copy := *u
	return &copy
}

func TestService_CreateUser_AssignsSequentialCodes(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, &stubClock{now: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)}, nil)

	first, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if first.Code != "T101" {
		t.Fatalf("expected first code T101, got %s", first.Code)
	}
	if first.Role != RoleEmployee {
		t.Fatalf("expected default role employee, got %s", first.Role)
	}
	if first.Status != StatusActive || !first.IsActive {
		t.Fatalf("expected new user to be active: %+v", first)
	}

	second, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:  "Bob",
		Email: "bob@example.com",
		Role:  RoleTechnician,
	})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if second.Code != "T102" {
		t.Fatalf("expected second code T102, got %s", second.Code)
	}

	if repo.lockCalls != 2 {
		t.Fatalf("expected sequence lock per creation, got %d", repo.lockCalls)
	}
}

func TestService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Name: " ", Email: "a@example.com"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "A", Email: "not-an-email"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "A", Email: "a@example.com", Role: Role("boss")}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_CreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "A", Email: "dup@example.com"}); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	// 大文字小文字はメールアドレスの同一性に影響しない。
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "B", Email: "DUP@example.com"}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_UpdateUser_PartialAndRegenerateCode(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	clk := &stubClock{now: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "Alice", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)

	status := StatusOnLeave
	phone := "555-0100"
	updated, err := svc.UpdateUser(context.Background(), UpdateUserInput{
		ID:     created.ID,
		Status: &status,
		Phone:  &phone,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if updated.Status != StatusOnLeave || updated.IsActive {
		t.Fatalf("expected On Leave to clear IsActive: %+v", updated)
	}
	if updated.Phone != phone || updated.Name != "Alice" {
		t.Fatalf("partial update mismatch: %+v", updated)
	}
	if updated.Code != created.Code {
		t.Fatalf("code must not change without regeneration: %s != %s", updated.Code, created.Code)
	}
	if !updated.UpdatedAt.Equal(clk.now) {
		t.Fatalf("expected updated timestamp to use clock")
	}

	regenerated, err := svc.UpdateUser(context.Background(), UpdateUserInput{
		ID:             created.ID,
		RegenerateCode: true,
	})
	if err != nil {
		t.Fatalf("UpdateUser returned error: %v", err)
	}
	if regenerated.Code != "T102" {
		t.Fatalf("expected regenerated code T102, got %s", regenerated.Code)
	}
}

func TestService_UpdateUser_EmailConflict(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "A", Email: "a@example.com"}); err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	second, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "B", Email: "b@example.com"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	taken := "a@example.com"
	if _, err := svc.UpdateUser(context.Background(), UpdateUserInput{ID: second.ID, Email: &taken}); !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}

	// 自分自身のメールアドレスを再指定しても衝突にはならない。
	same := "b@example.com"
	if _, err := svc.UpdateUser(context.Background(), UpdateUserInput{ID: second.ID, Email: &same}); err != nil {
		t.Fatalf("re-setting own email should succeed: %v", err)
	}
}

func TestService_ListUsers_SearchAndFilter(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	names := []string{"Alice", "Bob", "Carol"}
	for i, name := range names {
		in := CreateUserInput{Name: name, Email: fmt.Sprintf("%s@example.com", strings.ToLower(name))}
		if i == 1 {
			in.Role = RoleManager
		}
		if _, err := svc.CreateUser(context.Background(), in); err != nil {
			t.Fatalf("CreateUser returned error: %v", err)
		}
	}

	result, err := svc.ListUsers(context.Background(), ListUsersInput{Search: "bob@"})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(result.Users) != 1 || result.Users[0].Name != "Bob" {
		t.Fatalf("expected only Bob, got %+v", result.Users)
	}

	role := RoleManager
	result, err = svc.ListUsers(context.Background(), ListUsersInput{Role: &role})
	if err != nil {
		t.Fatalf("ListUsers returned error: %v", err)
	}
	if len(result.Users) != 1 || result.Users[0].Role != RoleManager {
		t.Fatalf("expected one manager, got %+v", result.Users)
	}

	if _, err := svc.ListUsers(context.Background(), ListUsersInput{PageSize: maxListPageSize + 1}); !errors.Is(err, ErrInvalidPageSize) {
		t.Fatalf("expected ErrInvalidPageSize, got %v", err)
	}
	if _, err := svc.ListUsers(context.Background(), ListUsersInput{PageToken: "abc"}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestService_DeleteUser(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{Name: "A", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}

	if err := svc.DeleteUser(context.Background(), DeleteUserInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteUser returned error: %v", err)
	}

	if _, err := svc.GetUser(context.Background(), GetUserInput{ID: created.ID}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
