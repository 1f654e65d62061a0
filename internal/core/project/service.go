package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service はプロジェクトに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はプロジェクトユースケースの公開インターフェースです。
type UseCase interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error)
	UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error)
	DeleteProject(ctx context.Context, in DeleteProjectInput) error
	GetProject(ctx context.Context, in GetProjectInput) (*Project, error)
	ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error)
	ListProjectsByCustomer(ctx context.Context, customerID string) ([]*Project, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateProjectInput はプロジェクト作成時の入力です。
type CreateProjectInput struct {
	Customer     Ref
	Employee     Ref
	Title        string
	MapLocation  string
	ContactName  string
	ContactPhone string
	ContactEmail string
	Description  string
	FileUpload   string
	Latitude     *float64
	Longitude    *float64
	StartDate    *time.Time
	EndDate      *time.Time
	Budget       float64
	CreatedUser  string
}

// UpdateProjectInput はプロジェクト更新時の入力です。nil のフィールドは保存済み
// の値を保持します。
type UpdateProjectInput struct {
	ID           string
	Customer     *Ref
	Employee     *Ref
	Title        *string
	MapLocation  *string
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	Description  *string
	FileUpload   *string
	Latitude     *float64
	Longitude    *float64
	Status       *Status
	StartDate    *time.Time
	EndDate      *time.Time
	Budget       *float64
	ModifiedUser string
}

// DeleteProjectInput はプロジェクト削除時の入力です。
type DeleteProjectInput struct {
	ID string
}

// GetProjectInput はプロジェクト取得時の入力です。
type GetProjectInput struct {
	ID string
}

// ListProjectsInput は一覧取得時の入力です。
type ListProjectsInput struct {
	Status    *Status
	Search    string
	PageSize  int
	PageToken string
}

// ListProjectsResult は一覧取得結果を表します。
type ListProjectsResult struct {
	Projects      []*Project
	NextPageToken string
}

// CreateProject は新しいプロジェクトを作成します。
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if strings.TrimSpace(in.Customer.ID) == "" {
		return nil, ErrInvalidCustomer
	}
	if strings.TrimSpace(in.Employee.ID) == "" {
		return nil, ErrInvalidEmployee
	}
	if err := validateDateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &Project{
		Customer:     in.Customer,
		Employee:     in.Employee,
		Title:        title,
		MapLocation:  in.MapLocation,
		ContactName:  in.ContactName,
		ContactPhone: in.ContactPhone,
		ContactEmail: in.ContactEmail,
		Description:  in.Description,
		FileUpload:   in.FileUpload,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Status:       StatusActive,
		StartDate:    cloneTime(in.StartDate),
		EndDate:      cloneTime(in.EndDate),
		Budget:       in.Budget,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedUser:  in.CreatedUser,
		ModifiedUser: in.CreatedUser,
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateProject はプロジェクトを部分更新します。
func (s *Service) UpdateProject(ctx context.Context, in UpdateProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Customer != nil {
		if strings.TrimSpace(in.Customer.ID) == "" {
			return nil, ErrInvalidCustomer
		}
		existing.Customer = *in.Customer
	}
	if in.Employee != nil {
		if strings.TrimSpace(in.Employee.ID) == "" {
			return nil, ErrInvalidEmployee
		}
		existing.Employee = *in.Employee
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		existing.Title = title
	}
	if in.MapLocation != nil {
		existing.MapLocation = *in.MapLocation
	}
	if in.ContactName != nil {
		existing.ContactName = *in.ContactName
	}
	if in.ContactPhone != nil {
		existing.ContactPhone = *in.ContactPhone
	}
	if in.ContactEmail != nil {
		existing.ContactEmail = *in.ContactEmail
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.FileUpload != nil {
		existing.FileUpload = *in.FileUpload
	}
	if in.Latitude != nil {
		lat := *in.Latitude
		existing.Latitude = &lat
	}
	if in.Longitude != nil {
		lng := *in.Longitude
		existing.Longitude = &lng
	}
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		existing.Status = *in.Status
	}
	if in.StartDate != nil {
		existing.StartDate = cloneTime(in.StartDate)
	}
	if in.EndDate != nil {
		existing.EndDate = cloneTime(in.EndDate)
	}
	if err := validateDateRange(existing.StartDate, existing.EndDate); err != nil {
		return nil, err
	}
	if in.Budget != nil {
		existing.Budget = *in.Budget
	}

	existing.UpdatedAt = s.clock.Now()
	existing.ModifiedUser = in.ModifiedUser

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProject はプロジェクトを削除します。
func (s *Service) DeleteProject(ctx context.Context, in DeleteProjectInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

// GetProject は ID でプロジェクトを取得します。
func (s *Service) GetProject(ctx context.Context, in GetProjectInput) (*Project, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListProjects はプロジェクトの一覧を取得します。
func (s *Service) ListProjects(ctx context.Context, in ListProjectsInput) (*ListProjectsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	if in.Status != nil && !isValidStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}

	projects, nextToken, err := s.repo.List(ctx, ListProjectsFilter{
		Status: in.Status,
		Search: strings.TrimSpace(in.Search),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListProjectsResult{Projects: projects, NextPageToken: nextToken}, nil
}

// ListProjectsByCustomer は顧客に紐づくプロジェクトを新しい順に返します。
func (s *Service) ListProjectsByCustomer(ctx context.Context, customerID string) ([]*Project, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidCustomer
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

func validateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidDateRange
	}
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := t.UTC()
	return &clone
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
