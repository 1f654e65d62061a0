package customer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
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

// Service は顧客に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase は顧客ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, in UpdateCustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, in DeleteCustomerInput) error
	GetCustomer(ctx context.Context, in GetCustomerInput) (*Customer, error)
	ListCustomers(ctx context.Context, in ListCustomersInput) (*ListCustomersResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateCustomerInput は顧客作成時の入力です。
type CreateCustomerInput struct {
	Name      string
	Address   string
	Phone     string
	Fax       string
	Email     string
	Latitude  *float64
	Longitude *float64
}

// UpdateCustomerInput は顧客更新時の入力です。nil のフィールドは保存済みの値を
// 保持します。
type UpdateCustomerInput struct {
	ID        string
	Name      *string
	Address   *string
	Phone     *string
	Fax       *string
	Email     *string
	Latitude  *float64
	Longitude *float64
	IsActive  *bool
}

// DeleteCustomerInput は顧客削除時の入力です。
type DeleteCustomerInput struct {
	ID string
}

// GetCustomerInput は顧客取得時の入力です。
type GetCustomerInput struct {
	ID string
}

// ListCustomersInput は一覧取得時の入力です。
type ListCustomersInput struct {
	IsActive  *bool
	Search    string
	PageSize  int
	PageToken string
}

// ListCustomersResult は一覧取得結果を表します。
type ListCustomersResult struct {
	Customers     []*Customer
	NextPageToken string
}

// CreateCustomer は新しい顧客を作成します。
func (s *Service) CreateCustomer(ctx context.Context, in CreateCustomerInput) (*Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	if err := s.ensureEmailNotExists(ctx, email); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &Customer{
		Name:      name,
		Address:   in.Address,
		Phone:     in.Phone,
		Fax:       in.Fax,
		Email:     email,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateCustomer は顧客情報を部分更新します。
func (s *Service) UpdateCustomer(ctx context.Context, in UpdateCustomerInput) (*Customer, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrInvalidName
		}
		existing.Name = name
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, ErrInvalidEmail
		}
		if email != existing.Email {
			if err := s.ensureEmailNotExists(ctx, email); err != nil {
				return nil, err
			}
			existing.Email = email
		}
	}
	if in.Address != nil {
		existing.Address = *in.Address
	}
	if in.Phone != nil {
		existing.Phone = *in.Phone
	}
	if in.Fax != nil {
		existing.Fax = *in.Fax
	}
	if in.Latitude != nil {
		lat := *in.Latitude
		existing.Latitude = &lat
	}
	if in.Longitude != nil {
		lng := *in.Longitude
		existing.Longitude = &lng
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}

	existing.UpdatedAt = s.clock.Now()

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteCustomer は顧客を削除します。
func (s *Service) DeleteCustomer(ctx context.Context, in DeleteCustomerInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

// GetCustomer は ID で顧客を取得します。
func (s *Service) GetCustomer(ctx context.Context, in GetCustomerInput) (*Customer, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListCustomers は顧客の一覧を取得します。
func (s *Service) ListCustomers(ctx context.Context, in ListCustomersInput) (*ListCustomersResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	customers, nextToken, err := s.repo.List(ctx, ListCustomersFilter{
		IsActive: in.IsActive,
		Search:   strings.TrimSpace(in.Search),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListCustomersResult{Customers: customers, NextPageToken: nextToken}, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrCustomerNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
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
