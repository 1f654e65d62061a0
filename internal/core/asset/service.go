package asset

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

// Service は資産に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase は資産ユースケースの公開インターフェースです。
type UseCase interface {
	CreateAsset(ctx context.Context, in CreateAssetInput) (*Asset, error)
	UpdateAsset(ctx context.Context, in UpdateAssetInput) (*Asset, error)
	DeleteAsset(ctx context.Context, in DeleteAssetInput) error
	GetAsset(ctx context.Context, in GetAssetInput) (*Asset, error)
	ListAssets(ctx context.Context, in ListAssetsInput) (*ListAssetsResult, error)
	ListAssetsByOrder(ctx context.Context, orderID string) ([]*Asset, error)
	ListAssetsByProject(ctx context.Context, projectID string) ([]*Asset, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateAssetInput は資産作成時の入力です。
type CreateAssetInput struct {
	OrderID      string
	ProjectID    string
	CustomerID   string
	Title        string
	Description  string
	Model        string
	Manufacturer string
	SerialNumber string
	Category     string
	Barcode      string
	FileUpload   string
	Location     string
	CreatedUser  string
}

// UpdateAssetInput は資産更新時の入力です。nil のフィールドは保存済みの値を保持
// します。
type UpdateAssetInput struct {
	ID           string
	OrderID      *string
	ProjectID    *string
	CustomerID   *string
	Title        *string
	Description  *string
	Model        *string
	Manufacturer *string
	SerialNumber *string
	Category     *string
	Barcode      *string
	FileUpload   *string
	Status       *Status
	Location     *string
	ModifiedUser string
}

// DeleteAssetInput は資産削除時の入力です。
type DeleteAssetInput struct {
	ID string
}

// GetAssetInput は資産取得時の入力です。
type GetAssetInput struct {
	ID string
}

// ListAssetsInput は一覧取得時の入力です。
type ListAssetsInput struct {
	Status    *Status
	Category  string
	Search    string
	PageSize  int
	PageToken string
}

// ListAssetsResult は一覧取得結果を表します。
type ListAssetsResult struct {
	Assets        []*Asset
	NextPageToken string
}

// CreateAsset は新しい資産を作成します。
func (s *Service) CreateAsset(ctx context.Context, in CreateAssetInput) (*Asset, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if strings.TrimSpace(in.OrderID) == "" {
		return nil, ErrInvalidOrder
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return nil, ErrInvalidProject
	}
	if strings.TrimSpace(in.CustomerID) == "" {
		return nil, ErrInvalidCustomer
	}

	now := s.clock.Now()
	a := &Asset{
		OrderID:      in.OrderID,
		ProjectID:    in.ProjectID,
		CustomerID:   in.CustomerID,
		Title:        title,
		Description:  in.Description,
		Model:        in.Model,
		Manufacturer: in.Manufacturer,
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		Category:     in.Category,
		Barcode:      strings.TrimSpace(in.Barcode),
		FileUpload:   in.FileUpload,
		Status:       StatusActive,
		Location:     in.Location,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedUser:  in.CreatedUser,
		ModifiedUser: in.CreatedUser,
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateAsset は資産を部分更新します。
func (s *Service) UpdateAsset(ctx context.Context, in UpdateAssetInput) (*Asset, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	existing, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.OrderID != nil {
		if strings.TrimSpace(*in.OrderID) == "" {
			return nil, ErrInvalidOrder
		}
		existing.OrderID = *in.OrderID
	}
	if in.ProjectID != nil {
		if strings.TrimSpace(*in.ProjectID) == "" {
			return nil, ErrInvalidProject
		}
		existing.ProjectID = *in.ProjectID
	}
	if in.CustomerID != nil {
		if strings.TrimSpace(*in.CustomerID) == "" {
			return nil, ErrInvalidCustomer
		}
		existing.CustomerID = *in.CustomerID
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrInvalidTitle
		}
		existing.Title = title
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Model != nil {
		existing.Model = *in.Model
	}
	if in.Manufacturer != nil {
		existing.Manufacturer = *in.Manufacturer
	}
	if in.SerialNumber != nil {
		existing.SerialNumber = strings.TrimSpace(*in.SerialNumber)
	}
	if in.Category != nil {
		existing.Category = *in.Category
	}
	if in.Barcode != nil {
		existing.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.FileUpload != nil {
		existing.FileUpload = *in.FileUpload
	}
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		existing.Status = *in.Status
	}
	if in.Location != nil {
		existing.Location = *in.Location
	}

	existing.UpdatedAt = s.clock.Now()
	existing.ModifiedUser = in.ModifiedUser

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteAsset は資産を削除します。
func (s *Service) DeleteAsset(ctx context.Context, in DeleteAssetInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.Delete(ctx, in.ID)
}

// GetAsset は ID で資産を取得します。
func (s *Service) GetAsset(ctx context.Context, in GetAssetInput) (*Asset, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListAssets は資産の一覧を取得します。
func (s *Service) ListAssets(ctx context.Context, in ListAssetsInput) (*ListAssetsResult, error) {
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

	assets, nextToken, err := s.repo.List(ctx, ListAssetsFilter{
		Status:   in.Status,
		Category: strings.TrimSpace(in.Category),
		Search:   strings.TrimSpace(in.Search),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, err
	}

	return &ListAssetsResult{Assets: assets, NextPageToken: nextToken}, nil
}

// ListAssetsByOrder は注文に紐づく資産を返します。
func (s *Service) ListAssetsByOrder(ctx context.Context, orderID string) ([]*Asset, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, ErrInvalidOrder
	}
	return s.repo.ListByOrder(ctx, orderID)
}

// ListAssetsByProject はプロジェクトに紐づく資産を返します。
func (s *Service) ListAssetsByProject(ctx context.Context, projectID string) ([]*Asset, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidProject
	}
	return s.repo.ListByProject(ctx, projectID)
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
