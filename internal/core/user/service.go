package user

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

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は従業員に関するユースケースをまとめます。社員コードの採番は作成と
// 同一トランザクション内で直列化されます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserInput) error
	GetUser(ctx context.Context, in GetUserInput) (*User, error)
	ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateUserInput は従業員作成時の入力です。Code は入力に含まれず、必ず採番され
// ます。
type CreateUserInput struct {
	Name        string
	Email       string
	Designation string
	Role        Role
	Phone       string
	AssetID     string
	OrderID     string
	ProjectID   string
	CustomerID  string
}

// UpdateUserInput は従業員更新時の入力です。nil のフィールドは保存済みの値を
// 保持します。RegenerateCode を立てると社員コードを採番し直します。
type UpdateUserInput struct {
	ID             string
	Name           *string
	Email          *string
	Designation    *string
	Role           *Role
	Phone          *string
	Status         *Status
	IsActive       *bool
	AssetID        *string
	OrderID        *string
	ProjectID      *string
	CustomerID     *string
	RegenerateCode bool
}

// DeleteUserInput は従業員削除時の入力です。
type DeleteUserInput struct {
	ID string
}

// GetUserInput は従業員取得時の入力です。
type GetUserInput struct {
	ID string
}

// ListUsersInput は一覧取得時の入力です。
type ListUsersInput struct {
	Status    *Status
	Role      *Role
	Search    string
	PageSize  int
	PageToken string
}

// ListUsersResult は一覧取得結果を表します。
type ListUsersResult struct {
	Users         []*User
	NextPageToken string
}

// CreateUser は新しい従業員を作成します。直近の社員コードを読み取って次のコード
// を採番し、同一トランザクション内で挿入します。
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	role := in.Role
	if role == "" {
		role = RoleEmployee
	}
	if !isValidRole(role) {
		return nil, ErrInvalidRole
	}

	var created *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		if err := s.repo.LockSequence(txCtx); err != nil {
			return err
		}

		last, err := s.repo.LatestEmployeeCode(txCtx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		u := &User{
			Name:        name,
			Email:       email,
			Designation: in.Designation,
			Role:        role,
			Code:        NextEmployeeCode(last),
			Phone:       in.Phone,
			Status:      StatusActive,
			IsActive:    true,
			AssetID:     in.AssetID,
			OrderID:     in.OrderID,
			ProjectID:   in.ProjectID,
			CustomerID:  in.CustomerID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		result, err := s.repo.Create(txCtx, u)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateUser は従業員情報を部分更新します。
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrInvalidName
			}
			existing.Name = name
		}

		if in.Email != nil {
			email, err := normalizeEmail(*in.Email)
			if err != nil {
				return ErrInvalidEmail
			}
			if email != existing.Email {
				if err := s.ensureEmailNotExists(txCtx, email); err != nil {
					return err
				}
				existing.Email = email
			}
		}

		if in.Designation != nil {
			existing.Designation = *in.Designation
		}
		if in.Role != nil {
			if !isValidRole(*in.Role) {
				return ErrInvalidRole
			}
			existing.Role = *in.Role
		}
		if in.Phone != nil {
			existing.Phone = *in.Phone
		}
		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
			existing.IsActive = *in.Status == StatusActive
		}
		if in.IsActive != nil {
			existing.IsActive = *in.IsActive
		}
		if in.AssetID != nil {
			existing.AssetID = *in.AssetID
		}
		if in.OrderID != nil {
			existing.OrderID = *in.OrderID
		}
		if in.ProjectID != nil {
			existing.ProjectID = *in.ProjectID
		}
		if in.CustomerID != nil {
			existing.CustomerID = *in.CustomerID
		}

		if in.RegenerateCode {
			if err := s.repo.LockSequence(txCtx); err != nil {
				return err
			}
			last, err := s.repo.LatestEmployeeCode(txCtx)
			if err != nil {
				return err
			}
			existing.Code = NextEmployeeCode(last)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteUser は従業員を削除します。
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetUser は ID で従業員を取得します。
func (s *Service) GetUser(ctx context.Context, in GetUserInput) (*User, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListUsers は従業員の一覧を取得します。
func (s *Service) ListUsers(ctx context.Context, in ListUsersInput) (*ListUsersResult, error) {
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
	if in.Role != nil && !isValidRole(*in.Role) {
		return nil, ErrInvalidRole
	}

	var (
		users     []*User
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListUsersFilter{
			Status: in.Status,
			Role:   in.Role,
			Search: strings.TrimSpace(in.Search),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		users = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListUsersResult{Users: users, NextPageToken: nextToken}, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
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
