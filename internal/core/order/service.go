package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ogurasousui/fieldservice/internal/core/event"
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

// Service は注文に関するユースケースをまとめます。注文番号の採番は作成と同一
// トランザクション内で直列化されます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	events event.Publisher
}

// UseCase は注文ユースケースの公開インターフェースです。
type UseCase interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, in GetOrderInput) (*Order, error)
	ListOrders(ctx context.Context, in ListOrdersInput) (*ListOrdersResult, error)
	ListOrdersByProject(ctx context.Context, projectID string) ([]*Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	UpdateOrder(ctx context.Context, in UpdateOrderInput) (*Order, error)
	DeleteOrder(ctx context.Context, in DeleteOrderInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, events event.Publisher) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if events == nil {
		events = event.NopPublisher{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, events: events}
}

// CreateOrderInput は注文作成時の入力です。OrderNumber は入力に含まれず、必ず
// 採番されます。
type CreateOrderInput struct {
	Customer     Ref
	User         Ref
	Project      Ref
	Title        string
	ErpNumber    string
	Amount       float64
	OrderDate    *time.Time
	DeliveryDate *time.Time
	FileUpload   string
	PublicLink   string
	Notes        string
	CreatedUser  string
}

// UpdateOrderInput は注文更新時の入力です。nil のフィールドは保存済みの値を
// 保持します。注文番号は更新できません。
type UpdateOrderInput struct {
	ID           string
	Customer     *Ref
	User         *Ref
	Project      *Ref
	Title        *string
	ErpNumber    *string
	Amount       *float64
	OrderDate    *time.Time
	DeliveryDate *time.Time
	FileUpload   *string
	PublicLink   *string
	Status       *Status
	Notes        *string
	ModifiedUser string
}

// DeleteOrderInput は注文削除時の入力です。
type DeleteOrderInput struct {
	ID string
}

// GetOrderInput は注文取得時の入力です。
type GetOrderInput struct {
	ID string
}

// ListOrdersInput は一覧取得時の入力です。
type ListOrdersInput struct {
	Status    *Status
	Search    string
	PageSize  int
	PageToken string
}

// ListOrdersResult は一覧取得結果を表します。
type ListOrdersResult struct {
	Orders        []*Order
	NextPageToken string
}

// CreateOrder は新しい注文を作成します。直近の注文番号を読み取って次の番号を
// 採番し、同一トランザクション内で挿入します。
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if strings.TrimSpace(in.Customer.ID) == "" {
		return nil, ErrInvalidCustomer
	}
	if strings.TrimSpace(in.User.ID) == "" {
		return nil, ErrInvalidUser
	}
	if strings.TrimSpace(in.Project.ID) == "" {
		return nil, ErrInvalidProject
	}
	if in.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var created *Order
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockSequence(txCtx); err != nil {
			return err
		}

		last, err := s.repo.LatestOrderNumber(txCtx)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		orderDate := now
		if in.OrderDate != nil {
			orderDate = in.OrderDate.UTC()
		}

		o := &Order{
			Customer:     in.Customer,
			User:         in.User,
			Project:      in.Project,
			Title:        title,
			OrderNumber:  NextOrderNumber(last),
			ErpNumber:    in.ErpNumber,
			Amount:       in.Amount,
			OrderDate:    orderDate,
			DeliveryDate: cloneTime(in.DeliveryDate),
			FileUpload:   in.FileUpload,
			PublicLink:   in.PublicLink,
			Status:       StatusPending,
			Notes:        in.Notes,
			CreatedAt:    now,
			UpdatedAt:    now,
			CreatedUser:  in.CreatedUser,
			ModifiedUser: in.CreatedUser,
		}

		result, err := s.repo.Create(txCtx, o)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	// イベント発行はベストエフォートです。
	_ = s.events.PublishSync(ctx, event.Event{
		Type:       event.TypeOrderCreated,
		Key:        created.ID,
		OccurredAt: s.clock.Now(),
		Payload:    created,
	})
	return created, nil
}

// UpdateOrder は注文を部分更新します。
func (s *Service) UpdateOrder(ctx context.Context, in UpdateOrderInput) (*Order, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Order
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Customer != nil {
			if strings.TrimSpace(in.Customer.ID) == "" {
				return ErrInvalidCustomer
			}
			existing.Customer = *in.Customer
		}
		if in.User != nil {
			if strings.TrimSpace(in.User.ID) == "" {
				return ErrInvalidUser
			}
			existing.User = *in.User
		}
		if in.Project != nil {
			if strings.TrimSpace(in.Project.ID) == "" {
				return ErrInvalidProject
			}
			existing.Project = *in.Project
		}

		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return ErrInvalidTitle
			}
			existing.Title = title
		}
		if in.ErpNumber != nil {
			existing.ErpNumber = *in.ErpNumber
		}
		if in.Amount != nil {
			if *in.Amount <= 0 {
				return ErrInvalidAmount
			}
			existing.Amount = *in.Amount
		}
		if in.OrderDate != nil {
			existing.OrderDate = in.OrderDate.UTC()
		}
		if in.DeliveryDate != nil {
			existing.DeliveryDate = cloneTime(in.DeliveryDate)
		}
		if in.FileUpload != nil {
			existing.FileUpload = *in.FileUpload
		}
		if in.PublicLink != nil {
			existing.PublicLink = *in.PublicLink
		}
		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}
		if in.Notes != nil {
			existing.Notes = *in.Notes
		}

		existing.UpdatedAt = s.clock.Now()
		existing.ModifiedUser = in.ModifiedUser

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

// DeleteOrder は注文を削除します。
func (s *Service) DeleteOrder(ctx context.Context, in DeleteOrderInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetOrder は注文を取得します。
func (s *Service) GetOrder(ctx context.Context, in GetOrderInput) (*Order, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Order
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

// ListOrders は注文の一覧を取得します。
func (s *Service) ListOrders(ctx context.Context, in ListOrdersInput) (*ListOrdersResult, error) {
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

	var (
		orders    []*Order
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListOrdersFilter{
			Status: in.Status,
			Search: strings.TrimSpace(in.Search),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		orders = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListOrdersResult{Orders: orders, NextPageToken: nextToken}, nil
}

// ListOrdersByProject はプロジェクトに紐づく注文を新しい順に返します。
func (s *Service) ListOrdersByProject(ctx context.Context, projectID string) ([]*Order, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, ErrInvalidProject
	}

	var orders []*Order
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByProject(txCtx, projectID)
		if err != nil {
			return err
		}
		orders = result
		return nil
	}); err != nil {
		return nil, err
	}

	return orders, nil
}

// ListOrdersByCustomer は顧客に紐づく注文を新しい順に返します。
func (s *Service) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrInvalidCustomer
	}

	var orders []*Order
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByCustomer(txCtx, customerID)
		if err != nil {
			return err
		}
		orders = result
		return nil
	}); err != nil {
		return nil, err
	}

	return orders, nil
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
