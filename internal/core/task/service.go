package task

import (
	"context"
	"errors"
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

// Service はタスクに関するユースケースをまとめます。スケジュール衝突の判定
// (admission control) を作成・更新時に行い、作業員の二重予約を拒否します。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	events event.Publisher
}

// UseCase はタスクユースケースの公開インターフェースです。
type UseCase interface {
	CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error)
	GetTask(ctx context.Context, in GetTaskInput) (*Task, error)
	ListTasks(ctx context.Context, in ListTasksInput) (*ListTasksResult, error)
	UpdateTask(ctx context.Context, in UpdateTaskInput) (*Task, error)
	DeleteTask(ctx context.Context, in DeleteTaskInput) error
	CheckSchedule(ctx context.Context, in CheckScheduleInput) (*CheckScheduleResult, error)
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

// CreateTaskInput はタスク作成時の入力です。
type CreateTaskInput struct {
	Worker       WorkerRef
	AssetID      string
	OrderID      string
	ProjectID    string
	CustomerID   string
	Title        string
	Description  string
	PlanDuration int
	StartTime    *time.Time
	EndTime      *time.Time
	FileUpload   string
	Priority     *Priority
	CreatedUser  string
}

// UpdateTaskInput はタスク更新時の入力です。nil のフィールドは保存済みの値を
// 保持します。
type UpdateTaskInput struct {
	ID                 string
	Worker             *WorkerRef
	AssetID            *string
	OrderID            *string
	ProjectID          *string
	CustomerID         *string
	Title              *string
	Description        *string
	PlanDuration       *int
	StartTime          *time.Time
	EndTime            *time.Time
	ActualStartTime    *time.Time
	ActualEndTime      *time.Time
	FileUpload         *string
	Priority           *Priority
	Status             *Status
	PercentageComplete *int
	ModifiedUser       string
}

// DeleteTaskInput はタスク削除時の入力です。
type DeleteTaskInput struct {
	ID string
}

// GetTaskInput はタスク取得時の入力です。
type GetTaskInput struct {
	ID string
}

// ListTasksInput は一覧取得時の入力です。
type ListTasksInput struct {
	Status    *Status
	Priority  *Priority
	Search    string
	PageSize  int
	PageToken string
}

// ListTasksResult は一覧取得結果を表します。
type ListTasksResult struct {
	Tasks         []*Task
	NextPageToken string
}

// CheckScheduleInput は衝突チェックの入力です。ExcludeTaskID は更新対象自身を
// チェック対象から除外するために指定します。
type CheckScheduleInput struct {
	WorkerID      string
	StartTime     time.Time
	EndTime       time.Time
	ExcludeTaskID string
}

// CheckScheduleResult は衝突チェックの結果です。Conflict が真の場合、Task に
// 衝突した既存タスクの要約が入ります。
type CheckScheduleResult struct {
	Conflict bool
	Task     *ConflictTask
}

// CreateTask は新しいタスクを作成します。作成前に作業員のスケジュール衝突を
// 検査し、衝突があれば *ConflictError を返して書き込みを行いません。
func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (*Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	workerID := strings.TrimSpace(in.Worker.ID)
	if workerID == "" {
		return nil, ErrMissingWorker
	}

	if in.StartTime == nil || in.EndTime == nil {
		return nil, ErrMissingSchedule
	}
	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}

	priority := PriorityMedium
	if in.Priority != nil {
		if !isValidPriority(*in.Priority) {
			return nil, ErrInvalidPriority
		}
		priority = *in.Priority
	}

	var created *Task
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockWorker(txCtx, workerID); err != nil {
			return err
		}

		conflict, err := s.findConflict(txCtx, workerID, start, end, "")
		if err != nil {
			return err
		}
		if conflict != nil {
			return &ConflictError{Task: *conflict}
		}

		now := s.clock.Now()
		t := &Task{
			Worker:       WorkerRef{ID: workerID, Name: strings.TrimSpace(in.Worker.Name)},
			AssetID:      in.AssetID,
			OrderID:      in.OrderID,
			ProjectID:    in.ProjectID,
			CustomerID:   in.CustomerID,
			Title:        title,
			Description:  in.Description,
			PlanDuration: in.PlanDuration,
			StartTime:    start,
			EndTime:      end,
			FileUpload:   in.FileUpload,
			Priority:     priority,
			Status:       StatusTodo,
			CreatedAt:    now,
			UpdatedAt:    now,
			CreatedUser:  in.CreatedUser,
			ModifiedUser: in.CreatedUser,
		}

		result, err := s.repo.Create(txCtx, t)
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, event.TypeTaskCreated, created.ID, created)
	return created, nil
}

// UpdateTask はタスクを部分更新します。衝突チェックは worker・start・end の
// いずれかが入力に含まれる場合のみ実行され、比較される時間窓は保存済みの値と
// 入力値をマージした結果です。
func (s *Service) UpdateTask(ctx context.Context, in UpdateTaskInput) (*Task, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var updated *Task
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		scheduleTouched := in.Worker != nil || in.StartTime != nil || in.EndTime != nil

		if in.Worker != nil {
			workerID := strings.TrimSpace(in.Worker.ID)
			if workerID == "" {
				return ErrMissingWorker
			}
			existing.Worker = WorkerRef{ID: workerID, Name: strings.TrimSpace(in.Worker.Name)}
		}

		if in.Title != nil {
			title := strings.TrimSpace(*in.Title)
			if title == "" {
				return ErrInvalidTitle
			}
			existing.Title = title
		}

		if in.Description != nil {
			existing.Description = *in.Description
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
		if in.PlanDuration != nil {
			existing.PlanDuration = *in.PlanDuration
		}
		if in.FileUpload != nil {
			existing.FileUpload = *in.FileUpload
		}

		if in.StartTime != nil {
			existing.StartTime = in.StartTime.UTC()
		}
		if in.EndTime != nil {
			existing.EndTime = in.EndTime.UTC()
		}
		if in.ActualStartTime != nil {
			actualStart := in.ActualStartTime.UTC()
			existing.ActualStartTime = &actualStart
		}
		if in.ActualEndTime != nil {
			actualEnd := in.ActualEndTime.UTC()
			existing.ActualEndTime = &actualEnd
		}

		if scheduleTouched {
			if !existing.EndTime.After(existing.StartTime) {
				return ErrInvalidWindow
			}
			if err := s.repo.LockWorker(txCtx, existing.Worker.ID); err != nil {
				return err
			}
			conflict, err := s.findConflict(txCtx, existing.Worker.ID, existing.StartTime, existing.EndTime, existing.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return &ConflictError{Task: *conflict}
			}
		}

		if in.Priority != nil {
			if !isValidPriority(*in.Priority) {
				return ErrInvalidPriority
			}
			existing.Priority = *in.Priority
		}

		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
		}

		if in.PercentageComplete != nil {
			if *in.PercentageComplete < 0 || *in.PercentageComplete > 100 {
				return ErrInvalidPercentage
			}
			existing.PercentageComplete = *in.PercentageComplete
		}

		if existing.Status == StatusCompleted {
			existing.Completed = true
			existing.PercentageComplete = 100
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

	s.publish(ctx, event.TypeTaskUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteTask はタスクを削除します。
func (s *Service) DeleteTask(ctx context.Context, in DeleteTaskInput) error {
	if strings.TrimSpace(in.ID) == "" {
		return fmt.Errorf("id: %w", ErrInvalidID)
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	}); err != nil {
		return err
	}

	s.publish(ctx, event.TypeTaskDeleted, in.ID, nil)
	return nil
}

// GetTask はタスクを取得します。
func (s *Service) GetTask(ctx context.Context, in GetTaskInput) (*Task, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, fmt.Errorf("id: %w", ErrInvalidID)
	}

	var result *Task
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

// ListTasks はタスクの一覧を取得します。
func (s *Service) ListTasks(ctx context.Context, in ListTasksInput) (*ListTasksResult, error) {
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
	if in.Priority != nil && !isValidPriority(*in.Priority) {
		return nil, ErrInvalidPriority
	}

	var (
		tasks     []*Task
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListTasksFilter{
			Status:   in.Status,
			Priority: in.Priority,
			Search:   strings.TrimSpace(in.Search),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return err
		}
		tasks = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListTasksResult{Tasks: tasks, NextPageToken: nextToken}, nil
}

// CheckSchedule は読み取り専用の衝突チェックです。WorkerID が空の場合は何にも
// 一致しないため「衝突なし」を返します。
func (s *Service) CheckSchedule(ctx context.Context, in CheckScheduleInput) (*CheckScheduleResult, error) {
	workerID := strings.TrimSpace(in.WorkerID)
	if workerID == "" {
		return &CheckScheduleResult{Conflict: false}, nil
	}

	var conflict *ConflictTask
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.findConflict(txCtx, workerID, in.StartTime.UTC(), in.EndTime.UTC(), in.ExcludeTaskID)
		if err != nil {
			return err
		}
		conflict = found
		return nil
	}); err != nil {
		return nil, err
	}

	if conflict == nil {
		return &CheckScheduleResult{Conflict: false}, nil
	}
	return &CheckScheduleResult{Conflict: true, Task: conflict}, nil
}

func (s *Service) findConflict(ctx context.Context, workerID string, start, end time.Time, excludeID string) (*ConflictTask, error) {
	existing, err := s.repo.FindOverlapping(ctx, workerID, start, end, excludeID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ConflictTask{
		ID:        existing.ID,
		Title:     existing.Title,
		StartTime: existing.StartTime,
		EndTime:   existing.EndTime,
	}, nil
}

// イベント発行はベストエフォートで、失敗しても操作自体の結果には影響しません。
func (s *Service) publish(ctx context.Context, typ event.Type, key string, payload any) {
	_ = s.events.PublishSync(ctx, event.Event{
		Type:       typ,
		Key:        key,
		OccurredAt: s.clock.Now(),
		Payload:    payload,
	})
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
