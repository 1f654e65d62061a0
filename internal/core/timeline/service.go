package timeline

import (
	"context"
	"errors"
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

// Service は従業員タイムラインに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase はタイムラインユースケースの公開インターフェースです。
type UseCase interface {
	SaveEntry(ctx context.Context, in SaveEntryInput) (*Timeline, bool, error)
	ListTimelines(ctx context.Context) ([]*Timeline, error)
	ListTimelinesByDate(ctx context.Context, date string) ([]*Timeline, error)
	ListTimelinesByEmployee(ctx context.Context, employeeID string) ([]*Timeline, error)
	GetTimeline(ctx context.Context, employeeID, date string) (*Timeline, error)
	SetEntryEnd(ctx context.Context, in SetEntryEndInput) (*Timeline, error)
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

// SaveEntryInput は作業記録の追加入力です。
type SaveEntryInput struct {
	EmployeeID   string
	EmployeeName string
	Date         string
	Entry        Entry
}

// SetEntryEndInput は作業記録の終了時刻設定入力です。EndTime は nil を許容し、
// 設定済みの終了時刻を取り消せます。
type SetEntryEndInput struct {
	EmployeeID string
	Date       string
	EntryTitle string
	EndTime    *time.Time
}

// SaveEntry は従業員と日付のタイムラインに作業記録を追記します。該当する
// タイムラインがまだなければ、本社を起点として新規作成します。戻り値の bool は
// 新規作成されたかどうかを示します。
func (s *Service) SaveEntry(ctx context.Context, in SaveEntryInput) (*Timeline, bool, error) {
	if strings.TrimSpace(in.EmployeeID) == "" || strings.TrimSpace(in.EmployeeName) == "" {
		return nil, false, ErrInvalidEmployee
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, false, err
	}
	if strings.TrimSpace(in.Entry.Title) == "" {
		return nil, false, ErrInvalidEntry
	}

	var (
		saved   *Timeline
		created bool
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByEmployeeAndDate(txCtx, in.EmployeeID, date)
		switch {
		case err == nil:
			existing.Entries = append(existing.Entries, in.Entry)
			existing.UpdatedAt = s.clock.Now()
			result, err := s.repo.Update(txCtx, existing)
			if err != nil {
				return err
			}
			saved = result
			return nil
		case errors.Is(err, ErrTimelineNotFound):
			now := s.clock.Now()
			result, err := s.repo.Create(txCtx, &Timeline{
				EmployeeID:   in.EmployeeID,
				EmployeeName: in.EmployeeName,
				Date:         date,
				Office:       DefaultOffice,
				Entries:      []Entry{in.Entry},
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return err
			}
			saved = result
			created = true
			return nil
		default:
			return err
		}
	}); err != nil {
		return nil, false, err
	}

	return saved, created, nil
}

// ListTimelines は全従業員のタイムラインを新しい順に返します。
func (s *Service) ListTimelines(ctx context.Context) ([]*Timeline, error) {
	var timelines []*Timeline
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListAll(txCtx)
		if err != nil {
			return err
		}
		timelines = result
		return nil
	}); err != nil {
		return nil, err
	}
	return timelines, nil
}

// ListTimelinesByDate は指定日の全従業員のタイムラインを返します。
func (s *Service) ListTimelinesByDate(ctx context.Context, date string) ([]*Timeline, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	var timelines []*Timeline
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByDate(txCtx, normalized)
		if err != nil {
			return err
		}
		timelines = result
		return nil
	}); err != nil {
		return nil, err
	}
	return timelines, nil
}

// ListTimelinesByEmployee は従業員のタイムラインを日付の新しい順に返します。
func (s *Service) ListTimelinesByEmployee(ctx context.Context, employeeID string) ([]*Timeline, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, ErrInvalidEmployee
	}

	var timelines []*Timeline
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.ListByEmployee(txCtx, employeeID)
		if err != nil {
			return err
		}
		timelines = result
		return nil
	}); err != nil {
		return nil, err
	}
	return timelines, nil
}

// GetTimeline は従業員と日付の組でタイムラインを取得します。
func (s *Service) GetTimeline(ctx context.Context, employeeID, date string) (*Timeline, error) {
	if strings.TrimSpace(employeeID) == "" {
		return nil, ErrInvalidEmployee
	}
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	var timeline *Timeline
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByEmployeeAndDate(txCtx, employeeID, normalized)
		if err != nil {
			return err
		}
		timeline = result
		return nil
	}); err != nil {
		return nil, err
	}
	return timeline, nil
}

// SetEntryEnd はタイトルで作業記録を特定し、終了時刻を設定します。
func (s *Service) SetEntryEnd(ctx context.Context, in SetEntryEndInput) (*Timeline, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return nil, ErrInvalidEmployee
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.EntryTitle) == "" {
		return nil, ErrInvalidEntry
	}

	var updated *Timeline
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		timeline, err := s.repo.FindByEmployeeAndDate(txCtx, in.EmployeeID, date)
		if err != nil {
			return err
		}

		found := false
		for i := range timeline.Entries {
			if timeline.Entries[i].Title == in.EntryTitle {
				timeline.Entries[i].EndTime = in.EndTime
				found = true
				break
			}
		}
		if !found {
			return ErrEntryNotFound
		}

		timeline.UpdatedAt = s.clock.Now()
		result, err := s.repo.Update(txCtx, timeline)
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

func normalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidDate
	}
	if _, err := time.Parse("2006-01-02", trimmed); err != nil {
		return "", ErrInvalidDate
	}
	return trimmed, nil
}
