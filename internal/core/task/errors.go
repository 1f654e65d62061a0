package task

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidID         = errors.New("task: invalid id")
	ErrInvalidTitle      = errors.New("task: invalid title")
	ErrMissingWorker     = errors.New("task: worker is required")
	ErrMissingSchedule   = errors.New("task: start and end time are required")
	ErrInvalidWindow     = errors.New("task: end time must be after start time")
	ErrInvalidStatus     = errors.New("task: invalid status")
	ErrInvalidPriority   = errors.New("task: invalid priority")
	ErrInvalidPercentage = errors.New("task: percentage must be between 0 and 100")
	ErrInvalidPageSize   = errors.New("task: invalid page size")
	ErrInvalidPageToken  = errors.New("task: invalid page token")
	ErrTaskNotFound      = errors.New("task: not found")

	// ErrScheduleConflict は ConflictError の照合用センチネルです。
	ErrScheduleConflict = errors.New("task: schedule conflict")
)

// ConflictTask は衝突した既存タスクの要約です。
type ConflictTask struct {
	ID        string
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// ConflictError は作業員が既に予約済みであることを表します。衝突した既存タスクの
// 要約を保持し、errors.Is(err, ErrScheduleConflict) で照合できます。
type ConflictError struct {
	Task ConflictTask
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("task: worker already booked by %q (%s) from %s to %s",
		e.Task.Title, e.Task.ID,
		e.Task.StartTime.Format(time.RFC3339), e.Task.EndTime.Format(time.RFC3339))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrScheduleConflict
}
