package task

import "time"

// Status はタスクの状態を表します。
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
)

// Priority はタスクの優先度を表します。
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// WorkerRef はタスクに割り当てられた作業員への非正規化参照です。
type WorkerRef struct {
	ID   string
	Name string
}

// Task はタスクエンティティです。StartTime/EndTime は予定作業時間の半開区間
// [StartTime, EndTime) を表します。
type Task struct {
	ID                 string
	Worker             WorkerRef
	AssetID            string
	OrderID            string
	ProjectID          string
	CustomerID         string
	Title              string
	Description        string
	PlanDuration       int
	StartTime          time.Time
	EndTime            time.Time
	ActualStartTime    *time.Time
	ActualEndTime      *time.Time
	FileUpload         string
	Priority           Priority
	Status             Status
	Completed          bool
	PercentageComplete int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CreatedUser        string
	ModifiedUser       string
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	default:
		return false
	}
}

func isValidPriority(priority Priority) bool {
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}
