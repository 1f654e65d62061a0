package order

import "time"

// Status は注文の状態を表します。
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusOpen       Status = "Open"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// Ref は関連エンティティへの非正規化参照 (id + name) です。
type Ref struct {
	ID   string
	Name string
}

// Order は注文エンティティです。OrderNumber は作成時に採番され、以後変更されません。
type Order struct {
	ID           string
	Customer     Ref
	User         Ref
	Project      Ref
	Title        string
	OrderNumber  string
	ErpNumber    string
	Amount       float64
	OrderDate    time.Time
	DeliveryDate *time.Time
	FileUpload   string
	PublicLink   string
	Status       Status
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedUser  string
	ModifiedUser string
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusOpen, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}
