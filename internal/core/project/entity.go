package project

import "time"

// Status はプロジェクトの状態を表します。
type Status string

const (
	StatusActive    Status = "Active"
	StatusInActive  Status = "In Active"
	StatusCompleted Status = "Completed"
	StatusOnHold    Status = "On Hold"
	StatusCancelled Status = "Cancelled"
)

// Ref は関連エンティティへの参照です。表示用に名前を複製して保持します。
type Ref struct {
	ID   string
	Name string
}

// Project はプロジェクトエンティティです。
type Project struct {
	ID           string
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
	Status       Status
	StartDate    *time.Time
	EndDate      *time.Time
	Budget       float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedUser  string
	ModifiedUser string
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInActive, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	default:
		return false
	}
}
