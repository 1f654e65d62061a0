package asset

import "time"

// Status は資産の状態を表します。
type Status string

const (
	StatusActive      Status = "Active"
	StatusInactive    Status = "Inactive"
	StatusMaintenance Status = "Maintenance"
	StatusRetired     Status = "Retired"
)

// Asset は資産エンティティです。SerialNumber と Barcode は設定されている場合のみ
// 一意です。
type Asset struct {
	ID           string
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
	Status       Status
	Location     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedUser  string
	ModifiedUser string
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive, StatusMaintenance, StatusRetired:
		return true
	default:
		return false
	}
}
