package user

import "time"

// Status は従業員の状態を表します。
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusOnLeave  Status = "On Leave"
)

// Role は従業員の役割を表します。
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
	RoleTechnician Role = "technician"
	RoleEmployee   Role = "employee"
)

// User は従業員エンティティです。Code はシステムが採番する社員コードで、
// 重複しません。
type User struct {
	ID          string
	Name        string
	Email       string
	Designation string
	Role        Role
	Code        string
	Phone       string
	Status      Status
	IsActive    bool
	AssetID     string
	OrderID     string
	ProjectID   string
	CustomerID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	default:
		return false
	}
}

func isValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleSupervisor, RoleTechnician, RoleEmployee:
		return true
	default:
		return false
	}
}
