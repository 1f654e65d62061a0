package customer

import "time"

// Customer は顧客エンティティです。Email は一意です。
type Customer struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	Fax       string
	Email     string
	Latitude  *float64
	Longitude *float64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
