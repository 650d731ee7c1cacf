// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"
)

// Account status values. Transitions between activo, moroso and suspendido
// are owned by the billing cycle and the payment completion hook; inactivo is
// a manual administrative state.
const (
	StatusActive    = "activo"
	StatusInactive  = "inactivo"
	StatusDefaulter = "moroso"
	StatusSuspended = "suspendido"
)

type Customer struct {
	ID     int64         `json:"id" db:"id"`
	UserID sql.NullInt64 `json:"user_id,omitempty" db:"user_id"`

	// Customer details
	FullName string         `json:"full_name" db:"full_name"`
	DNI      string         `json:"dni" db:"dni"`
	Phone    string         `json:"phone" db:"phone"`
	AltPhone sql.NullString `json:"alt_phone,omitempty" db:"alt_phone"`
	Email    sql.NullString `json:"email,omitempty" db:"email"`
	Address  string         `json:"address" db:"address"`

	// Service
	Plan       string  `json:"plan" db:"plan"`
	Speed      string  `json:"speed" db:"speed"`
	MonthlyFee float64 `json:"monthly_fee" db:"monthly_fee"`

	// Account state
	CurrentDebt float64       `json:"current_debt" db:"current_debt"`
	Status      string        `json:"status" db:"status"`
	DueDay      sql.NullInt16 `json:"due_day,omitempty" db:"due_day"`

	// Assignment
	ZoneID int64 `json:"zone_id" db:"zone_id"`

	// Timestamps
	InstalledAt time.Time `json:"installed_at" db:"installed_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
