// internal/domain/zone/entity.go
package zone

import (
	"database/sql"
	"time"
)

type Zone struct {
	ID          int64          `json:"id" db:"id"`
	Name        string         `json:"name" db:"name"`
	Code        string         `json:"code" db:"code"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	CollectorID sql.NullInt64  `json:"collector_id,omitempty" db:"collector_id"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
