// internal/repository/postgres/zone_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"cobramax-service/internal/domain/zone"
	xerrors "cobramax-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ZoneRepository struct {
	db *pgxpool.Pool
}

func NewZoneRepository(db *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{db: db}
}

func (r *ZoneRepository) FindByID(ctx context.Context, id int64) (*zone.Zone, error) {
	query := `
		SELECT id, name, code, description, collector_id, is_active, created_at, updated_at
		FROM zones
		WHERE id = $1
	`

	var z zone.Zone
	err := r.db.QueryRow(ctx, query, id).Scan(
		&z.ID, &z.Name, &z.Code, &z.Description, &z.CollectorID,
		&z.IsActive, &z.CreatedAt, &z.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find zone: %w", err)
	}

	return &z, nil
}

// CollectorName resolves the assigned collector's display name, empty when
// the zone has no collector.
func (r *ZoneRepository) CollectorName(ctx context.Context, zoneID int64) (string, error) {
	query := `
		SELECT COALESCE(u.full_name, '')
		FROM zones z
		LEFT JOIN users u ON u.id = z.collector_id
		WHERE z.id = $1
	`

	var name string
	err := r.db.QueryRow(ctx, query, zoneID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", xerrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve collector: %w", err)
	}

	return name, nil
}
