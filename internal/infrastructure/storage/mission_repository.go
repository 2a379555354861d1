package storage

import (
	"context"
	"fmt"

	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
)

const upsertMissionSQL = `
INSERT INTO missions (id, name, description, week_start)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    week_start = EXCLUDED.week_start`

const missionExistsSQL = `SELECT EXISTS (SELECT 1 FROM missions WHERE id = $1)`

// MissionRepository keeps the missions table in line with configuration.
type MissionRepository struct {
	db *DB
}

var _ ports.MissionRepository = (*MissionRepository)(nil)

// NewMissionRepository wires a pgx implementation of the mission store.
func NewMissionRepository(db *DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// Seed upserts every configured mission in one transaction.
func (r *MissionRepository) Seed(ctx context.Context, missions []domain.Mission) error {
	if len(missions) == 0 {
		return nil
	}
	return r.db.RunInTx(ctx, func(ctx context.Context) error {
		exec := r.db.executor(ctx)
		for _, m := range missions {
			if _, err := exec.Exec(ctx, upsertMissionSQL, m.ID, m.Name, m.Description, int16(m.WeekStartDay)); err != nil {
				return fmt.Errorf("seed mission %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

func (r *MissionRepository) Exists(ctx context.Context, missionID string) (bool, error) {
	var exists bool
	if err := r.db.executor(ctx).QueryRow(ctx, missionExistsSQL, missionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check mission %s: %w", missionID, err)
	}
	return exists, nil
}
