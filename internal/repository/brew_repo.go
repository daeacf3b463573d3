package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"firstcrack/internal/models"
)

type BrewSQLite struct {
	db *sql.DB
}

func NewBrewSQLite(db *sql.DB) *BrewSQLite {
	return &BrewSQLite{db: db}
}

var _ BrewRepo = (*BrewSQLite)(nil)

const (
	insertOrUpdateBrewSQL = `
		INSERT INTO brews (id, brew_type, dose_g, target_temp_c, target_pressure_bar, device_address, status, started_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			brew_type=excluded.brew_type,
			dose_g=excluded.dose_g,
			target_temp_c=excluded.target_temp_c,
			target_pressure_bar=excluded.target_pressure_bar,
			device_address=excluded.device_address,
			status=excluded.status,
			started_at=excluded.started_at,
			updated_at=excluded.updated_at
	`

	selectBrewSQL = `
		SELECT id, brew_type, dose_g, target_temp_c, target_pressure_bar, device_address, status, started_at, updated_at
		FROM brews WHERE id=?
	`

	updateBrewStatusSQL = `UPDATE brews SET status=?, updated_at=? WHERE id=?`
)

// Save upserts the brew row keyed by brew id.
func (r *BrewSQLite) Save(ctx context.Context, b models.BrewRecord) error {
	// ensure timestamps are always persisted as UTC; set UpdatedAt if zero
	updated := b.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	} else {
		updated = updated.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateBrewSQL,
		b.BrewID,
		b.BrewType,
		b.DoseGrams,
		b.TargetTempC,
		b.TargetPressureBar,
		b.DeviceAddress,
		b.Status,
		b.StartTime.UTC(),
		updated,
	)
	return err
}

// Get fetches one brew row. Returns a zero record (empty BrewID) when the
// brew does not exist.
func (r *BrewSQLite) Get(ctx context.Context, brewID string) (models.BrewRecord, error) {
	row := r.db.QueryRowContext(ctx, selectBrewSQL, brewID)

	var b models.BrewRecord
	if err := row.Scan(
		&b.BrewID,
		&b.BrewType,
		&b.DoseGrams,
		&b.TargetTempC,
		&b.TargetPressureBar,
		&b.DeviceAddress,
		&b.Status,
		&b.StartTime,
		&b.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.BrewRecord{}, nil // no such brew
		}
		return models.BrewRecord{}, err
	}
	b.StartTime = b.StartTime.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// SetStatus transitions a brew's lifecycle status.
func (r *BrewSQLite) SetStatus(ctx context.Context, brewID, status string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, updateBrewStatusSQL, status, at.UTC(), brewID)
	return err
}
