package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"guardian-monitor/internal/models"
)

// singleRowID keys the one-row tables; the service tracks one patient.
const singleRowID = 1

// GetPatient returns the stored profile. found is false when no profile has
// been saved yet (fresh installation or after a reset).
func (d *DB) GetPatient(ctx context.Context) (models.Patient, bool, error) {
	query := `
	SELECT name, age, condition, caregiver
	FROM patients
	WHERE id = $1`

	var p models.Patient
	err := d.Pool.QueryRow(ctx, query, singleRowID).Scan(
		&p.Name,
		&p.Age,
		&p.Condition,
		&p.Caregiver,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Patient{}, false, nil
	}
	if err != nil {
		return models.Patient{}, false, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, true, nil
}

// SavePatient upserts the profile row.
func (d *DB) SavePatient(ctx context.Context, p models.Patient) error {
	query := `
	INSERT INTO patients (id, name, age, condition, caregiver, updated_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (id) DO UPDATE
	SET name = $2, age = $3, condition = $4, caregiver = $5, updated_at = NOW()`

	_, err := d.Pool.Exec(ctx, query, singleRowID, p.Name, p.Age, p.Condition, p.Caregiver)
	if err != nil {
		return fmt.Errorf("failed to save patient: %w", err)
	}
	return nil
}

// DeletePatient removes the profile row, returning the dashboard to its
// onboarding state.
func (d *DB) DeletePatient(ctx context.Context) error {
	_, err := d.Pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, singleRowID)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}
