package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"guardian-monitor/internal/models"
)

// GetPreferences returns the stored preferences, defaulting to the light
// theme when none have been saved.
func (d *DB) GetPreferences(ctx context.Context) (models.Preferences, error) {
	var prefs models.Preferences
	err := d.Pool.QueryRow(ctx, `SELECT theme FROM preferences WHERE id = $1`, singleRowID).
		Scan(&prefs.Theme)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Preferences{Theme: "light"}, nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences upserts the preferences row.
func (d *DB) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	query := `
	INSERT INTO preferences (id, theme, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (id) DO UPDATE
	SET theme = $2, updated_at = NOW()`

	_, err := d.Pool.Exec(ctx, query, singleRowID, prefs.Theme)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
