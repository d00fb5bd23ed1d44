package db

import (
	"context"

	"guardian-monitor/internal/models"
)

// ProfileStore persists the collaborator-owned state: the patient profile and
// dashboard preferences. The engine's own state never goes through here.
type ProfileStore interface {
	GetPatient(ctx context.Context) (models.Patient, bool, error)
	SavePatient(ctx context.Context, p models.Patient) error
	DeletePatient(ctx context.Context) error
	GetPreferences(ctx context.Context) (models.Preferences, error)
	SavePreferences(ctx context.Context, prefs models.Preferences) error
}
