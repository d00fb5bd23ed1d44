package db

import (
	"context"
	"sync"

	"guardian-monitor/internal/models"
)

// MemoryStore is the ProfileStore used when no DB_DSN is configured, and in
// tests. Contents do not survive a restart.
type MemoryStore struct {
	mu      sync.Mutex
	patient *models.Patient
	prefs   models.Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: models.Preferences{Theme: "light"}}
}

func (m *MemoryStore) GetPatient(ctx context.Context) (models.Patient, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.patient == nil {
		return models.Patient{}, false, nil
	}
	return *m.patient, true, nil
}

func (m *MemoryStore) SavePatient(ctx context.Context, p models.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patient = &p
	return nil
}

func (m *MemoryStore) DeletePatient(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patient = nil
	return nil
}

func (m *MemoryStore) GetPreferences(ctx context.Context) (models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

func (m *MemoryStore) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = prefs
	return nil
}
