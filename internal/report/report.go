package report

import (
	"time"

	"github.com/google/uuid"

	"guardian-monitor/internal/models"
)

// maxRecentAlerts bounds the alerts embedded in a report. Presentation
// choice, not an engine contract: TotalAlerts always carries the full count.
const maxRecentAlerts = 5

// Report is the exportable status document: the patient profile (when one is
// saved) plus the engine snapshot at generation time.
type Report struct {
	ID              string          `json:"id"`
	GeneratedAt     time.Time       `json:"generatedAt"`
	Patient         *models.Patient `json:"patient,omitempty"`
	Vitals          models.Vitals   `json:"vitals"`
	RiskScore       int             `json:"riskScore"`
	EmergencyActive bool            `json:"emergencyActive"`
	TotalAlerts     int             `json:"totalAlerts"`
	RecentAlerts    []models.Alert  `json:"recentAlerts"`
}

// Build renders a snapshot into a report. The snapshot is consumed read-only;
// the alert list may be of any length.
func Build(patient *models.Patient, snap models.Snapshot) Report {
	recent := snap.Alerts
	if len(recent) > maxRecentAlerts {
		recent = recent[:maxRecentAlerts]
	}
	alerts := make([]models.Alert, len(recent))
	copy(alerts, recent)

	return Report{
		ID:              uuid.New().String(),
		GeneratedAt:     time.Now(),
		Patient:         patient,
		Vitals:          snap.Vitals,
		RiskScore:       snap.RiskScore,
		EmergencyActive: snap.EmergencyActive,
		TotalAlerts:     len(snap.Alerts),
		RecentAlerts:    alerts,
	}
}
