package models

import "time"

// AlertStatus is the lifecycle state of an Alert.
type AlertStatus string

const (
	StatusPending   AlertStatus = "Pending"
	StatusEscalated AlertStatus = "Escalated"
	StatusDismissed AlertStatus = "Dismissed"
)

// Valid reports whether s is one of the three known statuses.
func (s AlertStatus) Valid() bool {
	switch s {
	case StatusPending, StatusEscalated, StatusDismissed:
		return true
	}
	return false
}

// Titles and source labels for the two alert origins. Automated detections
// and caregiver-raised alerts are distinguished by these fixed pairs.
const (
	TitleAbnormalVitals = "Abnormal Vital Detected"
	TitleManualAlert    = "Manual Alert Triggered"

	LocationEngine         = "Monitoring Engine"
	LocationCaregiverPanel = "Caregiver Panel"
)

// Alert is one detected or manually raised event. Alerts are never deleted;
// they only move through status transitions and are kept for history/export.
type Alert struct {
	ID        int64       `json:"id"`
	Title     string      `json:"title"`
	Location  string      `json:"location"`
	CreatedAt time.Time   `json:"createdAt"`
	Status    AlertStatus `json:"status"`
}
