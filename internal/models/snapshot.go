package models

// Snapshot is the read-only view of the engine state handed to the API,
// WebSocket and export layers. Alerts are ordered most-recent-first.
type Snapshot struct {
	Vitals          Vitals  `json:"vitals"`
	Alerts          []Alert `json:"alerts"`
	RiskScore       int     `json:"riskScore"`
	EmergencyActive bool    `json:"emergencyActive"`
}
