package engine

import "guardian-monitor/internal/models"

// Score maps the current vitals and alert list to a 0-100 risk score.
// Pure additive model, capped at 100; normal vitals with no alerts score 0.
func Score(v models.Vitals, alerts []models.Alert) int {
	score := 0

	// Heart rate contribution
	if v.HeartRate > 120 {
		score += 25
	} else if v.HeartRate > 100 {
		score += 10
	}

	// Blood pressure contribution
	if v.Systolic > 160 {
		score += 25
	} else if v.Systolic > 140 {
		score += 10
	}

	// Oxygen contribution
	if v.Oxygen < 90 {
		score += 30
	} else if v.Oxygen < 94 {
		score += 15
	}

	// Unresolved alerts raise the score; dismissed ones do not.
	for _, a := range alerts {
		switch a.Status {
		case models.StatusPending:
			score += 5
		case models.StatusEscalated:
			score += 15
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Abnormal reports whether v is out of safe territory. The session tracks
// the previous result so alert creation fires only on the false-to-true edge.
func Abnormal(v models.Vitals) bool {
	return v.HeartRate > 120 || v.Systolic > 160 || v.Oxygen < 90
}
