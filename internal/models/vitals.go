package models

// Vitals is one snapshot of the monitored patient's simulated readings.
// It is replaced wholesale on every generation tick, never field-patched.
type Vitals struct {
	HeartRate int `json:"heartRate"` // beats per minute
	Systolic  int `json:"systolic"`  // mmHg
	Oxygen    int `json:"oxygen"`    // saturation percent
}

// BaselineVitals is the reading every session starts from.
func BaselineVitals() Vitals {
	return Vitals{HeartRate: 78, Systolic: 120, Oxygen: 98}
}

// CrisisVitals is the fixed reading forced by an emergency simulation.
func CrisisVitals() Vitals {
	return Vitals{HeartRate: 150, Systolic: 180, Oxygen: 85}
}
