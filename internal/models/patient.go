package models

// Patient is the monitored person's profile. It is collaborator state: it
// survives restarts, unlike the engine's own vitals and alerts.
type Patient struct {
	Name      string `json:"name" binding:"required"`
	Age       int    `json:"age" binding:"required"`
	Condition string `json:"condition"`
	Caregiver string `json:"caregiver"`
}

// Preferences holds per-installation dashboard settings.
type Preferences struct {
	Theme string `json:"theme"`
}
