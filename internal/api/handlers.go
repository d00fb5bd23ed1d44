package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guardian-monitor/internal/db"
	"guardian-monitor/internal/engine"
	"guardian-monitor/internal/logging"
	"guardian-monitor/internal/models"
	"guardian-monitor/internal/report"
	"guardian-monitor/internal/ws"
)

type Handler struct {
	session *engine.Session
	store   db.ProfileStore
	hub     *ws.Manager
	logger  *logging.Logger
}

func NewHandler(session *engine.Session, store db.ProfileStore, hub *ws.Manager, logger *logging.Logger) *Handler {
	return &Handler{session: session, store: store, hub: hub, logger: logger}
}

// GetSnapshot returns the current engine snapshot.
func (h *Handler) GetSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// GetAlerts returns the alert list, most recent first, optionally truncated
// by ?limit=.
func (h *Handler) GetAlerts(c *gin.Context) {
	alerts := h.session.Snapshot().Alerts
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		if limit < len(alerts) {
			alerts = alerts[:limit]
		}
	}
	c.JSON(http.StatusOK, alerts)
}

// CreateManualAlert raises a caregiver-panel alert and returns the updated
// snapshot.
func (h *Handler) CreateManualAlert(c *gin.Context) {
	c.JSON(http.StatusCreated, h.session.GenerateManualAlert())
}

// SimulateEmergency engages the emergency interlock and returns the updated
// snapshot.
func (h *Handler) SimulateEmergency(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.SimulateEmergency())
}

// UpdateAlertStatus overwrites one alert's status. An unknown id is reported
// as found=false with an unchanged snapshot, never as an error.
func (h *Handler) UpdateAlertStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert id"})
		return
	}

	var req struct {
		Status models.AlertStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid status request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status"})
		return
	}

	snap, found := h.session.SetAlertStatus(id, req.Status)
	c.JSON(http.StatusOK, gin.H{"found": found, "snapshot": snap})
}

// GetPatient returns the saved profile, or 404 while the dashboard is still
// in its onboarding state.
func (h *Handler) GetPatient(c *gin.Context) {
	p, found, err := h.store.GetPatient(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Get patient failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No patient saved"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) SavePatient(c *gin.Context) {
	var p models.Patient
	if err := c.ShouldBindJSON(&p); err != nil {
		h.logger.Errorf("Invalid patient body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.store.SavePatient(c.Request.Context(), p); err != nil {
		h.logger.Errorf("Save patient failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.logger.Infof("Saved patient profile for %s", p.Name)
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	if err := h.store.DeletePatient(c.Request.Context()); err != nil {
		h.logger.Errorf("Delete patient failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.store.GetPreferences(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Get preferences failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) SavePreferences(c *gin.Context) {
	var prefs models.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		h.logger.Errorf("Invalid preferences body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.store.SavePreferences(c.Request.Context(), prefs); err != nil {
		h.logger.Errorf("Save preferences failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// GetReport exports the JSON status report: profile plus current snapshot.
func (h *Handler) GetReport(c *gin.Context) {
	var patient *models.Patient
	p, found, err := h.store.GetPatient(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Get patient for report failed: %v", err)
	} else if found {
		patient = &p
	}

	rep := report.Build(patient, h.session.Snapshot())
	h.logger.Infof("Generated report %s (%d alerts)", rep.ID, rep.TotalAlerts)
	c.JSON(http.StatusOK, rep)
}
