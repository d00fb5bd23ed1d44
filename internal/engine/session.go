package engine

import (
	"context"
	"sync"
	"time"

	"guardian-monitor/internal/logging"
	"guardian-monitor/internal/models"
)

// Event types published on the session's event stream.
const (
	EventAlertCreated       = "alert_created"
	EventAlertEscalated     = "alert_escalated"
	EventAlertUpdated       = "alert_updated"
	EventEmergencyActivated = "emergency_activated"
	EventEmergencyCleared   = "emergency_cleared"
)

// Event describes one committed state change, for downstream consumers.
type Event struct {
	Type            string        `json:"type"`
	Alert           *models.Alert `json:"alert,omitempty"`
	RiskScore       int           `json:"riskScore"`
	EmergencyActive bool          `json:"emergencyActive"`
	At              time.Time     `json:"at"`
}

// Options tunes the session's timers.
type Options struct {
	VitalsInterval     time.Duration // autonomous regeneration tick
	EscalationInterval time.Duration // escalation sweep tick
	EscalationAge      time.Duration // minimum Pending age before auto-escalation
}

func (o *Options) applyDefaults() {
	if o.VitalsInterval <= 0 {
		o.VitalsInterval = 4 * time.Second
	}
	if o.EscalationInterval <= 0 {
		o.EscalationInterval = 15 * time.Second
	}
	if o.EscalationAge <= 0 {
		o.EscalationAge = 15 * time.Second
	}
}

// Session owns all mutable monitoring state for one patient: the current
// vitals, the alert list, the emergency interlock and the abnormality edge
// flag. One mutex guards the whole tuple so every mutation commits atomically
// from the point of view of snapshot readers and subscribers.
type Session struct {
	mu   sync.Mutex
	src  VitalsSource
	log  *logging.Logger
	opts Options

	vitals      models.Vitals
	alerts      []models.Alert
	nextID      int64
	wasAbnormal bool

	emergency        bool
	emergencyAlertID int64 // alert whose dismissal re-arms the loop; 0 = any

	vitalsTicker *time.Ticker // owned by Run; stopped while emergency is active

	subs   map[chan models.Snapshot]struct{}
	events chan Event // created on first Events call; nil means no consumer
}

// NewSession creates a session at baseline vitals with an empty alert list.
// Engine state is deliberately not persisted: every process start begins here.
func NewSession(src VitalsSource, logger *logging.Logger, opts Options) *Session {
	opts.applyDefaults()
	return &Session{
		src:    src,
		log:    logger,
		opts:   opts,
		vitals: models.BaselineVitals(),
		subs:   make(map[chan models.Snapshot]struct{}),
	}
}

// Run drives the two timers until ctx is cancelled: the vitals regeneration
// tick (suspended during emergency) and the escalation sweep (never
// suspended). Both fire on one goroutine, so timer callbacks are serialized.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	s.vitalsTicker = time.NewTicker(s.opts.VitalsInterval)
	if s.emergency {
		s.vitalsTicker.Stop()
	}
	s.mu.Unlock()

	sweepTicker := time.NewTicker(s.opts.EscalationInterval)
	defer func() {
		sweepTicker.Stop()
		s.mu.Lock()
		s.vitalsTicker.Stop()
		s.vitalsTicker = nil
		s.mu.Unlock()
	}()

	s.log.Infof("Monitoring loop started (vitals every %v, sweep every %v)",
		s.opts.VitalsInterval, s.opts.EscalationInterval)

	for {
		select {
		case <-ctx.Done():
			s.log.Infof("Monitoring loop stopped")
			return
		case <-s.vitalsTicker.C:
			s.tick()
		case <-sweepTicker.C:
			s.sweep(time.Now())
		}
	}
}

// Snapshot returns the current read-only view of the session.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// GenerateManualAlert raises a caregiver-initiated alert and returns the
// updated snapshot.
func (s *Session) GenerateManualAlert() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createAlertLocked(models.TitleManualAlert, models.LocationCaregiverPanel)
	s.notifyLocked()
	return s.snapshotLocked()
}

// SimulateEmergency forces crisis vitals, engages the interlock and suspends
// the autonomous regeneration tick. Abnormality evaluation still runs against
// the forced reading, so exactly one alert is raised through the ordinary
// edge-trigger path (unless vitals were already abnormal); that alert becomes
// the trigger whose dismissal re-arms the loop.
func (s *Session) SimulateEmergency() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.emergency = true
	s.vitals = models.CrisisVitals()
	if s.vitalsTicker != nil {
		s.vitalsTicker.Stop()
	}
	s.emitLocked(Event{Type: EventEmergencyActivated})
	s.log.Warnf("Emergency simulated, vitals forced to %+v", s.vitals)

	if a := s.evaluateLocked(); a != nil {
		s.emergencyAlertID = a.ID
	}
	s.notifyLocked()
	return s.snapshotLocked()
}

// SetAlertStatus overwrites the status of the alert with the given id. An
// unknown id is a silent no-op (found=false) rather than an error: this is a
// best-effort UI action and the dashboard must stay resilient to stale ids.
// Dismissing the emergency-trigger alert clears the interlock and resumes
// the regeneration tick from the current (not reset) vitals.
func (s *Session) SetAlertStatus(id int64, status models.AlertStatus) (models.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.log.Warnf("Ignoring status change for unknown alert %d", id)
		return s.snapshotLocked(), false
	}

	s.alerts[idx].Status = status
	a := s.alerts[idx]
	s.emitLocked(Event{Type: EventAlertUpdated, Alert: &a})
	s.log.Infof("Alert %d set to %s", id, status)

	if status == models.StatusDismissed && s.emergency &&
		(s.emergencyAlertID == 0 || s.emergencyAlertID == id) {
		s.clearEmergencyLocked()
	}

	s.notifyLocked()
	return s.snapshotLocked(), true
}

// Subscribe registers a snapshot channel that receives every committed
// mutation in commit order. The returned cancel func is idempotent. A slow
// subscriber drops intermediate snapshots; the latest is always available
// through Snapshot.
func (s *Session) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Events exposes the lifecycle event stream consumed by the Kafka publisher.
// Events begin flowing only after the first call: with no consumer attached,
// nothing is buffered (and nothing can overflow).
func (s *Session) Events() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(chan Event, 64)
	}
	return s.events
}

// tick advances the simulation by one reading and re-evaluates abnormality.
// The ticker is stopped during emergency; the guard covers a tick already in
// flight when the interlock engages.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emergency {
		return
	}
	s.vitals = s.src.Next(s.vitals)
	s.evaluateLocked()
	s.notifyLocked()
}

// sweep promotes every Pending alert aged at least EscalationAge. Re-running
// with no newly eligible alerts changes nothing.
func (s *Session) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.alerts {
		a := &s.alerts[i]
		if a.Status != models.StatusPending || now.Sub(a.CreatedAt) < s.opts.EscalationAge {
			continue
		}
		a.Status = models.StatusEscalated
		changed = true
		escalated := *a
		s.emitLocked(Event{Type: EventAlertEscalated, Alert: &escalated})
		s.log.Warnf("Alert %d auto-escalated after %v", a.ID, now.Sub(a.CreatedAt).Round(time.Second))
	}
	if changed {
		s.notifyLocked()
	}
}

// evaluateLocked raises an alert on the false-to-true abnormality edge, so a
// sustained abnormal run produces exactly one alert instead of one per tick.
func (s *Session) evaluateLocked() *models.Alert {
	abnormal := Abnormal(s.vitals)
	var created *models.Alert
	if abnormal && !s.wasAbnormal {
		a := s.createAlertLocked(models.TitleAbnormalVitals, models.LocationEngine)
		created = &a
	}
	s.wasAbnormal = abnormal
	return created
}

// createAlertLocked assigns the next counter id and prepends the alert.
// A counter, not a wall-clock stamp: two alerts created within the same
// clock tick must still get distinct, strictly increasing ids.
func (s *Session) createAlertLocked(title, location string) models.Alert {
	s.nextID++
	a := models.Alert{
		ID:        s.nextID,
		Title:     title,
		Location:  location,
		CreatedAt: time.Now(),
		Status:    models.StatusPending,
	}
	s.alerts = append([]models.Alert{a}, s.alerts...)
	s.emitLocked(Event{Type: EventAlertCreated, Alert: &a})
	s.log.Infof("Alert %d created: %s (%s)", a.ID, a.Title, a.Location)
	return a
}

func (s *Session) clearEmergencyLocked() {
	s.emergency = false
	s.emergencyAlertID = 0
	if s.vitalsTicker != nil {
		s.vitalsTicker.Reset(s.opts.VitalsInterval)
	}
	s.emitLocked(Event{Type: EventEmergencyCleared})
	s.log.Infof("Emergency cleared, regeneration resumed")
}

func (s *Session) snapshotLocked() models.Snapshot {
	alerts := make([]models.Alert, len(s.alerts))
	copy(alerts, s.alerts)
	return models.Snapshot{
		Vitals:          s.vitals,
		Alerts:          alerts,
		RiskScore:       Score(s.vitals, s.alerts),
		EmergencyActive: s.emergency,
	}
}

func (s *Session) notifyLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) emitLocked(ev Event) {
	if s.events == nil {
		return
	}
	ev.RiskScore = Score(s.vitals, s.alerts)
	ev.EmergencyActive = s.emergency
	ev.At = time.Now()
	select {
	case s.events <- ev:
	default:
		s.log.Warnf("Event buffer full, dropping %s", ev.Type)
	}
}
