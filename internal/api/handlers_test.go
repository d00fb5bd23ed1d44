package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian-monitor/internal/config"
	"guardian-monitor/internal/db"
	"guardian-monitor/internal/engine"
	"guardian-monitor/internal/logging"
	"guardian-monitor/internal/models"
	"guardian-monitor/internal/report"
	"guardian-monitor/internal/ws"
)

func newTestRouter(t *testing.T) (*gin.Engine, *engine.Session) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)

	session := engine.NewSession(engine.NewGenerator(rand.New(rand.NewSource(1))), logger, engine.Options{})
	hub := ws.NewManager(logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx, session)

	var cfg config.Config
	cfg.API.BasePath = "/api/v0"

	h := NewHandler(session, db.NewMemoryStore(), hub, logger)
	return NewRouter(logger, cfg, h), session
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetSnapshot_Baseline(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v0/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.BaselineVitals(), snap.Vitals)
	assert.Empty(t, snap.Alerts)
	assert.Equal(t, 0, snap.RiskScore)
	assert.False(t, snap.EmergencyActive)
}

func TestCreateManualAlert(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v0/alerts", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, models.TitleManualAlert, snap.Alerts[0].Title)
	assert.Equal(t, 5, snap.RiskScore)
}

func TestGetAlerts_Limit(t *testing.T) {
	r, session := newTestRouter(t)
	for i := 0; i < 4; i++ {
		session.GenerateManualAlert()
	}

	w := doJSON(t, r, http.MethodGet, "/api/v0/alerts?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var alerts []models.Alert
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts, 2)
	assert.Equal(t, int64(4), alerts[0].ID, "most recent first")

	w = doJSON(t, r, http.MethodGet, "/api/v0/alerts?limit=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAlertStatus(t *testing.T) {
	r, session := newTestRouter(t)
	id := session.GenerateManualAlert().Alerts[0].ID

	w := doJSON(t, r, http.MethodPut, "/api/v0/alerts/1/status",
		gin.H{"status": "Dismissed"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Found    bool            `json:"found"`
		Snapshot models.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	require.Len(t, resp.Snapshot.Alerts, 1)
	assert.Equal(t, id, resp.Snapshot.Alerts[0].ID)
	assert.Equal(t, models.StatusDismissed, resp.Snapshot.Alerts[0].Status)
}

func TestUpdateAlertStatus_UnknownIDIsNoOp(t *testing.T) {
	r, session := newTestRouter(t)
	session.GenerateManualAlert()
	before := session.Snapshot()

	w := doJSON(t, r, http.MethodPut, "/api/v0/alerts/999/status",
		gin.H{"status": "Dismissed"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Found    bool            `json:"found"`
		Snapshot models.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Equal(t, before.RiskScore, resp.Snapshot.RiskScore)
	assert.Len(t, resp.Snapshot.Alerts, 1)
	assert.Equal(t, models.StatusPending, resp.Snapshot.Alerts[0].Status)
}

func TestUpdateAlertStatus_BadRequests(t *testing.T) {
	r, session := newTestRouter(t)
	session.GenerateManualAlert()

	w := doJSON(t, r, http.MethodPut, "/api/v0/alerts/abc/status",
		gin.H{"status": "Dismissed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v0/alerts/1/status",
		gin.H{"status": "Snoozed"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/v0/alerts/1/status", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimulateEmergency(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v0/emergency", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.CrisisVitals(), snap.Vitals)
	assert.True(t, snap.EmergencyActive)
	require.Len(t, snap.Alerts, 1)
	assert.Equal(t, models.TitleAbnormalVitals, snap.Alerts[0].Title)
}

func TestPatientLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)

	// Onboarding state: nothing saved yet.
	w := doJSON(t, r, http.MethodGet, "/api/v0/patient", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	p := models.Patient{Name: "Margaret Hale", Age: 81, Condition: "Hypertension", Caregiver: "J. Hale"}
	w = doJSON(t, r, http.MethodPut, "/api/v0/patient", p)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v0/patient", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Patient
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, p, got)

	w = doJSON(t, r, http.MethodDelete, "/api/v0/patient", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v0/patient", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSavePatient_RequiresName(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doJSON(t, r, http.MethodPut, "/api/v0/patient", gin.H{"age": 70})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferences(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v0/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var prefs models.Preferences
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, "light", prefs.Theme)

	w = doJSON(t, r, http.MethodPut, "/api/v0/preferences", models.Preferences{Theme: "dark"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v0/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prefs))
	assert.Equal(t, "dark", prefs.Theme)
}

func TestGetReport(t *testing.T) {
	r, session := newTestRouter(t)
	for i := 0; i < 7; i++ {
		session.GenerateManualAlert()
	}

	p := models.Patient{Name: "Margaret Hale", Age: 81}
	doJSON(t, r, http.MethodPut, "/api/v0/patient", p)

	w := doJSON(t, r, http.MethodGet, "/api/v0/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rep report.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	require.NotNil(t, rep.Patient)
	assert.Equal(t, "Margaret Hale", rep.Patient.Name)
	assert.Equal(t, 7, rep.TotalAlerts)
	assert.Len(t, rep.RecentAlerts, 5)
}

func TestServeWS_ConcurrentJoinsDuringBroadcasts(t *testing.T) {
	r, session := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	// Keep committing mutations so broadcasts overlap with clients joining;
	// initial-snapshot and broadcast writes must serialize per connection.
	stop := make(chan struct{})
	mutations := make(chan struct{})
	go func() {
		defer close(mutations)
		for {
			select {
			case <-stop:
				return
			default:
				session.GenerateManualAlert()
				time.Sleep(time.Millisecond)
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, _, err := websocket.DefaultDialer.Dial(url, nil)
			if !assert.NoError(t, err) {
				return
			}
			defer conn.Close()
			for n := 0; n < 5; n++ {
				conn.SetReadDeadline(time.Now().Add(5 * time.Second))
				_, payload, err := conn.ReadMessage()
				if !assert.NoError(t, err) {
					return
				}
				var snap models.Snapshot
				assert.NoError(t, json.Unmarshal(payload, &snap))
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-mutations
}

func TestServeWS_PushesSnapshots(t *testing.T) {
	r, session := newTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Initial snapshot arrives immediately.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Equal(t, models.BaselineVitals(), snap.Vitals)

	// A committed mutation is pushed to the client.
	session.GenerateManualAlert()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(payload, &snap))
	assert.Len(t, snap.Alerts, 1)
}
