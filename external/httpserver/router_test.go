package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foxseedlab/vox/internal/pipeline"
	"github.com/foxseedlab/vox/internal/translation"
	"github.com/prometheus/client_golang/prometheus"
)

type mockController struct {
	starts   int
	stops    int
	startErr error
	status   pipeline.Status
}

func (m *mockController) Start(context.Context) error {
	m.starts++
	if m.startErr == nil {
		m.status.SessionState = "listening"
		m.status.Active = true
	}
	return m.startErr
}

func (m *mockController) Stop(context.Context) error {
	m.stops++
	m.status.SessionState = "idle"
	m.status.Active = false
	return nil
}

func (m *mockController) Status() pipeline.Status { return m.status }

type mockTranslation struct{}

func (mockTranslation) Mode() translation.Mode   { return translation.ModeRemote }
func (mockTranslation) State() translation.State { return translation.StateLoaded }

type mockStatusChecker struct {
	status string
	err    error
}

func (m mockStatusChecker) Status(context.Context) (string, error) { return m.status, m.err }

func newTestServer(t *testing.T, deps Dependencies) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewRouter(deps))
	t.Cleanup(server.Close)
	return server
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, Dependencies{Controller: &mockController{}, Translation: mockTranslation{}})
	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestStatus_IncludesAllParts(t *testing.T) {
	ctrl := &mockController{status: pipeline.Status{SessionState: "idle", Emitted: 4}}
	server := newTestServer(t, Dependencies{
		Controller:  ctrl,
		Translation: mockTranslation{},
		Recognizer:  mockStatusChecker{status: "ok"},
	})

	resp, err := http.Get(server.URL + "/status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	var got statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if got.Pipeline.SessionState != "idle" || got.Pipeline.Emitted != 4 {
		t.Fatalf("unexpected pipeline status: %+v", got.Pipeline)
	}
	if got.Translation.Mode != "remote" || got.Translation.State != "loaded" {
		t.Fatalf("unexpected translation status: %+v", got.Translation)
	}
	if got.Recognizer == nil || got.Recognizer.Status != "ok" {
		t.Fatalf("unexpected recognizer status: %+v", got.Recognizer)
	}
}

func TestStatus_ReportsRecognizerError(t *testing.T) {
	server := newTestServer(t, Dependencies{
		Controller:  &mockController{},
		Translation: mockTranslation{},
		Recognizer:  mockStatusChecker{err: errors.New("connection refused")},
	})
	resp, err := http.Get(server.URL + "/status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	var got statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if got.Recognizer == nil || got.Recognizer.Error != "connection refused" {
		t.Fatalf("expected recognizer error, got %+v", got.Recognizer)
	}
}

func TestSessionStartStop(t *testing.T) {
	ctrl := &mockController{}
	server := newTestServer(t, Dependencies{Controller: ctrl, Translation: mockTranslation{}})

	resp, err := http.Post(server.URL+"/session/start", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var st pipeline.Status
	_ = json.NewDecoder(resp.Body).Decode(&st)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !st.Active {
		t.Fatalf("unexpected start response: %d %+v", resp.StatusCode, st)
	}

	resp, err = http.Post(server.URL+"/session/stop", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if ctrl.starts != 1 || ctrl.stops != 1 {
		t.Fatalf("expected one start and one stop, got %d/%d", ctrl.starts, ctrl.stops)
	}
}

func TestSessionStart_Error(t *testing.T) {
	ctrl := &mockController{startErr: errors.New("no microphone")}
	server := newTestServer(t, Dependencies{Controller: ctrl, Translation: mockTranslation{}})

	resp, err := http.Post(server.URL+"/session/start", "application/json", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "vox_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	server := newTestServer(t, Dependencies{Controller: &mockController{}, Translation: mockTranslation{}, Gatherer: reg})
	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "vox_test_total 1") {
		t.Fatalf("metric missing from output: %s", body)
	}
}
