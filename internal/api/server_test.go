package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/haste"
	"github.com/samijaber1/bloomwatch/internal/metrics"
	"github.com/samijaber1/bloomwatch/internal/profile"
	"github.com/samijaber1/bloomwatch/internal/rotation"
	"github.com/samijaber1/bloomwatch/internal/storage/sqlite"
	"github.com/samijaber1/bloomwatch/internal/uptime"
)

func storedResult(runID, report, participant string, rotating bool) *analysis.Result {
	return &analysis.Result{
		RunID:       runID,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ReportCode:  report,
		Fight:       combatlog.Fight{ID: 2, EncounterID: 724, Name: "Brutallus", Start: 0, End: 60000, Kill: true},
		Participant: participant,
		Window:      combatlog.Window{Start: 0, End: 60000},
		Uptime:      uptime.Result{UptimeMs: 45000, WindowMs: 60000, Percent: 75},
		Policy:      haste.TimeoutPolicy{RotationTimeoutSeconds: 5.5, Source: haste.SourceFallback},
		Sections: []rotation.Section{
			{Label: "Rotation #1", Kind: rotation.KindRotation, Counts: rotation.Counts{RotationStart: 1, Instant: 2}, Closure: rotation.ClosureRotationStart},
		},
		Summary: rotation.Summary{
			Patterns:            []rotation.Pattern{{Notation: "1LB 2I 0RG", Count: 1, Percent: 100}},
			Total:               1,
			TankRotationPercent: 100,
			RotatingOnTank:      rotating,
		},
	}
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	for _, r := range []*analysis.Result{
		storedResult("run-1", "r1", "Mercy", true),
		storedResult("run-2", "r2", "Leafy", false),
	} {
		if err := store.SaveAnalysis(ctx, r); err != nil {
			t.Fatalf("failed to save analysis: %v", err)
		}
	}

	profiles, err := profile.Builtin()
	if err != nil {
		t.Fatalf("failed to load profiles: %v", err)
	}

	return NewServer(store, profiles, metrics.NewRecorder(), ":0", nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer(t)

	w := get(t, server, "/healthz")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status=ok, got %s", resp.Status)
	}
}

func TestReadyEndpoint(t *testing.T) {
	server := setupTestServer(t)

	w := get(t, server, "/readyz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp ReadyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Ready || resp.Analyses != 2 || resp.ProfilesLoaded != 2 {
		t.Errorf("unexpected readiness: %+v", resp)
	}
}

func TestAnalysisListEndpoint(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"all", "", http.StatusOK, 2},
		{"by participant", "?participant=Mercy", http.StatusOK, 1},
		{"rotating only", "?rotating=true", http.StatusOK, 1},
		{"by encounter", "?encounter=724", http.StatusOK, 2},
		{"other encounter", "?encounter=725", http.StatusOK, 0},
		{"limit", "?limit=1", http.StatusOK, 1},
		{"bad phase", "?phase=3", http.StatusBadRequest, 0},
		{"bad rotating", "?rotating=maybe", http.StatusBadRequest, 0},
		{"bad limit", "?limit=-1", http.StatusBadRequest, 0},
	}

	server := setupTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, server, "/v1/analyses"+tt.query)
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var resp AnalysisListResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Total != tt.expectedCount || len(resp.Analyses) != tt.expectedCount {
				t.Errorf("expected %d analyses, got %d", tt.expectedCount, resp.Total)
			}
		})
	}
}

func TestAnalysisGetEndpoint(t *testing.T) {
	server := setupTestServer(t)

	w := get(t, server, "/v1/analyses/run-1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var result analysis.Result
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.Participant != "Mercy" || len(result.Sections) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}

	w = get(t, server, "/v1/analyses/nope")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestStatsAndTopEndpoints(t *testing.T) {
	server := setupTestServer(t)

	w := get(t, server, "/v1/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var stats struct {
		Analyses       int `json:"analyses"`
		RotatingOnTank int `json:"rotatingOnTank"`
	}
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats.Analyses != 2 || stats.RotatingOnTank != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	w = get(t, server, "/v1/top/5")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var top TopPatternsResponse
	if err := json.NewDecoder(w.Body).Decode(&top); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(top.Patterns) != 1 || top.Patterns[0].Notation != "1LB 2I 0RG" || top.Patterns[0].Runs != 2 {
		t.Errorf("unexpected patterns: %+v", top.Patterns)
	}

	for _, path := range []string{"/v1/top/0", "/v1/top/1000"} {
		if w := get(t, server, path); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", path, w.Code)
		}
	}
	if w := get(t, server, "/v1/top/abc"); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for non-numeric n, got %d", w.Code)
	}
}

func TestProfilesEndpoint(t *testing.T) {
	server := setupTestServer(t)

	w := get(t, server, "/v1/profiles")
	var resp ProfileListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(resp.Profiles))
	}

	multi := 0
	for _, p := range resp.Profiles {
		if p.MultiPhase {
			multi++
			if p.EncounterID != 727 {
				t.Errorf("expected multi-phase profile for encounter 727, got %d", p.EncounterID)
			}
		}
	}
	if multi != 1 {
		t.Errorf("expected 1 multi-phase profile, got %d", multi)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := setupTestServer(t)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/stats", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	w := get(t, server, "/metrics")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}
