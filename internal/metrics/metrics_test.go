package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samijaber1/bloomwatch/internal/analysis"
	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/haste"
	"github.com/samijaber1/bloomwatch/internal/rotation"
	"github.com/samijaber1/bloomwatch/internal/uptime"
)

func sampleResult() *analysis.Result {
	return &analysis.Result{
		Participant: "Mercy",
		Fight:       combatlog.Fight{ID: 1, Name: "Brutallus"},
		Uptime:      uptime.Result{Percent: 87.5},
		Policy:      haste.TimeoutPolicy{Source: haste.SourceComputed},
		Sections: []rotation.Section{
			{Closure: rotation.ClosureRotationStart},
			{Closure: rotation.ClosureRotationStart},
			{Closure: rotation.ClosureEndOfRun},
		},
		Summary: rotation.Summary{TankRotationPercent: 75},
	}
}

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun(sampleResult(), 20*time.Millisecond)
	r.ObserveRun(nil, time.Millisecond)
	r.ObserveSkip()

	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues(OutcomeOK)); got != 1 {
		t.Errorf("ok runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("failed runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.runsTotal.WithLabelValues(OutcomeSkipped)); got != 1 {
		t.Errorf("skipped runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.sectionsTotal.WithLabelValues(string(rotation.ClosureRotationStart))); got != 2 {
		t.Errorf("rotation-start sections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.uptimePercent.WithLabelValues("Mercy", "Brutallus")); got != 87.5 {
		t.Errorf("uptime gauge = %v, want 87.5", got)
	}
	if got := testutil.ToFloat64(r.timeoutSources.WithLabelValues(haste.SourceComputed)); got != 1 {
		t.Errorf("computed policies = %v, want 1", got)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(sampleResult(), time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"bloomwatch_runs_total",
		"bloomwatch_run_duration_seconds",
		"bloomwatch_lifebloom_uptime_percent",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
