package uptime

import (
	"math/rand"
	"testing"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
)

const lifebloom = 33763

func buff(ts int64, kind combatlog.Kind, target int) combatlog.Event {
	return combatlog.Event{Timestamp: ts, Kind: kind, AbilityID: lifebloom, SourceID: 1, TargetID: target}
}

func TestCompute_RefreshBeforeExpiry(t *testing.T) {
	events := []combatlog.Event{
		buff(0, combatlog.KindApplyBuff, 2),
		buff(4000, combatlog.KindRefreshBuff, 2),
		buff(9000, combatlog.KindRemoveBuff, 2),
	}

	result := Compute(events, lifebloom, combatlog.Window{Start: 0, End: 9000})

	if len(result.Raw) != 2 {
		t.Fatalf("expected 2 raw intervals, got %d: %v", len(result.Raw), result.Raw)
	}
	if len(result.Merged) != 1 {
		t.Fatalf("expected 1 merged interval, got %d: %v", len(result.Merged), result.Merged)
	}
	if got := result.Merged[0]; got != (Interval{Start: 0, End: 9000}) {
		t.Errorf("expected [0,9000), got %v", got)
	}
	if result.UptimeMs != 9000 {
		t.Errorf("expected uptime 9000ms, got %d", result.UptimeMs)
	}
	if result.Percent != 100 {
		t.Errorf("expected 100%%, got %.2f", result.Percent)
	}
}

func TestBuildIntervals(t *testing.T) {
	tests := []struct {
		name        string
		events      []combatlog.Event
		windowEnd   int64
		expected    []Interval
		wantOrphans int
	}{
		{
			name: "refresh without active instance is an apply",
			events: []combatlog.Event{
				buff(1000, combatlog.KindRefreshBuff, 2),
				buff(3000, combatlog.KindRemoveBuff, 2),
			},
			windowEnd: 10000,
			expected:  []Interval{{1000, 3000}},
		},
		{
			name: "remove without active instance is tolerated",
			events: []combatlog.Event{
				buff(500, combatlog.KindRemoveBuff, 2),
				buff(1000, combatlog.KindApplyBuff, 2),
				buff(2000, combatlog.KindRemoveBuff, 2),
			},
			windowEnd:   10000,
			expected:    []Interval{{1000, 2000}},
			wantOrphans: 1,
		},
		{
			name: "active instance closes at window end",
			events: []combatlog.Event{
				buff(8000, combatlog.KindApplyBuff, 3),
			},
			windowEnd: 10000,
			expected:  []Interval{{8000, 10000}},
		},
		{
			name: "targets are tracked independently",
			events: []combatlog.Event{
				buff(0, combatlog.KindApplyBuff, 2),
				buff(1000, combatlog.KindApplyBuff, 3),
				buff(5000, combatlog.KindRemoveBuff, 2),
				buff(6000, combatlog.KindRemoveBuff, 3),
			},
			windowEnd: 10000,
			expected:  []Interval{{0, 5000}, {1000, 6000}},
		},
		{
			name: "other abilities are ignored",
			events: []combatlog.Event{
				{Timestamp: 0, Kind: combatlog.KindApplyBuff, AbilityID: 26982, TargetID: 2},
				{Timestamp: 100, Kind: combatlog.KindCast, AbilityID: lifebloom, TargetID: 2},
			},
			windowEnd: 10000,
			expected:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, orphans := BuildIntervals(tt.events, lifebloom, tt.windowEnd)

			if orphans != tt.wantOrphans {
				t.Errorf("expected %d orphans, got %d", tt.wantOrphans, orphans)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("interval %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		input    []Interval
		expected []Interval
	}{
		{name: "empty", input: nil, expected: nil},
		{name: "touching coalesce", input: []Interval{{0, 5}, {5, 9}}, expected: []Interval{{0, 9}}},
		{name: "unsorted overlap", input: []Interval{{10, 20}, {0, 12}}, expected: []Interval{{0, 20}}},
		{name: "contained", input: []Interval{{0, 20}, {5, 6}}, expected: []Interval{{0, 20}}},
		{name: "disjoint", input: []Interval{{0, 1}, {2, 3}}, expected: []Interval{{0, 1}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

// Disjoint generated intervals are perturbed so neighbours touch or overlap;
// merging must recover the connected components.
func TestMerge_RecoversComponents(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 200; iter++ {
		var raw []Interval
		var components []Interval
		cursor := int64(0)

		nComponents := 1 + rng.Intn(6)
		for c := 0; c < nComponents; c++ {
			cursor += 1 + int64(rng.Intn(50))
			compStart := cursor
			pieces := 1 + rng.Intn(4)
			for p := 0; p < pieces; p++ {
				length := 1 + int64(rng.Intn(30))
				start := cursor
				if p > 0 {
					// touch (0) or overlap the previous piece
					start -= int64(rng.Intn(int(length)))
					if start < compStart {
						start = compStart
					}
				}
				raw = append(raw, Interval{Start: start, End: start + length})
				if start+length > cursor {
					cursor = start + length
				}
			}
			components = append(components, Interval{Start: compStart, End: cursor})
		}

		rng.Shuffle(len(raw), func(i, j int) { raw[i], raw[j] = raw[j], raw[i] })
		merged := Merge(raw)

		if len(merged) != len(components) {
			t.Fatalf("iteration %d: expected %d components, got %d (%v)", iter, len(components), len(merged), merged)
		}
		for i := range merged {
			if merged[i] != components[i] {
				t.Fatalf("iteration %d: component %d expected %v, got %v", iter, i, components[i], merged[i])
			}
		}

		if Total(merged) > Total(raw) {
			t.Fatalf("iteration %d: merged total %d exceeds raw total %d", iter, Total(merged), Total(raw))
		}
		if len(raw) == len(components) && Total(merged) != Total(raw) {
			t.Fatalf("iteration %d: no joins but totals differ", iter)
		}

		again := Merge(merged)
		if len(again) != len(merged) {
			t.Fatalf("iteration %d: merge is not idempotent", iter)
		}
		for i := range again {
			if again[i] != merged[i] {
				t.Fatalf("iteration %d: merge is not idempotent", iter)
			}
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name     string
		uptime   int64
		window   int64
		expected float64
	}{
		{"zero window", 100, 0, 0},
		{"no uptime", 0, 1000, 0},
		{"half", 500, 1000, 50},
		{"full", 1000, 1000, 100},
		{"clamped", 1500, 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percent(tt.uptime, tt.window); got != tt.expected {
				t.Errorf("expected %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestCompute_ClipsToWindow(t *testing.T) {
	events := []combatlog.Event{
		buff(0, combatlog.KindApplyBuff, 2),
		buff(20000, combatlog.KindRemoveBuff, 2),
	}

	result := Compute(events, lifebloom, combatlog.Window{Start: 5000, End: 15000})
	if result.UptimeMs != 10000 {
		t.Errorf("expected 10000ms inside window, got %d", result.UptimeMs)
	}
	if result.Percent != 100 {
		t.Errorf("expected 100%%, got %.2f", result.Percent)
	}
}

func TestCompute_NoEvents(t *testing.T) {
	result := Compute(nil, lifebloom, combatlog.Window{Start: 0, End: 1000})
	if result.Percent != 0 || result.UptimeMs != 0 || len(result.Merged) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
