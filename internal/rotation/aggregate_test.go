package rotation

import (
	"math"
	"testing"
)

func sectionsOf(counts ...Counts) []Section {
	out := make([]Section, 0, len(counts))
	for _, c := range counts {
		out = append(out, Section{Counts: c})
	}
	return out
}

func TestAggregateRanking(t *testing.T) {
	a := Counts{RotationStart: 1, Instant: 2}
	b := Counts{RotationStart: 1, Regrowth: 1}
	c := Counts{Instant: 3}

	summary := Aggregate(sectionsOf(c, a, b, a, b, a))

	expected := []struct {
		notation string
		count    int
	}{
		{"1LB 2I 0RG", 3},
		{"1LB 0I 1RG", 2},
		{"0LB 3I 0RG", 1},
	}

	if len(summary.Patterns) != len(expected) {
		t.Fatalf("expected %d patterns, got %d", len(expected), len(summary.Patterns))
	}
	for i, e := range expected {
		p := summary.Patterns[i]
		if p.Notation != e.notation || p.Count != e.count {
			t.Errorf("pattern %d: expected %s x%d, got %s x%d", i, e.notation, e.count, p.Notation, p.Count)
		}
	}
	if summary.Total != 6 {
		t.Errorf("expected total 6, got %d", summary.Total)
	}
}

func TestAggregateTiesKeepFirstSeen(t *testing.T) {
	x := Counts{Instant: 2}
	y := Counts{Regrowth: 2}

	summary := Aggregate(sectionsOf(y, x, x, y))

	if summary.Patterns[0].Notation != "0LB 0I 2RG" {
		t.Errorf("expected first-seen pattern first, got %s", summary.Patterns[0].Notation)
	}
	if summary.Patterns[1].FirstSeen != 1 {
		t.Errorf("expected first seen at 1, got %d", summary.Patterns[1].FirstSeen)
	}
}

func TestAggregateSums(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		sections, _ := Segment(randomStream(seed, 150), preset{}, defaultRules)
		identified := Identified(sections)
		summary := Aggregate(identified)

		count := 0
		percent := 0.0
		for _, p := range summary.Patterns {
			count += p.Count
			percent += p.Percent
		}

		if count != len(identified) {
			t.Errorf("seed %d: pattern counts sum to %d, expected %d", seed, count, len(identified))
		}
		if len(identified) > 0 && math.Abs(percent-100) > 1e-6 {
			t.Errorf("seed %d: percentages sum to %.6f", seed, percent)
		}
	}
}

func TestAggregateRotatingOnTank(t *testing.T) {
	withLB := Counts{RotationStart: 1, Instant: 1}
	without := Counts{Instant: 2}

	build := func(lb, other int) []Section {
		var cs []Counts
		for i := 0; i < lb; i++ {
			cs = append(cs, withLB)
		}
		for i := 0; i < other; i++ {
			cs = append(cs, without)
		}
		return sectionsOf(cs...)
	}

	tests := []struct {
		name     string
		lb       int
		other    int
		percent  float64
		rotating bool
	}{
		{"at threshold", 7, 3, 70, true},
		{"below threshold", 6, 4, 60, false},
		{"all on tank", 4, 0, 100, true},
		{"none", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Aggregate(build(tt.lb, tt.other))
			if math.Abs(s.TankRotationPercent-tt.percent) > 1e-9 {
				t.Errorf("expected %.1f%%, got %.1f%%", tt.percent, s.TankRotationPercent)
			}
			if s.RotatingOnTank != tt.rotating {
				t.Errorf("expected rotating=%v, got %v", tt.rotating, s.RotatingOnTank)
			}
		})
	}
}
