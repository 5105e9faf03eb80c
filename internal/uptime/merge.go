package uptime

import (
	"sort"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
)

// BuildIntervals turns apply/refresh/remove events of one ability into raw
// presence intervals, tracking one active instance per target.
//
// Apply or refresh while an instance is active closes [activeSince, now) and
// restarts the instance at now, so a refresh without a gap yields two
// back-to-back intervals that Merge later joins. Refresh with nothing active
// behaves like an apply. Remove closes and clears; a remove with nothing active
// is counted as an orphan and otherwise ignored. Instances still active when the
// events run out are closed at windowEnd.
func BuildIntervals(events []combatlog.Event, abilityID int, windowEnd int64) ([]Interval, int) {
	sorted := combatlog.Filter(events, func(ev combatlog.Event) bool {
		if ev.AbilityID != abilityID {
			return false
		}
		switch ev.Kind {
		case combatlog.KindApplyBuff, combatlog.KindRefreshBuff, combatlog.KindRemoveBuff:
			return true
		}
		return false
	})
	combatlog.SortStable(sorted)

	var intervals []Interval
	orphans := 0
	active := make(map[int]int64)
	// first-activation order keeps the end-of-window flush deterministic
	var order []int

	for _, ev := range sorted {
		switch ev.Kind {
		case combatlog.KindApplyBuff, combatlog.KindRefreshBuff:
			if since, ok := active[ev.TargetID]; ok {
				intervals = append(intervals, Interval{Start: since, End: ev.Timestamp})
			} else {
				order = append(order, ev.TargetID)
			}
			active[ev.TargetID] = ev.Timestamp
		case combatlog.KindRemoveBuff:
			since, ok := active[ev.TargetID]
			if !ok {
				orphans++
				continue
			}
			intervals = append(intervals, Interval{Start: since, End: ev.Timestamp})
			delete(active, ev.TargetID)
			order = removeTarget(order, ev.TargetID)
		}
	}

	for _, target := range order {
		since := active[target]
		end := windowEnd
		if end < since {
			end = since
		}
		intervals = append(intervals, Interval{Start: since, End: end})
	}

	return intervals, orphans
}

func removeTarget(order []int, target int) []int {
	for i, t := range order {
		if t == target {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// Merge returns the minimal set of disjoint intervals covering the input.
// An interval joins its predecessor when its start is at or before the
// predecessor's end, so touching intervals coalesce. The input is not modified.
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Interval{sorted[0]}
	for _, cur := range sorted[1:] {
		last := &merged[len(merged)-1]
		if cur.Start <= last.End {
			if cur.End > last.End {
				last.End = cur.End
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// Total sums interval durations
func Total(intervals []Interval) int64 {
	var sum int64
	for _, iv := range intervals {
		sum += iv.Duration()
	}
	return sum
}

// Clip restricts intervals to the window, dropping those left empty
func Clip(intervals []Interval, w combatlog.Window) []Interval {
	var out []Interval
	for _, iv := range intervals {
		start, end := iv.Start, iv.End
		if start < w.Start {
			start = w.Start
		}
		if end > w.End {
			end = w.End
		}
		if end > start {
			out = append(out, Interval{Start: start, End: end})
		}
	}
	return out
}

// Percent computes uptime / window * 100, clamped to [0, 100].
// Returns 0 when the window is empty.
func Percent(uptimeMs, windowMs int64) float64 {
	if windowMs <= 0 {
		return 0
	}
	p := float64(uptimeMs) / float64(windowMs) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Compute builds, clips and merges the intervals of one buff and reports its
// uptime over the window.
func Compute(events []combatlog.Event, abilityID int, w combatlog.Window) Result {
	raw, orphans := BuildIntervals(events, abilityID, w.End)
	merged := Merge(Clip(raw, w))
	uptimeMs := Total(merged)

	return Result{
		Raw:      raw,
		Merged:   merged,
		UptimeMs: uptimeMs,
		WindowMs: w.Duration(),
		Percent:  Percent(uptimeMs, w.Duration()),
		Orphans:  orphans,
	}
}
