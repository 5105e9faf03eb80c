package combatlog

import (
	"sort"
)

var supportedKinds = map[string]Kind{
	"cast":        KindCast,
	"applybuff":   KindApplyBuff,
	"refreshbuff": KindRefreshBuff,
	"removebuff":  KindRemoveBuff,
	"damage":      KindDamage,
}

// Normalize converts raw records into events, dropping kinds the analysis does
// not consume. The result is stably sorted by timestamp so records sharing a
// timestamp keep their input order.
func Normalize(raw []RawEvent) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		kind, ok := supportedKinds[r.Type]
		if !ok {
			continue
		}

		ev := Event{
			Timestamp: r.Timestamp,
			Kind:      kind,
			AbilityID: r.AbilityID,
			SourceID:  r.SourceID,
			TargetID:  NoTarget,
		}
		if r.TargetID != nil {
			ev.TargetID = *r.TargetID
		}
		if kind == KindDamage {
			ev.Amount = r.Amount
			ev.Absorbed = r.Absorbed
		}
		events = append(events, ev)
	}

	SortStable(events)
	return events
}

// SortStable orders events by timestamp, keeping input order on ties
func SortStable(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
}

// Filter returns the events matching keep, preserving order
func Filter(events []Event, keep func(Event) bool) []Event {
	var out []Event
	for _, ev := range events {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

// OfKind returns the events of the given kinds
func OfKind(events []Event, kinds ...Kind) []Event {
	return Filter(events, func(ev Event) bool {
		for _, k := range kinds {
			if ev.Kind == k {
				return true
			}
		}
		return false
	})
}

// InWindow returns the events whose timestamp falls inside w
func InWindow(events []Event, w Window) []Event {
	return Filter(events, func(ev Event) bool {
		return w.Contains(ev.Timestamp)
	})
}

// Before returns the events stamped strictly earlier than ts
func Before(events []Event, ts int64) []Event {
	return Filter(events, func(ev Event) bool {
		return ev.Timestamp < ts
	})
}
