package tanks

import (
	"sort"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
)

// Swing is one melee-damage-taken observation naming the active tank
type Swing struct {
	Timestamp int64  `json:"timestamp"`
	TankID    int    `json:"tankID"`
	TankName  string `json:"tankName"`
}

// Tank is a resolved member of the tank roster
type Tank struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Taken int64  `json:"taken,omitempty"`
}

// Timeline is a step function from time to the currently tanking actor.
// It is read-only once built.
type Timeline struct {
	swings []Swing
}

// Build collects swings from damage events dealt by non-players to actors in
// the tank set.
func Build(events []combatlog.Event, roster *combatlog.Roster, tankIDs []int) *Timeline {
	isTank := make(map[int]struct{}, len(tankIDs))
	for _, id := range tankIDs {
		isTank[id] = struct{}{}
	}

	var swings []Swing
	for _, ev := range events {
		if ev.Kind != combatlog.KindDamage || roster.IsPlayer(ev.SourceID) {
			continue
		}
		if _, ok := isTank[ev.TargetID]; !ok {
			continue
		}
		swings = append(swings, Swing{
			Timestamp: ev.Timestamp,
			TankID:    ev.TargetID,
			TankName:  roster.Name(ev.TargetID),
		})
	}

	return FromSwings(swings)
}

// FromSwings builds a timeline from already collected swings
func FromSwings(swings []Swing) *Timeline {
	sorted := make([]Swing, len(swings))
	copy(sorted, swings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Timeline{swings: sorted}
}

// ActiveAt returns the last swing at or before ts. The second result is false
// when no swing precedes ts, meaning the active tank is unknown.
func (t *Timeline) ActiveAt(ts int64) (Swing, bool) {
	// first index with Timestamp > ts
	idx := sort.Search(len(t.swings), func(i int) bool {
		return t.swings[i].Timestamp > ts
	})
	if idx == 0 {
		return Swing{}, false
	}
	return t.swings[idx-1], true
}

// Swings returns a copy of the ordered swings
func (t *Timeline) Swings() []Swing {
	out := make([]Swing, len(t.swings))
	copy(out, t.swings)
	return out
}

// Len returns the number of swings
func (t *Timeline) Len() int {
	return len(t.swings)
}

// Tanks lists the distinct tanks in order of first appearance
func (t *Timeline) Tanks() []Tank {
	seen := make(map[int]struct{})
	var out []Tank
	for _, s := range t.swings {
		if _, ok := seen[s.TankID]; ok {
			continue
		}
		seen[s.TankID] = struct{}{}
		out = append(out, Tank{ID: s.TankID, Name: s.TankName})
	}
	return out
}
