package rotation

import (
	"github.com/samijaber1/bloomwatch/internal/combatlog"
)

// Cast is one participant cast in fight-relative time.
type Cast struct {
	Timestamp         int64    `json:"timestamp"`
	Time              float64  `json:"time"`
	AbilityID         int      `json:"abilityId"`
	TargetID          int      `json:"targetId,omitempty"`
	TargetEnvironment bool     `json:"targetEnvironment,omitempty"`
	ActiveTankID      int      `json:"activeTankId,omitempty"`
	Category          Category `json:"category"`
	Note              string   `json:"note,omitempty"`
}

// Collect turns the participant's cast events into Casts, dropping excluded
// abilities and every non-cast event. Input order is preserved.
func Collect(events []combatlog.Event, table AbilityTable, roster *combatlog.Roster, fight combatlog.Fight) []Cast {
	casts := make([]Cast, 0, len(events))
	for _, ev := range events {
		if ev.Kind != combatlog.KindCast || table.Excluded[ev.AbilityID] {
			continue
		}
		casts = append(casts, Cast{
			Timestamp:         ev.Timestamp,
			Time:              fight.Relative(ev.Timestamp),
			AbilityID:         ev.AbilityID,
			TargetID:          ev.TargetID,
			TargetEnvironment: ev.HasTarget() && roster != nil && roster.IsEnvironment(ev.TargetID),
		})
	}
	return casts
}
