package tanks

import (
	"sort"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
)

// BossQuota asks for the top Tanks damage recipients of one boss
type BossQuota struct {
	BossID int
	Tanks  int
}

// ResolveByAttribution declares tanks from damage attribution instead of
// melee tracking. For every quota it sums amount+absorbed per player target
// over the events dealt by that boss and takes the top recipients. Ties go to
// the recipient hit first. A player picked by an earlier quota is not picked
// twice.
func ResolveByAttribution(events []combatlog.Event, roster *combatlog.Roster, quotas []BossQuota) ([]Tank, error) {
	for _, q := range quotas {
		if !roster.Has(q.BossID) {
			return nil, &combatlog.MissingActorError{Role: "boss", ID: q.BossID}
		}
	}

	picked := make(map[int]struct{})
	var out []Tank

	for _, q := range quotas {
		remaining := q.Tanks
		for _, tank := range topRecipients(events, roster, q.BossID) {
			if remaining <= 0 {
				break
			}
			if _, ok := picked[tank.ID]; ok {
				continue
			}
			picked[tank.ID] = struct{}{}
			out = append(out, tank)
			remaining--
		}
	}

	return out, nil
}

func topRecipients(events []combatlog.Event, roster *combatlog.Roster, bossID int) []Tank {
	totals := make(map[int]int64)
	var order []int

	for _, ev := range events {
		if ev.Kind != combatlog.KindDamage || ev.SourceID != bossID {
			continue
		}
		if !roster.IsPlayer(ev.TargetID) {
			continue
		}
		if _, ok := totals[ev.TargetID]; !ok {
			order = append(order, ev.TargetID)
		}
		totals[ev.TargetID] += ev.Amount + ev.Absorbed
	}

	ranked := make([]Tank, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, Tank{ID: id, Name: roster.Name(id), Taken: totals[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Taken > ranked[j].Taken
	})
	return ranked
}
