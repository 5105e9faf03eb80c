package analysis

import (
	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/rotation"
)

// Buff ids received from other raid members
const (
	Heroism       = 32182
	Bloodlust     = 2825
	NaturesGrace  = 16886
	VampiricTouch = 34919
)

// ComputeHPS spreads each spell's healing over the window duration. Percent
// fields are shares of totalHPS and stay 0 when it is not positive.
func ComputeHPS(healing []AbilityHealing, windowMs int64, totalHPS float64, tracked int) HPSSplit {
	split := HPSSplit{Total: totalHPS}
	if windowMs <= 0 {
		return split
	}
	seconds := float64(windowMs) / 1000

	for _, h := range healing {
		hps := float64(h.Total) / seconds
		switch {
		case h.AbilityID == tracked:
			split.Lifebloom += hps
		case h.AbilityID == rotation.Rejuvenation:
			split.Rejuvenation += hps
		default:
			rank, ok := rotation.RegrowthRanks[h.AbilityID]
			if !ok {
				continue
			}
			split.Regrowth += hps
			if split.RegrowthByRank == nil {
				split.RegrowthByRank = make(map[string]float64)
			}
			split.RegrowthByRank[rank] += hps
		}
	}

	if totalHPS > 0 {
		split.LifebloomPercent = split.Lifebloom / totalHPS * 100
		split.RejuvenationPercent = split.Rejuvenation / totalHPS * 100
		split.RegrowthPercent = split.Regrowth / totalHPS * 100
	}
	return split
}

// DetectBuffs scans buff applications landing on the participant.
func DetectBuffs(events []combatlog.Event, participantID int) BuffFlags {
	var flags BuffFlags
	for _, ev := range events {
		if ev.Kind != combatlog.KindApplyBuff || ev.TargetID != participantID {
			continue
		}
		switch ev.AbilityID {
		case Heroism, Bloodlust:
			flags.Bloodlust = true
		case NaturesGrace:
			flags.NaturesGrace = true
		case VampiricTouch:
			flags.VampiricTouch = true
		case rotation.Innervate:
			flags.InnervateCount++
		}
	}
	return flags
}

// ComposeHealers counts healers by "Spec Class".
func ComposeHealers(healers []Healer) Composition {
	c := Composition{Total: len(healers)}
	if len(healers) == 0 {
		return c
	}
	c.BySpec = make(map[string]int)
	for _, h := range healers {
		key := h.Class
		if h.Spec != "" {
			key = h.Spec + " " + h.Class
		}
		c.BySpec[key]++
	}
	return c
}
