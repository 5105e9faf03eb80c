package rotation

import "sort"

// RotatingOnTankThreshold is the share of identified sections, in percent,
// that must include an LB for the participant to count as rotating on tank.
const RotatingOnTankThreshold = 70.0

// Pattern is one distinct section notation and how often it occurred.
type Pattern struct {
	Notation  string  `json:"notation"`
	Count     int     `json:"count"`
	Percent   float64 `json:"percent"`
	FirstSeen int     `json:"firstSeen"`
}

// Summary is the ranked pattern table of a run.
type Summary struct {
	Patterns            []Pattern `json:"patterns"`
	Total               int       `json:"total"`
	TankRotationPercent float64   `json:"tankRotationPercent"`
	RotatingOnTank      bool      `json:"rotatingOnTank"`
}

// Aggregate ranks the notations of the given sections, normally the output
// of Identified. Patterns are ordered by count descending, ties by first
// appearance.
func Aggregate(sections []Section) Summary {
	summary := Summary{Total: len(sections)}
	if len(sections) == 0 {
		return summary
	}

	index := make(map[string]int)
	withLB := 0
	for i, s := range sections {
		if s.Counts.LB() > 0 {
			withLB++
		}
		n := s.Notation()
		if at, ok := index[n]; ok {
			summary.Patterns[at].Count++
			continue
		}
		index[n] = len(summary.Patterns)
		summary.Patterns = append(summary.Patterns, Pattern{Notation: n, Count: 1, FirstSeen: i})
	}

	ps := summary.Patterns
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].Count > ps[j].Count
	})

	total := float64(len(sections))
	for i := range ps {
		ps[i].Percent = float64(ps[i].Count) * 100 / total
	}

	summary.TankRotationPercent = float64(withLB) * 100 / total
	summary.RotatingOnTank = summary.TankRotationPercent >= RotatingOnTankThreshold
	return summary
}
