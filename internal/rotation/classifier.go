package rotation

import (
	"github.com/samijaber1/bloomwatch/internal/tanks"
)

// View is the read-only segmenter state a classifier may consult.
type View struct {
	InRotation bool
	// Opener is the target of the cast that opened the current rotation.
	Opener int
	// LastRotationStart is the fight-relative time of the latest rotation start.
	LastRotationStart float64
}

// Classifier assigns a category to each cast. One strategy is chosen per run.
type Classifier interface {
	Classify(c Cast, v View) Cast
}

// StandardClassifier treats the tracked ability on the currently tanking
// actor as a rotation start.
type StandardClassifier struct {
	table    AbilityTable
	timeline *tanks.Timeline
}

// NewStandardClassifier creates a classifier backed by a tank timeline.
func NewStandardClassifier(table AbilityTable, timeline *tanks.Timeline) *StandardClassifier {
	return &StandardClassifier{table: table, timeline: timeline}
}

// Classify implements Classifier.
func (s *StandardClassifier) Classify(c Cast, _ View) Cast {
	if s.timeline != nil {
		if swing, ok := s.timeline.ActiveAt(c.Timestamp); ok {
			c.ActiveTankID = swing.TankID
		}
	}

	if c.AbilityID != s.table.Tracked {
		c.Category, c.Note = s.table.untracked(c)
		return c
	}

	if c.ActiveTankID != 0 && c.TargetID == c.ActiveTankID {
		c.Category = CategoryRotationStart
	} else {
		c.Category = CategoryInstant
	}
	return c
}

// MultiTankClassifier handles encounters where several declared tanks hold
// bosses at once. The tracked ability on any declared tank starts or
// continues a rotation; on a tank other than the opener while the rotation
// is fresh it is logged as an other-tank cast.
type MultiTankClassifier struct {
	table        AbilityTable
	tanks        map[int]bool
	buffDuration float64
}

// NewMultiTankClassifier creates a classifier over a fixed tank set.
// buffDuration is in seconds.
func NewMultiTankClassifier(table AbilityTable, roster []tanks.Tank, buffDuration float64) *MultiTankClassifier {
	set := make(map[int]bool, len(roster))
	for _, t := range roster {
		set[t.ID] = true
	}
	return &MultiTankClassifier{table: table, tanks: set, buffDuration: buffDuration}
}

// Classify implements Classifier.
func (m *MultiTankClassifier) Classify(c Cast, v View) Cast {
	if c.AbilityID != m.table.Tracked {
		c.Category, c.Note = m.table.untracked(c)
		return c
	}

	if !m.tanks[c.TargetID] {
		c.Category = CategoryInstant
		return c
	}

	c.ActiveTankID = c.TargetID
	switch {
	case !v.InRotation,
		c.TargetID == v.Opener,
		c.Time-v.LastRotationStart >= m.buffDuration:
		c.Category = CategoryRotationStart
	default:
		c.Category = CategoryOtherTank
	}
	return c
}
