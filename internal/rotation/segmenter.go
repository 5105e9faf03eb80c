package rotation

import (
	"fmt"
)

// DefaultIdleBatch is the number of casts after which an idle stretch is
// closed as its own section.
const DefaultIdleBatch = 5

// Closure records why a section ended.
type Closure string

const (
	ClosureRotationStart Closure = "rotation-start"
	ClosureTimeout       Closure = "timeout"
	ClosureIdleBatch     Closure = "idle-batch"
	ClosureEndOfRun      Closure = "end-of-run"
)

// SectionKind distinguishes sections opened by a rotation start from idle
// stretches.
type SectionKind string

const (
	KindRotation SectionKind = "rotation"
	KindIdle     SectionKind = "idle"
)

// Rules parameterize segmentation.
type Rules struct {
	// TimeoutSeconds is how long after the latest rotation start the rotation
	// is considered over.
	TimeoutSeconds float64
	// IdleBatch is the number of idle casts per idle section.
	IdleBatch int
}

// Counts tallies the categorized casts of a section.
type Counts struct {
	RotationStart int `json:"rotationStart"`
	OtherTank     int `json:"otherTank,omitempty"`
	Instant       int `json:"instant"`
	Regrowth      int `json:"regrowth"`
}

// LB is the notation count of tracked-ability casts on tanks.
func (c Counts) LB() int {
	return c.RotationStart + c.OtherTank
}

// Counted is the number of casts contributing to the notation.
func (c Counts) Counted() int {
	return c.LB() + c.Instant + c.Regrowth
}

// Notation renders the counts as "{n}LB {n}I {n}RG".
func (c Counts) Notation() string {
	return fmt.Sprintf("%dLB %dI %dRG", c.LB(), c.Instant, c.Regrowth)
}

func (c *Counts) add(cat Category) {
	switch cat {
	case CategoryRotationStart:
		c.RotationStart++
	case CategoryOtherTank:
		c.OtherTank++
	case CategoryInstant:
		c.Instant++
	case CategoryRegrowth:
		c.Regrowth++
	}
}

// Section is a closed run of casts.
type Section struct {
	Label   string      `json:"label"`
	Kind    SectionKind `json:"kind"`
	Start   float64     `json:"start"`
	End     float64     `json:"end"`
	Counts  Counts      `json:"counts"`
	Closure Closure     `json:"closure"`
	Casts   []Cast      `json:"casts,omitempty"`
}

// Notation renders the section counts.
func (s Section) Notation() string {
	return s.Counts.Notation()
}

// OpenSection is the accumulator threaded through the fold.
type OpenSection struct {
	Kind   SectionKind `json:"kind"`
	Start  float64     `json:"start"`
	Counts Counts      `json:"counts"`
	Casts  []Cast      `json:"casts,omitempty"`

	InRotation        bool    `json:"inRotation"`
	Opener            int     `json:"opener,omitempty"`
	LastRotationStart float64 `json:"lastRotationStart,omitempty"`
	SinceClosure      int     `json:"sinceClosure"`
}

// View exposes the state a classifier may read.
func (o OpenSection) View() View {
	return View{
		InRotation:        o.InRotation,
		Opener:            o.Opener,
		LastRotationStart: o.LastRotationStart,
	}
}

func (o *OpenSection) add(c Cast) {
	o.Counts.add(c.Category)
	o.Casts = append(o.Casts, c)
	if !o.InRotation {
		o.SinceClosure++
	}
}

func (o OpenSection) close(n int, end float64, why Closure) Section {
	return Section{
		Label:   fmt.Sprintf("Rotation #%d", n),
		Kind:    o.Kind,
		Start:   o.Start,
		End:     end,
		Counts:  o.Counts,
		Closure: why,
		Casts:   o.Casts,
	}
}

// Fold segments a time-ordered cast stream. Each cast is classified against
// the state left by its predecessors, then exactly one rule applies, in
// priority order: a rotation start closes the previous section (when it has
// counted casts) and opens a new one; an in-rotation cast at or beyond the
// timeout closes the rotation; an idle cast arriving after IdleBatch idle
// casts closes the idle batch. The still-open section is returned unflushed
// along with every classified cast.
func Fold(casts []Cast, c Classifier, rules Rules) ([]Section, OpenSection, []Cast) {
	batch := rules.IdleBatch
	if batch <= 0 {
		batch = DefaultIdleBatch
	}

	var sections []Section
	classified := make([]Cast, 0, len(casts))
	open := OpenSection{Kind: KindIdle}
	if len(casts) > 0 {
		open.Start = casts[0].Time
	}

	for _, raw := range casts {
		cast := c.Classify(raw, open.View())
		classified = append(classified, cast)
		t := cast.Time

		switch {
		case cast.Category == CategoryRotationStart:
			if open.Counts.Counted() > 0 {
				sections = append(sections, open.close(len(sections)+1, t, ClosureRotationStart))
			}
			open = OpenSection{
				Kind:              KindRotation,
				Start:             t,
				InRotation:        true,
				Opener:            cast.TargetID,
				LastRotationStart: t,
			}

		case open.InRotation && t-open.LastRotationStart >= rules.TimeoutSeconds:
			sections = append(sections, open.close(len(sections)+1, t, ClosureTimeout))
			open = OpenSection{Kind: KindIdle, Start: t}

		case !open.InRotation && open.SinceClosure >= batch:
			sections = append(sections, open.close(len(sections)+1, t, ClosureIdleBatch))
			open = OpenSection{Kind: KindIdle, Start: t}
		}

		open.add(cast)
	}

	return sections, open, classified
}

// Segment folds the stream and flushes the open section when it holds any
// counted cast. The flushed section ends at the last cast.
func Segment(casts []Cast, c Classifier, rules Rules) ([]Section, []Cast) {
	sections, open, classified := Fold(casts, c, rules)
	if open.Counts.Counted() > 0 {
		end := open.Start
		if n := len(open.Casts); n > 0 {
			end = open.Casts[n-1].Time
		}
		sections = append(sections, open.close(len(sections)+1, end, ClosureEndOfRun))
	}
	return sections, classified
}

// Identified drops the trivial sections holding a single LB or a single
// instant and nothing else. Idle batches without counted casts are kept.
func Identified(sections []Section) []Section {
	var out []Section
	for _, s := range sections {
		c := s.Counts
		switch {
		case c.LB() == 1 && c.Instant == 0 && c.Regrowth == 0:
		case c.LB() == 0 && c.Instant == 1 && c.Regrowth == 0:
		default:
			out = append(out, s)
		}
	}
	return out
}
