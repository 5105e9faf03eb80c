package phase

import (
	"errors"
	"fmt"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
)

// ErrInvalidPhase is returned for phase numbers other than 0, 1 and 2
var ErrInvalidPhase = errors.New("phase must be 0, 1 or 2")

// Validate checks a requested phase number
func Validate(n int) error {
	if n < 0 || n > 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidPhase, n)
	}
	return nil
}

// Boundary is the phase-1/phase-2 split of a two-boss fight
type Boundary struct {
	Detected     bool    `json:"detected"`
	SplitMs      int64   `json:"splitMs,omitempty"`
	SplitSeconds float64 `json:"splitSeconds,omitempty"`
	Reason       string  `json:"reason,omitempty"`
}

// Detect locates the moment the secondary boss stops taking damage. bossID
// comes from the caller's actor resolution; a non-positive id means the boss
// could not be resolved. Either failure yields an undetected boundary so
// callers fall back to a single-phase window.
func Detect(events []combatlog.Event, bossID int, fight combatlog.Fight) Boundary {
	if bossID <= 0 {
		return Boundary{Reason: "secondary boss not found in report"}
	}

	var last int64
	found := false
	for _, ev := range events {
		if ev.Kind != combatlog.KindDamage || ev.TargetID != bossID {
			continue
		}
		if !found || ev.Timestamp > last {
			last = ev.Timestamp
			found = true
		}
	}

	if !found {
		return Boundary{Reason: fmt.Sprintf("no damage taken by boss %d", bossID)}
	}

	return Boundary{
		Detected:     true,
		SplitMs:      last,
		SplitSeconds: fight.Relative(last),
	}
}

// Windows returns the query window of the requested phase. Phase 0, or any
// phase when the boundary was not detected, covers the whole fight.
func Windows(fight combatlog.Fight, b Boundary, phase int) combatlog.Window {
	if !b.Detected || phase == 0 {
		return fight.Window()
	}

	split := b.SplitMs
	if split < fight.Start {
		split = fight.Start
	}
	if split > fight.End {
		split = fight.End
	}

	switch phase {
	case 1:
		return combatlog.Window{Start: fight.Start, End: split}
	default:
		return combatlog.Window{Start: split, End: fight.End}
	}
}
