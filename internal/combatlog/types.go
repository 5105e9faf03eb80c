package combatlog

// Kind is the normalized event type
type Kind string

const (
	KindCast        Kind = "cast"
	KindApplyBuff   Kind = "applybuff"
	KindRefreshBuff Kind = "refreshbuff"
	KindRemoveBuff  Kind = "removebuff"
	KindDamage      Kind = "damage"
)

// NoTarget marks an event without a target actor
const NoTarget = 0

// EnvironmentID is the actor id the log uses for the environment pseudo-actor
const EnvironmentID = -1

// Event is one normalized combat-log record. Timestamps are milliseconds,
// either report-relative or absolute as chosen by the caller.
type Event struct {
	Timestamp int64
	Kind      Kind
	AbilityID int
	SourceID  int
	TargetID  int
	Amount    int64 // damage only
	Absorbed  int64 // damage only
}

// HasTarget reports whether the event names a target actor
func (e Event) HasTarget() bool {
	return e.TargetID != NoTarget
}

// RawEvent is the record shape handed over by the fetch layer
type RawEvent struct {
	Timestamp int64  `json:"timestamp"`
	Type      string `json:"type"`
	AbilityID int    `json:"abilityGameID"`
	SourceID  int    `json:"sourceID"`
	TargetID  *int   `json:"targetID,omitempty"`
	Amount    int64  `json:"amount,omitempty"`
	Absorbed  int64  `json:"absorbed,omitempty"`
	Fight     int    `json:"fight,omitempty"`
}

// Actor is an entry of the report's actor table
type Actor struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	SubType string `json:"subType,omitempty"`
}

// Fight describes one encounter pull inside a report
type Fight struct {
	ID          int    `json:"id"`
	EncounterID int    `json:"encounterID"`
	Name        string `json:"name"`
	Kill        bool   `json:"kill"`
	Start       int64  `json:"startTime"`
	End         int64  `json:"endTime"`
}

// Duration returns the fight length in milliseconds
func (f Fight) Duration() int64 {
	if f.End < f.Start {
		return 0
	}
	return f.End - f.Start
}

// Relative converts a timestamp to fight-relative seconds
func (f Fight) Relative(ts int64) float64 {
	return float64(ts-f.Start) / 1000.0
}

// Window returns the whole fight as a query window
func (f Fight) Window() Window {
	return Window{Start: f.Start, End: f.End}
}

// Window is a closed [Start, End] range in milliseconds
type Window struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Duration returns the window length in milliseconds, never negative
func (w Window) Duration() int64 {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start
}

// Contains reports whether ts falls inside the window. The end bound is
// inclusive so that events stamped exactly at fight end are kept.
func (w Window) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}
