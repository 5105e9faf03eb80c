package analysis

import (
	"time"

	"github.com/samijaber1/bloomwatch/internal/combatlog"
	"github.com/samijaber1/bloomwatch/internal/haste"
	"github.com/samijaber1/bloomwatch/internal/phase"
	"github.com/samijaber1/bloomwatch/internal/rotation"
	"github.com/samijaber1/bloomwatch/internal/tanks"
	"github.com/samijaber1/bloomwatch/internal/uptime"
)

// AbilityHealing is the healing done by one ability over the fight
type AbilityHealing struct {
	AbilityID int   `json:"abilityGameID"`
	Total     int64 `json:"total"`
}

// Healer is one healer of the raid
type Healer struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Spec  string `json:"spec"`
}

// Input is everything one analysis run needs. Events must cover the whole
// fight; phase windows are cut inside the run.
type Input struct {
	ReportCode  string
	Fight       combatlog.Fight
	Actors      []combatlog.Actor
	Participant string
	// TankIDs are the tanks from encounter metadata, used when the profile
	// declares no quotas for the phase.
	TankIDs []int
	Events  []combatlog.Event
	// HasteRating is the participant's haste stat when the log recorded it.
	HasteRating *float64
	Gear        []haste.GearItem
	Healing     []AbilityHealing
	// TotalHPS is the participant's ranked healing per second.
	TotalHPS float64
	Healers  []Healer
	// Phase selects 1 or 2 on two-boss encounters; 0 is the whole fight.
	Phase int
}

// HPSSplit is healing per second of the tracked spells over the window
type HPSSplit struct {
	Lifebloom           float64            `json:"lifebloom"`
	Rejuvenation        float64            `json:"rejuvenation"`
	Regrowth            float64            `json:"regrowth"`
	RegrowthByRank      map[string]float64 `json:"regrowthByRank,omitempty"`
	Total               float64            `json:"total"`
	LifebloomPercent    float64            `json:"lifebloomPercent"`
	RejuvenationPercent float64            `json:"rejuvenationPercent"`
	RegrowthPercent     float64            `json:"regrowthPercent"`
}

// BuffFlags records external buffs the participant received
type BuffFlags struct {
	Bloodlust      bool `json:"bloodlust"`
	NaturesGrace   bool `json:"naturesGrace"`
	VampiricTouch  bool `json:"vampiricTouch"`
	InnervateCount int  `json:"innervateCount"`
}

// Composition summarizes the raid's healers
type Composition struct {
	Total  int            `json:"total"`
	BySpec map[string]int `json:"bySpec,omitempty"`
}

// Tank resolution modes
const (
	TankModeTimeline    = "timeline"
	TankModeAttribution = "attribution"
)

// Result is the outcome of one analysis run
type Result struct {
	RunID         string              `json:"runId"`
	CreatedAt     time.Time           `json:"createdAt"`
	ReportCode    string              `json:"reportCode"`
	Fight         combatlog.Fight     `json:"fight"`
	Participant   string              `json:"participant"`
	ParticipantID int                 `json:"participantId"`
	Profile       string              `json:"profile"`
	Phase         int                 `json:"phase"`
	Boundary      *phase.Boundary     `json:"boundary,omitempty"`
	Window        combatlog.Window    `json:"window"`
	Uptime        uptime.Result       `json:"uptime"`
	HPS           HPSSplit            `json:"hps"`
	Buffs         BuffFlags           `json:"buffs"`
	Composition   Composition         `json:"composition"`
	TankMode      string              `json:"tankMode"`
	Tanks         []tanks.Tank        `json:"tanks"`
	Swings        []tanks.Swing       `json:"swings,omitempty"`
	Policy        haste.TimeoutPolicy `json:"policy"`
	Haste         *haste.Breakdown    `json:"haste,omitempty"`
	Casts         []rotation.Cast     `json:"casts"`
	Sections      []rotation.Section  `json:"sections"`
	Rotations     []rotation.Section  `json:"rotations"`
	Summary       rotation.Summary    `json:"summary"`
	Notes         []string            `json:"notes,omitempty"`
}
