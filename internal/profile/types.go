package profile

import (
	"github.com/samijaber1/bloomwatch/internal/haste"
	"github.com/samijaber1/bloomwatch/internal/rotation"
)

// Profile is an encounter profile: timing constants, ability table and
// tank resolution for one encounter, or for every encounter when
// EncounterID is 0.
type Profile struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata contains profile metadata
type Metadata struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Spec contains the profile body
type Spec struct {
	EncounterID int                 `yaml:"encounterId"`
	Timing      *haste.PolicyConfig `yaml:"timing,omitempty"`
	IdleBatch   int                 `yaml:"idleBatch,omitempty"`
	Abilities   *Abilities          `yaml:"abilities,omitempty"`
	Phases      *Phases             `yaml:"phases,omitempty"`
}

// Abilities overrides the built-in ability table
type Abilities struct {
	Tracked       int   `yaml:"tracked"`
	Instants      []int `yaml:"instants,omitempty"`
	Regrowth      []int `yaml:"regrowth,omitempty"`
	CancelledCast []int `yaml:"cancelledCast,omitempty"`
	Excluded      []int `yaml:"excluded,omitempty"`
}

// Phases describes a two-boss encounter
type Phases struct {
	// SecondaryBoss is the boss whose last damage taken ends phase 1.
	SecondaryBoss string  `yaml:"secondaryBoss"`
	TankQuotas    []Quota `yaml:"tankQuotas,omitempty"`
}

// Quota is the number of top damage recipients of a boss treated as tanks
// during a phase.
type Quota struct {
	Phase int    `yaml:"phase"`
	Boss  string `yaml:"boss"`
	Tanks int    `yaml:"tanks"`
}

// ProfileWithFile pairs a profile with its source file path
type ProfileWithFile struct {
	Profile *Profile
	File    string

	// doc is the decoded YAML document validated against the schema
	doc any
}

// ValidationError represents a validation error for a specific file
type ValidationError struct {
	File    string
	Path    string
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}

// Policy returns the timing constants with unset fields taken from the
// defaults.
func (p *Profile) Policy() haste.PolicyConfig {
	cfg := haste.DefaultPolicyConfig()
	t := p.Spec.Timing
	if t == nil {
		return cfg
	}
	if t.BaseGCD != 0 {
		cfg.BaseGCD = t.BaseGCD
	}
	if t.BuffDuration != 0 {
		cfg.BuffDuration = t.BuffDuration
	}
	if t.HasteDivisor != 0 {
		cfg.HasteDivisor = t.HasteDivisor
	}
	if t.FallbackTimeout != 0 {
		cfg.FallbackTimeout = t.FallbackTimeout
	}
	if t.MinGCD != 0 {
		cfg.MinGCD = t.MinGCD
	}
	return cfg
}

// AbilityTable returns the classification table for the profile.
func (p *Profile) AbilityTable() rotation.AbilityTable {
	a := p.Spec.Abilities
	if a == nil {
		return rotation.DefaultAbilities()
	}
	return rotation.NewAbilityTable(a.Tracked, a.Instants, a.Regrowth, a.CancelledCast, a.Excluded)
}

// Rules returns segmentation rules for the given timeout in seconds.
func (p *Profile) Rules(timeout float64) rotation.Rules {
	batch := p.Spec.IdleBatch
	if batch == 0 {
		batch = rotation.DefaultIdleBatch
	}
	return rotation.Rules{TimeoutSeconds: timeout, IdleBatch: batch}
}

// MultiPhase reports whether the profile describes a two-boss encounter.
func (p *Profile) MultiPhase() bool {
	return p.Spec.Phases != nil && p.Spec.Phases.SecondaryBoss != ""
}

// QuotasFor returns the tank quotas declared for a phase. An empty result
// means tanks come from encounter metadata.
func (p *Profile) QuotasFor(phase int) []Quota {
	if p.Spec.Phases == nil {
		return nil
	}
	var out []Quota
	for _, q := range p.Spec.Phases.TankQuotas {
		if q.Phase == phase {
			out = append(out, q)
		}
	}
	return out
}
