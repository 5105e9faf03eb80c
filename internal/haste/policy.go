package haste

import (
	"errors"
	"fmt"
)

// Timeout sources reported on a TimeoutPolicy.
const (
	SourceComputed = "computed"
	SourceFallback = "fallback"
)

// PolicyConfig holds the timing constants the timeout policy is derived from.
// All durations are in seconds.
type PolicyConfig struct {
	BaseGCD         float64 `yaml:"baseGcd,omitempty" json:"baseGcd" mapstructure:"base_gcd"`
	BuffDuration    float64 `yaml:"buffDuration,omitempty" json:"buffDuration" mapstructure:"buff_duration"`
	HasteDivisor    float64 `yaml:"hasteDivisor,omitempty" json:"hasteDivisor" mapstructure:"haste_divisor"`
	FallbackTimeout float64 `yaml:"fallbackTimeout,omitempty" json:"fallbackTimeout" mapstructure:"fallback_timeout"`
	MinGCD          float64 `yaml:"minGcd,omitempty" json:"minGcd" mapstructure:"min_gcd"`
}

// DefaultPolicyConfig returns the constants for the tracked buff.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		BaseGCD:         1.5,
		BuffDuration:    7.0,
		HasteDivisor:    1577,
		FallbackTimeout: 5.5,
		MinGCD:          1.0,
	}
}

// Validate checks that the constants describe a usable policy.
func (c PolicyConfig) Validate() error {
	if c.BaseGCD <= 0 {
		return errors.New("base gcd must be positive")
	}
	if c.BuffDuration <= 0 {
		return errors.New("buff duration must be positive")
	}
	if c.HasteDivisor <= 0 {
		return errors.New("haste divisor must be positive")
	}
	if c.FallbackTimeout < 0 || c.FallbackTimeout > c.BuffDuration {
		return fmt.Errorf("fallback timeout %.2f must be within [0, %.2f]", c.FallbackTimeout, c.BuffDuration)
	}
	if c.MinGCD < 0 || c.MinGCD > c.BaseGCD {
		return fmt.Errorf("min gcd %.2f must be within [0, %.2f]", c.MinGCD, c.BaseGCD)
	}
	return nil
}

// GCD returns the global cooldown at the given haste rating.
func (c PolicyConfig) GCD(rating float64) float64 {
	gcd := c.BaseGCD
	if rating > 0 {
		gcd = c.BaseGCD / (1 + rating/c.HasteDivisor)
	}
	if gcd < c.MinGCD {
		gcd = c.MinGCD
	}
	return gcd
}

// Timeout returns the rotation timeout computed from a haste rating.
func (c PolicyConfig) Timeout(rating float64) float64 {
	timeout := c.BuffDuration - c.GCD(rating)
	if timeout < 0 {
		return 0
	}
	return timeout
}

// TimeoutPolicy is the resolved timing for one run.
type TimeoutPolicy struct {
	HasteRating            float64 `json:"hasteRating"`
	GlobalCooldownSeconds  float64 `json:"globalCooldownSeconds"`
	RotationTimeoutSeconds float64 `json:"rotationTimeoutSeconds"`
	Source                 string  `json:"source"`
}

// NewPolicy resolves the timeout policy. When no haste stat is available the
// configured fallback constant is used rather than the zero-haste formula.
func NewPolicy(cfg PolicyConfig, rating float64, available bool) TimeoutPolicy {
	if !available {
		return TimeoutPolicy{
			GlobalCooldownSeconds:  cfg.BaseGCD,
			RotationTimeoutSeconds: cfg.FallbackTimeout,
			Source:                 SourceFallback,
		}
	}

	return TimeoutPolicy{
		HasteRating:            rating,
		GlobalCooldownSeconds:  cfg.GCD(rating),
		RotationTimeoutSeconds: cfg.Timeout(rating),
		Source:                 SourceComputed,
	}
}

// FallbackDrift reports how far the fallback constant sits from the
// zero-haste computed timeout. Non-zero means the two were configured apart.
func (c PolicyConfig) FallbackDrift() float64 {
	return c.FallbackTimeout - c.Timeout(0)
}
