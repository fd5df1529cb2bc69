// Package config provides YAML-based configuration for the flight simulation:
// physics constants, world bounds, level layout, collider geometry and
// session behaviour. Every tunable named by the engine lives here.
package config

import (
	"errors"
	"fmt"
	"time"
)

// FlapConfig contains all configuration for the simulation and its drivers.
type FlapConfig struct {
	Physics  Physics  `yaml:"physics"`
	Bounds   Bounds   `yaml:"bounds"`
	Level    Level    `yaml:"level"`
	Collider Collider `yaml:"collider"`
	Scoring  Scoring  `yaml:"scoring"`
	Session  Session  `yaml:"session"`
}

// Physics defines the fixed-step integrator parameters.
type Physics struct {
	StepRate        int     `yaml:"step_rate"`         // Fixed simulation steps per second
	MaxCatchUpSteps int     `yaml:"max_catch_up"`      // Steps allowed per Advance call
	Gravity         float64 `yaml:"gravity"`           // Units/s² subtracted from vertical velocity
	LaunchImpulse   float64 `yaml:"launch_impulse"`    // Vertical velocity set by a flap
	Thrust          float64 `yaml:"thrust"`            // Horizontal acceleration while airborne, units/s²
	Damping         float64 `yaml:"damping"`           // Exponential damping rate k in exp(-k·dt) - 1
	AirDampingScale float64 `yaml:"air_damping_scale"` // Damping attenuation while airborne
}

// Bounds defines the playable vertical band and the launch point.
type Bounds struct {
	Ground  float64 `yaml:"ground"`  // Run ends at or below this height
	Ceiling float64 `yaml:"ceiling"` // Run ends above this height
	StartX  float64 `yaml:"start_x"`
	StartY  float64 `yaml:"start_y"`
}

// Level defines the procedural obstacle layout.
type Level struct {
	Seed        uint32  `yaml:"seed"`
	Count       int     `yaml:"count"`
	Spacing     float64 `yaml:"spacing"`
	FirstX      float64 `yaml:"first_x"`
	BaseSpread  float64 `yaml:"base_spread"`
	RampLimit   int     `yaml:"ramp_limit"`
	RampDivisor float64 `yaml:"ramp_divisor"`
	MinHeight   float64 `yaml:"min_height"`
}

// Collider defines the sampled gate-edge surfaces.
type Collider struct {
	GapHalfHeight float64 `yaml:"gap_half_height"`
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	SegmentsX     int     `yaml:"segments_x"`
	SegmentsY     int     `yaml:"segments_y"`
	HitRadius     float64 `yaml:"hit_radius"`
}

// Scoring defines when a gate counts as passed.
type Scoring struct {
	PassMargin float64 `yaml:"pass_margin"` // Distance past an obstacle's x before it scores
}

// Session defines driver-side behaviour layered on top of the engine.
type Session struct {
	RestartLockout time.Duration `yaml:"restart_lockout"`
	Channel        string        `yaml:"channel"` // Broadcast channel name reported to listeners
}

// StepSeconds returns the fixed step size in seconds.
func (c FlapConfig) StepSeconds() float64 {
	return 1.0 / float64(c.Physics.StepRate)
}

// StepMillis returns the fixed step size in milliseconds.
func (c FlapConfig) StepMillis() float64 {
	return 1000.0 / float64(c.Physics.StepRate)
}

// Validate reports configuration values the engine cannot run with.
func (c FlapConfig) Validate() error {
	var errs []error
	if c.Physics.StepRate <= 0 {
		errs = append(errs, fmt.Errorf("physics.step_rate must be positive, got %d", c.Physics.StepRate))
	}
	if c.Physics.MaxCatchUpSteps <= 0 {
		errs = append(errs, fmt.Errorf("physics.max_catch_up must be positive, got %d", c.Physics.MaxCatchUpSteps))
	}
	if c.Level.Count < 2 {
		errs = append(errs, fmt.Errorf("level.count must be at least 2, got %d", c.Level.Count))
	}
	if c.Level.Spacing <= 0 {
		errs = append(errs, fmt.Errorf("level.spacing must be positive, got %g", c.Level.Spacing))
	}
	if c.Level.RampDivisor <= 0 {
		errs = append(errs, fmt.Errorf("level.ramp_divisor must be positive, got %g", c.Level.RampDivisor))
	}
	if c.Collider.HitRadius <= 0 {
		errs = append(errs, fmt.Errorf("collider.hit_radius must be positive, got %g", c.Collider.HitRadius))
	}
	if c.Collider.SegmentsX < 1 || c.Collider.SegmentsY < 1 {
		errs = append(errs, fmt.Errorf("collider segments must be at least 1, got %dx%d",
			c.Collider.SegmentsX, c.Collider.SegmentsY))
	}
	if c.Bounds.Ceiling <= c.Bounds.Ground {
		errs = append(errs, fmt.Errorf("bounds.ceiling (%g) must be above bounds.ground (%g)",
			c.Bounds.Ceiling, c.Bounds.Ground))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid: %w", errors.Join(errs...))
	}
	return nil
}
