package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/flapline.yaml
var defaultFlapYAML []byte

// DefaultSeed is the level seed every published leaderboard is computed against.
const DefaultSeed uint32 = 12345678

// DefaultFlapConfig returns the built-in configuration.
// It mirrors defaults/flapline.yaml and is used when the embedded file cannot be parsed.
func DefaultFlapConfig() FlapConfig {
	return FlapConfig{
		Physics: Physics{
			StepRate:        60,
			MaxCatchUpSteps: 4,
			Gravity:         50,
			LaunchImpulse:   10,
			Thrust:          2,
			Damping:         4,
			AirDampingScale: 0.066,
		},
		Bounds: Bounds{
			Ground:  0.65,
			Ceiling: 20,
			StartX:  -260,
			StartY:  7,
		},
		Level: Level{
			Seed:        DefaultSeed,
			Count:       449,
			Spacing:     10,
			FirstX:      -250,
			BaseSpread:  5,
			RampLimit:   30,
			RampDivisor: 7.5,
			MinHeight:   3,
		},
		Collider: Collider{
			GapHalfHeight: 7.05,
			Width:         3,
			Height:        9,
			SegmentsX:     2,
			SegmentsY:     5,
			HitRadius:     0.75,
		},
		Scoring: Scoring{
			PassMargin: 2,
		},
		Session: Session{
			RestartLockout: time.Second,
			Channel:        "flappy",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultFlapYAML
}
