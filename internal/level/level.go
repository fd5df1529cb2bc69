// Package level generates the obstacle course: an ordered, immutable sequence
// of gates whose vertical placement spreads further apart as the course goes on.
package level

import (
	"math"

	"github.com/vovakirdan/flapline/internal/config"
)

// Obstacle describes one gate. Obstacles are created once and never mutated.
type Obstacle struct {
	Index      int     `json:"index"`
	X          float64 `json:"x"`
	GapCenterY float64 `json:"gapCenterY"`
}

// Params controls layout generation.
type Params struct {
	Seed        uint32
	Count       int
	Spacing     float64
	FirstX      float64
	BaseSpread  float64
	RampLimit   int
	RampDivisor float64
	MinHeight   float64
}

// FromConfig converts the YAML level section into generator params.
func FromConfig(cfg config.Level) Params {
	return Params{
		Seed:        cfg.Seed,
		Count:       cfg.Count,
		Spacing:     cfg.Spacing,
		FirstX:      cfg.FirstX,
		BaseSpread:  cfg.BaseSpread,
		RampLimit:   cfg.RampLimit,
		RampDivisor: cfg.RampDivisor,
		MinHeight:   cfg.MinHeight,
	}
}

// DefaultParams returns the params of the default course.
func DefaultParams() Params {
	return FromConfig(config.DefaultFlapConfig().Level)
}

// Generate returns the default course layout for seed and count.
// Identical arguments always yield an identical sequence.
func Generate(seed uint32, count int) []Obstacle {
	p := DefaultParams()
	p.Seed = seed
	p.Count = count
	return p.Generate()
}

// Spread returns the vertical spread used for the obstacle at index.
// It grows with the index until RampLimit and stays flat afterwards.
func (p Params) Spread(index int) float64 {
	return p.BaseSpread + float64(min(index, p.RampLimit))/p.RampDivisor
}

// Generate produces p.Count obstacles, one generator sample each.
func (p Params) Generate() []Obstacle {
	if p.Count <= 0 {
		return nil
	}

	rng := NewRNG(p.Seed)
	obstacles := make([]Obstacle, p.Count)
	for i := range obstacles {
		sample := rng.Float()
		// Explicit conversions keep the compiler from fusing multiply-add,
		// so every architecture rounds the same way.
		x := float64(float64(i)*p.Spacing) + p.FirstX
		y := float64(sample*p.Spread(i)) + p.MinHeight
		obstacles[i] = Obstacle{Index: i, X: x, GapCenterY: y}
	}
	return obstacles
}

// Layout is a generated course with index arithmetic over it.
type Layout struct {
	params    Params
	obstacles []Obstacle
}

// NewLayout generates the course described by p.
func NewLayout(p Params) *Layout {
	return &Layout{params: p, obstacles: p.Generate()}
}

// Len returns the number of obstacles.
func (l *Layout) Len() int {
	return len(l.obstacles)
}

// At returns the obstacle at index i.
func (l *Layout) At(i int) (Obstacle, bool) {
	if i < 0 || i >= len(l.obstacles) {
		return Obstacle{}, false
	}
	return l.obstacles[i], true
}

// Obstacles returns the obstacles. Callers must not modify the slice.
func (l *Layout) Obstacles() []Obstacle {
	return l.obstacles
}

// Params returns the params the layout was generated from.
func (l *Layout) Params() Params {
	return l.params
}

// NearestIndex returns the index of the obstacle whose x is closest to x.
// The result may be outside [0, Len()) when x is beyond either end of the course.
func (l *Layout) NearestIndex(x float64) int {
	return int(math.Floor((x-l.params.FirstX)/l.params.Spacing + 0.5))
}

// PassedCount returns how many obstacles lie at least margin behind x.
// With the default course this equals floor((x - 2)/10) + 26, clamped at zero.
func (l *Layout) PassedCount(x, margin float64) int {
	n := int(math.Floor((x-margin-l.params.FirstX)/l.params.Spacing)) + 1
	if n < 0 {
		return 0
	}
	return n
}

// Range returns obstacles with x in [minX, maxX].
func (l *Layout) Range(minX, maxX float64) []Obstacle {
	lo := max(l.NearestIndex(minX)-1, 0)
	hi := min(l.NearestIndex(maxX)+1, len(l.obstacles)-1)
	if lo > hi {
		return nil
	}
	out := make([]Obstacle, 0, hi-lo+1)
	for _, o := range l.obstacles[lo : hi+1] {
		if o.X >= minX && o.X <= maxX {
			out = append(out, o)
		}
	}
	return out
}
