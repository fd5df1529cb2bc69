package collider

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/flapline/internal/level"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestShapeGrid(t *testing.T) {
	s := DefaultShape()
	if got := s.PointCount(); got != 18 {
		t.Fatalf("PointCount = %d, want 18", got)
	}

	xs := []float64{-1.5, 0, 1.5}
	ys := []float64{-4.5, -2.7, -0.9, 0.9, 2.7, 4.5}
	for iy, y := range ys {
		for ix, x := range xs {
			p := s.local[iy*len(xs)+ix]
			if !approx(p.X(), x) || !approx(p.Y(), y) {
				t.Errorf("local[%d,%d] = (%v, %v), want (%v, %v)", ix, iy, p.X(), p.Y(), x, y)
			}
		}
	}
}

func TestSampleWorldPositions(t *testing.T) {
	s := DefaultShape()
	o := level.Obstacle{Index: 0, X: -250, GapCenterY: 7}

	bottom := s.Sample(o, Bottom)
	top := s.Sample(o, Top)
	if len(bottom) != 18 || len(top) != 18 {
		t.Fatalf("sample sizes %d, %d", len(bottom), len(top))
	}

	// First vertex is the lower-left corner.
	if !approx(bottom[0].X(), -251.5) || !approx(bottom[0].Y(), 7-7.05-4.5) {
		t.Errorf("bottom[0] = %v", bottom[0])
	}
	if !approx(top[17].X(), -248.5) || !approx(top[17].Y(), 7+7.05+4.5) {
		t.Errorf("top[17] = %v", top[17])
	}

	if c := s.Center(o, Top); !approx(c.Y(), 14.05) {
		t.Errorf("top center = %v", c)
	}
	if c := s.Center(o, Bottom); !approx(c.Y(), -0.05) {
		t.Errorf("bottom center = %v", c)
	}
}

func TestHitsOnSamplePoint(t *testing.T) {
	s := DefaultShape()
	o := level.Obstacle{X: 0, GapCenterY: 7}

	for _, side := range Sides {
		for _, p := range s.Sample(o, side) {
			if !s.Hits(o, p.Vec2()) {
				t.Errorf("%s point %v should hit", side, p)
			}
		}
	}
}

func TestHitRadiusIsStrict(t *testing.T) {
	s := DefaultShape()
	o := level.Obstacle{X: 0, GapCenterY: 7}
	// Upper-right corner of the top collider.
	corner := s.Sample(o, Top)[17]

	tests := []struct {
		name string
		pos  mgl64.Vec2
		want bool
	}{
		{"exact", corner.Vec2(), true},
		{"inside radius", corner.Vec2().Add(mgl64.Vec2{0.74, 0}), true},
		{"outside radius", corner.Vec2().Add(mgl64.Vec2{0.76, 0}), false},
		{"above", corner.Vec2().Add(mgl64.Vec2{0, 0.76}), false},
		{"gap center", mgl64.Vec2{0, 7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Hits(o, tt.pos); got != tt.want {
				t.Errorf("Hits(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestHitEmpty(t *testing.T) {
	if Hit(nil, mgl64.Vec2{}, 1) {
		t.Error("no points should never hit")
	}
}

func TestSideString(t *testing.T) {
	if Bottom.String() != "bottom" || Top.String() != "top" || Side(5).String() != "unknown" {
		t.Error("unexpected side names")
	}
}
