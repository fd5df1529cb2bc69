package level

import (
	"math"
	"testing"
)

func TestRNGFirstStates(t *testing.T) {
	rng := NewRNG(12345678)
	want := []uint32{3571423030, 1420449534, 3773487910, 1013894190, 2581506198}
	for i, w := range want {
		if got := rng.Next(); got != w {
			t.Errorf("state %d = %d, want %d", i, got, w)
		}
	}
}

func TestGenerateGoldenValues(t *testing.T) {
	obstacles := Generate(12345678, 449)
	if len(obstacles) != 449 {
		t.Fatalf("len = %d, want 449", len(obstacles))
	}

	golden := map[int]float64{
		0:   7.157683614175767,
		1:   4.697717453632504,
		2:   7.627207059568415,
		3:   4.2747544390149415,
		4:   6.325830748211592,
		448: 3.9165865718387067,
	}
	for i, want := range golden {
		if got := obstacles[i].GapCenterY; math.Abs(got-want) > 1e-12 {
			t.Errorf("obstacle %d gap = %.17g, want %.17g", i, got, want)
		}
	}
}

func TestGenerateXSpacing(t *testing.T) {
	obstacles := Generate(12345678, 449)
	if obstacles[0].X != -250 {
		t.Errorf("first x = %v, want -250", obstacles[0].X)
	}
	for i := 1; i < len(obstacles); i++ {
		if d := obstacles[i].X - obstacles[i-1].X; d != 10 {
			t.Fatalf("x step at %d = %v, want 10", i, d)
		}
		if obstacles[i].Index != i {
			t.Fatalf("index at %d = %d", i, obstacles[i].Index)
		}
	}
	if last := obstacles[448].X; last != 4230 {
		t.Errorf("last x = %v, want 4230", last)
	}
}

func TestGenerateIsPure(t *testing.T) {
	a := Generate(12345678, 449)
	b := Generate(12345678, 449)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("obstacle %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}

	c := Generate(42, 449)
	same := true
	for i := range a {
		if a[i].GapCenterY != c[i].GapCenterY {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestGenerateHeightRange(t *testing.T) {
	p := DefaultParams()
	for _, o := range p.Generate() {
		if o.GapCenterY < p.MinHeight {
			t.Errorf("obstacle %d gap %v below minimum", o.Index, o.GapCenterY)
		}
		if limit := p.MinHeight + p.Spread(o.Index); o.GapCenterY >= limit {
			t.Errorf("obstacle %d gap %v >= %v", o.Index, o.GapCenterY, limit)
		}
	}
}

func TestSpreadRamp(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		index int
		want  float64
	}{
		{0, 5},
		{15, 7},
		{30, 9},
		{31, 9},
		{448, 9},
	}
	for _, tt := range tests {
		if got := p.Spread(tt.index); got != tt.want {
			t.Errorf("Spread(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}
}

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(1, 0); got != nil {
		t.Errorf("Generate(1, 0) = %v, want nil", got)
	}
}

func TestLayoutNearestIndex(t *testing.T) {
	l := NewLayout(DefaultParams())
	tests := []struct {
		x    float64
		want int
	}{
		{-260, -1},
		{-250, 0},
		{-245.1, 0},
		{-245, 1},
		{-240, 1},
		{0, 25},
		{4230, 448},
	}
	for _, tt := range tests {
		if got := l.NearestIndex(tt.x); got != tt.want {
			t.Errorf("NearestIndex(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestLayoutPassedCount(t *testing.T) {
	l := NewLayout(DefaultParams())
	tests := []struct {
		x    float64
		want int
	}{
		{-260, 0},
		{-248.1, 0},
		{-248, 1},
		{-238, 2},
		{2, 26},
		{4232, 449},
	}
	for _, tt := range tests {
		if got := l.PassedCount(tt.x, 2); got != tt.want {
			t.Errorf("PassedCount(%v) = %d, want %d", tt.x, got, tt.want)
		}
		// Closed form used by the scoring rule on the default course.
		if tt.want > 0 {
			closed := int(math.Floor((tt.x-2)/10)) + 26
			if closed != tt.want {
				t.Errorf("closed form at %v = %d, want %d", tt.x, closed, tt.want)
			}
		}
	}
}

func TestLayoutAtAndRange(t *testing.T) {
	l := NewLayout(DefaultParams())
	if _, ok := l.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
	if _, ok := l.At(l.Len()); ok {
		t.Error("At(Len()) should be out of range")
	}
	o, ok := l.At(3)
	if !ok || o.X != -220 {
		t.Errorf("At(3) = %+v, %v", o, ok)
	}

	got := l.Range(-250, -215)
	if len(got) != 4 {
		t.Fatalf("Range returned %d obstacles, want 4", len(got))
	}
	for i, o := range got {
		if o.Index != i {
			t.Errorf("Range[%d].Index = %d", i, o.Index)
		}
	}
	if r := l.Range(5000, 6000); len(r) != 0 {
		t.Errorf("Range past the course = %v", r)
	}
}
