// Package collider builds the point sets the simulation tests the bird against.
//
// Each obstacle has two colliders, one above its gap and one below. A collider
// is a plane grid of SegmentsX by SegmentsY segments, and its vertices are
// the sample points used for hit detection.
package collider

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/flapline/internal/config"
	"github.com/vovakirdan/flapline/internal/level"
)

// Side selects one of the two colliders of an obstacle.
type Side int

const (
	Bottom Side = iota
	Top
)

func (s Side) String() string {
	switch s {
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	default:
		return "unknown"
	}
}

// Sides lists both colliders in test order.
var Sides = [2]Side{Bottom, Top}

// Shape is the collider geometry shared by all obstacles.
type Shape struct {
	GapHalfHeight float64
	Width         float64
	Height        float64
	SegmentsX     int
	SegmentsY     int
	HitRadius     float64

	local []mgl64.Vec4
}

// NewShape builds a shape from the collider config and precomputes its local grid.
func NewShape(cfg config.Collider) *Shape {
	s := &Shape{
		GapHalfHeight: cfg.GapHalfHeight,
		Width:         cfg.Width,
		Height:        cfg.Height,
		SegmentsX:     cfg.SegmentsX,
		SegmentsY:     cfg.SegmentsY,
		HitRadius:     cfg.HitRadius,
	}
	s.local = planeGrid(s.Width, s.Height, s.SegmentsX, s.SegmentsY)
	return s
}

// DefaultShape returns the shape of the default configuration.
func DefaultShape() *Shape {
	return NewShape(config.DefaultFlapConfig().Collider)
}

// planeGrid returns the vertices of a width x height plane centered on the
// origin, split into sx by sy segments, row by row from the bottom.
func planeGrid(width, height float64, sx, sy int) []mgl64.Vec4 {
	if sx < 1 || sy < 1 {
		return nil
	}
	points := make([]mgl64.Vec4, 0, (sx+1)*(sy+1))
	for iy := 0; iy <= sy; iy++ {
		ly := -height/2 + height*float64(iy)/float64(sy)
		for ix := 0; ix <= sx; ix++ {
			lx := -width/2 + width*float64(ix)/float64(sx)
			points = append(points, mgl64.Vec4{lx, ly, 0, 1})
		}
	}
	return points
}

// PointCount returns the number of sample points per collider.
func (s *Shape) PointCount() int {
	return len(s.local)
}

// Center returns the world-space center of the collider on side of o.
func (s *Shape) Center(o level.Obstacle, side Side) mgl64.Vec3 {
	offset := -s.GapHalfHeight
	if side == Top {
		offset = s.GapHalfHeight
	}
	return mgl64.Vec3{o.X, o.GapCenterY + offset, 0}
}

// Sample returns the world-space sample points of the collider on side of o.
func (s *Shape) Sample(o level.Obstacle, side Side) []mgl64.Vec3 {
	c := s.Center(o, side)
	m := mgl64.Translate3D(c.X(), c.Y(), c.Z())

	points := make([]mgl64.Vec3, len(s.local))
	for i, p := range s.local {
		points[i] = m.Mul4x1(p).Vec3()
	}
	return points
}

// Hits reports whether pos lies strictly within the hit radius of any sample
// point of either collider of o.
func (s *Shape) Hits(o level.Obstacle, pos mgl64.Vec2) bool {
	for _, side := range Sides {
		if Hit(s.Sample(o, side), pos, s.HitRadius) {
			return true
		}
	}
	return false
}

// Hit reports whether any point is closer than radius to pos in the xy plane.
func Hit(points []mgl64.Vec3, pos mgl64.Vec2, radius float64) bool {
	for _, p := range points {
		if p.Vec2().Sub(pos).Len() < radius {
			return true
		}
	}
	return false
}
