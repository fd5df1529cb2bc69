package tui

import (
	"fmt"
	"math"

	"github.com/vovakirdan/flapline/internal/collider"
	"github.com/vovakirdan/flapline/internal/core"
	"github.com/vovakirdan/flapline/internal/sim"
)

// View layout constants
const (
	CellsPerUnit  = 2.0 // Horizontal cells per world unit; terminal cells are about twice as tall as wide
	BirdColumnPct = 25  // Bird column as percent of screen width
	hudRows       = 1

	ColliderChar = '█'
	SampleChar   = '•'
	GroundChar   = '▀'
)

// Camera maps world coordinates to screen cells. It follows the bird
// horizontally and shows the whole band between the ground and ceiling.
type Camera struct {
	Width, Height int
	CenterX       float64
	Floor         float64
	Ceiling       float64
}

// NewCamera creates a camera centered on x for a w×h screen.
func NewCamera(w, h int, x, floor, ceiling float64) Camera {
	return Camera{Width: w, Height: h, CenterX: x, Floor: floor, Ceiling: ceiling}
}

func (c Camera) birdColumn() int {
	return c.Width * BirdColumnPct / 100
}

// Col returns the screen column of world x.
func (c Camera) Col(x float64) int {
	return c.birdColumn() + int(math.Floor((x-c.CenterX)*CellsPerUnit))
}

// Row returns the screen row of world y. Rows below the HUD cover
// [Floor, Ceiling]; values outside are returned unclipped.
func (c Camera) Row(y float64) int {
	play := c.Height - hudRows - 1
	if play < 1 {
		play = 1
	}
	frac := (c.Ceiling - y) / (c.Ceiling - c.Floor)
	return hudRows + int(math.Floor(frac*float64(play)))
}

// XRange returns the world x interval visible on screen.
func (c Camera) XRange() (minX, maxX float64) {
	minX = c.CenterX - float64(c.birdColumn())/CellsPerUnit
	maxX = minX + float64(c.Width)/CellsPerUnit
	return minX, maxX
}

// DrawWorld renders the engine state into dst. best is the best score to show
// in the HUD; canRestart controls the hint on the end-of-run banner.
func DrawWorld(dst *core.Screen, e *sim.Engine, best int, canRestart bool) {
	dst.Clear()

	snap := e.Snapshot()
	cfg := e.Config()
	cam := NewCamera(dst.Width(), dst.Height(), snap.Position.X(), 0, cfg.Bounds.Ceiling)

	drawObstacles(dst, e, cam)

	groundRow := core.Min(cam.Row(cfg.Bounds.Ground)+1, dst.Height()-1)
	dst.DrawHLine(0, groundRow, dst.Width(), GroundChar, core.ColorGray)

	drawBird(dst, cam, snap)
	drawHUD(dst, snap, best)

	switch snap.Phase {
	case sim.NotStarted:
		drawCenteredMessage(dst, "FLAPLINE", "Space / Up / W to flap", core.ColorBrightYellow)
	case sim.Crashed:
		hint := fmt.Sprintf("Score: %d", snap.Score)
		if canRestart {
			hint += "  |  Flap to retry"
		}
		drawCenteredMessage(dst, "CRASHED", hint, core.ColorRed)
	case sim.Won:
		drawCenteredMessage(dst, "COURSE COMPLETE", fmt.Sprintf("Score: %d", snap.Score), core.ColorBrightMagenta)
	}
}

func drawObstacles(dst *core.Screen, e *sim.Engine, cam Camera) {
	shape := e.Shape()
	minX, maxX := cam.XRange()
	pad := shape.Width / 2

	for _, o := range e.Layout().Range(minX-pad, maxX+pad) {
		for _, side := range collider.Sides {
			c := shape.Center(o, side)
			r := core.RectFromCorners(
				cam.Col(c.X()-shape.Width/2), cam.Row(c.Y()+shape.Height/2),
				cam.Col(c.X()+shape.Width/2)+1, cam.Row(c.Y()-shape.Height/2)+1,
			)
			// Keep the HUD row clear.
			r = r.Intersect(core.NewRect(0, hudRows, dst.Width(), dst.Height()-hudRows))
			if r.Empty() {
				continue
			}
			dst.DrawRect(r, ColliderChar, core.ColorGreen)

			for _, p := range shape.Sample(o, side) {
				row := cam.Row(p.Y())
				if row >= hudRows {
					dst.SetColored(cam.Col(p.X()), row, SampleChar, core.ColorBrightGreen)
				}
			}
		}
	}
}

func drawBird(dst *core.Screen, cam Camera, snap sim.Snapshot) {
	col := cam.Col(snap.Position.X())
	row := core.Clamp(cam.Row(snap.Position.Y()), hudRows, dst.Height()-1)

	wing := '-'
	switch {
	case snap.RotationZ > 0.05:
		wing = '^'
	case snap.RotationZ < -0.05:
		wing = 'v'
	}
	color := core.ColorBrightYellow
	if snap.Phase == sim.Crashed {
		color = core.ColorRed
	}
	dst.SetColored(col-1, row, wing, color)
	dst.SetColored(col, row, '@', color)
	dst.SetColored(col+1, row, '>', core.ColorYellow)
}

func drawHUD(dst *core.Screen, snap sim.Snapshot, best int) {
	dst.DrawTextColored(1, 0, fmt.Sprintf(" Score: %d ", snap.Score), core.ColorWhite)
	dst.DrawTextColored(14, 0, fmt.Sprintf(" Best: %d ", max(best, snap.Score)), core.ColorGray)

	status := snap.Phase.String()
	if snap.RunID != "" {
		id := snap.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		status = fmt.Sprintf("%s  run %s", status, id)
	}
	dst.DrawTextColored(dst.Width()-len(status)-2, 0, status, core.ColorCyan)
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string, c core.Color) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	box := core.NewRect(boxX, boxY, boxW, boxH)
	dst.DrawRect(box, ' ', core.ColorDefault)
	dst.DrawBox(box, c)

	dst.DrawTextCentered(boxY+1, title, c)
	dst.DrawTextCentered(boxY+3, subtitle, core.ColorWhite)
}
