// Package render draws an arrangement onto the pitch. The same scene and pitch
// geometry feed both the terminal view and the PNG export.
package render

import (
	"math"

	"pitchboard/internal/formation"
)

const (
	GrassColor  = "#22c55e"
	LineColor   = "#ffffff"
	PlayerLabel = "#ffffff"

	// PlayerRadius is the drawn radius of a player disc.
	PlayerRadius = 24.0
)

// Scene is everything visible on the pitch at one instant.
type Scene struct {
	Width, Height float64
	Players       []formation.Player
	Arrows        []formation.Arrow
	// Preview is the arrow being drawn, shown dashed. Nil when no arrow is pending.
	Preview *formation.Arrow
	// Selected is the id of the player being dragged.
	Selected string
}

// Viewport maps a Cols x Rows terminal grid onto a Width x Height surface.
type Viewport struct {
	Cols, Rows    int
	Width, Height float64
}

func (v Viewport) cellW() float64 { return v.Width / float64(max(v.Cols, 1)) }
func (v Viewport) cellH() float64 { return v.Height / float64(max(v.Rows, 1)) }

// ToSurface returns the surface point at the centre of a cell.
func (v Viewport) ToSurface(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * v.cellW(), (float64(row) + 0.5) * v.cellH()
}

// ToCell returns the cell containing a surface point, clamped to the grid.
func (v Viewport) ToCell(x, y float64) (col, row int) {
	col = int(math.Floor(x / v.cellW()))
	row = int(math.Floor(y / v.cellH()))
	return clampInt(col, 0, v.Cols-1), clampInt(row, 0, v.Rows-1)
}

// Contains reports whether a terminal cell lies on the pitch.
func (v Viewport) Contains(col, row int) bool {
	return col >= 0 && row >= 0 && col < v.Cols && row < v.Rows
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
