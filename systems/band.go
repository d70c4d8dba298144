package systems

import (
	"math"

	"github.com/pthm-cable/forage/components"
)

// BandCenter is the band's reference point in continuous cell coordinates.
type BandCenter struct {
	X, Y float64
}

// MeanCenter returns the arithmetic mean of positions, or false when empty.
func MeanCenter(positions []components.Position) (BandCenter, bool) {
	if len(positions) == 0 {
		return BandCenter{}, false
	}
	var sx, sy int
	for _, p := range positions {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(positions))
	return BandCenter{X: float64(sx) / n, Y: float64(sy) / n}, true
}

// Cell rounds the center to the nearest cell, halves away from zero.
func (b BandCenter) Cell() components.Position {
	return components.Position{X: int(math.Round(b.X)), Y: int(math.Round(b.Y))}
}

// OutsideBand reports whether pos lies beyond radius of the rounded center.
func OutsideBand(pos components.Position, center BandCenter, radius int) bool {
	return components.Manhattan(pos, center.Cell()) > radius
}

// BandTarget returns the passable cell creatures travel to when returning,
// the rounded center or the nearest passable cell to it.
func BandTarget(grid *Grid, center BandCenter) components.Position {
	cell := center.Cell()
	if grid.Passable(cell) {
		return cell
	}
	if p, ok := grid.NearestPassable(cell); ok {
		return p
	}
	return cell
}
