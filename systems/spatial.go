// Package systems provides the grid world, spatial index, pathfinding and
// per-tick behavior systems for the simulation.
package systems

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
)

// OccupantKind distinguishes entity types in the spatial index.
type OccupantKind uint8

const (
	OccupantCreature OccupantKind = iota
	OccupantPlant
)

// Occupant is an entity recorded in the spatial index.
type Occupant struct {
	Entity ecs.Entity
	ID     uint64
	Kind   OccupantKind
	Pos    components.Position
}

// SpatialIndex maps grid cells to their occupants. It is rebuilt from
// authoritative positions every tick and never patched in place.
type SpatialIndex struct {
	width, height int
	cells         [][]Occupant
	size          int
	generation    uint64
}

// NewSpatialIndex creates an empty index covering a width x height grid.
func NewSpatialIndex(width, height int) *SpatialIndex {
	cells := make([][]Occupant, width*height)
	for i := range cells {
		cells[i] = make([]Occupant, 0, 2)
	}
	return &SpatialIndex{width: width, height: height, cells: cells}
}

// Rebuild clears the index and inserts entries. Entries are sorted in place
// so each cell lists creatures by ascending ID, then plants by ascending ID.
// Entries outside the grid are dropped.
func (s *SpatialIndex) Rebuild(entries []Occupant) {
	for i := range s.cells {
		s.cells[i] = s.cells[i][:0]
	}
	s.size = 0

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].ID < entries[j].ID
	})

	for _, e := range entries {
		idx, ok := s.index(e.Pos)
		if !ok {
			continue
		}
		s.cells[idx] = append(s.cells[idx], e)
		s.size++
	}
	s.generation++
}

// Generation counts rebuilds; callers compare it to detect a stale index.
func (s *SpatialIndex) Generation() uint64 {
	return s.generation
}

// Len returns the number of indexed occupants.
func (s *SpatialIndex) Len() int {
	return s.size
}

// Occupants returns the entities at p. The slice is owned by the index and
// valid until the next Rebuild. Out-of-bounds cells are empty.
func (s *SpatialIndex) Occupants(p components.Position) []Occupant {
	idx, ok := s.index(p)
	if !ok {
		return nil
	}
	return s.cells[idx]
}

// Nearest returns the first occupant matching pred, searching Manhattan
// rings of radius 0..maxRadius around origin. Within a ring cells are
// scanned by ascending (y, x) and each cell in rebuild order.
func (s *SpatialIndex) Nearest(origin components.Position, maxRadius int, pred func(Occupant) bool) (Occupant, bool) {
	// Rings beyond the grid's far corner are empty.
	if limit := s.width + s.height; maxRadius > limit {
		maxRadius = limit
	}

	var found Occupant
	ok := false
	for r := 0; r <= maxRadius && !ok; r++ {
		forEachRingCell(origin, r, func(c components.Position) bool {
			for _, occ := range s.Occupants(c) {
				if pred(occ) {
					found, ok = occ, true
					return false
				}
			}
			return true
		})
	}
	return found, ok
}

func (s *SpatialIndex) index(p components.Position) (int, bool) {
	if p.X < 0 || p.X >= s.width || p.Y < 0 || p.Y >= s.height {
		return 0, false
	}
	return p.Y*s.width + p.X, true
}

// forEachRingCell calls fn for every cell at Manhattan distance r from
// origin, by ascending (y, x), until fn returns false. Cells may lie
// outside any grid; callers bound-check.
func forEachRingCell(origin components.Position, r int, fn func(components.Position) bool) {
	if r == 0 {
		fn(origin)
		return
	}
	for dy := -r; dy <= r; dy++ {
		rem := r - abs(dy)
		y := origin.Y + dy
		if !fn(components.Position{X: origin.X - rem, Y: y}) {
			return
		}
		if rem != 0 {
			if !fn(components.Position{X: origin.X + rem, Y: y}) {
				return
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
