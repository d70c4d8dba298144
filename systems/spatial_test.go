package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/forage/components"
)

func TestSpatialIndexSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	idx := NewSpatialIndex(10, 8)

	for round := 0; round < 5; round++ {
		var entries []Occupant
		occupied := make(map[components.Position][]uint64)
		for id := uint64(1); id <= 30; id++ {
			p := components.Position{X: rng.Intn(10), Y: rng.Intn(8)}
			kind := OccupantCreature
			if id%3 == 0 {
				kind = OccupantPlant
			}
			entries = append(entries, Occupant{ID: id, Kind: kind, Pos: p})
			occupied[p] = append(occupied[p], id)
		}
		idx.Rebuild(entries)

		if idx.Len() != 30 {
			t.Fatalf("round %d: Len = %d, want 30", round, idx.Len())
		}
		for y := 0; y < 8; y++ {
			for x := 0; x < 10; x++ {
				p := components.Position{X: x, Y: y}
				got := idx.Occupants(p)
				want := occupied[p]
				if len(got) != len(want) {
					t.Errorf("round %d: Occupants(%v) = %d entries, want %d", round, p, len(got), len(want))
					continue
				}
				seen := make(map[uint64]bool)
				for _, o := range got {
					seen[o.ID] = true
					if o.Pos != p {
						t.Errorf("occupant %d at %v indexed under %v", o.ID, o.Pos, p)
					}
				}
				for _, id := range want {
					if !seen[id] {
						t.Errorf("round %d: Occupants(%v) missing %d", round, p, id)
					}
				}
			}
		}
	}
}

func TestSpatialIndexCellOrder(t *testing.T) {
	idx := NewSpatialIndex(3, 3)
	p := components.Position{X: 1, Y: 1}
	idx.Rebuild([]Occupant{
		{ID: 9, Kind: OccupantPlant, Pos: p},
		{ID: 5, Kind: OccupantCreature, Pos: p},
		{ID: 2, Kind: OccupantPlant, Pos: p},
		{ID: 3, Kind: OccupantCreature, Pos: p},
	})
	got := idx.Occupants(p)
	want := []uint64{3, 5, 2, 9}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Occupants[%d] = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestSpatialIndexOutOfBounds(t *testing.T) {
	idx := NewSpatialIndex(2, 2)
	idx.Rebuild([]Occupant{{ID: 1, Pos: components.Position{X: 5, Y: 5}}})
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
	if got := idx.Occupants(components.Position{X: -1, Y: 0}); len(got) != 0 {
		t.Errorf("Occupants(out of bounds) = %v, want empty", got)
	}
}

func TestSpatialIndexRebuildClears(t *testing.T) {
	idx := NewSpatialIndex(3, 3)
	a := components.Position{X: 0, Y: 0}
	idx.Rebuild([]Occupant{{ID: 1, Pos: a}})
	gen := idx.Generation()
	idx.Rebuild(nil)
	if len(idx.Occupants(a)) != 0 {
		t.Error("stale occupant survived rebuild")
	}
	if idx.Generation() != gen+1 {
		t.Errorf("Generation = %d, want %d", idx.Generation(), gen+1)
	}
}

func TestNearestRingOrder(t *testing.T) {
	idx := NewSpatialIndex(7, 7)
	origin := components.Position{X: 3, Y: 3}
	idx.Rebuild([]Occupant{
		{ID: 1, Kind: OccupantPlant, Pos: components.Position{X: 3, Y: 6}}, // r=3
		{ID: 2, Kind: OccupantPlant, Pos: components.Position{X: 4, Y: 4}}, // r=2, y=4
		{ID: 3, Kind: OccupantPlant, Pos: components.Position{X: 2, Y: 2}}, // r=2, y=2
		{ID: 4, Kind: OccupantCreature, Pos: components.Position{X: 3, Y: 4}},
	})
	isPlant := func(o Occupant) bool { return o.Kind == OccupantPlant }

	got, ok := idx.Nearest(origin, 10, isPlant)
	if !ok || got.ID != 3 {
		t.Errorf("Nearest = %d, %v; want 3 (ring 2, lowest y)", got.ID, ok)
	}

	if _, ok := idx.Nearest(origin, 1, isPlant); ok {
		t.Error("Nearest within radius 1 found a plant")
	}

	got, ok = idx.Nearest(origin, 0, func(o Occupant) bool { return true })
	if ok {
		t.Errorf("Nearest radius 0 = %d, want none at origin", got.ID)
	}
}

func TestForEachRingCell(t *testing.T) {
	var cells []components.Position
	forEachRingCell(components.Position{}, 2, func(p components.Position) bool {
		cells = append(cells, p)
		return true
	})
	if len(cells) != 8 {
		t.Fatalf("ring 2 has %d cells, want 8", len(cells))
	}
	for i := 1; i < len(cells); i++ {
		a, b := cells[i-1], cells[i]
		if a.Y > b.Y || (a.Y == b.Y && a.X >= b.X) {
			t.Errorf("cells out of order: %v before %v", a, b)
		}
		if components.Manhattan(components.Position{}, b) != 2 {
			t.Errorf("%v not at distance 2", b)
		}
	}
}
