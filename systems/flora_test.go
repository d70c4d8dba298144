package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/forage/components"
)

func TestSpreadPlantsRespectsCap(t *testing.T) {
	grid := NewGrid(10, 10)
	parents := []components.Position{{X: 1, Y: 1}, {X: 5, Y: 5}, {X: 8, Y: 8}}
	none := func(components.Position) bool { return false }

	got := SpreadPlants(grid, parents, none, rand.New(rand.NewSource(3)), SpreadParams{Chance: 1, MaxPlants: 4})
	if len(got) != 1 {
		t.Errorf("seeded %d plants, want 1 (cap 4 with 3 parents)", len(got))
	}

	got = SpreadPlants(grid, parents, none, rand.New(rand.NewSource(3)), SpreadParams{Chance: 1, MaxPlants: 100})
	if len(got) != 3 {
		t.Fatalf("seeded %d plants, want 3", len(got))
	}
	for i, p := range got {
		if !components.Adjacent(parents[i], p) {
			t.Errorf("seed %v not adjacent to parent %v", p, parents[i])
		}
	}

	got = SpreadPlants(grid, parents, none, rand.New(rand.NewSource(3)), SpreadParams{Chance: 0, MaxPlants: 100})
	if len(got) != 0 {
		t.Errorf("seeded %d plants with zero chance", len(got))
	}
}

func TestSpreadPlantsAvoidsOccupiedAndImpassable(t *testing.T) {
	grid := MustParseGrid(
		".~.",
		"#..",
		"...",
	)
	occupied := map[components.Position]bool{{X: 1, Y: 1}: true}
	got := SpreadPlants(grid, []components.Position{{X: 0, Y: 0}},
		func(p components.Position) bool { return occupied[p] },
		rand.New(rand.NewSource(1)), SpreadParams{Chance: 1, MaxPlants: 10})
	if len(got) != 0 {
		t.Errorf("seeded %v, want none", got)
	}
}

func TestScatterPlantsDistinctPassable(t *testing.T) {
	grid := MustParseGrid(
		"..~",
		"#..",
	)
	got := ScatterPlants(grid, 10, func(components.Position) bool { return false }, rand.New(rand.NewSource(9)))
	if len(got) != 4 {
		t.Fatalf("scattered %d, want all 4 passable cells", len(got))
	}
	seen := make(map[components.Position]bool)
	for _, p := range got {
		if !grid.Passable(p) || seen[p] {
			t.Errorf("bad cell %v", p)
		}
		seen[p] = true
	}
}
