package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
)

// SpreadParams controls plant propagation.
type SpreadParams struct {
	Chance    float64 // per plant per tick
	MaxPlants int
}

// SpreadPlants returns cells where new plants take root this tick. Parents
// must be in ascending ID order. Each parent rolls once; on success a
// random passable neighbour without a plant is seeded. Propagation stops
// at MaxPlants.
func SpreadPlants(grid *Grid, parents []components.Position, hasPlant func(components.Position) bool, rng *rand.Rand, p SpreadParams) []components.Position {
	count := len(parents)
	var seeded []components.Position
	taken := make(map[components.Position]struct{})

	for _, parent := range parents {
		if count >= p.MaxPlants {
			break
		}
		if rng.Float64() >= p.Chance {
			continue
		}

		var options []components.Position
		for _, n := range grid.PassableNeighbors(parent) {
			if _, ok := taken[n]; ok || hasPlant(n) {
				continue
			}
			options = append(options, n)
		}
		if len(options) == 0 {
			continue
		}

		cell := options[rng.Intn(len(options))]
		taken[cell] = struct{}{}
		seeded = append(seeded, cell)
		count++
	}
	return seeded
}

// ScatterPlants picks n distinct passable cells uniformly at random.
func ScatterPlants(grid *Grid, n int, hasPlant func(components.Position) bool, rng *rand.Rand) []components.Position {
	var free []components.Position
	for y := 0; y < grid.Height(); y++ {
		for x := 0; x < grid.Width(); x++ {
			p := components.Position{X: x, Y: y}
			if grid.Passable(p) && !hasPlant(p) {
				free = append(free, p)
			}
		}
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	if n > len(free) {
		n = len(free)
	}
	return free[:n]
}
