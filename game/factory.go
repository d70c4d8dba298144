package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// spawnInitialPopulation creates the starting creatures and plants.
func (g *Game) spawnInitialPopulation() {
	cfg := g.cfg
	maxCal := cfg.Population.MaxCalories

	for _, pl := range cfg.Population.Placements {
		pos, ok := g.grid.NearestPassable(components.Position{X: pl.X, Y: pl.Y})
		if !ok {
			slog.Warn("placement has no passable cell", "x", pl.X, "y", pl.Y)
			continue
		}
		calories := pl.Calories
		if calories <= 0 {
			calories = cfg.Population.InitialCalories
		}
		g.spawnCreature(pos, components.Calories{Current: min(calories, maxCal), Max: maxCal}, 0)
	}

	// Remaining creatures start near the band center.
	center := g.bandCenter.Cell()
	radius := max(cfg.Band.Radius, 1)
	for remaining := cfg.Population.Initial - len(cfg.Population.Placements); remaining > 0; remaining-- {
		p := components.Position{
			X: center.X + g.rng.Intn(2*radius+1) - radius,
			Y: center.Y + g.rng.Intn(2*radius+1) - radius,
		}
		pos, ok := g.grid.NearestPassable(p)
		if !ok {
			break
		}
		g.spawnCreature(pos, components.Calories{Current: cfg.Population.InitialCalories, Max: maxCal}, 0)
	}

	for _, pos := range systems.ScatterPlants(g.grid, cfg.Food.Initial, g.hasPlant, g.rng) {
		g.spawnPlant(pos, cfg.Food.Nutrition)
	}

	slog.Debug("initial population spawned", "creatures", g.population, "plants", len(g.plants))
}

// allocID returns the next simulation ID. Creatures and plants share the
// sequence, so 0 never names an entity.
func (g *Game) allocID() uint64 {
	id := g.nextID
	g.nextID++
	return id
}

// spawnCreature creates a creature entity.
func (g *Game) spawnCreature(pos components.Position, cal components.Calories, parentID uint64) uint64 {
	id := g.allocID()
	creature := components.Creature{
		ID:        id,
		Intent:    components.IntentIdle,
		BirthTick: g.tick,
		ParentID:  parentID,
	}

	entity := g.creatureMapper.NewEntity(&pos, &cal, &creature)
	g.creatures[id] = entity
	g.population++
	g.lifetimeTracker.Register(id, g.tick, parentID, cal.Current)

	return id
}

// spawnPlant creates a plant entity.
func (g *Game) spawnPlant(pos components.Position, nutrition int) uint64 {
	id := g.allocID()
	plant := components.Plant{ID: id, Nutrition: nutrition, Harvestable: true, Edible: true}

	entity := g.plantMapper.NewEntity(&pos, &plant)
	g.plants[id] = entity
	g.plantCells[pos] = id

	return id
}

// removeCreature despawns a creature. Must not be called during a query.
func (g *Game) removeCreature(id uint64) {
	entity, ok := g.creatures[id]
	if !ok {
		return
	}
	g.creatureMapper.Remove(entity)
	delete(g.creatures, id)
	g.population--
}

// removePlant despawns a plant. Must not be called during a query.
func (g *Game) removePlant(id uint64) {
	entity, ok := g.plants[id]
	if !ok {
		return
	}
	pos, _ := g.plantMapper.Get(entity)
	delete(g.plantCells, *pos)
	g.plantMapper.Remove(entity)
	delete(g.plants, id)
}

func (g *Game) hasPlant(p components.Position) bool {
	_, ok := g.plantCells[p]
	return ok
}

// SpawnCreature adds a creature at (x, y) with the configured maximum
// calories. Intended for setup between ticks.
func (g *Game) SpawnCreature(x, y, calories int) (uint64, error) {
	pos := components.Position{X: x, Y: y}
	if !g.grid.Passable(pos) {
		return 0, fmt.Errorf("spawn creature: cell (%d,%d) is not passable", x, y)
	}
	maxCal := g.cfg.Population.MaxCalories
	id := g.spawnCreature(pos, components.Calories{Current: min(calories, maxCal), Max: maxCal}, 0)
	g.refreshBand()
	return id, nil
}

// SpawnPlant adds a plant at (x, y). Intended for setup between ticks.
func (g *Game) SpawnPlant(x, y, nutrition int) (uint64, error) {
	pos := components.Position{X: x, Y: y}
	if !g.grid.Passable(pos) {
		return 0, fmt.Errorf("spawn plant: cell (%d,%d) is not passable", x, y)
	}
	if g.hasPlant(pos) {
		return 0, fmt.Errorf("spawn plant: cell (%d,%d) already has a plant", x, y)
	}
	return g.spawnPlant(pos, nutrition), nil
}

// creatureEntity resolves a creature by ID.
func (g *Game) creatureEntity(id uint64) (ecs.Entity, bool) {
	e, ok := g.creatures[id]
	if !ok || !g.world.Alive(e) {
		return ecs.Entity{}, false
	}
	return e, true
}

// emit records an event for this tick.
func (g *Game) emit(e telemetry.Event) {
	g.events = append(g.events, e)
}
