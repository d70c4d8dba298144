package game

import (
	"log/slog"
	"slices"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// updateLifecycle runs metabolism, births, deaths, plant propagation and
// the band update, then closes the tick.
func (g *Game) updateLifecycle() {
	cfg := g.cfg
	refs := g.sortedCreatures()

	// Metabolism and pregnancy
	type birthInfo struct {
		parentID uint64
		pos      components.Position
	}
	var births []birthInfo

	for _, r := range refs {
		pos, cal, c := g.creatureMapper.Get(r.entity)
		systems.Metabolize(cal, cfg.Metabolism.LiveCost)
		if systems.AdvancePregnancy(&c.Pregnancy, cfg.Reproduction.PregnancyDuration) {
			births = append(births, birthInfo{parentID: r.id, pos: *pos})
		}
	}

	// Deaths, collected before any structural change
	type deadInfo struct {
		id       uint64
		pos      components.Position
		calories int
	}
	var dead []deadInfo
	for _, r := range refs {
		pos, cal, _ := g.creatureMapper.Get(r.entity)
		if systems.Starved(*cal) {
			dead = append(dead, deadInfo{id: r.id, pos: *pos, calories: cal.Current})
		}
	}

	// Children spawn on the parent's cell
	maxCal := cfg.Population.MaxCalories
	childCal := min(cfg.Reproduction.ChildCalories, maxCal)
	for _, b := range births {
		childID := g.spawnCreature(b.pos, components.Calories{Current: childCal, Max: maxCal}, b.parentID)
		g.emit(telemetry.NewBirthEvent(g.tick, childID, b.parentID, b.pos.X, b.pos.Y))
		slog.Debug("birth", "tick", g.tick, "creature", childID, "parent", b.parentID)
	}

	for _, d := range dead {
		g.removeCreature(d.id)
		g.lifetimeTracker.Remove(d.id)
		g.emit(telemetry.NewDeathEvent(g.tick, d.id, d.calories, d.pos.X, d.pos.Y))
		slog.Debug("death", "tick", g.tick, "creature", d.id)
	}

	g.spreadPlants()
	g.refreshBand()

	g.tick++
	g.population = len(g.creatures)
}

// spreadPlants seeds new plants next to existing ones, parents in ID order.
func (g *Game) spreadPlants() {
	ids := make([]uint64, 0, len(g.plants))
	for id := range g.plants {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	parents := make([]components.Position, len(ids))
	for i, id := range ids {
		pos, _ := g.plantMapper.Get(g.plants[id])
		parents[i] = *pos
	}

	seeded := systems.SpreadPlants(g.grid, parents, g.hasPlant, g.rng, systems.SpreadParams{
		Chance:    g.cfg.Food.SpreadChance,
		MaxPlants: g.cfg.Food.MaxPlants,
	})
	for _, pos := range seeded {
		id := g.spawnPlant(pos, g.cfg.Food.Nutrition)
		g.emit(telemetry.NewPlantSpreadEvent(g.tick, id, pos.X, pos.Y))
	}
}

// refreshBand recomputes the band center in auto mode and every
// creature's OutsideBand flag.
func (g *Game) refreshBand() {
	if !g.manualBand {
		positions := make([]components.Position, 0, len(g.creatures))
		query := g.creatureFilter.Query()
		for query.Next() {
			pos, _, _ := query.Get()
			positions = append(positions, *pos)
		}
		if center, ok := systems.MeanCenter(positions); ok {
			g.bandCenter = center
		}
	}

	radius := g.cfg.Band.Radius
	query := g.creatureFilter.Query()
	for query.Next() {
		pos, _, c := query.Get()
		c.OutsideBand = systems.OutsideBand(*pos, g.bandCenter, radius)
	}
}
