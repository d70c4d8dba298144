package game

import (
	"slices"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/telemetry"
)

// Snapshot returns a read-only copy of the state at the last tick boundary.
// Creatures and plants are ordered by ID. Terrain is omitted; see Grid.
func (g *Game) Snapshot() *telemetry.Snapshot {
	snap := &telemetry.Snapshot{
		Version:    telemetry.SnapshotVersion,
		Seed:       g.seed,
		Tick:       g.tick,
		Width:      g.grid.Width(),
		Height:     g.grid.Height(),
		Population: g.population,
		BandCenter: telemetry.BandPoint{X: g.bandCenter.X, Y: g.bandCenter.Y},
		BandRadius: g.cfg.Band.Radius,
		Creatures:  make([]telemetry.CreatureState, 0, len(g.creatures)),
		Plants:     make([]telemetry.PlantState, 0, len(g.plants)),
	}

	query := g.creatureFilter.Query()
	for query.Next() {
		pos, cal, c := query.Get()
		snap.Creatures = append(snap.Creatures, creatureState(pos, cal, c))
	}
	slices.SortFunc(snap.Creatures, func(a, b telemetry.CreatureState) int {
		return cmpID(a.ID, b.ID)
	})

	plantQuery := g.plantFilter.Query()
	for plantQuery.Next() {
		pos, p := plantQuery.Get()
		snap.Plants = append(snap.Plants, telemetry.PlantState{
			ID:          p.ID,
			X:           pos.X,
			Y:           pos.Y,
			Nutrition:   p.Nutrition,
			Harvestable: p.Harvestable,
			Edible:      p.Edible,
		})
	}
	slices.SortFunc(snap.Plants, func(a, b telemetry.PlantState) int {
		return cmpID(a.ID, b.ID)
	})

	return snap
}

func creatureState(pos *components.Position, cal *components.Calories, c *components.Creature) telemetry.CreatureState {
	s := telemetry.CreatureState{
		ID:                c.ID,
		X:                 pos.X,
		Y:                 pos.Y,
		Calories:          cal.Current,
		MaxCalories:       cal.Max,
		Intent:            c.Intent.String(),
		Pregnant:          c.Pregnancy.Active,
		PregnancyProgress: c.Pregnancy.Progress,
		OutsideBand:       c.OutsideBand,
		PathFailed:        c.PathFailed,
		BirthTick:         c.BirthTick,
		ParentID:          c.ParentID,
	}
	if c.Action.Active() {
		s.Action = &telemetry.ActionState{
			Kind:        c.Action.Kind.String(),
			Destination: telemetry.Cell{X: c.Action.Destination.X, Y: c.Action.Destination.Y},
			Target:      c.Action.Target,
			Progress:    c.Action.Progress,
			Required:    c.Action.Required,
		}
	}
	if len(c.Path) > 0 {
		s.Path = make([]telemetry.Cell, len(c.Path))
		for i, p := range c.Path {
			s.Path[i] = telemetry.Cell{X: p.X, Y: p.Y}
		}
	}
	return s
}

func cmpID(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Creature returns copies of a living creature's components. The path
// slice is shared and must not be modified.
func (g *Game) Creature(id uint64) (components.Position, components.Calories, components.Creature, bool) {
	e, ok := g.creatureEntity(id)
	if !ok {
		return components.Position{}, components.Calories{}, components.Creature{}, false
	}
	pos, cal, c := g.creatureMapper.Get(e)
	return *pos, *cal, *c, true
}
