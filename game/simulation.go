package game

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// stage is one step of the tick pipeline. Each stage runs to completion
// before the next begins.
type stage struct {
	name string
	run  func()
}

func (g *Game) buildPipeline() []stage {
	return []stage{
		{telemetry.PhaseSpatialIndex, g.updateSpatialIndex},
		{telemetry.PhaseIntents, g.updateIntents},
		{telemetry.PhasePathfinding, g.updatePaths},
		{telemetry.PhaseActions, g.updateActions},
		{telemetry.PhaseLifecycle, g.updateLifecycle},
	}
}

// runTick runs every stage once, then the telemetry hooks.
func (g *Game) runTick() {
	g.perfCollector.StartTick(g.tick + 1)
	g.events = g.events[:0]

	for _, s := range g.pipeline {
		g.perfCollector.StartPhase(s.name)
		s.run()
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.afterTick()
	g.perfCollector.EndTick()
}

// creatureRef pairs a creature's ID with its entity for ordered iteration.
type creatureRef struct {
	id     uint64
	entity ecs.Entity
}

// sortedCreatures returns living creatures in ascending ID order.
func (g *Game) sortedCreatures() []creatureRef {
	refs := make([]creatureRef, 0, len(g.creatures))
	for id, e := range g.creatures {
		refs = append(refs, creatureRef{id: id, entity: e})
	}
	slices.SortFunc(refs, func(a, b creatureRef) int {
		return cmpID(a.id, b.id)
	})
	return refs
}

// updateSpatialIndex rebuilds the index from every creature and plant.
func (g *Game) updateSpatialIndex() {
	entries := make([]systems.Occupant, 0, len(g.creatures)+len(g.plants))

	query := g.creatureFilter.Query()
	for query.Next() {
		pos, _, c := query.Get()
		entries = append(entries, systems.Occupant{Entity: query.Entity(), ID: c.ID, Kind: systems.OccupantCreature, Pos: *pos})
	}

	plantQuery := g.plantFilter.Query()
	for plantQuery.Next() {
		pos, p := plantQuery.Get()
		entries = append(entries, systems.Occupant{Entity: plantQuery.Entity(), ID: p.ID, Kind: systems.OccupantPlant, Pos: *pos})
	}

	g.index.Rebuild(entries)
	g.indexGen = g.index.Generation()
	g.indexTick = g.tick + 1
}

// ensureFreshIndex rebuilds the spatial index unless this game rebuilt it
// during the current tick and nothing has rebuilt it since.
func (g *Game) ensureFreshIndex() {
	if gen := g.index.Generation(); gen != g.indexGen || g.indexTick != g.tick+1 {
		slog.Warn("stale spatial index, rebuilding", "tick", g.tick, "generation", gen)
		g.updateSpatialIndex()
	}
}

// updateIntents freezes the world into views, evaluates every creature,
// then applies the decisions.
func (g *Game) updateIntents() {
	g.ensureFreshIndex()

	refs := g.sortedCreatures()
	views := make([]systems.CreatureView, 0, len(refs))
	for _, r := range refs {
		pos, cal, c := g.creatureMapper.Get(r.entity)
		views = append(views, systems.CreatureView{
			Entity:      r.entity,
			ID:          r.id,
			Pos:         *pos,
			Calories:    *cal,
			Pregnant:    c.Pregnancy.Active,
			OutsideBand: c.OutsideBand,
			PathFailed:  c.PathFailed,
			Unreachable: c.Unreachable,
			Action:      c.Action,
		})
	}

	plants := make(map[uint64]systems.PlantView, len(g.plants))
	query := g.plantFilter.Query()
	for query.Next() {
		pos, p := query.Get()
		plants[p.ID] = systems.PlantView{ID: p.ID, Pos: *pos, Available: p.Available()}
	}

	g.decisions = systems.SelectIntents(systems.IntentInput{
		Creatures:  views,
		Plants:     plants,
		Index:      g.index,
		Grid:       g.grid,
		BandTarget: systems.BandTarget(g.grid, g.bandCenter),
		Rng:        g.rng,
	}, g.intentParams)

	for _, d := range g.decisions {
		pos, cal, c := g.creatureMapper.Get(d.Entity)
		c.Intent = d.Intent
		c.PathFailed = false
		if !d.Continued {
			c.Action = d.Action
			c.Path = nil
		}
		if d.Conceived {
			systems.Conceive(c, cal, d.CalorieCost)
			g.emit(telemetry.NewConceptionEvent(g.tick, d.ID, d.MateID, d.CalorieCost, pos.X, pos.Y))
		}
	}
}

// updatePaths plans a route for every travel action that lacks one.
func (g *Game) updatePaths() {
	p := g.parallel
	p.requests = p.requests[:0]

	refs := g.sortedCreatures()
	for _, r := range refs {
		pos, _, c := g.creatureMapper.Get(r.entity)
		if c.Action.Kind != components.ActionTravel || c.Path != nil {
			continue
		}
		if *pos == c.Action.Destination {
			c.Action.Clear()
			continue
		}
		p.requests = append(p.requests, pathRequest{
			ID:     r.id,
			Start:  *pos,
			Goal:   c.Action.Destination,
			Origin: c.Action.Origin,
		})
	}

	p.plan(g.grid)

	expanded, failed := 0, 0
	for i, req := range p.requests {
		entity, ok := g.creatureEntity(req.ID)
		if !ok {
			continue
		}
		_, _, c := g.creatureMapper.Get(entity)
		res := p.results[i]
		expanded += res.Expanded

		if res.Err != nil {
			if !errors.Is(res.Err, systems.ErrNoPath) {
				slog.Error("path planning failed", "creature", req.ID, "error", res.Err)
			}
			goal := req.Goal
			c.Action.Clear()
			c.Path = nil
			c.PathFailed = true
			c.Unreachable = &goal
			g.emit(telemetry.NewPathFailureEvent(g.tick, req.ID, goal.X, goal.Y))
			failed++
			continue
		}

		c.Path = res.Path
		if req.Origin == components.IntentSeekFood {
			c.Unreachable = nil
		}
	}

	if len(p.requests) > 0 {
		slog.Debug("paths planned",
			"tick", g.tick,
			"requests", len(p.requests),
			"failed", failed,
			"expanded", expanded,
		)
	}
}

// plantLookup resolves plants for the action executor.
type plantLookup struct {
	g *Game
}

func (l plantLookup) LookupPlant(id uint64) (components.Position, *components.Plant, bool) {
	e, ok := l.g.plants[id]
	if !ok {
		return components.Position{}, nil, false
	}
	pos, plant := l.g.plantMapper.Get(e)
	return *pos, plant, true
}

// updateActions advances every creature's action by one tick, in ID
// order, then despawns the plants eaten this tick.
func (g *Game) updateActions() {
	g.executor.Begin()
	lookup := plantLookup{g: g}

	for _, r := range g.sortedCreatures() {
		pos, cal, c := g.creatureMapper.Get(r.entity)
		target := c.Action.Target

		switch g.executor.Execute(systems.Actor{Pos: pos, Calories: cal, Creature: c}, lookup) {
		case systems.ResultMoved, systems.ResultArrived:
			g.lifetimeTracker.RecordMove(r.id)
		case systems.ResultAte:
			_, plant, _ := lookup.LookupPlant(target)
			g.emit(telemetry.NewMealEvent(g.tick, r.id, target, plant.Nutrition, pos.X, pos.Y))
			g.lifetimeTracker.UpdateCalories(r.id, cal.Current)
		case systems.ResultStale:
			g.emit(telemetry.NewStaleTargetEvent(g.tick, r.id, target, pos.X, pos.Y))
		}
	}

	// Deferred despawn at the stage sync point
	for _, id := range g.executor.Consumed() {
		g.removePlant(id)
	}
}
