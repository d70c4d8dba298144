package systems

import (
	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// ActionResult reports what one tick of action execution did.
type ActionResult uint8

const (
	ResultNone    ActionResult = iota // no action
	ResultMoved                       // moved one cell, path remains
	ResultArrived                     // moved onto the destination
	ResultBlocked                     // next path cell not enterable; action cleared
	ResultEating                      // eat progressed
	ResultAte                         // eat completed, nutrition granted
	ResultStale                       // eat target gone or claimed; action cleared
)

func (r ActionResult) String() string {
	switch r {
	case ResultMoved:
		return "moved"
	case ResultArrived:
		return "arrived"
	case ResultBlocked:
		return "blocked"
	case ResultEating:
		return "eating"
	case ResultAte:
		return "ate"
	case ResultStale:
		return "stale"
	default:
		return "none"
	}
}

// ActionParams holds calorie costs and eat rates.
type ActionParams struct {
	MoveCost    int // multiplied by the entered tile's MoveCost
	WorkCost    int // per eat tick
	WorkPerTick int
}

// ActionParamsFromConfig extracts action parameters from the config.
func ActionParamsFromConfig(cfg *config.Config) ActionParams {
	return ActionParams{
		MoveCost:    cfg.Metabolism.MoveCost,
		WorkCost:    cfg.Metabolism.WorkCost,
		WorkPerTick: cfg.Eating.WorkPerTick,
	}
}

// Actor points at the mutable state of the creature being advanced.
type Actor struct {
	Pos      *components.Position
	Calories *components.Calories
	Creature *components.Creature
}

// PlantLookup resolves a plant by ID.
type PlantLookup interface {
	LookupPlant(id uint64) (components.Position, *components.Plant, bool)
}

// ActionExecutor advances travel and eat actions by one tick. Plant
// despawns are deferred: completed meals are queued and drained by the
// caller at the stage sync point.
type ActionExecutor struct {
	grid   *Grid
	params ActionParams

	claimed  map[uint64]struct{}
	consumed []uint64
}

// NewActionExecutor creates an executor over a static grid.
func NewActionExecutor(grid *Grid, params ActionParams) *ActionExecutor {
	return &ActionExecutor{
		grid:    grid,
		params:  params,
		claimed: make(map[uint64]struct{}),
	}
}

// Begin resets the per-tick claim set and consumed queue.
func (x *ActionExecutor) Begin() {
	clear(x.claimed)
	x.consumed = x.consumed[:0]
}

// Consumed returns plant IDs eaten this tick, in completion order.
func (x *ActionExecutor) Consumed() []uint64 {
	return x.consumed
}

// Execute advances the actor's current action. Only the actor and, when a
// meal completes, its target plant are modified.
func (x *ActionExecutor) Execute(a Actor, plants PlantLookup) ActionResult {
	switch a.Creature.Action.Kind {
	case components.ActionTravel:
		return x.travel(a)
	case components.ActionEat:
		return x.eat(a, plants)
	default:
		return ResultNone
	}
}

// travel moves exactly one cell along the path.
func (x *ActionExecutor) travel(a Actor) ActionResult {
	c := a.Creature
	if len(c.Path) == 0 {
		c.Action.Clear()
		c.Path = nil
		return ResultArrived
	}

	next := c.Path[0]
	tile, ok := x.grid.TileAt(next)
	if !ok || !tile.Passable() || !components.Adjacent(*a.Pos, next) {
		c.Action.Clear()
		c.Path = nil
		return ResultBlocked
	}

	*a.Pos = next
	a.Calories.Current -= x.params.MoveCost * tile.MoveCost
	c.Path = c.Path[1:]

	if len(c.Path) == 0 {
		c.Action.Clear()
		c.Path = nil
		return ResultArrived
	}
	return ResultMoved
}

// eat progresses a meal on the actor's cell.
func (x *ActionExecutor) eat(a Actor, plants PlantLookup) ActionResult {
	c := a.Creature
	target := c.Action.Target

	pos, plant, ok := plants.LookupPlant(target)
	_, taken := x.claimed[target]
	if !ok || !plant.Available() || pos != *a.Pos || taken {
		c.Action.Clear()
		return ResultStale
	}
	x.claimed[target] = struct{}{}

	c.Action.Progress += x.params.WorkPerTick
	a.Calories.Current -= x.params.WorkCost
	if c.Action.Progress < c.Action.Required {
		return ResultEating
	}

	a.Calories.Gain(plant.Nutrition)
	plant.Harvestable = false
	x.consumed = append(x.consumed, target)
	c.Action.Clear()
	return ResultAte
}
