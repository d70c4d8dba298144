package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// CreatureView is a creature's state frozen at the start of the intent stage.
type CreatureView struct {
	Entity      ecs.Entity
	ID          uint64
	Pos         components.Position
	Calories    components.Calories
	Pregnant    bool
	OutsideBand bool
	PathFailed  bool
	Unreachable *components.Position
	Action      components.Action
}

// PlantView is a plant's state frozen at the start of the intent stage.
type PlantView struct {
	ID        uint64
	Pos       components.Position
	Available bool
}

// IntentParams holds the thresholds used by intent selection.
type IntentParams struct {
	HungerRatio          float64
	SatiationRatio       float64
	FoodSearchRadius     int
	MateSearchRadius     int
	EatWorkRequired      int
	ProcreationCostRatio float64
}

// IntentParamsFromConfig extracts intent parameters from the config.
func IntentParamsFromConfig(cfg *config.Config) IntentParams {
	return IntentParams{
		HungerRatio:          cfg.Intent.HungerRatio,
		SatiationRatio:       cfg.Intent.SatiationRatio,
		FoodSearchRadius:     cfg.Intent.FoodSearchRadius,
		MateSearchRadius:     cfg.Intent.MateSearchRadius,
		EatWorkRequired:      cfg.Eating.WorkRequired,
		ProcreationCostRatio: cfg.Reproduction.CostRatio,
	}
}

// Hungry reports whether calories are below the hunger threshold.
func (p IntentParams) Hungry(c components.Calories) bool {
	return float64(c.Current) < p.HungerRatio*float64(c.Max)
}

// Satiated reports whether calories are above the satiation threshold.
func (p IntentParams) Satiated(c components.Calories) bool {
	return float64(c.Current) > p.SatiationRatio*float64(c.Max)
}

// ProcreationCost returns the calories a parent pays on conception.
func (p IntentParams) ProcreationCost(c components.Calories) int {
	return int(p.ProcreationCostRatio * float64(c.Max))
}

// IntentInput is the frozen view the selector reads. Creatures must be
// sorted by ascending ID; that order fixes RNG draws and food claims.
type IntentInput struct {
	Creatures  []CreatureView
	Plants     map[uint64]PlantView
	Index      *SpatialIndex
	Grid       *Grid
	BandTarget components.Position // rounded, passable band center
	Rng        *rand.Rand
}

// Decision is the selector's output for one creature, applied after the
// whole stage has been evaluated.
type Decision struct {
	Entity ecs.Entity
	ID     uint64
	Intent components.Intent
	Action components.Action

	// Continued is set when the previous action was kept; its path stays.
	Continued bool

	// Conceived marks the creature pregnant and charges CalorieCost.
	Conceived   bool
	CalorieCost int
	MateID      uint64
}

// SelectIntents evaluates every creature in order and returns one decision
// per creature. It reads only the frozen input; the caller applies the
// decisions once all creatures have been evaluated.
func SelectIntents(in IntentInput, p IntentParams) []Decision {
	byID := make(map[uint64]int, len(in.Creatures))
	for i, c := range in.Creatures {
		byID[c.ID] = i
	}

	// Plants claimed this stage, first claim by evaluation order wins.
	reserved := make(map[uint64]struct{})

	decisions := make([]Decision, 0, len(in.Creatures))
	for _, c := range in.Creatures {
		d := Decision{Entity: c.Entity, ID: c.ID, Intent: deriveIntent(c, p)}

		if keep, intent := continuation(c, d.Intent, in.Plants, reserved); keep {
			d.Intent = intent
			d.Action = c.Action
			d.Continued = true
			if c.Action.Target != 0 {
				reserved[c.Action.Target] = struct{}{}
			}
			decisions = append(decisions, d)
			continue
		}

		switch d.Intent {
		case components.IntentSeekFood:
			d.Action = seekFood(in, c, p, reserved)
		case components.IntentReturnToBand:
			if c.Pos != in.BandTarget {
				d.Action = components.TravelTo(in.BandTarget, components.IntentReturnToBand)
			}
		case components.IntentProcreate:
			mate, ok := in.Index.Nearest(c.Pos, p.MateSearchRadius, func(o Occupant) bool {
				if o.Kind != OccupantCreature || o.ID == c.ID {
					return false
				}
				i, ok := byID[o.ID]
				if !ok {
					return false
				}
				m := in.Creatures[i]
				return !m.Pregnant && !m.OutsideBand && p.Satiated(m.Calories)
			})
			if ok {
				d.Conceived = true
				d.MateID = mate.ID
				d.CalorieCost = p.ProcreationCost(c.Calories)
			} else {
				d.Action = idleStep(in, c)
			}
		default:
			d.Action = idleStep(in, c)
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// deriveIntent picks the highest-priority intent from a creature's state.
func deriveIntent(c CreatureView, p IntentParams) components.Intent {
	switch {
	case c.PathFailed:
		return components.IntentIdle
	case c.OutsideBand:
		return components.IntentReturnToBand
	case p.Hungry(c.Calories):
		return components.IntentSeekFood
	case p.Satiated(c.Calories) && !c.Pregnant:
		return components.IntentProcreate
	default:
		return components.IntentIdle
	}
}

// continuation decides whether c keeps its in-progress action, and under
// which intent. Return-to-band travel is committed until arrival.
func continuation(c CreatureView, fresh components.Intent, plants map[uint64]PlantView, reserved map[uint64]struct{}) (bool, components.Intent) {
	a := c.Action
	if c.PathFailed || !a.Active() {
		return false, fresh
	}

	targetValid := func() bool {
		if a.Target == 0 {
			return true
		}
		pl, ok := plants[a.Target]
		if !ok || !pl.Available {
			return false
		}
		_, taken := reserved[a.Target]
		return !taken
	}

	switch a.Kind {
	case components.ActionTravel:
		if a.Origin == components.IntentReturnToBand {
			return true, components.IntentReturnToBand
		}
		if fresh == a.Origin && targetValid() {
			return true, fresh
		}
	case components.ActionEat:
		if fresh == components.IntentSeekFood && targetValid() {
			return true, fresh
		}
	}
	return false, fresh
}

// seekFood targets the nearest unclaimed edible plant, eating directly when
// co-located. With no food in range it falls back to an idle step.
func seekFood(in IntentInput, c CreatureView, p IntentParams, reserved map[uint64]struct{}) components.Action {
	occ, ok := in.Index.Nearest(c.Pos, p.FoodSearchRadius, func(o Occupant) bool {
		if o.Kind != OccupantPlant {
			return false
		}
		if _, taken := reserved[o.ID]; taken {
			return false
		}
		if c.Unreachable != nil && *c.Unreachable == o.Pos {
			return false
		}
		pl, ok := in.Plants[o.ID]
		return ok && pl.Available
	})
	if !ok {
		return idleStep(in, c)
	}

	reserved[occ.ID] = struct{}{}
	if occ.Pos == c.Pos {
		return components.Eat(occ.ID, p.EatWorkRequired)
	}
	return components.TravelToFood(occ.Pos, occ.ID)
}

// idleStep picks a uniformly random passable neighbour.
func idleStep(in IntentInput, c CreatureView) components.Action {
	options := in.Grid.PassableNeighbors(c.Pos)
	if len(options) == 0 {
		return components.Action{}
	}
	return components.TravelTo(options[in.Rng.Intn(len(options))], components.IntentIdle)
}
