// Package components defines ECS components for the simulation.
package components

// Position is an entity's grid cell.
type Position struct {
	X, Y int
}

// Add returns the cell offset by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Manhattan returns the 4-connected grid distance between two cells.
func Manhattan(a, b Position) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent reports whether b is one orthogonal step from a.
func Adjacent(a, b Position) bool {
	return Manhattan(a, b) == 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Calories tracks a creature's energy store.
type Calories struct {
	Current int `inspect:"bar,maxfield:Max"`
	Max     int `inspect:"skip"`
}

// Ratio returns Current/Max in [0,1] for display.
func (c Calories) Ratio() float64 {
	if c.Max <= 0 {
		return 0
	}
	r := float64(c.Current) / float64(c.Max)
	if r < 0 {
		return 0
	}
	return r
}

// Gain adds nutrition, capped at Max.
func (c *Calories) Gain(n int) {
	c.Current += n
	if c.Current > c.Max {
		c.Current = c.Max
	}
}

// Intent is a creature's behavioral goal for the current tick.
type Intent uint8

const (
	IntentNone Intent = iota
	IntentIdle
	IntentSeekFood
	IntentReturnToBand
	IntentProcreate
)

func (i Intent) String() string {
	switch i {
	case IntentIdle:
		return "idle"
	case IntentSeekFood:
		return "seek_food"
	case IntentReturnToBand:
		return "return_to_band"
	case IntentProcreate:
		return "procreate"
	default:
		return "none"
	}
}

// ActionKind identifies the active Action variant.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionTravel
	ActionEat
)

func (k ActionKind) String() string {
	switch k {
	case ActionTravel:
		return "travel"
	case ActionEat:
		return "eat"
	default:
		return "none"
	}
}

// Action is an in-progress, possibly multi-tick step. Kind selects which
// fields are meaningful; a creature holds exactly one Action value, so at
// most one action is ever active.
type Action struct {
	Kind        ActionKind
	Destination Position // travel
	Target      uint64   // plant ID for eat, and for travel toward food (0 = none)
	Progress    int      // eat
	Required    int      // eat
	Origin      Intent   // intent that produced this action
}

// TravelTo returns a travel action toward dest.
func TravelTo(dest Position, origin Intent) Action {
	return Action{Kind: ActionTravel, Destination: dest, Origin: origin}
}

// TravelToFood returns a travel action toward a plant's cell.
func TravelToFood(dest Position, plantID uint64) Action {
	return Action{Kind: ActionTravel, Destination: dest, Target: plantID, Origin: IntentSeekFood}
}

// Eat returns an eat action against a plant.
func Eat(plantID uint64, required int) Action {
	return Action{Kind: ActionEat, Target: plantID, Required: required, Origin: IntentSeekFood}
}

// Active reports whether any action is set.
func (a Action) Active() bool {
	return a.Kind != ActionNone
}

// Clear resets to no action.
func (a *Action) Clear() {
	*a = Action{}
}

// Pregnancy holds gestation progress.
type Pregnancy struct {
	Active   bool
	Progress int
}

// Creature holds per-creature simulation state. Position and Calories
// are separate components.
type Creature struct {
	ID     uint64 `inspect:"label"`
	Intent Intent `inspect:"label"`
	Action Action `inspect:"skip"`

	// Path is consumed front-to-back while traveling; nil when no route is planned.
	Path []Position `inspect:"skip"`

	Pregnancy   Pregnancy `inspect:"skip"`
	OutsideBand bool      `inspect:"bool"`

	// PathFailed marks a pathfinding failure in the previous tick; the next
	// intent evaluation backs off to idle and clears it.
	PathFailed bool `inspect:"bool"`

	// Unreachable is the last goal pathfinding could not reach. Food search
	// skips it until a path succeeds again.
	Unreachable *Position `inspect:"skip"`

	BirthTick uint64 `inspect:"skip"`
	ParentID  uint64 `inspect:"skip"`
}

// Plant is a food source.
type Plant struct {
	ID          uint64 `inspect:"label"`
	Nutrition   int    `inspect:"label"`
	Harvestable bool   `inspect:"bool"`
	Edible      bool   `inspect:"bool"`
}

// Available reports whether the plant can currently be eaten.
func (p Plant) Available() bool {
	return p.Harvestable && p.Edible
}
