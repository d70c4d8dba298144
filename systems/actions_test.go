package systems

import (
	"testing"

	"github.com/pthm-cable/forage/components"
)

var testActionParams = ActionParams{MoveCost: 1, WorkCost: 1, WorkPerTick: 1}

type plantEntry struct {
	pos   components.Position
	plant components.Plant
}

type plantTable map[uint64]*plantEntry

func (pt plantTable) LookupPlant(id uint64) (components.Position, *components.Plant, bool) {
	e, ok := pt[id]
	if !ok {
		return components.Position{}, nil, false
	}
	return e.pos, &e.plant, true
}

func newPlants(entries ...plantEntry) plantTable {
	pt := make(plantTable)
	for i := range entries {
		e := entries[i]
		pt[e.plant.ID] = &e
	}
	return pt
}

func plantAt(id uint64, x, y, nutrition int) plantEntry {
	return plantEntry{
		pos:   components.Position{X: x, Y: y},
		plant: components.Plant{ID: id, Nutrition: nutrition, Harvestable: true, Edible: true},
	}
}

func TestTravelMovesOneCellPerTick(t *testing.T) {
	grid := MustParseGrid(
		".f.",
		"...",
	)
	x := NewActionExecutor(grid, testActionParams)
	pos := components.Position{X: 0, Y: 0}
	calories := components.Calories{Current: 50, Max: 100}
	creature := components.Creature{
		Action: components.TravelTo(components.Position{X: 2, Y: 0}, components.IntentIdle),
		Path:   []components.Position{{X: 1, Y: 0}, {X: 2, Y: 0}},
	}
	actor := Actor{Pos: &pos, Calories: &calories, Creature: &creature}

	x.Begin()
	if r := x.Execute(actor, nil); r != ResultMoved {
		t.Fatalf("first tick = %v, want moved", r)
	}
	if pos != (components.Position{X: 1, Y: 0}) {
		t.Errorf("pos = %v, want (1,0)", pos)
	}
	if calories.Current != 48 {
		t.Errorf("calories = %d, want 48 after entering forest", calories.Current)
	}

	x.Begin()
	if r := x.Execute(actor, nil); r != ResultArrived {
		t.Fatalf("second tick = %v, want arrived", r)
	}
	if calories.Current != 47 {
		t.Errorf("calories = %d, want 47", calories.Current)
	}
	if creature.Action.Active() || creature.Path != nil {
		t.Errorf("action/path not cleared on arrival: %+v %v", creature.Action, creature.Path)
	}
}

func TestTravelBlockedPathClears(t *testing.T) {
	grid := NewGrid(5, 5)
	x := NewActionExecutor(grid, testActionParams)
	pos := components.Position{X: 0, Y: 0}
	calories := components.Calories{Current: 50, Max: 100}
	creature := components.Creature{
		Action: components.TravelTo(components.Position{X: 3, Y: 3}, components.IntentIdle),
		Path:   []components.Position{{X: 3, Y: 3}},
	}

	x.Begin()
	if r := x.Execute(Actor{&pos, &calories, &creature}, nil); r != ResultBlocked {
		t.Errorf("result = %v, want blocked", r)
	}
	if pos != (components.Position{}) || calories.Current != 50 {
		t.Errorf("blocked move changed state: pos %v calories %d", pos, calories.Current)
	}
	if creature.Action.Active() {
		t.Error("action not cleared")
	}
}

func TestEatCompletes(t *testing.T) {
	grid := NewGrid(3, 3)
	x := NewActionExecutor(grid, testActionParams)
	plants := newPlants(plantAt(10, 1, 1, 20))
	pos := components.Position{X: 1, Y: 1}
	calories := components.Calories{Current: 40, Max: 100}
	creature := components.Creature{Action: components.Eat(10, 3)}
	actor := Actor{&pos, &calories, &creature}

	for tick := 1; tick <= 2; tick++ {
		x.Begin()
		if r := x.Execute(actor, plants); r != ResultEating {
			t.Fatalf("tick %d = %v, want eating", tick, r)
		}
	}
	if calories.Current != 38 {
		t.Errorf("calories = %d, want 38 after two work ticks", calories.Current)
	}

	x.Begin()
	if r := x.Execute(actor, plants); r != ResultAte {
		t.Fatalf("third tick = %v, want ate", r)
	}
	if calories.Current != 57 {
		t.Errorf("calories = %d, want 57", calories.Current)
	}
	if got := x.Consumed(); len(got) != 1 || got[0] != 10 {
		t.Errorf("Consumed = %v, want [10]", got)
	}
	if plants[10].plant.Available() {
		t.Error("eaten plant still available")
	}
	if creature.Action.Active() {
		t.Error("action not cleared")
	}
}

func TestEatNutritionCapped(t *testing.T) {
	grid := NewGrid(3, 3)
	x := NewActionExecutor(grid, testActionParams)
	plants := newPlants(plantAt(10, 0, 0, 50))
	pos := components.Position{}
	calories := components.Calories{Current: 90, Max: 100}
	creature := components.Creature{Action: components.Eat(10, 1)}

	x.Begin()
	x.Execute(Actor{&pos, &calories, &creature}, plants)
	if calories.Current != 100 {
		t.Errorf("calories = %d, want 100", calories.Current)
	}
}

func TestEatStaleTarget(t *testing.T) {
	tests := []struct {
		name   string
		plants plantTable
		pos    components.Position
	}{
		{"missing", newPlants(), components.Position{}},
		{"elsewhere", newPlants(plantAt(10, 2, 2, 20)), components.Position{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := NewActionExecutor(NewGrid(3, 3), testActionParams)
			pos := tt.pos
			calories := components.Calories{Current: 40, Max: 100}
			creature := components.Creature{Action: components.Eat(10, 3)}

			x.Begin()
			if r := x.Execute(Actor{&pos, &calories, &creature}, tt.plants); r != ResultStale {
				t.Errorf("result = %v, want stale", r)
			}
			if calories.Current != 40 {
				t.Errorf("calories = %d, want 40 (no partial nutrition)", calories.Current)
			}
			if creature.Action.Active() {
				t.Error("action not cleared")
			}
		})
	}
}

func TestEatClaimFirstWins(t *testing.T) {
	x := NewActionExecutor(NewGrid(3, 3), testActionParams)
	plants := newPlants(plantAt(10, 0, 0, 20))

	posA, posB := components.Position{}, components.Position{}
	calA := components.Calories{Current: 40, Max: 100}
	calB := components.Calories{Current: 40, Max: 100}
	a := components.Creature{ID: 1, Action: components.Eat(10, 3)}
	b := components.Creature{ID: 2, Action: components.Eat(10, 3)}

	x.Begin()
	if r := x.Execute(Actor{&posA, &calA, &a}, plants); r != ResultEating {
		t.Errorf("first eater = %v, want eating", r)
	}
	if r := x.Execute(Actor{&posB, &calB, &b}, plants); r != ResultStale {
		t.Errorf("second eater = %v, want stale", r)
	}
}
