// Package inspector builds the text panels the viewer draws: the selected
// creature's details and the population history.
package inspector

import (
	"fmt"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/telemetry"
)

// PanelWidth is the panel width in terminal cells.
const PanelWidth = 34

// Inspector tracks the selected creature.
type Inspector struct {
	selected    uint64
	hasSelected bool
}

// NewInspector creates a new inspector instance.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Select selects a creature by ID.
func (ins *Inspector) Select(id uint64) {
	ins.selected = id
	ins.hasSelected = true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.selected = 0
	ins.hasSelected = false
}

// Selected returns the currently selected creature ID.
func (ins *Inspector) Selected() (uint64, bool) {
	return ins.selected, ins.hasSelected
}

// SelectAt selects the lowest-ID creature on the given cell, or deselects
// when there is none. It reports whether a creature was selected.
func (ins *Inspector) SelectAt(snap *telemetry.Snapshot, x, y int) bool {
	for _, c := range snap.Creatures {
		if c.X == x && c.Y == y {
			ins.Select(c.ID)
			return true
		}
	}
	ins.Deselect()
	return false
}

// Subject is the state shown for a selected creature.
type Subject struct {
	Position components.Position
	Calories components.Calories
	Creature components.Creature
	Lifetime *telemetry.LifetimeStats
	Tick     uint64
}

// Lines renders the panel for s.
func (ins *Inspector) Lines(s Subject) []Line {
	c := s.Creature
	lines := []Line{
		Header(fmt.Sprintf("Creature #%d", c.ID)),
		Label("Position", fmt.Sprintf("(%d,%d)", s.Position.X, s.Position.Y), nil),
	}

	for _, f := range ExtractFields(&s.Calories) {
		lines = append(lines, RenderField(f))
	}
	for _, f := range ExtractFields(&c) {
		lines = append(lines, RenderField(f))
	}

	lines = append(lines, Header("Action"))
	lines = append(lines, actionLines(c)...)

	if c.Pregnancy.Active {
		lines = append(lines, Label("Pregnancy", fmt.Sprintf("%d ticks", c.Pregnancy.Progress), nil))
	}
	if c.Unreachable != nil {
		lines = append(lines, Line{Text: fmt.Sprintf("Avoiding (%d,%d)", c.Unreachable.X, c.Unreachable.Y), Tone: ToneDim})
	}

	if s.Lifetime != nil {
		lines = append(lines, Header("Lifetime"))
		lines = append(lines, Label("Age", s.Lifetime.Age(s.Tick), nil))
		for _, f := range ExtractFields(s.Lifetime) {
			if f.Name == "BirthTick" || f.Name == "ParentID" {
				continue
			}
			lines = append(lines, RenderField(f))
		}
	}
	return lines
}

func actionLines(c components.Creature) []Line {
	a := c.Action
	switch a.Kind {
	case components.ActionTravel:
		lines := []Line{
			Label("Travel", fmt.Sprintf("to (%d,%d) for %s", a.Destination.X, a.Destination.Y, a.Origin), nil),
			Label("Path", fmt.Sprintf("%d cells", len(c.Path)), nil),
		}
		if a.Target != 0 {
			lines = append(lines, Label("Food", a.Target, nil))
		}
		return lines
	case components.ActionEat:
		return []Line{
			Label("Eat", fmt.Sprintf("plant %d", a.Target), nil),
			Bar("Work", float64(a.Progress), map[string]string{"max": fmt.Sprint(a.Required), "fmt": "%g"}),
		}
	default:
		return []Line{{Text: "none", Tone: ToneDim}}
	}
}
