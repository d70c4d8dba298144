package viewer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/inspector"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// Glyphs
const (
	glyphCreature   = '@'
	glyphPlant      = '*'
	glyphBandCenter = '+'
	glyphPath       = '·'
	glyphGoal       = 'x'
)

// Styles
var (
	styleDefault = tcell.StyleDefault
	styleStatus  = tcell.StyleDefault.Reverse(true)
	stylePaused  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true)
	stylePlant   = tcell.StyleDefault.Foreground(tcell.ColorLime).Bold(true)
	styleBand    = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleHeader  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGood    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleLow     = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// TileGlyph returns the rune and style for a terrain tile.
func TileGlyph(kind systems.TileKind) (rune, tcell.Style) {
	switch kind {
	case systems.TileForest:
		return '♣', tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case systems.TileHill:
		return '^', tcell.StyleDefault.Foreground(tcell.ColorOlive)
	case systems.TileWater:
		return '~', tcell.StyleDefault.Foreground(tcell.ColorBlue)
	case systems.TileRock:
		return '#', tcell.StyleDefault.Foreground(tcell.ColorGray)
	default:
		return '.', tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	}
}

// creatureStyle colors a creature by its intent.
func creatureStyle(intent string) tcell.Style {
	switch intent {
	case components.IntentSeekFood.String():
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case components.IntentReturnToBand.String():
		return tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	case components.IntentProcreate.String():
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	}
}

func toneStyle(t inspector.Tone) tcell.Style {
	switch t {
	case inspector.ToneHeader:
		return styleHeader
	case inspector.ToneDim:
		return styleDim
	case inspector.ToneGood:
		return styleGood
	case inspector.ToneLow:
		return styleLow
	default:
		return styleDefault
	}
}

// Draw renders the full frame.
func (v *Viewer) Draw() {
	v.screen.Clear()
	v.drawTiles()
	v.drawBandCenter()
	v.drawPlants()
	v.drawSelectedPath()
	v.drawCreatures()
	if v.showPanel {
		v.drawPanel()
	}
	v.drawStatus()
	v.screen.Show()
}

// setCell draws a glyph into a grid cell's first column.
func (v *Viewer) setCell(x, y int, r rune, style tcell.Style) {
	sx, sy, ok := v.cam.WorldToScreen(x, y)
	if !ok {
		return
	}
	v.screen.SetContent(sx, sy, r, nil, style)
}

func (v *Viewer) drawTiles() {
	grid := v.game.Grid()
	minX, minY, maxX, maxY := v.cam.VisibleWorldBounds()
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			tile, ok := grid.TileAt(components.Position{X: x, Y: y})
			if !ok {
				continue
			}
			r, style := TileGlyph(tile.Kind)
			v.setCell(x, y, r, style)
		}
	}
}

func (v *Viewer) drawBandCenter() {
	c := systems.BandCenter{X: v.snap.BandCenter.X, Y: v.snap.BandCenter.Y}.Cell()
	v.setCell(c.X, c.Y, glyphBandCenter, styleBand)
}

func (v *Viewer) drawPlants() {
	for _, p := range v.snap.Plants {
		if p.Harvestable && p.Edible {
			v.setCell(p.X, p.Y, glyphPlant, stylePlant)
		}
	}
}

func (v *Viewer) drawSelectedPath() {
	id, ok := v.ins.Selected()
	if !ok {
		return
	}
	c, ok := v.snap.Creature(id)
	if !ok {
		return
	}
	for _, p := range c.Path {
		v.setCell(p.X, p.Y, glyphPath, stylePath)
	}
	if c.Action != nil && c.Action.Kind == components.ActionTravel.String() {
		v.setCell(c.Action.Destination.X, c.Action.Destination.Y, glyphGoal, stylePath)
	}
}

// drawCreatures draws one glyph per occupied cell; stacked creatures show
// a count in the second column.
func (v *Viewer) drawCreatures() {
	selected, hasSelected := v.ins.Selected()

	counts := make(map[components.Position]int)
	for _, c := range v.snap.Creatures {
		counts[components.Position{X: c.X, Y: c.Y}]++
	}

	for _, c := range v.snap.Creatures {
		style := creatureStyle(c.Intent)
		if hasSelected && c.ID == selected {
			style = style.Reverse(true)
		}
		v.setCell(c.X, c.Y, glyphCreature, style)

		if n := counts[components.Position{X: c.X, Y: c.Y}]; n > 1 {
			if sx, sy, ok := v.cam.WorldToScreen(c.X, c.Y); ok {
				r := '+'
				if n < 10 {
					r = rune('0' + n)
				}
				v.screen.SetContent(sx+1, sy, r, nil, styleDim)
			}
		}
	}
}

func (v *Viewer) drawPanel() {
	mapW, _ := v.mapSize()
	if mapW >= v.width {
		return
	}
	x0 := mapW + 1
	width := v.width - x0

	var lines []inspector.Line
	if id, ok := v.ins.Selected(); ok {
		if pos, cal, c, alive := v.game.Creature(id); alive {
			lines = v.ins.Lines(inspector.Subject{
				Position: pos,
				Calories: cal,
				Creature: c,
				Lifetime: v.game.Lifetime(id),
				Tick:     v.game.Tick(),
			})
		} else {
			lines = []inspector.Line{{Text: fmt.Sprintf("creature %d is gone", id), Tone: inspector.ToneDim}}
		}
		lines = append(lines, inspector.Line{})
	}
	lines = append(lines, v.panel.Lines(width)...)
	if v.showPerf {
		lines = append(lines, inspector.Line{})
		lines = append(lines, inspector.PerfLines(v.game.Perf(), v.stages)...)
	}

	for i, l := range lines {
		if i >= v.height-1 {
			break
		}
		v.drawText(x0, i, width, l.Text, toneStyle(l.Tone))
	}
}

func (v *Viewer) drawStatus() {
	y := v.height - 1
	style := styleStatus
	state := "running"
	if v.game.Paused() {
		style = stylePaused
		state = "PAUSED"
	}
	status := statusLine(v.snap, state)
	for x := 0; x < v.width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}
	v.drawText(0, y, v.width, status, style)
}

// statusLine formats the bottom bar.
func statusLine(s *telemetry.Snapshot, state string) string {
	return fmt.Sprintf(" tick %d | pop %d | plants %d | band (%.1f,%.1f) | %s | space pause  n step  f perf  arrows pan  click select  q quit",
		s.Tick, s.Population, len(s.Plants), s.BandCenter.X, s.BandCenter.Y, state)
}

// drawText writes s from (x, y), clipped to width cells.
func (v *Viewer) drawText(x, y, width int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		if i >= width {
			return
		}
		v.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
