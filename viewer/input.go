package viewer

import (
	"github.com/gdamore/tcell/v2"
)

// panStep is the number of cells a shifted arrow key pans.
const panStep = 5

// HandleEvent applies one input event. It returns false when the viewer
// should exit. Runs between ticks, so control calls take effect at the
// next tick boundary.
func (v *Viewer) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return v.handleKey(ev)

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			sx, sy := ev.Position()
			if wx, wy, ok := v.cam.ScreenToWorld(sx, sy); ok {
				v.ins.SelectAt(v.snap, wx, wy)
			}
		}

	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

func (v *Viewer) handleKey(ev *tcell.EventKey) bool {
	step := 1
	if ev.Modifiers()&tcell.ModShift != 0 {
		step = panStep
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if _, ok := v.ins.Selected(); ok {
			v.ins.Deselect()
			return true
		}
		return false
	case tcell.KeyLeft:
		v.cam.Pan(-step, 0)
	case tcell.KeyRight:
		v.cam.Pan(step, 0)
	case tcell.KeyUp:
		v.cam.Pan(0, -step)
	case tcell.KeyDown:
		v.cam.Pan(0, step)
	case tcell.KeyRune:
		return v.handleRune(ev.Rune())
	}
	return true
}

func (v *Viewer) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case ' ':
		v.game.TogglePause()
	case 'n':
		if v.game.Paused() {
			v.game.Step()
			v.snap = v.game.Snapshot()
		}
	case 'c':
		if id, ok := v.ins.Selected(); ok {
			if c, ok := v.snap.Creature(id); ok {
				v.cam.CenterOn(c.X, c.Y)
			}
		}
	case 'p':
		v.showPanel = !v.showPanel
		v.cam.Resize(v.mapSize())
	case 'f':
		v.showPerf = !v.showPerf
	case '1', '2', '3', '4', '5':
		v.panel.Toggle(int(r - '1'))
	}
	return true
}
