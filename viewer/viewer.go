// Package viewer draws the simulation in a terminal with tcell. It only
// reads game state and calls the game's control methods between ticks.
package viewer

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/forage/camera"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/inspector"
	"github.com/pthm-cable/forage/telemetry"
)

// frameInterval is the redraw period (~30 FPS).
const frameInterval = 33 * time.Millisecond

// Options configures the viewer.
type Options struct {
	// MaxTicks pauses the game once reached. 0 means unlimited.
	MaxTicks uint64
}

// Viewer owns the screen and presents one game.
type Viewer struct {
	screen tcell.Screen
	game   *game.Game
	cam    *camera.Camera
	ins    *inspector.Inspector
	panel  *inspector.PopulationPanel
	stages *telemetry.StageRegistry

	snap      *telemetry.Snapshot
	showPanel bool
	showPerf  bool
	maxTicks  uint64

	width, height int
}

// New creates a viewer on an initialized screen.
func New(screen tcell.Screen, g *game.Game, opts Options) *Viewer {
	screen.EnableMouse()
	screen.HideCursor()

	w, h := screen.Size()
	v := &Viewer{
		screen:    screen,
		game:      g,
		ins:       inspector.NewInspector(),
		panel:     inspector.NewPopulationPanel(),
		stages:    telemetry.NewStageRegistry(),
		showPanel: true,
		maxTicks:  opts.MaxTicks,
		width:     w,
		height:    h,
	}
	mapW, mapH := v.mapSize()
	v.cam = camera.New(mapW, mapH, g.Grid().Width(), g.Grid().Height())
	v.snap = g.Snapshot()
	return v
}

// OnStats feeds a flushed stats window to the population panel. Wire it
// to game.Options.StatsCallback.
func (v *Viewer) OnStats(stats telemetry.WindowStats) {
	v.panel.Update(stats)
}

// Run processes input, advances the game at the configured tick rate and
// redraws until the user quits or ctx is cancelled.
func (v *Viewer) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	frames := time.NewTicker(frameInterval)
	defer frames.Stop()

	var ticks <-chan time.Time
	if interval := v.game.Config().Derived.TickInterval; interval > 0 {
		t := time.NewTicker(time.Duration(interval * float64(time.Second)))
		defer t.Stop()
		ticks = t.C
	}

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if !v.HandleEvent(ev) {
				return nil
			}
			v.Draw()

		case <-ticks:
			v.advance()

		case <-frames.C:
			// Unthrottled: one update per frame
			if ticks == nil {
				v.advance()
			}
			v.game.RecordFrame()
			v.Draw()
		}
	}
}

// advance runs one game update and refreshes the cached snapshot.
func (v *Viewer) advance() {
	if v.maxTicks > 0 && v.game.Tick() >= v.maxTicks {
		v.game.SetPaused(true)
	}
	v.game.Update()
	v.snap = v.game.Snapshot()
}

// mapSize returns the terminal area available for the grid.
func (v *Viewer) mapSize() (int, int) {
	w := v.width
	if v.showPanel && w > inspector.PanelWidth*2 {
		w -= inspector.PanelWidth + 1
	}
	return max(w, 1), max(v.height-1, 1)
}

func (v *Viewer) resize() {
	v.width, v.height = v.screen.Size()
	v.cam.Resize(v.mapSize())
}
