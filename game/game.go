// Package game owns the simulation world and runs the tick pipeline.
package game

import (
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
)

// Options configures game creation.
type Options struct {
	Seed int64

	// Config overrides the global config. Nil uses config.Cfg().
	Config *config.Config

	// Grid overrides terrain generation.
	Grid *systems.Grid

	// Empty skips the initial population and plants. Used for hand-built scenarios.
	Empty bool

	LogStats       bool
	SnapshotDir    string
	OutputDir      string
	TickLogPath    string
	StepsPerUpdate int

	// PathWorkers sizes the path planning pool. Zero uses GOMAXPROCS.
	PathWorkers int

	// StatsCallback receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)

	// OnTick receives the snapshot of every completed tick.
	OnTick func(*telemetry.Snapshot)
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	creatureMapper *ecs.Map3[components.Position, components.Calories, components.Creature]
	creatureFilter *ecs.Filter3[components.Position, components.Calories, components.Creature]
	plantMapper    *ecs.Map2[components.Position, components.Plant]
	plantFilter    *ecs.Filter2[components.Position, components.Plant]

	// Entity lookup by simulation ID
	creatures map[uint64]ecs.Entity
	plants    map[uint64]ecs.Entity
	nextID    uint64

	// Plants never move, so their cells are tracked directly.
	plantCells map[components.Position]uint64

	grid     *systems.Grid
	index    *systems.SpatialIndex
	executor *systems.ActionExecutor
	parallel *parallelState

	// Generation and tick (plus one) of the last rebuild by this game
	indexGen  uint64
	indexTick uint64

	intentParams systems.IntentParams
	actionParams systems.ActionParams

	pipeline  []stage
	decisions []systems.Decision

	// State
	tick           uint64
	population     int
	bandCenter     systems.BandCenter
	manualBand     bool
	paused         bool
	stepsPerUpdate int
	pendingSteps   int
	controls       chan Command

	// Events raised during the current tick
	events []telemetry.Event

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	outputManager    *telemetry.OutputManager
	tickLog          *telemetry.TickLog
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.WindowStats)
	onTick           func(*telemetry.Snapshot)
}

// NewGame creates a game with the global config and the given seed.
func NewGame(seed int64) *Game {
	return NewGameWithOptions(Options{Seed: seed})
}

// NewGameWithOptions creates a new game instance. Output collaborators that
// fail to open are logged and disabled.
func NewGameWithOptions(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	grid := opts.Grid
	if grid == nil {
		if cfg.Terrain.Enabled {
			grid = systems.GenerateTerrain(cfg.Terrain, cfg.World.Width, cfg.World.Height, opts.Seed)
		} else {
			grid = systems.NewGrid(cfg.World.Width, cfg.World.Height)
		}
	}

	stepsPerUpdate := opts.StepsPerUpdate
	if stepsPerUpdate < 1 {
		stepsPerUpdate = cfg.Simulation.StepsPerUpdate
	}

	world := ecs.NewWorld()
	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		seed:  opts.Seed,

		creatureMapper: ecs.NewMap3[components.Position, components.Calories, components.Creature](world),
		creatureFilter: ecs.NewFilter3[components.Position, components.Calories, components.Creature](world),
		plantMapper:    ecs.NewMap2[components.Position, components.Plant](world),
		plantFilter:    ecs.NewFilter2[components.Position, components.Plant](world),

		creatures:  make(map[uint64]ecs.Entity),
		plants:     make(map[uint64]ecs.Entity),
		plantCells: make(map[components.Position]uint64),
		nextID:     1,

		grid:         grid,
		index:        systems.NewSpatialIndex(grid.Width(), grid.Height()),
		intentParams: systems.IntentParamsFromConfig(cfg),
		actionParams: systems.ActionParamsFromConfig(cfg),
		parallel:     newParallelState(opts.PathWorkers),

		stepsPerUpdate: stepsPerUpdate,
		controls:       make(chan Command, 64),

		collector:        telemetry.NewCollector(cfg.Telemetry.StatsWindowTicks),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
		onTick:           opts.OnTick,
	}
	g.executor = systems.NewActionExecutor(grid, g.actionParams)
	g.pipeline = g.buildPipeline()

	g.manualBand = cfg.Derived.ManualBandCenter
	if g.manualBand {
		g.bandCenter = systems.BandCenter{X: float64(cfg.World.BandCenterX), Y: float64(cfg.World.BandCenterY)}
	} else {
		g.bandCenter = systems.BandCenter{X: float64(grid.Width()) / 2, Y: float64(grid.Height()) / 2}
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			slog.Error("failed to open output dir", "dir", opts.OutputDir, "error", err)
		} else {
			g.outputManager = om
			if err := om.WriteConfig(cfg); err != nil {
				slog.Error("failed to write config", "error", err)
			}
		}
	}

	if opts.TickLogPath != "" {
		tl, err := telemetry.OpenTickLog(opts.TickLogPath)
		if err != nil {
			slog.Error("failed to open tick log", "path", opts.TickLogPath, "error", err)
		} else {
			g.tickLog = tl
		}
	}

	if !opts.Empty {
		g.spawnInitialPopulation()
		g.refreshBand()
	}

	return g
}

// Update drains pending control commands, then runs StepsPerUpdate ticks
// unless paused. Queued single steps run even while paused.
func (g *Game) Update() {
	g.drainControls()

	if g.paused {
		for ; g.pendingSteps > 0; g.pendingSteps-- {
			g.Step()
		}
		return
	}
	g.pendingSteps = 0

	for i := 0; i < g.stepsPerUpdate; i++ {
		g.Step()
	}
}

// UpdateHeadless runs an update without frame timing.
func (g *Game) UpdateHeadless() {
	g.Update()
}

// Step runs exactly one tick regardless of the pause flag.
func (g *Game) Step() {
	g.runTick()
}

// SetPaused sets the pause flag. It takes effect at the next tick boundary.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// TogglePause flips the pause flag.
func (g *Game) TogglePause() {
	g.paused = !g.paused
}

// Paused reports whether the game is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// Tick returns the number of completed ticks.
func (g *Game) Tick() uint64 {
	return g.tick
}

// Population returns the number of living creatures.
func (g *Game) Population() int {
	return g.population
}

// PlantCount returns the number of plants.
func (g *Game) PlantCount() int {
	return len(g.plants)
}

// BandCenter returns the current band center.
func (g *Game) BandCenter() systems.BandCenter {
	return g.bandCenter
}

// SetBandCenter fixes the band center. The next lifecycle stage keeps it
// instead of recomputing it from creature positions.
func (g *Game) SetBandCenter(x, y float64) {
	g.manualBand = true
	g.bandCenter = systems.BandCenter{X: x, Y: y}
	g.refreshBand()
}

// Grid returns the static terrain.
func (g *Game) Grid() *systems.Grid {
	return g.grid
}

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 {
	return g.seed
}

// Config returns the game's configuration.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Lifetime returns lifetime stats for a creature, or nil.
func (g *Game) Lifetime(id uint64) *telemetry.LifetimeStats {
	return g.lifetimeTracker.Get(id)
}

// Perf returns rolling performance stats.
func (g *Game) Perf() telemetry.PerfStats {
	return g.perfCollector.Stats()
}

// RecordFrame records frame timing for the viewer.
func (g *Game) RecordFrame() {
	g.perfCollector.RecordFrame()
}

// Unload flushes and closes output collaborators.
func (g *Game) Unload() {
	g.parallel.stopWorkers()

	if g.outputManager != nil {
		if err := g.outputManager.WriteLifetimes(g.lifetimeTracker); err != nil {
			slog.Error("failed to write lifetimes", "error", err)
		}
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}
	if err := g.tickLog.Close(); err != nil {
		slog.Error("failed to close tick log", "error", err)
	}
}
