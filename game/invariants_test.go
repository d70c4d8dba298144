package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/telemetry"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func runDigests(t *testing.T, seed int64, ticks int) []string {
	t.Helper()
	var digests []string
	g := NewGameWithOptions(Options{
		Seed:   seed,
		Config: defaultConfig(t),
		OnTick: func(s *telemetry.Snapshot) {
			digests = append(digests, telemetry.StateDigest(s))
		},
	})
	defer g.Unload()

	for i := 0; i < ticks; i++ {
		g.Step()
	}
	return digests
}

func TestDeterminism(t *testing.T) {
	a := runDigests(t, 42, 200)
	b := runDigests(t, 42, 200)

	if len(a) != 200 || len(b) != 200 {
		t.Fatalf("got %d and %d digests, want 200", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("digest diverged at tick %d", i+1)
		}
	}

	c := runDigests(t, 43, 20)
	same := true
	for i := range c {
		if c[i] != a[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical runs")
	}
}

// crowdedDigests runs a large population whose tight band sends most
// creatures traveling, so path planning exceeds the pool threshold.
func crowdedDigests(t *testing.T, workers, ticks int) ([]string, int) {
	t.Helper()
	cfg := defaultConfig(t)
	cfg.Population.Initial = 200
	cfg.Band.Radius = 3
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}

	var digests []string
	g := NewGameWithOptions(Options{
		Seed:        7,
		Config:      cfg,
		PathWorkers: workers,
		OnTick: func(s *telemetry.Snapshot) {
			digests = append(digests, telemetry.StateDigest(s))
		},
	})
	defer g.Unload()

	for i := 0; i < ticks; i++ {
		g.Step()
	}
	return digests, g.parallel.pooledTicks
}

func TestParallelPlanningMatchesSequential(t *testing.T) {
	const ticks = 40
	seq, seqPooled := crowdedDigests(t, 1, ticks)
	a, pooled := crowdedDigests(t, 4, ticks)
	b, _ := crowdedDigests(t, 4, ticks)

	if seqPooled != 0 {
		t.Errorf("single worker used the pool %d times", seqPooled)
	}
	if pooled == 0 {
		t.Fatal("worker pool never ran")
	}
	for i := 0; i < ticks; i++ {
		if a[i] != b[i] {
			t.Fatalf("pooled runs diverged at tick %d", i+1)
		}
		if a[i] != seq[i] {
			t.Fatalf("pooled run diverged from sequential at tick %d", i+1)
		}
	}
}

func TestTickInvariants(t *testing.T) {
	cfg := defaultConfig(t)
	var g *Game
	prev := map[uint64]telemetry.CreatureState{}
	dead := map[uint64]bool{}
	var lastTick uint64

	g = NewGameWithOptions(Options{
		Seed:   7,
		Config: cfg,
		OnTick: func(s *telemetry.Snapshot) {
			if s.Tick != lastTick+1 {
				t.Errorf("tick %d follows %d", s.Tick, lastTick)
			}
			lastTick = s.Tick

			meals := map[uint64]int{}
			for _, e := range g.events {
				switch e.Type {
				case telemetry.EventMeal:
					meals[e.EntityID] += e.Amount
				case telemetry.EventDeath:
					dead[e.EntityID] = true
				}
			}

			for i, c := range s.Creatures {
				if i > 0 && s.Creatures[i-1].ID >= c.ID {
					t.Fatalf("tick %d creatures not in ID order", s.Tick)
				}
				if dead[c.ID] {
					t.Fatalf("tick %d dead creature %d present", s.Tick, c.ID)
				}
				pos := components.Position{X: c.X, Y: c.Y}
				if !g.grid.Passable(pos) {
					t.Fatalf("tick %d creature %d on impassable cell %v", s.Tick, c.ID, pos)
				}
				if c.Calories <= 0 || c.Calories > c.MaxCalories {
					t.Fatalf("tick %d creature %d calories %d out of range", s.Tick, c.ID, c.Calories)
				}

				old, ok := prev[c.ID]
				if !ok {
					continue
				}
				if limit := old.Calories - cfg.Metabolism.LiveCost + meals[c.ID]; c.Calories > limit {
					t.Fatalf("tick %d creature %d calories %d > %d", s.Tick, c.ID, c.Calories, limit)
				}
				if d := components.Manhattan(pos, components.Position{X: old.X, Y: old.Y}); d > 1 {
					t.Fatalf("tick %d creature %d moved %d cells", s.Tick, c.ID, d)
				}
			}

			plantCells := map[components.Position]bool{}
			for _, p := range s.Plants {
				pos := components.Position{X: p.X, Y: p.Y}
				if plantCells[pos] {
					t.Fatalf("tick %d two plants on %v", s.Tick, pos)
				}
				plantCells[pos] = true
			}
			if s.Population != len(s.Creatures) {
				t.Fatalf("tick %d population %d != %d creatures", s.Tick, s.Population, len(s.Creatures))
			}

			clear(prev)
			for _, c := range s.Creatures {
				prev[c.ID] = c
			}
		},
	})
	defer g.Unload()

	for i := 0; i < 300; i++ {
		g.Step()
	}
}

func TestTickLogMatchesSnapshots(t *testing.T) {
	cfg := defaultConfig(t)
	path := filepath.Join(t.TempDir(), "run", "ticks.jsonl.zst")

	var digests []string
	g := NewGameWithOptions(Options{
		Seed:        3,
		Config:      cfg,
		TickLogPath: path,
		OnTick: func(s *telemetry.Snapshot) {
			digests = append(digests, telemetry.StateDigest(s))
		},
	})
	for i := 0; i < 25; i++ {
		g.Step()
	}
	g.Unload()

	records, err := telemetry.ReadTickLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 25 {
		t.Fatalf("got %d records, want 25", len(records))
	}
	for i, rec := range records {
		if rec.Tick != uint64(i+1) {
			t.Errorf("record %d tick = %d", i, rec.Tick)
		}
		if rec.Digest != digests[i] {
			t.Errorf("record %d digest mismatch", i)
		}
	}
}

func TestOutputFiles(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Telemetry.StatsWindowTicks = 10
	dir := t.TempDir()

	var windows []telemetry.WindowStats
	g := NewGameWithOptions(Options{
		Seed:          5,
		Config:        cfg,
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	for i := 0; i < 30; i++ {
		g.Step()
	}
	g.Unload()

	if len(windows) != 3 {
		t.Fatalf("got %d windows, want 3", len(windows))
	}
	if windows[2].WindowEndTick != 30 {
		t.Errorf("last window ends at %d, want 30", windows[2].WindowEndTick)
	}

	for _, name := range []string{telemetry.TelemetryFile, telemetry.PerfFile, telemetry.BookmarksFile, telemetry.EventsFile, telemetry.ConfigFile, telemetry.LifetimesFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestSaveSnapshotRoundTrip(t *testing.T) {
	g := NewGameWithOptions(Options{Seed: 9, Config: defaultConfig(t)})
	defer g.Unload()
	for i := 0; i < 10; i++ {
		g.Step()
	}

	path, err := g.SaveSnapshot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Tick != 10 || loaded.Seed != 9 {
		t.Errorf("loaded tick=%d seed=%d", loaded.Tick, loaded.Seed)
	}
	if len(loaded.Tiles) != g.Grid().Height() {
		t.Errorf("tiles rows = %d, want %d", len(loaded.Tiles), g.Grid().Height())
	}
	if telemetry.StateDigest(loaded) != telemetry.StateDigest(g.Snapshot()) {
		t.Error("saved snapshot digest differs from live state")
	}
	for _, c := range loaded.Creatures {
		if c.Lifetime == nil {
			t.Errorf("creature %d missing lifetime stats", c.ID)
		}
	}
}

func TestInitialPopulation(t *testing.T) {
	cfg := defaultConfig(t)
	g := NewGameWithOptions(Options{Seed: 11, Config: cfg})
	defer g.Unload()

	want := max(cfg.Population.Initial, len(cfg.Population.Placements))
	if g.Population() != want {
		t.Errorf("population = %d, want %d", g.Population(), want)
	}
	if g.PlantCount() == 0 || g.PlantCount() > cfg.Food.Initial {
		t.Errorf("plants = %d, want 1..%d", g.PlantCount(), cfg.Food.Initial)
	}

	snap := g.Snapshot()
	seen := map[uint64]bool{}
	for _, c := range snap.Creatures {
		seen[c.ID] = true
	}
	for _, p := range snap.Plants {
		if seen[p.ID] {
			t.Errorf("plant %d shares an ID with a creature", p.ID)
		}
	}
}
