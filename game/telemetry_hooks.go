package game

import (
	"log/slog"

	"github.com/pthm-cable/forage/telemetry"
)

// afterTick feeds the tick's events to telemetry, appends to the tick log,
// publishes the snapshot and flushes the stats window when due.
func (g *Game) afterTick() {
	for _, e := range g.events {
		g.collector.Record(e)
		g.lifetimeTracker.Observe(e)
		logEvent(e)
	}
	if err := g.outputManager.WriteEvents(g.events); err != nil {
		slog.Error("failed to write events", "tick", g.tick, "error", err)
	}

	var snap *telemetry.Snapshot
	if g.tickLog != nil || g.onTick != nil {
		snap = g.Snapshot()
	}

	if g.tickLog != nil {
		rec := telemetry.TickRecord{
			Tick:       g.tick,
			Population: g.population,
			Plants:     len(g.plants),
			BandCenter: snap.BandCenter,
			Digest:     telemetry.StateDigest(snap),
			Events:     g.events,
		}
		if err := g.tickLog.Write(rec); err != nil {
			slog.Error("failed to write tick log", "tick", g.tick, "error", err)
		}
	}

	if g.onTick != nil {
		g.onTick(snap)
	}

	g.flushTelemetry()
}

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.census())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if err := g.tickLog.Flush(); err != nil {
		slog.Error("failed to flush tick log", "error", err)
	}

	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// census samples the population for a stats window.
func (g *Game) census() telemetry.Census {
	c := telemetry.Census{
		Creatures:   g.population,
		Plants:      len(g.plants),
		Calories:    make([]float64, 0, g.population),
		BandCenterX: g.bandCenter.X,
		BandCenterY: g.bandCenter.Y,
	}

	query := g.creatureFilter.Query()
	for query.Next() {
		_, cal, cr := query.Get()
		c.Calories = append(c.Calories, float64(cal.Current))
		if cr.Pregnancy.Active {
			c.Pregnant++
		}
		if cr.OutsideBand {
			c.OutsideBand++
		}
		g.lifetimeTracker.UpdateCalories(cr.ID, cal.Current)
	}

	return c
}

// SaveSnapshot writes the current state, including terrain, to dir.
func (g *Game) SaveSnapshot(dir string) (string, error) {
	snap := g.Snapshot()
	snap.Tiles = g.grid.Rows()
	g.attachLifetimes(snap)
	return telemetry.SaveSnapshot(snap, dir)
}

// saveSnapshot saves a bookmark snapshot to the configured directory.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snap := g.Snapshot()
	snap.Tiles = g.grid.Rows()
	snap.Bookmark = bookmark
	g.attachLifetimes(snap)

	path, err := telemetry.SaveSnapshot(snap, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

func (g *Game) attachLifetimes(snap *telemetry.Snapshot) {
	for i := range snap.Creatures {
		snap.Creatures[i].Lifetime = g.lifetimeTracker.Get(snap.Creatures[i].ID)
	}
}
