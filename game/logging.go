package game

import (
	"context"
	"log/slog"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/telemetry"
)

// logEvent writes a telemetry event at debug level. Births and deaths are
// logged where they happen, with more context.
func logEvent(e telemetry.Event) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	switch e.Type {
	case telemetry.EventBirth, telemetry.EventDeath:
		return
	}
	slog.Debug(string(e.Type),
		"tick", e.Tick,
		"id", e.EntityID,
		"target", e.TargetID,
		"amount", e.Amount,
		"x", e.X,
		"y", e.Y,
	)
}

// LogWorldState logs a one-line summary of the current world.
func (g *Game) LogWorldState() {
	var pregnant, outside, travelling, eating int
	var calories int
	query := g.creatureFilter.Query()
	for query.Next() {
		_, cal, c := query.Get()
		calories += cal.Current
		if c.Pregnancy.Active {
			pregnant++
		}
		if c.OutsideBand {
			outside++
		}
		switch c.Action.Kind {
		case components.ActionTravel:
			travelling++
		case components.ActionEat:
			eating++
		}
	}

	mean := 0.0
	if g.population > 0 {
		mean = float64(calories) / float64(g.population)
	}

	slog.Info("world",
		"tick", g.tick,
		"population", g.population,
		"plants", len(g.plants),
		"pregnant", pregnant,
		"outside_band", outside,
		"travelling", travelling,
		"eating", eating,
		"calories_mean", mean,
		"band_x", g.bandCenter.X,
		"band_y", g.bandCenter.Y,
	)
}
