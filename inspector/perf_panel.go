package inspector

import (
	"fmt"
	"time"

	"github.com/pthm-cable/forage/telemetry"
)

// perfHotPct marks phases that take a large share of the tick.
const perfHotPct = 20

// PerfLines renders per-phase tick timing grouped by stage category.
func PerfLines(stats telemetry.PerfStats, reg *telemetry.StageRegistry) []Line {
	lines := []Line{
		Header("Performance"),
		Label("Tick", stats.AvgTickDuration.Round(time.Microsecond).String(), nil),
		Label("Tick p95", fmt.Sprintf("%s (slowest #%d)", stats.P95TickDuration.Round(time.Microsecond), stats.SlowestTick), nil),
		Label("Ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond), nil),
	}
	if stats.FPS > 0 {
		lines = append(lines, Label("FPS", fmt.Sprintf("%.0f", stats.FPS), nil))
	}

	for _, category := range telemetry.StageCategories {
		for _, stage := range reg.ByCategory(category) {
			avg, ok := stats.PhaseAvg[stage.ID]
			if !ok {
				continue
			}
			pct := stats.PhasePct[stage.ID]
			tone := ToneText
			if pct > perfHotPct {
				tone = ToneLow
			}
			lines = append(lines, Line{
				Text: fmt.Sprintf("%-13s %7s %5.1f%%", stage.Name, avg.Round(time.Microsecond), pct),
				Tone: tone,
			})
		}
	}
	return lines
}
