package inspector

import (
	"fmt"

	"github.com/pthm-cable/forage/telemetry"
)

const (
	// History buffer size (number of windows to keep)
	populationHistorySize = 120

	// Line series indices
	SeriesCreatures = 0
	SeriesPlants    = 1
	SeriesCalories  = 2
	SeriesBirths    = 3
	SeriesDeaths    = 4
	numSeries       = 5
)

// PopulationPanel shows per-window population history as sparklines.
type PopulationPanel struct {
	latest    telemetry.WindowStats
	hasLatest bool

	// Historical data (ring buffers)
	history      [numSeries][]float64
	historyIndex int
	historyCount int

	// Series visibility (toggled from the viewer)
	seriesVisible [numSeries]bool
	seriesNames   [numSeries]string
}

// NewPopulationPanel creates a new population panel.
func NewPopulationPanel() *PopulationPanel {
	p := &PopulationPanel{}
	for i := 0; i < numSeries; i++ {
		p.history[i] = make([]float64, populationHistorySize)
	}

	// Default visibility: counts visible, event rates hidden
	p.seriesVisible = [numSeries]bool{true, true, true, false, false}
	p.seriesNames = [numSeries]string{"Creatures", "Plants", "Cal mean", "Births", "Deaths"}
	return p
}

// Update receives a flushed stats window.
func (p *PopulationPanel) Update(stats telemetry.WindowStats) {
	p.latest = stats
	p.hasLatest = true

	idx := p.historyIndex
	p.history[SeriesCreatures][idx] = float64(stats.Creatures)
	p.history[SeriesPlants][idx] = float64(stats.Plants)
	p.history[SeriesCalories][idx] = stats.CaloriesMean
	p.history[SeriesBirths][idx] = float64(stats.Births)
	p.history[SeriesDeaths][idx] = float64(stats.Deaths)

	// Advance ring buffer
	p.historyIndex = (p.historyIndex + 1) % populationHistorySize
	if p.historyCount < populationHistorySize {
		p.historyCount++
	}
}

// Toggle flips a series' visibility.
func (p *PopulationPanel) Toggle(series int) {
	if series >= 0 && series < numSeries {
		p.seriesVisible[series] = !p.seriesVisible[series]
	}
}

// Series returns up to n most recent values of a series, oldest first.
func (p *PopulationPanel) Series(series, n int) []float64 {
	n = min(n, p.historyCount)
	out := make([]float64, n)
	start := p.historyIndex - n
	for i := 0; i < n; i++ {
		out[i] = p.history[series][(start+i+populationHistorySize)%populationHistorySize]
	}
	return out
}

// Lines renders visible series with sparklines no wider than width.
func (p *PopulationPanel) Lines(width int) []Line {
	lines := []Line{Header("Population")}
	if !p.hasLatest {
		return append(lines, Line{Text: "waiting for first window", Tone: ToneDim})
	}

	lines = append(lines, Label("Window", fmt.Sprintf("ticks %d-%d", p.latest.WindowStartTick, p.latest.WindowEndTick), nil))

	spark := max(width-len("Creatures ")-8, 1)
	for i := 0; i < numSeries; i++ {
		if !p.seriesVisible[i] {
			continue
		}
		values := p.Series(i, spark)
		lo, hi := seriesRange(values)
		last := values[len(values)-1]
		lines = append(lines, Line{
			Text: fmt.Sprintf("%-9s %s %.4g", p.seriesNames[i], Sparkline(values, lo, hi), last),
			Tone: ToneText,
		})
	}
	return lines
}

// seriesRange returns the min and max of values.
func seriesRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}
