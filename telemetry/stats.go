package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick uint64 `csv:"-"`
	WindowEndTick   uint64 `csv:"window_end"`

	// Counts at window end
	Creatures   int `csv:"creatures"`
	Plants      int `csv:"plants"`
	Pregnant    int `csv:"pregnant"`
	OutsideBand int `csv:"outside_band"`

	// Events during window
	Births       int `csv:"births"`
	Deaths       int `csv:"deaths"`
	Meals        int `csv:"meals"`
	Conceptions  int `csv:"conceptions"`
	PathFailures int `csv:"path_failures"`
	StaleTargets int `csv:"stale_targets"`
	PlantsSpread int `csv:"plants_spread"`
	NutritionIn  int `csv:"nutrition_in"`

	// Calorie distribution (sampled at window end)
	CaloriesMean float64 `csv:"calories_mean"`
	CaloriesStd  float64 `csv:"calories_std"`
	CaloriesP10  float64 `csv:"calories_p10"`
	CaloriesP50  float64 `csv:"calories_p50"`
	CaloriesP90  float64 `csv:"calories_p90"`

	// Band center at window end
	BandCenterX float64 `csv:"band_x"`
	BandCenterY float64 `csv:"band_y"`
}

// Percentile returns the p-th empirical quantile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeCalorieStats calculates mean, standard deviation and percentiles.
func ComputeCalorieStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.PopStdDev(values, nil)
	}

	// Sort for percentiles
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Int("creatures", s.Creatures),
		slog.Int("plants", s.Plants),
		slog.Int("pregnant", s.Pregnant),
		slog.Int("outside_band", s.OutsideBand),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("meals", s.Meals),
		slog.Int("conceptions", s.Conceptions),
		slog.Int("path_failures", s.PathFailures),
		slog.Int("stale_targets", s.StaleTargets),
		slog.Int("plants_spread", s.PlantsSpread),
		slog.Int("nutrition_in", s.NutritionIn),
		slog.Float64("calories_mean", s.CaloriesMean),
		slog.Float64("calories_std", s.CaloriesStd),
		slog.Float64("calories_p10", s.CaloriesP10),
		slog.Float64("calories_p50", s.CaloriesP50),
		slog.Float64("calories_p90", s.CaloriesP90),
		slog.Float64("band_x", s.BandCenterX),
		slog.Float64("band_y", s.BandCenterY),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
