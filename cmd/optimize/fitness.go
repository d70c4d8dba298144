package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/telemetry"
)

// A band needs two creatures to procreate. Staying below that for
// extinctionGraceTicks counts as functional extinction.
const (
	minViablePop         = 2
	extinctionGraceTicks = 200
	warmupTicks          = 50
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   uint64
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64
	lastSurvive float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the mean quality from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastSurvival returns the mean survival ticks from the most recent evaluation.
func (fe *FitnessEvaluator) LastSurvival() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSurvive
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalTicks uint64
	windows       []telemetry.WindowStats
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run in parallel; each game is independent.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "error", err)
		return 0
	}

	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg.Clone(), s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalSurvival float64
	for _, r := range results {
		q := computeQuality(r.windows, cfg.Population.MaxCalories)
		totalFitness += computeFitness(r.survivalTicks, q)
		totalQuality += q
		totalSurvival += float64(r.survivalTicks)
	}

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastSurvive = totalSurvival / n
	fe.mu.Unlock()

	return totalFitness / n
}

// runSimulation runs one seed until extinction or maxTicks.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Config:         cfg,
		StepsPerUpdate: 1,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	defer g.Unload()

	var belowTicks int
	for g.Tick() < fe.maxTicks {
		g.UpdateHeadless()

		tick := g.Tick()
		pop := g.Population()
		if pop == 0 {
			result.survivalTicks = tick
			return result
		}
		if tick < warmupTicks {
			continue
		}

		if pop < minViablePop {
			belowTicks++
		} else {
			belowTicks = 0
		}
		if belowTicks >= extinctionGraceTicks {
			result.survivalTicks = tick
			return result
		}
	}

	result.survivalTicks = fe.maxTicks
	return result
}

// computeFitness: -(survivalTicks × (1 + 0.2 × quality)).
// Survival dominates; quality separates runs that survive equally long.
func computeFitness(survivalTicks uint64, quality float64) float64 {
	return -(float64(survivalTicks) * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightStability = 0.35
	qualityWeightCalories  = 0.30
	qualityWeightCohesion  = 0.20
	qualityWeightFood      = 0.15

	qualityWarmupWindows = 1
)

// computeQuality scores ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats, maxCalories int) float64 {
	if len(windows) <= qualityWarmupWindows || maxCalories <= 0 {
		return 0
	}

	var calSum, cohesionSum, foodSum float64
	var n int
	counts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.Creatures < minViablePop {
			continue
		}
		n++
		counts = append(counts, float64(w.Creatures))

		// Median calories near 60% of max
		med := w.CaloriesP50 / float64(maxCalories)
		calSum += math.Exp(-math.Pow((med-0.6)/0.2, 2))

		cohesionSum += 1 - float64(w.OutsideBand)/float64(w.Creatures)

		// Plants per creature, saturating
		foodSum += 1 - math.Exp(-float64(w.Plants)/float64(w.Creatures)/2)
	}
	if n == 0 {
		return 0
	}

	stability := 0.0
	if len(counts) >= 2 {
		c := cv(counts)
		stability = math.Exp(-c * c)
	}

	quality := qualityWeightStability*stability +
		qualityWeightCalories*calSum/float64(n) +
		qualityWeightCohesion*cohesionSum/float64(n) +
		qualityWeightFood*foodSum/float64(n)
	return clamp01(quality)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}

func clamp01(x float64) float64 {
	return math.Min(math.Max(x, 0), 1)
}
