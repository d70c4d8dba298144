package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks uint64

	// Current window tracking
	windowStartTick uint64

	// Event counters for current window
	births       int
	deaths       int
	meals        int
	conceptions  int
	pathFailures int
	staleTargets int
	plantsSpread int
	nutritionIn  int
}

// NewCollector creates a stats collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: uint64(windowTicks)}
}

// Record counts an event in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventBirth:
		c.births++
	case EventDeath:
		c.deaths++
	case EventMeal:
		c.meals++
		c.nutritionIn += e.Amount
	case EventConception:
		c.conceptions++
	case EventPathFailure:
		c.pathFailures++
	case EventStaleTarget:
		c.staleTargets++
	case EventPlantSpread:
		c.plantsSpread++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Census is the population state sampled at a window boundary.
type Census struct {
	Creatures   int
	Plants      int
	Pregnant    int
	OutsideBand int
	Calories    []float64
	BandCenterX float64
	BandCenterY float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick uint64, census Census) WindowStats {
	mean, std, p10, p50, p90 := ComputeCalorieStats(census.Calories)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,

		Creatures:   census.Creatures,
		Plants:      census.Plants,
		Pregnant:    census.Pregnant,
		OutsideBand: census.OutsideBand,

		Births:       c.births,
		Deaths:       c.deaths,
		Meals:        c.meals,
		Conceptions:  c.conceptions,
		PathFailures: c.pathFailures,
		StaleTargets: c.staleTargets,
		PlantsSpread: c.plantsSpread,
		NutritionIn:  c.nutritionIn,

		CaloriesMean: mean,
		CaloriesStd:  std,
		CaloriesP10:  p10,
		CaloriesP50:  p50,
		CaloriesP90:  p90,

		BandCenterX: census.BandCenterX,
		BandCenterY: census.BandCenterY,
	}

	// Reset for next window
	*c = Collector{windowTicks: c.windowTicks, windowStartTick: currentTick}

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() uint64 {
	return c.windowTicks
}
