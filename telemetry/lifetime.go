package telemetry

// LifetimeStats tracks per-creature statistics over its lifetime.
type LifetimeStats struct {
	BirthTick uint64 `json:"birth_tick"`
	ParentID  uint64 `json:"parent_id,omitempty"`

	// Foraging
	Meals         int `json:"meals"`
	CaloriesEaten int `json:"calories_eaten"`
	StaleTargets  int `json:"stale_targets"`

	// Movement
	Distance     int `json:"distance"`
	PathFailures int `json:"path_failures"`

	// Reproduction
	Conceptions int `json:"conceptions"`
	Children    int `json:"children"`

	PeakCalories int `json:"peak_calories"`
}

// Age returns the number of ticks lived as of currentTick.
func (s *LifetimeStats) Age(currentTick uint64) uint64 {
	if currentTick < s.BirthTick {
		return 0
	}
	return currentTick - s.BirthTick
}

// LifetimeTracker manages per-creature lifetime statistics.
type LifetimeTracker struct {
	stats map[uint64]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint64]*LifetimeStats),
	}
}

// Register creates lifetime stats for a new creature.
func (lt *LifetimeTracker) Register(id, birthTick, parentID uint64, calories int) {
	lt.stats[id] = &LifetimeStats{
		BirthTick:    birthTick,
		ParentID:     parentID,
		PeakCalories: calories,
	}
}

// Get returns the lifetime stats for a creature, or nil if not found.
func (lt *LifetimeTracker) Get(id uint64) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes a creature's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint64) *LifetimeStats {
	stats := lt.stats[id]
	delete(lt.stats, id)
	return stats
}

// Observe folds a single event into the stats of the creatures it names.
func (lt *LifetimeTracker) Observe(e Event) {
	s := lt.stats[e.EntityID]
	switch e.Type {
	case EventMeal:
		if s != nil {
			s.Meals++
			s.CaloriesEaten += e.Amount
		}
	case EventStaleTarget:
		if s != nil {
			s.StaleTargets++
		}
	case EventPathFailure:
		if s != nil {
			s.PathFailures++
		}
	case EventConception:
		if s != nil {
			s.Conceptions++
		}
	case EventBirth:
		if p := lt.stats[e.TargetID]; p != nil {
			p.Children++
		}
	}
}

// RecordMove adds one travelled cell.
func (lt *LifetimeTracker) RecordMove(id uint64) {
	if s := lt.stats[id]; s != nil {
		s.Distance++
	}
}

// UpdateCalories tracks peak calories.
func (lt *LifetimeTracker) UpdateCalories(id uint64, calories int) {
	if s := lt.stats[id]; s != nil && calories > s.PeakCalories {
		s.PeakCalories = calories
	}
}

// All returns all tracked stats.
func (lt *LifetimeTracker) All() map[uint64]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked creatures.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
