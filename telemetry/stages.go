package telemetry

// StageInfo describes a tick phase for display.
type StageInfo struct {
	ID          string // Phase name used by PerfCollector
	Name        string // Display name
	Description string
	Category    string // "core", "ai", "lifecycle" or "internal"
}

// StageCategories lists stage categories in pipeline order.
var StageCategories = []string{"core", "ai", "lifecycle", "internal"}

// StageRegistry holds metadata about the tick phases so perf output and
// the viewer use the same names.
type StageRegistry struct {
	stages []StageInfo
	byID   map[string]StageInfo
}

// NewStageRegistry creates a registry with every phase in Phases.
func NewStageRegistry() *StageRegistry {
	r := &StageRegistry{byID: make(map[string]StageInfo)}
	r.Register(StageInfo{ID: PhaseSpatialIndex, Name: "Spatial Index", Description: "Rebuilds the cell occupancy index", Category: "core"})
	r.Register(StageInfo{ID: PhaseIntents, Name: "Intents", Description: "Chooses what each creature wants", Category: "ai"})
	r.Register(StageInfo{ID: PhasePathfinding, Name: "Pathfinding", Description: "Plans A* routes for travel actions", Category: "ai"})
	r.Register(StageInfo{ID: PhaseActions, Name: "Actions", Description: "Moves creatures and runs eat work", Category: "lifecycle"})
	r.Register(StageInfo{ID: PhaseLifecycle, Name: "Lifecycle", Description: "Metabolism, births, deaths, plant spread", Category: "lifecycle"})
	r.Register(StageInfo{ID: PhaseTelemetry, Name: "Telemetry", Description: "Stats windows, bookmarks, tick log", Category: "internal"})
	return r
}

// Register adds a stage. A repeated ID replaces the earlier entry.
func (r *StageRegistry) Register(info StageInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.stages {
			if r.stages[i].ID == info.ID {
				r.stages[i] = info
			}
		}
	} else {
		r.stages = append(r.stages, info)
	}
	r.byID[info.ID] = info
}

// Get returns stage info by ID.
func (r *StageRegistry) Get(id string) (StageInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// Name returns the display name for a phase, or the ID if unknown.
func (r *StageRegistry) Name(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns stages in registration order.
func (r *StageRegistry) All() []StageInfo {
	return r.stages
}

// ByCategory returns stages in one category.
func (r *StageRegistry) ByCategory(category string) []StageInfo {
	var result []StageInfo
	for _, info := range r.stages {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}
