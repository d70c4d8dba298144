package telemetry

import (
	"log/slog"
	"slices"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseSpatialIndex = "spatial_index"
	PhaseIntents      = "intents"
	PhasePathfinding  = "pathfinding"
	PhaseActions      = "actions"
	PhaseLifecycle    = "lifecycle"
	PhaseTelemetry    = "telemetry"
)

// Phases lists the tick phases in execution order.
var Phases = []string{
	PhaseSpatialIndex, PhaseIntents, PhasePathfinding,
	PhaseActions, PhaseLifecycle, PhaseTelemetry,
}

// tickSample is the timing of one tick. phases is indexed by phase slot;
// ran marks the slots (below 64) that were started during the tick.
type tickSample struct {
	tick     uint64
	duration time.Duration
	phases   []time.Duration
	ran      uint64
}

// PerfCollector times ticks and their phases over a ring of recent ticks.
// Phase names get a slot the first time they are seen, so samples hold no
// maps; the pipeline phases are pre-assigned in execution order.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	slots map[string]int
	names []string

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      int // slot of the running phase, -1 between phases

	// Frame timing (viewer mode)
	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		ring:  make([]tickSample, windowSize),
		slots: make(map[string]int, len(Phases)),
		phase: -1,
	}
	for _, name := range Phases {
		p.slot(name)
	}
	return p
}

func (p *PerfCollector) slot(name string) int {
	if i, ok := p.slots[name]; ok {
		return i
	}
	p.slots[name] = len(p.names)
	p.names = append(p.names, name)
	return len(p.names) - 1
}

// StartTick begins timing tick.
func (p *PerfCollector) StartTick(tick uint64) {
	p.tickStart = time.Now()
	p.phase = -1
	p.cur = tickSample{tick: tick, phases: make([]time.Duration, len(p.names))}
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	i := p.slot(phase)
	for len(p.cur.phases) <= i {
		p.cur.phases = append(p.cur.phases, 0)
	}
	if i < 64 {
		p.cur.ran |= 1 << i
	}
	p.phase = i
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the last phase and stores the sample.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.phase = -1
	p.cur.duration = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	p.count = min(p.count+1, len(p.ring))
}

// RecordFrame records frame timing for the terminal viewer.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// SlowestTick is the tick that took MaxTickDuration.
	SlowestTick uint64

	// Phase averages and their share of the average tick
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing (viewer mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	sums := make([]time.Duration, len(p.names))
	seen := make([]bool, len(p.names))
	durations := make([]float64, 0, p.count)
	for i, sample := range p.ring[:p.count] {
		total += sample.duration
		durations = append(durations, float64(sample.duration))
		if i == 0 || sample.duration < s.MinTickDuration {
			s.MinTickDuration = sample.duration
		}
		if sample.duration >= s.MaxTickDuration {
			s.MaxTickDuration = sample.duration
			s.SlowestTick = sample.tick
		}
		for slot, d := range sample.phases {
			sums[slot] += d
			seen[slot] = seen[slot] || d > 0 || (slot < 64 && sample.ran&(1<<slot) != 0)
		}
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = total / n
	slices.Sort(durations)
	s.P95TickDuration = time.Duration(Percentile(durations, 0.95))
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}

	for slot, name := range p.names {
		if !seen[slot] {
			continue
		}
		avg := sums[slot] / n
		s.PhaseAvg[name] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[name] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}
	return s
}

// LogStats logs the window summary with the share of each pipeline phase.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"slowest_tick", s.SlowestTick,
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd       uint64  `csv:"window_end"`
	AvgTickUS       int64   `csv:"avg_tick_us"`
	MinTickUS       int64   `csv:"min_tick_us"`
	MaxTickUS       int64   `csv:"max_tick_us"`
	P95TickUS       int64   `csv:"p95_tick_us"`
	SlowestTick     uint64  `csv:"slowest_tick"`
	TicksPerSec     float64 `csv:"ticks_per_sec"`
	FPS             float64 `csv:"fps"`
	SpatialIndexPct float64 `csv:"spatial_index_pct"`
	IntentsPct      float64 `csv:"intents_pct"`
	PathfindingPct  float64 `csv:"pathfinding_pct"`
	ActionsPct      float64 `csv:"actions_pct"`
	LifecyclePct    float64 `csv:"lifecycle_pct"`
	TelemetryPct    float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:       windowEnd,
		AvgTickUS:       s.AvgTickDuration.Microseconds(),
		MinTickUS:       s.MinTickDuration.Microseconds(),
		MaxTickUS:       s.MaxTickDuration.Microseconds(),
		P95TickUS:       s.P95TickDuration.Microseconds(),
		SlowestTick:     s.SlowestTick,
		TicksPerSec:     s.TicksPerSecond,
		FPS:             s.FPS,
		SpatialIndexPct: s.PhasePct[PhaseSpatialIndex],
		IntentsPct:      s.PhasePct[PhaseIntents],
		PathfindingPct:  s.PhasePct[PhasePathfinding],
		ActionsPct:      s.PhasePct[PhaseActions],
		LifecyclePct:    s.PhasePct[PhaseLifecycle],
		TelemetryPct:    s.PhasePct[PhaseTelemetry],
	}
}
