package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the observable simulation state at the end of a tick.
type Snapshot struct {
	Version int    `json:"version"`
	Seed    int64  `json:"seed"`
	Tick    uint64 `json:"tick"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// Tiles holds one string per row using the grid layout characters.
	// Omitted from per-tick snapshots streamed to observers.
	Tiles []string `json:"tiles,omitempty"`

	Population int             `json:"population"`
	BandCenter BandPoint       `json:"band_center"`
	BandRadius int             `json:"band_radius"`
	Creatures  []CreatureState `json:"creatures"`
	Plants     []PlantState    `json:"plants"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// BandPoint is a fractional band center.
type BandPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Cell is an integer grid coordinate.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ActionState is the serialized form of a creature's current action.
type ActionState struct {
	Kind        string `json:"kind"`
	Destination Cell   `json:"destination"`
	Target      uint64 `json:"target,omitempty"`
	Progress    int    `json:"progress,omitempty"`
	Required    int    `json:"required,omitempty"`
}

// CreatureState holds one creature's complete state.
type CreatureState struct {
	ID          uint64 `json:"id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Calories    int    `json:"calories"`
	MaxCalories int    `json:"max_calories"`

	Intent string       `json:"intent"`
	Action *ActionState `json:"action,omitempty"`
	Path   []Cell       `json:"path,omitempty"`

	Pregnant          bool `json:"pregnant"`
	PregnancyProgress int  `json:"pregnancy_progress,omitempty"`
	OutsideBand       bool `json:"outside_band"`
	PathFailed        bool `json:"path_failed,omitempty"`

	BirthTick uint64 `json:"birth_tick"`
	ParentID  uint64 `json:"parent_id,omitempty"`

	Lifetime *LifetimeStats `json:"lifetime,omitempty"`
}

// PlantState holds one plant's state.
type PlantState struct {
	ID          uint64 `json:"id"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Nutrition   int    `json:"nutrition"`
	Harvestable bool   `json:"harvestable"`
	Edible      bool   `json:"edible"`
}

// Creature returns the creature with the given ID.
func (s *Snapshot) Creature(id uint64) (CreatureState, bool) {
	for _, c := range s.Creatures {
		if c.ID == id {
			return c, true
		}
	}
	return CreatureState{}, false
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
