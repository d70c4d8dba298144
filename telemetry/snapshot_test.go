package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Version:    SnapshotVersion,
		Seed:       42,
		Tick:       1000,
		Width:      5,
		Height:     4,
		Tiles:      []string{".....", ".f~..", "..h..", "....#"},
		Population: 2,
		BandCenter: BandPoint{X: 1.5, Y: 2},
		BandRadius: 12,
		Creatures: []CreatureState{
			{
				ID: 1, X: 1, Y: 2, Calories: 70, MaxCalories: 100,
				Intent: "seek_food",
				Action: &ActionState{Kind: "travel", Destination: Cell{X: 3, Y: 2}, Target: 9},
				Path:   []Cell{{X: 2, Y: 2}, {X: 3, Y: 2}},
				Lifetime: &LifetimeStats{
					BirthTick: 100,
					Meals:     3,
					Children:  1,
				},
			},
			{ID: 4, X: 2, Y: 2, Calories: 40, MaxCalories: 100, Intent: "idle", Pregnant: true, PregnancyProgress: 5},
		},
		Plants: []PlantState{
			{ID: 9, X: 3, Y: 2, Nutrition: 20, Harvestable: true, Edible: true},
		},
		Bookmark: &Bookmark{
			Type:        BookmarkStableBand,
			Tick:        1000,
			Description: "Test bookmark",
		},
	}
}

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	snapshot := testSnapshot()

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Seed != snapshot.Seed || loaded.Tick != snapshot.Tick {
		t.Errorf("header mismatch: got seed %d tick %d", loaded.Seed, loaded.Tick)
	}
	if len(loaded.Creatures) != 2 || len(loaded.Plants) != 1 {
		t.Fatalf("entity counts: %d creatures, %d plants", len(loaded.Creatures), len(loaded.Plants))
	}
	c, ok := loaded.Creature(1)
	if !ok || c.Action == nil || c.Action.Target != 9 || len(c.Path) != 2 {
		t.Errorf("creature 1 = %+v", c)
	}
	if c.Lifetime == nil || c.Lifetime.Meals != 3 {
		t.Errorf("lifetime not restored: %+v", c.Lifetime)
	}
	if loaded.Bookmark == nil || loaded.Bookmark.Type != BookmarkStableBand {
		t.Errorf("bookmark = %+v", loaded.Bookmark)
	}
	if StateDigest(loaded) != StateDigest(snapshot) {
		t.Error("digest changed across save/load")
	}
}

func TestLoadSnapshotVersionMismatch(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.Version = SnapshotVersion + 1
	path, err := SaveSnapshot(snapshot, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected version error")
	}
}

func TestSnapshotFilename(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version: SnapshotVersion,
		Tick:    5000,
		Bookmark: &Bookmark{
			Type: BookmarkPopulationCrash,
			Tick: 5000,
		},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected := filepath.Join(tmpDir, "snapshot_5000_population_crash.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}

	path, err = SaveSnapshot(&Snapshot{Version: SnapshotVersion, Tick: 3000}, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	expected = filepath.Join(tmpDir, "snapshot_3000.json")
	if path != expected {
		t.Errorf("Path mismatch: got %s, want %s", path, expected)
	}
}

func TestStateDigest(t *testing.T) {
	a := testSnapshot()
	b := testSnapshot()

	// Order of entities does not matter.
	b.Creatures[0], b.Creatures[1] = b.Creatures[1], b.Creatures[0]
	if StateDigest(a) != StateDigest(b) {
		t.Error("digest depends on creature order")
	}

	// Presentation-only fields do not matter.
	b.Tiles = nil
	b.Bookmark = nil
	b.Creatures[1].Lifetime = nil
	if StateDigest(a) != StateDigest(b) {
		t.Error("digest depends on presentation fields")
	}

	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{"tick", func(s *Snapshot) { s.Tick++ }},
		{"calories", func(s *Snapshot) { s.Creatures[0].Calories-- }},
		{"position", func(s *Snapshot) { s.Creatures[1].X = 0 }},
		{"path", func(s *Snapshot) { s.Creatures[0].Path = s.Creatures[0].Path[1:] }},
		{"plant", func(s *Snapshot) { s.Plants[0].Harvestable = false }},
		{"band", func(s *Snapshot) { s.BandCenter.X = 1.75 }},
	}
	want := StateDigest(a)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSnapshot()
			tt.mutate(s)
			if StateDigest(s) == want {
				t.Errorf("digest unchanged after %s mutation", tt.name)
			}
		})
	}
}
