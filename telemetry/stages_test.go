package telemetry

import "testing"

func TestStageRegistryCoversPhases(t *testing.T) {
	r := NewStageRegistry()
	all := r.All()
	if len(all) != len(Phases) {
		t.Fatalf("registry has %d stages, want %d", len(all), len(Phases))
	}
	for i, phase := range Phases {
		if all[i].ID != phase {
			t.Errorf("stage %d = %q, want %q", i, all[i].ID, phase)
		}
		if r.Name(phase) == phase {
			t.Errorf("phase %q has no display name", phase)
		}
	}

	grouped := 0
	for _, category := range StageCategories {
		grouped += len(r.ByCategory(category))
	}
	if grouped != len(all) {
		t.Errorf("categories cover %d stages, want %d", grouped, len(all))
	}
}

func TestStageRegistryLookup(t *testing.T) {
	r := NewStageRegistry()
	if got := r.Name("unknown"); got != "unknown" {
		t.Errorf("Name(unknown) = %q, want fallback to ID", got)
	}

	r.Register(StageInfo{ID: PhaseIntents, Name: "Decide", Category: "ai"})
	if got := r.Name(PhaseIntents); got != "Decide" {
		t.Errorf("Name after re-register = %q, want Decide", got)
	}
	if n := len(r.All()); n != len(Phases) {
		t.Errorf("re-register changed stage count to %d", n)
	}
	if ai := r.ByCategory("ai"); len(ai) != 2 {
		t.Errorf("ByCategory(ai) = %d stages, want 2", len(ai))
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}
}
