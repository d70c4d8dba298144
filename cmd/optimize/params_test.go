package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-9 {
			t.Errorf("%s: round trip = %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestDefaultsMatchEmbeddedConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s default = %v, config has %v", spec.Path, spec.Default, got[i])
		}
	}
}

func TestClamp(t *testing.T) {
	pv := NewParamVector()
	low := make([]float64, pv.Dim())
	high := make([]float64, pv.Dim())
	for i := range low {
		low[i] = -1e6
		high[i] = 1e6
	}

	lo, hi := pv.Clamp(low), pv.Clamp(high)
	for i, spec := range pv.Specs {
		if lo[i] != spec.Min {
			t.Errorf("%s clamp low = %v, want %v", spec.Name, lo[i], spec.Min)
		}
		if hi[i] != spec.Max {
			t.Errorf("%s clamp high = %v, want %v", spec.Name, hi[i], spec.Max)
		}
	}
}

func TestApplyToConfig(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	values := pv.DefaultVector()
	idx := map[string]int{}
	for i, name := range pv.Names() {
		idx[name] = i
	}
	values[idx["pregnancy_duration"]] = 12.6
	values[idx["hunger_ratio"]] = 0.75
	values[idx["satiation_ratio"]] = 0.6
	values[idx["cost_ratio"]] = 0.3

	if err := pv.ApplyToConfig(cfg, values); err != nil {
		t.Fatalf("ApplyToConfig: %v", err)
	}
	if cfg.Reproduction.PregnancyDuration != 13 {
		t.Errorf("PregnancyDuration = %d, want 13", cfg.Reproduction.PregnancyDuration)
	}
	if cfg.Intent.SatiationRatio != 0.75 {
		t.Errorf("SatiationRatio = %v, want raised to 0.75", cfg.Intent.SatiationRatio)
	}
	if cfg.Derived.ProcreationCost != 30 {
		t.Errorf("ProcreationCost = %d, want 30", cfg.Derived.ProcreationCost)
	}
}

func TestComputeQuality(t *testing.T) {
	steady := []telemetry.WindowStats{
		{Creatures: 3},
		{Creatures: 10, Plants: 40, CaloriesP50: 60},
		{Creatures: 10, Plants: 40, CaloriesP50: 60},
		{Creatures: 10, Plants: 40, CaloriesP50: 60},
	}
	q := computeQuality(steady, 100)
	if q < 0.9 || q > 1 {
		t.Errorf("steady quality = %v, want in [0.9, 1]", q)
	}

	if got := computeQuality(steady[:1], 100); got != 0 {
		t.Errorf("warmup-only quality = %v, want 0", got)
	}

	swinging := []telemetry.WindowStats{
		{Creatures: 3},
		{Creatures: 2, Plants: 0, CaloriesP50: 10, OutsideBand: 2},
		{Creatures: 30, Plants: 0, CaloriesP50: 10, OutsideBand: 15},
	}
	if got := computeQuality(swinging, 100); got >= q {
		t.Errorf("swinging quality %v should be below steady %v", got, q)
	}
}

func TestComputeFitnessPrefersSurvival(t *testing.T) {
	if computeFitness(1000, 0) >= computeFitness(500, 1) {
		t.Error("longer survival should score lower fitness")
	}
	if computeFitness(1000, 1) >= computeFitness(1000, 0) {
		t.Error("higher quality should break survival ties")
	}
}

func TestDefaultPopulation(t *testing.T) {
	if got := defaultPopulation(11); got != 11 {
		t.Errorf("defaultPopulation(11) = %d, want 11", got)
	}
}
