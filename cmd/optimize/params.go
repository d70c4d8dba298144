// Package main searches forage config parameters with CMA-ES for settings
// that keep the band alive and stable.
package main

import (
	"math"

	"github.com/pthm-cable/forage/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Integer bool    // Rounded before it is applied

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

func intParam(name, path string, lo, hi, def float64, field func(*config.Config) *int) ParamSpec {
	return ParamSpec{
		Name: name, Path: path, Min: lo, Max: hi, Default: def, Integer: true,
		get: func(c *config.Config) float64 { return float64(*field(c)) },
		set: func(c *config.Config, v float64) { *field(c) = int(math.Round(v)) },
	}
}

func floatParam(name, path string, lo, hi, def float64, field func(*config.Config) *float64) ParamSpec {
	return ParamSpec{
		Name: name, Path: path, Min: lo, Max: hi, Default: def,
		get: func(c *config.Config) float64 { return *field(c) },
		set: func(c *config.Config, v float64) { *field(c) = v },
	}
}

// NewParamVector creates the standard set of optimizable parameters.
// Grid size, starting population and band radius stay fixed.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Metabolism
			intParam("live_cost", "metabolism.live_cost", 1, 3, 1,
				func(c *config.Config) *int { return &c.Metabolism.LiveCost }),
			intParam("move_cost", "metabolism.move_cost", 0, 3, 1,
				func(c *config.Config) *int { return &c.Metabolism.MoveCost }),
			intParam("work_cost", "metabolism.work_cost", 0, 3, 1,
				func(c *config.Config) *int { return &c.Metabolism.WorkCost }),
			// Intent thresholds
			floatParam("hunger_ratio", "intent.hunger_ratio", 0.2, 0.8, 0.5,
				func(c *config.Config) *float64 { return &c.Intent.HungerRatio }),
			floatParam("satiation_ratio", "intent.satiation_ratio", 0.6, 1.0, 0.9,
				func(c *config.Config) *float64 { return &c.Intent.SatiationRatio }),
			// Eating
			intParam("work_required", "eating.work_required", 1, 6, 3,
				func(c *config.Config) *int { return &c.Eating.WorkRequired }),
			// Reproduction
			floatParam("cost_ratio", "reproduction.cost_ratio", 0.2, 0.8, 0.5,
				func(c *config.Config) *float64 { return &c.Reproduction.CostRatio }),
			intParam("pregnancy_duration", "reproduction.pregnancy_duration", 5, 60, 20,
				func(c *config.Config) *int { return &c.Reproduction.PregnancyDuration }),
			intParam("child_calories", "reproduction.child_calories", 20, 90, 50,
				func(c *config.Config) *int { return &c.Reproduction.ChildCalories }),
			// Food
			intParam("nutrition", "food.nutrition", 5, 50, 20,
				func(c *config.Config) *int { return &c.Food.Nutrition }),
			floatParam("spread_chance", "food.spread_chance", 0.001, 0.05, 0.01,
				func(c *config.Config) *float64 { return &c.Food.SpreadChance }),
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Names returns the parameter names in vector order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		names[i] = spec.Name
	}
	return names
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp bounds every value and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := math.Min(math.Max(v[i], spec.Min), spec.Max)
		if spec.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes parameter values into cfg and recomputes its
// derived values. Satiation is raised to the hunger ratio if the search
// crossed them.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, val := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, val)
	}
	if cfg.Intent.SatiationRatio < cfg.Intent.HungerRatio {
		cfg.Intent.SatiationRatio = cfg.Intent.HungerRatio
	}
	return cfg.Finalize()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
