// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Band center modes.
const (
	BandCenterAuto   = "auto"
	BandCenterManual = "manual"
)

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Terrain      TerrainConfig      `yaml:"terrain"`
	Population   PopulationConfig   `yaml:"population"`
	Food         FoodConfig         `yaml:"food"`
	Metabolism   MetabolismConfig   `yaml:"metabolism"`
	Intent       IntentConfig       `yaml:"intent"`
	Eating       EatingConfig       `yaml:"eating"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Band         BandConfig         `yaml:"band"`
	Simulation   SimulationConfig   `yaml:"simulation"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Observer     ObserverConfig     `yaml:"observer"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and the band center mode.
type WorldConfig struct {
	Width          int    `yaml:"width"`  // Grid width in cells
	Height         int    `yaml:"height"` // Grid height in cells
	BandCenterMode string `yaml:"band_center_mode"`
	BandCenterX    int    `yaml:"band_center_x"` // Used when band_center_mode = manual
	BandCenterY    int    `yaml:"band_center_y"`
}

// TerrainConfig holds noise thresholds for the terrain generator.
// Noise is normalized to [0,1]; a cell is water below WaterThreshold,
// rock above RockThreshold, and hill/forest in the bands between.
type TerrainConfig struct {
	Enabled         bool    `yaml:"enabled"` // false = all grass
	Scale           float64 `yaml:"scale"`   // Base noise frequency per cell
	Octaves         int     `yaml:"octaves"`
	Lacunarity      float64 `yaml:"lacunarity"`
	Gain            float64 `yaml:"gain"`
	WaterThreshold  float64 `yaml:"water_threshold"`
	ForestThreshold float64 `yaml:"forest_threshold"`
	HillThreshold   float64 `yaml:"hill_threshold"`
	RockThreshold   float64 `yaml:"rock_threshold"`
}

// PlacementConfig pins a starting creature to a cell.
type PlacementConfig struct {
	X        int `yaml:"x"`
	Y        int `yaml:"y"`
	Calories int `yaml:"calories"`
}

// PopulationConfig holds starting population parameters.
type PopulationConfig struct {
	Initial         int               `yaml:"initial"` // Total starting creatures, placements included
	Placements      []PlacementConfig `yaml:"placements"`
	InitialCalories int               `yaml:"initial_calories"`
	MaxCalories     int               `yaml:"max_calories"`
}

// FoodConfig holds plant parameters.
type FoodConfig struct {
	Initial      int     `yaml:"initial"`
	Nutrition    int     `yaml:"nutrition"`
	SpreadChance float64 `yaml:"spread_chance"` // Per plant per tick
	MaxPlants    int     `yaml:"max_plants"`
}

// MetabolismConfig holds calorie costs.
type MetabolismConfig struct {
	LiveCost int `yaml:"live_cost"` // Burned by every creature every tick
	MoveCost int `yaml:"move_cost"` // Multiplied by the entered tile's move cost
	WorkCost int `yaml:"work_cost"` // Burned per tick of eating
}

// IntentConfig holds intent selection thresholds.
type IntentConfig struct {
	HungerRatio      float64 `yaml:"hunger_ratio"`    // Seek food below Max * this
	SatiationRatio   float64 `yaml:"satiation_ratio"` // Procreate above Max * this
	FoodSearchRadius int     `yaml:"food_search_radius"`
	MateSearchRadius int     `yaml:"mate_search_radius"`
}

// EatingConfig holds eat action parameters.
type EatingConfig struct {
	WorkPerTick  int `yaml:"work_per_tick"`
	WorkRequired int `yaml:"work_required"`
}

// ReproductionConfig holds procreation and pregnancy parameters.
type ReproductionConfig struct {
	CostRatio         float64 `yaml:"cost_ratio"` // Parent pays Max * this
	PregnancyDuration int     `yaml:"pregnancy_duration"`
	ChildCalories     int     `yaml:"child_calories"`
}

// BandConfig holds band cohesion parameters.
type BandConfig struct {
	Radius int `yaml:"radius"` // Manhattan distance from the band center
}

// SimulationConfig holds tick scheduling parameters.
type SimulationConfig struct {
	TickRateHz     float64 `yaml:"tick_rate_hz"` // 0 = as fast as possible
	StepsPerUpdate int     `yaml:"steps_per_update"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowTicks    int `yaml:"stats_window_ticks"`
	BookmarkHistorySize int `yaml:"bookmark_history_size"`
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// ObserverConfig holds websocket observer parameters.
type ObserverConfig struct {
	Addr       string `yaml:"addr"` // Empty = observer disabled
	MaxClients int    `yaml:"max_clients"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	HungerCalories    int // Population.MaxCalories * Intent.HungerRatio
	SatiationCalories int // Population.MaxCalories * Intent.SatiationRatio
	ProcreationCost   int // Population.MaxCalories * Reproduction.CostRatio
	ManualBandCenter  bool
	TickInterval      float64 // Seconds per tick, 0 when unthrottled
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg, err := Defaults()
	if err != nil {
		return nil, err
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		var overlay struct {
			Population struct {
				Placements []PlacementConfig `yaml:"placements"`
			} `yaml:"population"`
		}
		if err := yaml.Unmarshal(data, &overlay); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		// Placements the file names are validated as written; default ones
		// that no longer fit a resized world are dropped.
		if overlay.Population.Placements == nil {
			cfg.dropOutsidePlacements()
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Defaults returns the embedded default configuration without derived values.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// dropOutsidePlacements removes placements that fall outside the world.
func (c *Config) dropOutsidePlacements() {
	kept := c.Population.Placements[:0]
	for _, p := range c.Population.Placements {
		if c.World.contains(p.X, p.Y) {
			kept = append(kept, p)
			continue
		}
		slog.Warn("dropping default placement outside the world",
			"x", p.X, "y", p.Y, "width", c.World.Width, "height", c.World.Height)
	}
	c.Population.Placements = kept
}

func (w WorldConfig) contains(x, y int) bool {
	return x >= 0 && x < w.Width && y >= 0 && y < w.Height
}

// Finalize validates the configuration and recomputes derived values.
// Call it again after editing a Config in place.
func (c *Config) Finalize() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size %dx%d must be positive", c.World.Width, c.World.Height)
	}
	switch c.World.BandCenterMode {
	case "", BandCenterAuto, BandCenterManual:
	default:
		return fmt.Errorf("unknown band_center_mode %q", c.World.BandCenterMode)
	}
	if c.Population.MaxCalories <= 0 {
		return fmt.Errorf("population.max_calories must be positive")
	}
	if c.Eating.WorkPerTick <= 0 || c.Eating.WorkRequired <= 0 {
		return fmt.Errorf("eating work_per_tick and work_required must be positive")
	}
	if c.Reproduction.PregnancyDuration <= 0 {
		return fmt.Errorf("reproduction.pregnancy_duration must be positive")
	}
	if c.Intent.HungerRatio > c.Intent.SatiationRatio {
		return fmt.Errorf("intent.hunger_ratio %.2f exceeds satiation_ratio %.2f",
			c.Intent.HungerRatio, c.Intent.SatiationRatio)
	}
	for i, p := range c.Population.Placements {
		if !c.World.contains(p.X, p.Y) {
			return fmt.Errorf("placement %d at (%d,%d) is outside the world", i, p.X, p.Y)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	maxCal := float64(c.Population.MaxCalories)
	c.Derived.HungerCalories = int(maxCal * c.Intent.HungerRatio)
	c.Derived.SatiationCalories = int(maxCal * c.Intent.SatiationRatio)
	c.Derived.ProcreationCost = int(maxCal * c.Reproduction.CostRatio)
	c.Derived.ManualBandCenter = c.World.BandCenterMode == BandCenterManual

	if c.Simulation.StepsPerUpdate < 1 {
		c.Simulation.StepsPerUpdate = 1
	}
	c.Derived.TickInterval = 0
	if c.Simulation.TickRateHz > 0 {
		c.Derived.TickInterval = 1.0 / c.Simulation.TickRateHz
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Population.Placements = append([]PlacementConfig(nil), c.Population.Placements...)
	return &cp
}
