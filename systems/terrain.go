package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/forage/config"
)

// GenerateTerrain builds a grid from fractal simplex noise. The same seed
// and settings always produce the same layout. With terrain disabled the
// grid is all grass.
func GenerateTerrain(cfg config.TerrainConfig, width, height int, seed int64) *Grid {
	if !cfg.Enabled {
		return NewGrid(width, height)
	}

	noise := opensimplex.New(seed)
	octaves := cfg.Octaves
	if octaves < 1 {
		octaves = 1
	}

	tiles := make([]Tile, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := fractal(noise, float64(x), float64(y), cfg.Scale, octaves, cfg.Lacunarity, cfg.Gain)
			tiles[y*width+x] = TileOf(classify(cfg, v))
		}
	}
	return newGrid(width, height, tiles)
}

// fractal sums octaves of noise and normalizes the result to [0,1].
func fractal(noise opensimplex.Noise, x, y, scale float64, octaves int, lacunarity, gain float64) float64 {
	var sum, norm float64
	freq, amp := scale, 1.0
	for i := 0; i < octaves; i++ {
		sum += amp * noise.Eval2(x*freq, y*freq)
		norm += amp
		freq *= lacunarity
		amp *= gain
	}
	v := (sum/norm + 1) / 2
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func classify(cfg config.TerrainConfig, v float64) TileKind {
	switch {
	case v < cfg.WaterThreshold:
		return TileWater
	case v >= cfg.RockThreshold:
		return TileRock
	case v >= cfg.HillThreshold:
		return TileHill
	case v >= cfg.ForestThreshold:
		return TileForest
	default:
		return TileGrass
	}
}
