// Terrain preview tool: tune noise thresholds interactively and write the
// resulting terrain section as YAML.
//
// Usage: go run ./cmd/terrainpreview [-config base.yaml] [-seed 7] [-png out.png]
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/systems"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	seed := flag.Int64("seed", 12345, "Terrain seed")
	out := flag.String("out", "terrain.yaml", "Where 'w' writes the terrain section")
	pngPath := flag.String("png", "", "Write a PNG of the terrain and exit")
	cellPx := flag.Int("cell", 8, "Pixels per cell for -png")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if *pngPath != "" {
		terrain := cfg.Terrain
		terrain.Enabled = true
		grid := systems.GenerateTerrain(terrain, cfg.World.Width, cfg.World.Height, *seed)
		if err := writePNG(*pngPath, grid, *cellPx); err != nil {
			slog.Error("failed to write png", "error", err)
			os.Exit(1)
		}
		fmt.Printf("Terrain written to %s\n", *pngPath)
		return
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("failed to create screen", "error", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		slog.Error("failed to init screen", "error", err)
		os.Exit(1)
	}
	defer screen.Fini()

	p := newPreview(screen, cfg.Terrain, cfg.World.Width, cfg.World.Height, *seed)
	p.save = func(data []byte) error {
		return os.WriteFile(*out, data, 0644)
	}

	p.draw()
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if !p.handleKey(ev) {
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		}
		p.draw()
	}
}

func writePNG(path string, grid *systems.Grid, cell int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, renderImage(grid, max(cell, 1))); err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}
