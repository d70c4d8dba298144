package main

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/viewer"
)

// slider is one adjustable terrain parameter.
type slider struct {
	label    string
	min, max float64
	step     float64
	format   string
	field    func(*config.TerrainConfig) *float64
}

var sliders = []slider{
	{"Scale", 0.01, 0.5, 0.01, "%.2f", func(c *config.TerrainConfig) *float64 { return &c.Scale }},
	{"Lacunarity", 1.5, 4.0, 0.1, "%.1f", func(c *config.TerrainConfig) *float64 { return &c.Lacunarity }},
	{"Gain", 0.2, 0.9, 0.05, "%.2f", func(c *config.TerrainConfig) *float64 { return &c.Gain }},
	{"Water <", 0, 1, 0.01, "%.2f", func(c *config.TerrainConfig) *float64 { return &c.WaterThreshold }},
	{"Forest >=", 0, 1, 0.01, "%.2f", func(c *config.TerrainConfig) *float64 { return &c.ForestThreshold }},
	{"Hill >=", 0, 1, 0.01, "%.2f", func(c *config.TerrainConfig) *float64 { return &c.HillThreshold }},
	{"Rock >=", 0, 1, 0.01, "%.2f", func(c *config.TerrainConfig) *float64 { return &c.RockThreshold }},
}

// Rows after the float sliders.
const (
	rowOctaves = iota + 100
	rowSeed
)

// preview holds the editor state.
type preview struct {
	screen tcell.Screen
	base   config.TerrainConfig
	cfg    config.TerrainConfig
	width  int
	height int
	seed   int64

	selected int
	grid     *systems.Grid
	status   string
	save     func([]byte) error
}

func newPreview(screen tcell.Screen, cfg config.TerrainConfig, width, height int, seed int64) *preview {
	cfg.Enabled = true
	p := &preview{screen: screen, base: cfg, cfg: cfg, width: width, height: height, seed: seed}
	p.regenerate()
	return p
}

// rows returns the editable row count: sliders, octaves and seed.
func (p *preview) rows() int {
	return len(sliders) + 2
}

func (p *preview) rowKind(i int) int {
	switch i {
	case len(sliders):
		return rowOctaves
	case len(sliders) + 1:
		return rowSeed
	}
	return i
}

func (p *preview) regenerate() {
	p.grid = systems.GenerateTerrain(p.cfg, p.width, p.height, p.seed)
}

// adjust moves the selected parameter by dir steps.
func (p *preview) adjust(dir int) {
	switch k := p.rowKind(p.selected); k {
	case rowOctaves:
		p.cfg.Octaves = max(1, min(p.cfg.Octaves+dir, 8))
	case rowSeed:
		p.seed += int64(dir)
	default:
		s := sliders[k]
		v := s.field(&p.cfg)
		*v = max(s.min, min(*v+float64(dir)*s.step, s.max))
	}
	p.regenerate()
}

// handleKey applies one key press. It returns false to quit.
func (p *preview) handleKey(ev *tcell.EventKey) bool {
	step := 1
	if ev.Modifiers()&tcell.ModShift != 0 {
		step = 10
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		p.selected = (p.selected + p.rows() - 1) % p.rows()
	case tcell.KeyDown:
		p.selected = (p.selected + 1) % p.rows()
	case tcell.KeyLeft:
		p.adjust(-step)
	case tcell.KeyRight:
		p.adjust(step)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'r':
			p.seed = rand.Int63n(100000)
			p.regenerate()
		case 'R':
			p.cfg = p.base
			p.regenerate()
		case 'w':
			p.write()
		}
	}
	return true
}

func (p *preview) write() {
	data, err := p.yaml()
	if err == nil && p.save != nil {
		err = p.save(data)
	}
	if err != nil {
		p.status = "write failed: " + err.Error()
		return
	}
	p.status = "terrain section written"
}

// yaml renders the terrain section for pasting into a config file.
func (p *preview) yaml() ([]byte, error) {
	return yaml.Marshal(struct {
		Terrain config.TerrainConfig `yaml:"terrain"`
	}{p.cfg})
}

// terrainStats summarizes a generated grid.
type terrainStats struct {
	counts        map[systems.TileKind]int
	passable      int
	largestRegion int
}

func computeStats(g *systems.Grid) terrainStats {
	st := terrainStats{counts: make(map[systems.TileKind]int)}
	seen := make(map[components.Position]bool)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			pos := components.Position{X: x, Y: y}
			tile, _ := g.TileAt(pos)
			st.counts[tile.Kind]++
			if !g.Passable(pos) {
				continue
			}
			st.passable++
			if !seen[pos] {
				st.largestRegion = max(st.largestRegion, floodFill(g, pos, seen))
			}
		}
	}
	return st
}

// floodFill marks the passable region containing start and returns its size.
func floodFill(g *systems.Grid, start components.Position, seen map[components.Position]bool) int {
	queue := []components.Position{start}
	seen[start] = true
	n := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n++
		for _, nb := range g.PassableNeighbors(cur) {
			if !seen[nb] {
				seen[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	return n
}

func (p *preview) draw() {
	p.screen.Clear()
	for y := 0; y < p.grid.Height(); y++ {
		for x := 0; x < p.grid.Width(); x++ {
			tile, _ := p.grid.TileAt(components.Position{X: x, Y: y})
			r, style := viewer.TileGlyph(tile.Kind)
			p.screen.SetContent(x*2, y, r, nil, style)
		}
	}

	x0 := p.grid.Width()*2 + 2
	y := 0
	p.text(x0, y, "Terrain Parameters", tcell.StyleDefault.Bold(true))
	y += 2
	for i := 0; i < p.rows(); i++ {
		style := tcell.StyleDefault
		if i == p.selected {
			style = style.Reverse(true)
		}
		p.text(x0, y, p.rowText(i), style)
		y++
	}

	st := computeStats(p.grid)
	total := p.grid.Width() * p.grid.Height()
	y++
	for _, k := range []systems.TileKind{systems.TileGrass, systems.TileForest, systems.TileHill, systems.TileWater, systems.TileRock} {
		p.text(x0, y, fmt.Sprintf("%-7s %5.1f%%", k, pct(st.counts[k], total)), tcell.StyleDefault)
		y++
	}
	p.text(x0, y, fmt.Sprintf("Passable %5.1f%%  largest region %5.1f%%", pct(st.passable, total), pct(st.largestRegion, max(st.passable, 1))), tcell.StyleDefault)
	y += 2
	p.text(x0, y, "up/down select  left/right adjust  r seed  R reset  w write  q quit", tcell.StyleDefault.Dim(true))
	if p.status != "" {
		p.text(x0, y+1, p.status, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	p.screen.Show()
}

func (p *preview) rowText(i int) string {
	switch k := p.rowKind(i); k {
	case rowOctaves:
		return fmt.Sprintf("%-11s %d", "Octaves", p.cfg.Octaves)
	case rowSeed:
		return fmt.Sprintf("%-11s %d", "Seed", p.seed)
	default:
		s := sliders[k]
		return fmt.Sprintf("%-11s "+s.format, s.label, *s.field(&p.cfg))
	}
}

func (p *preview) text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		p.screen.SetContent(x+i, y, r, nil, style)
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

var tileColors = map[systems.TileKind]color.RGBA{
	systems.TileGrass:  {R: 110, G: 170, B: 70, A: 255},
	systems.TileForest: {R: 30, G: 100, B: 40, A: 255},
	systems.TileHill:   {R: 150, G: 130, B: 80, A: 255},
	systems.TileWater:  {R: 40, G: 80, B: 170, A: 255},
	systems.TileRock:   {R: 110, G: 110, B: 110, A: 255},
}

// renderImage draws the grid with cell x cell pixels per tile.
func renderImage(g *systems.Grid, cell int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width()*cell, g.Height()*cell))
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			tile, _ := g.TileAt(components.Position{X: x, Y: y})
			c := tileColors[tile.Kind]
			for py := 0; py < cell; py++ {
				for px := 0; px < cell; px++ {
					img.SetRGBA(x*cell+px, y*cell+py, c)
				}
			}
		}
	}
	return img
}
