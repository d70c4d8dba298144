package systems

import (
	"fmt"

	"github.com/pthm-cable/forage/components"
)

// TileKind identifies terrain type.
type TileKind uint8

const (
	TileGrass TileKind = iota
	TileForest
	TileHill
	TileWater
	TileRock
)

// Impassable marks a tile A* must never enter.
const Impassable = -1

func (k TileKind) String() string {
	switch k {
	case TileGrass:
		return "grass"
	case TileForest:
		return "forest"
	case TileHill:
		return "hill"
	case TileWater:
		return "water"
	case TileRock:
		return "rock"
	default:
		return "unknown"
	}
}

// Symbol returns the layout character used by ParseGrid and Rows.
func (k TileKind) Symbol() byte {
	switch k {
	case TileForest:
		return 'f'
	case TileHill:
		return 'h'
	case TileWater:
		return '~'
	case TileRock:
		return '#'
	default:
		return '.'
	}
}

// Tile is an immutable per-cell terrain record.
type Tile struct {
	Kind     TileKind
	MoveCost int
}

// Passable reports whether creatures may enter the tile.
func (t Tile) Passable() bool {
	return t.MoveCost >= 0
}

// TileOf returns the tile for a kind with its standard move cost.
func TileOf(kind TileKind) Tile {
	switch kind {
	case TileGrass:
		return Tile{Kind: kind, MoveCost: 1}
	case TileForest:
		return Tile{Kind: kind, MoveCost: 2}
	case TileHill:
		return Tile{Kind: kind, MoveCost: 3}
	default:
		return Tile{Kind: kind, MoveCost: Impassable}
	}
}

// Grid is the static tile layout. It is never modified after construction.
type Grid struct {
	width, height int
	tiles         []Tile
	minCost       int
}

// NewGrid creates a grid of grass.
func NewGrid(width, height int) *Grid {
	tiles := make([]Tile, width*height)
	for i := range tiles {
		tiles[i] = TileOf(TileGrass)
	}
	return newGrid(width, height, tiles)
}

// NewGridFromTiles builds a grid from rows of tiles (rows[y][x]).
func NewGridFromTiles(rows [][]Tile) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty tile layout")
	}
	width, height := len(rows[0]), len(rows)
	tiles := make([]Tile, 0, width*height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d tiles, want %d", y, len(row), width)
		}
		tiles = append(tiles, row...)
	}
	return newGrid(width, height, tiles), nil
}

// ParseGrid builds a grid from a text layout, one string per row:
// '.' grass, 'f' forest, 'h' hill, '~' water, '#' rock.
func ParseGrid(lines ...string) (*Grid, error) {
	rows := make([][]Tile, len(lines))
	for y, line := range lines {
		rows[y] = make([]Tile, 0, len(line))
		for x, ch := range line {
			kind, ok := kindBySymbol[ch]
			if !ok {
				return nil, fmt.Errorf("unknown tile %q at (%d,%d)", ch, x, y)
			}
			rows[y] = append(rows[y], TileOf(kind))
		}
	}
	return NewGridFromTiles(rows)
}

var kindBySymbol = map[rune]TileKind{
	'.': TileGrass,
	'f': TileForest,
	'h': TileHill,
	'~': TileWater,
	'#': TileRock,
}

// Rows encodes the grid in ParseGrid's layout format.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.width)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			buf[x] = g.tiles[y*g.width+x].Kind.Symbol()
		}
		rows[y] = string(buf)
	}
	return rows
}

// MustParseGrid is like ParseGrid but panics on error.
func MustParseGrid(lines ...string) *Grid {
	g, err := ParseGrid(lines...)
	if err != nil {
		panic(err)
	}
	return g
}

func newGrid(width, height int, tiles []Tile) *Grid {
	g := &Grid{width: width, height: height, tiles: tiles, minCost: 1}
	first := true
	for _, t := range tiles {
		if !t.Passable() {
			continue
		}
		if first || t.MoveCost < g.minCost {
			g.minCost = t.MoveCost
			first = false
		}
	}
	return g
}

// Width returns the grid width in cells.
func (g *Grid) Width() int { return g.width }

// Height returns the grid height in cells.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p components.Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// TileAt returns the tile at p, or false outside the grid.
func (g *Grid) TileAt(p components.Position) (Tile, bool) {
	if !g.InBounds(p) {
		return Tile{}, false
	}
	return g.tiles[p.Y*g.width+p.X], true
}

// Passable reports whether p is on the grid and enterable.
func (g *Grid) Passable(p components.Position) bool {
	t, ok := g.TileAt(p)
	return ok && t.Passable()
}

// neighborOffsets is the fixed N, E, S, W visiting order.
var neighborOffsets = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Neighbors returns the in-bounds orthogonal neighbours of p in N, E, S, W
// order. Passability is not filtered.
func (g *Grid) Neighbors(p components.Position) []components.Position {
	return g.NeighborsInto(make([]components.Position, 0, 4), p)
}

// NeighborsInto appends the neighbours of p to dst.
func (g *Grid) NeighborsInto(dst []components.Position, p components.Position) []components.Position {
	for _, off := range neighborOffsets {
		n := p.Add(off[0], off[1])
		if g.InBounds(n) {
			dst = append(dst, n)
		}
	}
	return dst
}

// PassableNeighbors returns the enterable neighbours of p in N, E, S, W order.
func (g *Grid) PassableNeighbors(p components.Position) []components.Position {
	out := make([]components.Position, 0, 4)
	for _, off := range neighborOffsets {
		n := p.Add(off[0], off[1])
		if g.Passable(n) {
			out = append(out, n)
		}
	}
	return out
}

// MinMoveCost returns the cheapest passable tile cost, the heuristic unit.
func (g *Grid) MinMoveCost() int {
	return g.minCost
}

// NearestPassable returns the closest passable cell to p by Manhattan
// rings, scanning each ring by ascending (y, x).
func (g *Grid) NearestPassable(p components.Position) (components.Position, bool) {
	maxR := g.width + g.height
	var found components.Position
	ok := false
	for r := 0; r <= maxR && !ok; r++ {
		forEachRingCell(p, r, func(c components.Position) bool {
			if g.Passable(c) {
				found, ok = c, true
				return false
			}
			return true
		})
	}
	return found, ok
}
