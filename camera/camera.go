// Package camera provides an integer viewport over the grid for the
// terminal viewer.
package camera

// Camera maps grid cells to terminal cells. The world is bounded, so the
// view is clamped to the grid instead of wrapping.
type Camera struct {
	// X, Y is the top-left visible grid cell
	X, Y int

	// Viewport dimensions in terminal cells
	ViewportW, ViewportH int

	// World dimensions in grid cells
	WorldW, WorldH int

	// CellW is the number of terminal columns per grid cell. Terminal
	// cells are roughly twice as tall as wide, so 2 keeps tiles square.
	CellW int
}

// New creates a camera centered on the world.
func New(viewportW, viewportH, worldW, worldH int) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		CellW:     2,
	}
	c.Reset()
	return c
}

// VisibleCells returns how many grid cells fit in the viewport.
func (c *Camera) VisibleCells() (w, h int) {
	return c.ViewportW / c.CellW, c.ViewportH
}

// WorldToScreen converts a grid cell to the terminal cell of its left
// column. ok is false when the cell is outside the viewport.
func (c *Camera) WorldToScreen(wx, wy int) (sx, sy int, ok bool) {
	sx = (wx - c.X) * c.CellW
	sy = wy - c.Y
	ok = sx >= 0 && sy >= 0 && sx+c.CellW <= c.ViewportW && sy < c.ViewportH
	return sx, sy, ok
}

// ScreenToWorld converts a terminal cell to the grid cell under it.
// ok is false outside the world or the viewport.
func (c *Camera) ScreenToWorld(sx, sy int) (wx, wy int, ok bool) {
	if sx < 0 || sy < 0 || sx >= c.ViewportW || sy >= c.ViewportH {
		return 0, 0, false
	}
	wx = c.X + sx/c.CellW
	wy = c.Y + sy
	ok = wx < c.WorldW && wy < c.WorldH
	return wx, wy, ok
}

// IsVisible reports whether a grid cell is on screen.
func (c *Camera) IsVisible(wx, wy int) bool {
	_, _, ok := c.WorldToScreen(wx, wy)
	return ok
}

// Resize updates the viewport and re-clamps the view.
func (c *Camera) Resize(viewportW, viewportH int) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.clampView()
}

// Pan moves the view by whole grid cells.
func (c *Camera) Pan(dx, dy int) {
	c.X += dx
	c.Y += dy
	c.clampView()
}

// CenterOn moves the view so the given cell is as close to the middle as
// the world edges allow.
func (c *Camera) CenterOn(wx, wy int) {
	w, h := c.VisibleCells()
	c.X = wx - w/2
	c.Y = wy - h/2
	c.clampView()
}

// Reset centers the view on the world.
func (c *Camera) Reset() {
	c.CenterOn(c.WorldW/2, c.WorldH/2)
}

// VisibleWorldBounds returns the visible grid cells as a half-open
// rectangle [minX, maxX) x [minY, maxY), clipped to the world.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY int) {
	w, h := c.VisibleCells()
	return c.X, c.Y, min(c.X+w, c.WorldW), min(c.Y+h, c.WorldH)
}

// clampView keeps the view inside the world. A world smaller than the
// viewport is pinned to the top-left.
func (c *Camera) clampView() {
	w, h := c.VisibleCells()
	c.X = clamp(c.X, 0, max(c.WorldW-w, 0))
	c.Y = clamp(c.Y, 0, max(c.WorldH-h, 0))
}

// clamp restricts a value to a range.
func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
