package systems

import (
	"container/heap"
	"errors"

	"github.com/pthm-cable/forage/components"
)

// ErrNoPath is returned when the goal cannot be reached.
var ErrNoPath = errors.New("no path found")

// AStarPlanner computes cost-optimal 4-connected paths over a Grid.
// Its search structures are reused between calls, so a planner must not
// be shared across goroutines.
type AStarPlanner struct {
	openHeap  *nodeHeap
	closedSet map[int]struct{}
	cameFrom  map[int]int
	gScore    map[int]int
	nextSeq   uint64

	neighbors []components.Position

	// Expanded counts nodes popped by the last FindPath call.
	Expanded int
}

// astarNode is a node in the A* search.
type astarNode struct {
	pos   components.Position
	id    int
	f, h  int
	seq   uint64 // insertion order, final tie-break
	index int    // heap index
}

// nodeHeap orders by f, then h, then insertion sequence.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	if h[i].h != h[j].h {
		return h[i].h < h[j].h
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// NewAStarPlanner creates a planner with empty reusable buffers.
func NewAStarPlanner() *AStarPlanner {
	return &AStarPlanner{
		openHeap:  &nodeHeap{},
		closedSet: make(map[int]struct{}, 256),
		cameFrom:  make(map[int]int, 256),
		gScore:    make(map[int]int, 256),
		neighbors: make([]components.Position, 0, 4),
	}
}

// FindPath returns the cells from the step after start up to and including
// goal. The cost of a path is the sum of the MoveCost of every entered
// tile. start == goal yields an empty path. ErrNoPath is returned when the
// goal is out of bounds, impassable, or disconnected from start.
func (a *AStarPlanner) FindPath(grid *Grid, start, goal components.Position) ([]components.Position, error) {
	a.Expanded = 0
	if !grid.InBounds(start) || !grid.Passable(goal) {
		return nil, ErrNoPath
	}
	if start == goal {
		return []components.Position{}, nil
	}

	// Clear reusable data structures
	*a.openHeap = (*a.openHeap)[:0]
	clear(a.closedSet)
	clear(a.cameFrom)
	clear(a.gScore)
	a.nextSeq = 0

	width := grid.Width()
	unit := grid.MinMoveCost()
	startID := start.Y*width + start.X
	goalID := goal.Y*width + goal.X

	a.gScore[startID] = 0
	a.push(start, startID, 0, components.Manhattan(start, goal)*unit)

	for a.openHeap.Len() > 0 {
		current := heap.Pop(a.openHeap).(*astarNode)
		if _, done := a.closedSet[current.id]; done {
			// Stale entry superseded by a cheaper push
			continue
		}
		a.Expanded++

		if current.id == goalID {
			return a.reconstructPath(width, startID, goalID), nil
		}
		a.closedSet[current.id] = struct{}{}

		g := a.gScore[current.id]
		a.neighbors = grid.NeighborsInto(a.neighbors[:0], current.pos)
		for _, n := range a.neighbors {
			tile, _ := grid.TileAt(n)
			if !tile.Passable() {
				continue
			}
			nid := n.Y*width + n.X
			if _, done := a.closedSet[nid]; done {
				continue
			}

			tentativeG := g + tile.MoveCost
			if existing, seen := a.gScore[nid]; seen && tentativeG >= existing {
				continue
			}

			a.cameFrom[nid] = current.id
			a.gScore[nid] = tentativeG
			a.push(n, nid, tentativeG, components.Manhattan(n, goal)*unit)
		}
	}

	return nil, ErrNoPath
}

// PathCost sums the move cost of every cell in path.
func PathCost(grid *Grid, path []components.Position) int {
	total := 0
	for _, p := range path {
		t, _ := grid.TileAt(p)
		total += t.MoveCost
	}
	return total
}

func (a *AStarPlanner) push(p components.Position, id, g, h int) {
	heap.Push(a.openHeap, &astarNode{pos: p, id: id, f: g + h, h: h, seq: a.nextSeq})
	a.nextSeq++
}

// reconstructPath builds the path from the cameFrom map, excluding start.
func (a *AStarPlanner) reconstructPath(width, startID, goalID int) []components.Position {
	var ids []int
	for current := goalID; current != startID; {
		ids = append(ids, current)
		prev, ok := a.cameFrom[current]
		if !ok {
			break
		}
		current = prev
	}

	path := make([]components.Position, len(ids))
	for i := range ids {
		id := ids[len(ids)-1-i]
		path[i] = components.Position{X: id % width, Y: id / width}
	}
	return path
}
