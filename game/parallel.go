package game

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/systems"
)

// parallelThreshold is the minimum number of path requests to plan on the
// worker pool. Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 32

// pathRequest captures a travel action that needs a route.
type pathRequest struct {
	ID     uint64
	Start  components.Position
	Goal   components.Position
	Origin components.Intent
}

// pathResult is written by exactly one worker, at the request's index.
type pathResult struct {
	Path     []components.Position
	Err      error
	Expanded int // nodes the planner popped
}

// workChunk represents a range of requests for a worker to process.
type workChunk struct {
	start, end int
}

// parallelState holds the path planning worker pool. Each worker owns its
// planner; the grid is read-only during planning.
type parallelState struct {
	requests   []pathRequest
	results    []pathResult
	planners   []*systems.AStarPlanner
	numWorkers int

	// pooledTicks counts plan calls that ran on the worker pool.
	pooledTicks int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// newParallelState sizes the pool to workers, or GOMAXPROCS when workers < 1.
func newParallelState(workers int) *parallelState {
	numWorkers := workers
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	planners := make([]*systems.AStarPlanner, numWorkers)
	for i := range planners {
		planners[i] = systems.NewAStarPlanner()
	}
	return &parallelState{
		numWorkers: numWorkers,
		planners:   planners,
		requests:   make([]pathRequest, 0, 64),
		results:    make([]pathResult, 0, 64),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(grid *systems.Grid) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(grid, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *parallelState) worker(grid *systems.Grid, workerID int) {
	defer p.wg.Done()
	planner := p.planners[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.planChunk(grid, planner, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// plan computes a path for every queued request. Results land at the
// request's index, so the outcome does not depend on worker scheduling.
func (p *parallelState) plan(grid *systems.Grid) {
	n := len(p.requests)
	if cap(p.results) < n {
		p.results = make([]pathResult, n)
	}
	p.results = p.results[:n]
	if n == 0 {
		return
	}

	if n < parallelThreshold || p.numWorkers < 2 {
		p.planChunk(grid, p.planners[0], 0, n)
		return
	}

	if !p.running {
		p.startWorkers(grid)
	}
	p.pooledTicks++

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	// Dispatch chunks to workers
	chunksDispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{start: start, end: end}
		chunksDispatched++
	}

	// Wait for all chunks to complete
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
}

// planChunk plans requests [i0, i1) with a single planner.
func (p *parallelState) planChunk(grid *systems.Grid, planner *systems.AStarPlanner, i0, i1 int) {
	for i := i0; i < i1; i++ {
		req := &p.requests[i]
		path, err := planner.FindPath(grid, req.Start, req.Goal)
		p.results[i] = pathResult{Path: path, Err: err, Expanded: planner.Expanded}
	}
}
