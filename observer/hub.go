package observer

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/pthm-cable/forage/telemetry"
)

// ErrFull is returned when the hub is at its client limit.
var ErrFull = errors.New("observer: too many clients")

// client is one subscriber's outbound queue.
type client struct {
	out   chan []byte
	every int
}

// Hub fans encoded frames out to subscribers. Publish never blocks: a
// client whose queue is full misses the frame.
type Hub struct {
	mu         sync.Mutex
	clients    map[string]*client
	maxClients int
	dropped    uint64
}

// NewHub creates a hub. maxClients <= 0 means unlimited.
func NewHub(maxClients int) *Hub {
	return &Hub{
		clients:    make(map[string]*client),
		maxClients: maxClients,
	}
}

func (h *Hub) join(id string, every int) (<-chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.maxClients > 0 && len(h.clients) >= h.maxClients {
		return nil, ErrFull
	}
	c := &client{out: make(chan []byte, 8), every: max(every, 1)}
	h.clients[id] = c
	return c.out, nil
}

func (h *Hub) leave(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		close(c.out)
		delete(h.clients, id)
	}
}

func (h *Hub) setEvery(id string, every int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		c.every = max(every, 1)
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns the number of frames skipped for slow clients.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Publish encodes snap once and queues it for every due subscriber.
func (h *Hub) Publish(snap *telemetry.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) == 0 {
		return nil
	}

	data, err := json.Marshal(Frame{Type: TypeTick, ProtocolVersion: Version, Snapshot: snap})
	if err != nil {
		return err
	}

	for _, c := range h.clients {
		if snap.Tick%uint64(c.every) != 0 {
			continue
		}
		select {
		case c.out <- data:
		default:
			h.dropped++
		}
	}
	return nil
}
