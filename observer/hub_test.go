package observer

import (
	"errors"
	"testing"

	"github.com/pthm-cable/forage/telemetry"
)

func TestHubDropsForSlowClients(t *testing.T) {
	h := NewHub(0)
	out, err := h.join("a", 1)
	if err != nil {
		t.Fatal(err)
	}

	for tick := uint64(1); tick <= 10; tick++ {
		if err := h.Publish(&telemetry.Snapshot{Tick: tick}); err != nil {
			t.Fatal(err)
		}
	}

	if len(out) != cap(out) {
		t.Errorf("queued = %d, want %d", len(out), cap(out))
	}
	if got, want := h.Dropped(), uint64(10-cap(out)); got != want {
		t.Errorf("Dropped() = %d, want %d", got, want)
	}

	h.leave("a")
	n := 0
	for range out {
		n++
	}
	if n != 8 {
		t.Errorf("drained %d frames, want 8", n)
	}
	if h.Clients() != 0 {
		t.Errorf("Clients() = %d after leave", h.Clients())
	}
}

func TestHubLimit(t *testing.T) {
	h := NewHub(2)
	for _, id := range []string{"a", "b"} {
		if _, err := h.join(id, 0); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := h.join("c", 0); !errors.Is(err, ErrFull) {
		t.Errorf("third join err = %v, want ErrFull", err)
	}
	h.leave("a")
	if _, err := h.join("c", 0); err != nil {
		t.Errorf("join after leave: %v", err)
	}
}

func TestSchemasCompile(t *testing.T) {
	v, err := newValidator()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		msg     string
		control bool
		ok      bool
	}{
		{`{"type":"SUBSCRIBE","protocol_version":1}`, false, true},
		{`{"type":"SUBSCRIBE","protocol_version":1,"every":0}`, false, false},
		{`{"type":"PAUSE"}`, true, true},
		{`{"type":"RESUME","protocol_version":1}`, true, true},
		{`{"type":"TICK"}`, true, false},
	}
	for _, tt := range tests {
		s := v.subscribe
		if tt.control {
			s = v.control
		}
		var m ControlMsg
		err := decode(s, []byte(tt.msg), &m)
		if (err == nil) != tt.ok {
			t.Errorf("decode(%s) err = %v, want ok=%v", tt.msg, err, tt.ok)
		}
	}
}
