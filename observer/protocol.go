// Package observer streams simulation snapshots to websocket clients and
// forwards their pause, resume and step requests to the game loop.
package observer

import "github.com/pthm-cable/forage/telemetry"

// Version is the observer protocol version.
const Version = 1

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypePause     = "PAUSE"
	TypeResume    = "RESUME"
	TypeStep      = "STEP"
	TypeTick      = "TICK"
)

// Client -> Server. First message on the connection; may be re-sent to
// change the frame interval.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`

	// Every delivers one frame per this many ticks. Zero means every tick.
	Every int `json:"every,omitempty"`
}

// ControlMsg is any client message after the handshake.
type ControlMsg struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version,omitempty"`
	Every           int    `json:"every,omitempty"`
}

// Server -> Client. Sent after every tick the subscriber asked for.
type Frame struct {
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocol_version"`
	*telemetry.Snapshot
}

// BootstrapResponse is served by GET /bootstrap. Tiles are static, so
// frames omit them.
type BootstrapResponse struct {
	ProtocolVersion int         `json:"protocol_version"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
	Tiles           []string    `json:"tiles"`
}

// WorldParams describes the fixed world the frames refer to.
type WorldParams struct {
	Seed       int64   `json:"seed"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	TickRateHz float64 `json:"tick_rate_hz"`
	BandRadius int     `json:"band_radius"`
	BandMode   string  `json:"band_mode"`
}
