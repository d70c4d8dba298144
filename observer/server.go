package observer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/telemetry"
)

// Controller accepts control commands at the next tick boundary.
type Controller interface {
	Send(cmd game.Command) bool
}

// Server serves the bootstrap document and the websocket frame stream.
type Server struct {
	ctrl      Controller
	boot      BootstrapResponse
	hub       *Hub
	validator *validator

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
}

// NewServer creates an observer server. boot is served as-is; build it
// with Bootstrap before the game loop starts.
func NewServer(ctrl Controller, boot BootstrapResponse, maxClients int) (*Server, error) {
	v, err := newValidator()
	if err != nil {
		return nil, err
	}
	return &Server{
		ctrl:      ctrl,
		boot:      boot,
		hub:       NewHub(maxClients),
		validator: v,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback only, see isLoopbackRemote
		},
	}, nil
}

// Bootstrap describes g's static world. Call it from the game loop goroutine.
func Bootstrap(g *game.Game) BootstrapResponse {
	cfg := g.Config()
	mode := cfg.World.BandCenterMode
	if mode == "" {
		mode = config.BandCenterAuto
	}
	return BootstrapResponse{
		ProtocolVersion: Version,
		Tick:            g.Tick(),
		WorldParams: WorldParams{
			Seed:       g.Seed(),
			Width:      g.Grid().Width(),
			Height:     g.Grid().Height(),
			TickRateHz: cfg.Simulation.TickRateHz,
			BandRadius: cfg.Band.Radius,
			BandMode:   mode,
		},
		Tiles: g.Grid().Rows(),
	}
}

// Publish queues a tick frame for subscribers. Safe to pass as game.Options.OnTick.
func (s *Server) Publish(snap *telemetry.Snapshot) {
	if err := s.hub.Publish(snap); err != nil {
		slog.Error("failed to encode frame", "tick", snap.Tick, "error", err)
	}
}

// Clients returns the number of connected subscribers.
func (s *Server) Clients() int {
	return s.hub.Clients()
}

// Handler routes /bootstrap and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap", s.BootstrapHandler())
	mux.HandleFunc("/ws", s.WSHandler())
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx2)
	}()

	slog.Info("observer listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("observer listen: %w", err)
	}
	return nil
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.boot)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub SubscribeMsg
		if err := decode(s.validator.subscribe, msg, &sub); err != nil {
			closeWith(conn, websocket.ClosePolicyViolation, "expected SUBSCRIBE")
			return
		}
		if sub.ProtocolVersion != Version {
			closeWith(conn, websocket.ClosePolicyViolation, "unsupported protocol_version")
			return
		}

		sid := fmt.Sprintf("O%d", s.nextID.Add(1))
		out, err := s.hub.join(sid, sub.Every)
		if err != nil {
			closeWith(conn, websocket.CloseTryAgainLater, "server busy")
			return
		}
		slog.Debug("observer joined", "session", sid, "remote", r.RemoteAddr)

		// Writer goroutine; exits when the hub closes out.
		writeDone := make(chan struct{})
		go func() {
			defer close(writeDone)
			for b := range out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}()

		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			s.handleControl(sid, msg)
		}

		s.hub.leave(sid)
		slog.Debug("observer left", "session", sid)
		closeWith(conn, websocket.CloseNormalClosure, "bye")

		select {
		case <-writeDone:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// handleControl applies one post-handshake message. Invalid messages are
// dropped.
func (s *Server) handleControl(sid string, raw []byte) {
	var m ControlMsg
	if err := decode(s.validator.control, raw, &m); err != nil {
		slog.Debug("dropping invalid observer message", "session", sid, "error", err)
		return
	}

	var cmd game.Command
	switch m.Type {
	case TypeSubscribe:
		s.hub.setEvery(sid, m.Every)
		return
	case TypePause:
		cmd = game.CmdPause
	case TypeResume:
		cmd = game.CmdResume
	case TypeStep:
		cmd = game.CmdStep
	}
	if !s.ctrl.Send(cmd) {
		slog.Warn("control queue full, dropping command", "session", sid, "command", cmd)
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
