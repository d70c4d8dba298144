package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/game"
	"github.com/pthm-cable/forage/observer"
	"github.com/pthm-cable/forage/telemetry"
	"github.com/pthm-cable/forage/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without the terminal viewer")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "Log destination in viewer mode (empty = discard)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	tickLog := flag.String("tick-log", "", "Write per-tick digests to this .jsonl.zst file")
	observe := flag.String("observe", "", "Serve the websocket observer on this loopback address (overrides config)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Uint64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 0, "Simulation ticks per update call (0 = use config)")
	tickRate := flag.Float64("tick-rate", -1, "Ticks per second (0 = unthrottled, negative = use config)")
	pathWorkers := flag.Int("path-workers", 0, "Path planning goroutines (0 = GOMAXPROCS)")

	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}

	// The viewer owns the terminal, so its logs go to a file or nowhere
	var logOut io.Writer = os.Stdout
	if !*headless {
		logOut = io.Discard
		if *logFile != "" {
			f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				slog.Error("failed to open log file", "error", err)
				os.Exit(1)
			}
			defer f.Close()
			logOut = f
		}
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: level})))

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *tickRate >= 0 {
		cfg.Simulation.TickRateHz = *tickRate
	}
	if *observe != "" {
		cfg.Observer.Addr = *observe
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Collaborators that need the game are bound after it exists; the
	// game calls these hooks only from Update.
	var srv *observer.Server
	var view *viewer.Viewer

	opts := game.Options{
		Seed:           rngSeed,
		Config:         cfg,
		LogStats:       *logStats,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		TickLogPath:    *tickLog,
		StepsPerUpdate: *stepsPerUpdate,
		PathWorkers:    *pathWorkers,
		StatsCallback: func(stats telemetry.WindowStats) {
			if view != nil {
				view.OnStats(stats)
			}
		},
		OnTick: func(snap *telemetry.Snapshot) {
			if srv != nil {
				srv.Publish(snap)
			}
		},
	}

	g := game.NewGameWithOptions(opts)
	defer g.Unload()

	listenErr := make(chan error, 1)
	if addr := cfg.Observer.Addr; addr != "" {
		var err error
		srv, err = observer.NewServer(g, observer.Bootstrap(g), cfg.Observer.MaxClients)
		if err != nil {
			slog.Error("failed to create observer", "error", err)
			os.Exit(1)
		}
		go func() {
			listenErr <- srv.ListenAndServe(ctx, addr)
		}()
	}

	slog.Info("starting simulation",
		"seed", rngSeed,
		"headless", *headless,
		"max_ticks", *maxTicks,
		"tick_rate_hz", cfg.Simulation.TickRateHz,
		"observer", cfg.Observer.Addr,
	)

	var err error
	if *headless {
		err = runHeadless(ctx, g, *maxTicks, srv != nil, listenErr)
	} else {
		err = runViewer(ctx, g, *maxTicks, &view, listenErr)
	}
	if err != nil {
		slog.Error("simulation stopped", "tick", g.Tick(), "error", err)
		g.Unload()
		os.Exit(1)
	}
	slog.Info("simulation finished", "tick", g.Tick(), "population", g.Population())
}

// runHeadless advances the game until maxTicks, cancellation or a listener
// failure. With an observer attached it paces ticks at the configured rate
// and keeps draining control commands while paused.
func runHeadless(ctx context.Context, g *game.Game, maxTicks uint64, observed bool, listenErr <-chan error) error {
	var pace <-chan time.Time
	if interval := g.Config().Derived.TickInterval; observed && interval > 0 {
		t := time.NewTicker(time.Duration(interval * float64(time.Second)))
		defer t.Stop()
		pace = t.C
	} else if observed {
		// Unthrottled, but yield often enough to see PAUSE
		t := time.NewTicker(time.Millisecond)
		defer t.Stop()
		pace = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-listenErr:
			if err != nil {
				return err
			}
		default:
		}

		if pace != nil {
			select {
			case <-ctx.Done():
				return nil
			case err := <-listenErr:
				if err != nil {
					return err
				}
			case <-pace:
			}
		}

		g.UpdateHeadless()

		if maxTicks > 0 && g.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
}

// runViewer presents the game in the terminal until the user quits.
func runViewer(ctx context.Context, g *game.Game, maxTicks uint64, view **viewer.Viewer, listenErr <-chan error) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	*view = viewer.New(screen, g, viewer.Options{MaxTicks: maxTicks})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failed := make(chan error, 1)
	go func() {
		select {
		case err := <-listenErr:
			if err != nil {
				failed <- err
				cancel()
			}
		case <-ctx.Done():
		}
	}()

	if err := (*view).Run(ctx); err != nil {
		return err
	}
	select {
	case err := <-failed:
		return err
	default:
		return nil
	}
}
