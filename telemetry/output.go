package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/forage/config"
)

// Files written under an output directory.
const (
	TelemetryFile = "telemetry.csv"
	PerfFile      = "perf.csv"
	BookmarksFile = "bookmarks.csv"
	EventsFile    = "events.csv"
	ConfigFile    = "config.yaml"
	LifetimesFile = "lifetimes.json"
)

// csvTable appends gocsv rows of one record type to a file. The header is
// written with the first batch.
type csvTable[T any] struct {
	name   string
	file   *os.File
	header bool
}

func openTable[T any](dir, name string) (*csvTable[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvTable[T]{name: name, file: f}, nil
}

func (t *csvTable[T]) append(rows ...T) error {
	if len(rows) == 0 {
		return nil
	}
	var err error
	if t.header {
		err = gocsv.MarshalWithoutHeaders(rows, t.file)
	} else {
		err = gocsv.Marshal(rows, t.file)
		t.header = err == nil
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.name, err)
	}
	return nil
}

func (t *csvTable[T]) close() error {
	if t == nil {
		return nil
	}
	return t.file.Close()
}

// OutputManager writes a run's CSV logs, config and lifetime dump to one
// directory. A nil manager discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvTable[WindowStats]
	perf      *csvTable[PerfStatsCSV]
	bookmarks *csvTable[Bookmark]
	events    *csvTable[Event]
}

// NewOutputManager creates dir and opens its CSV files. It returns nil
// when dir is empty.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openTable[WindowStats](dir, TelemetryFile); err != nil {
		return nil, err
	}
	if om.perf, err = openTable[PerfStatsCSV](dir, PerfFile); err == nil {
		if om.bookmarks, err = openTable[Bookmark](dir, BookmarksFile); err == nil {
			om.events, err = openTable[Event](dir, EventsFile)
		}
	}
	if err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the run's configuration.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry appends one stats window.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.append(stats)
}

// WritePerf appends the perf summary for the window ending at windowEnd.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd uint64) error {
	if om == nil {
		return nil
	}
	return om.perf.append(stats.ToCSV(windowEnd))
}

// WriteBookmark appends a detected bookmark.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.append(b)
}

// WriteEvents appends one tick's lifecycle events.
func (om *OutputManager) WriteEvents(events []Event) error {
	if om == nil {
		return nil
	}
	return om.events.append(events...)
}

// WriteLifetimes dumps the lifetime stats of creatures still alive.
func (om *OutputManager) WriteLifetimes(lt *LifetimeTracker) error {
	if om == nil || lt == nil {
		return nil
	}
	data, err := json.MarshalIndent(lt.All(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling lifetimes: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, LifetimesFile), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", LifetimesFile, err)
	}
	return nil
}

// Close closes every open file and reports the errors together.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.telemetry.close(),
		om.perf.close(),
		om.bookmarks.close(),
		om.events.close(),
	)
}
