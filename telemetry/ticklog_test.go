package telemetry

import (
	"path/filepath"
	"testing"
)

func TestTickLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "ticks.jsonl.zst")
	log, err := OpenTickLog(path)
	if err != nil {
		t.Fatal(err)
	}

	for tick := uint64(1); tick <= 50; tick++ {
		rec := TickRecord{Tick: tick, Population: int(tick % 7), Digest: "d"}
		if tick == 10 {
			rec.Events = []Event{NewMealEvent(10, 3, 8, 20, 1, 1)}
		}
		if err := log.Write(rec); err != nil {
			t.Fatalf("Write(%d): %v", tick, err)
		}
	}
	if err := log.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := ReadTickLog(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 50 {
		t.Fatalf("read %d records, want 50", len(records))
	}
	if records[9].Tick != 10 || len(records[9].Events) != 1 || records[9].Events[0].Amount != 20 {
		t.Errorf("record 10 = %+v", records[9])
	}
}

func TestTickLogDisabled(t *testing.T) {
	log, err := OpenTickLog("")
	if err != nil || log != nil {
		t.Fatalf("OpenTickLog(\"\") = %v, %v", log, err)
	}
	// Nil log is a no-op.
	if err := log.Write(TickRecord{Tick: 1}); err != nil {
		t.Error(err)
	}
	if err := log.Close(); err != nil {
		t.Error(err)
	}
}
