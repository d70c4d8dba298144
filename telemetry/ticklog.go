package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// TickRecord is one line of the replay log.
type TickRecord struct {
	Tick       uint64    `json:"tick"`
	Population int       `json:"population"`
	Plants     int       `json:"plants"`
	BandCenter BandPoint `json:"band_center"`
	Digest     string    `json:"digest"`
	Events     []Event   `json:"events,omitempty"`
}

// TickLog writes zstd-compressed JSON lines, one record per tick.
type TickLog struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// OpenTickLog creates the log file at path. Returns nil if path is empty.
func OpenTickLog(path string) (*TickLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create tick log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create tick log: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &TickLog{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Write appends one record.
func (l *TickLog) Write(rec TickRecord) error {
	if l == nil {
		return nil
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

// Flush pushes buffered records into the compressor.
func (l *TickLog) Flush() error {
	if l == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		return err
	}
	return l.enc.Flush()
}

// Close flushes and closes the log.
func (l *TickLog) Close() error {
	if l == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		_ = l.enc.Close()
		_ = l.f.Close()
		return err
	}
	if err := l.enc.Close(); err != nil {
		_ = l.f.Close()
		return err
	}
	return l.f.Close()
}

// ReadTickLog decodes every record in a log written by TickLog.
func ReadTickLog(path string) ([]TickRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tick log: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var records []TickRecord
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var rec TickRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("decode tick %d: %w", len(records), err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read tick log: %w", err)
	}
	return records, nil
}
