// Package record persists the most recent host observation as a small JSON
// document that is overwritten on every run.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/moby/sys/atomicwriter"

	"ipalert/internal/models"
)

// ErrRecordCorrupt is returned when a record file exists but cannot be parsed
var ErrRecordCorrupt = errors.New("record file is corrupt")

// fileRecord is the on-disk layout
type fileRecord struct {
	Hostname *string  `json:"hostname"`
	IP       *string  `json:"ip"`
	Time     *float64 `json:"time"` // epoch seconds
}

// File stores a HostRecord at a fixed path
type File struct {
	path string
}

// NewFile creates a record store backed by path
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the record location
func (f *File) Path() string {
	return f.path
}

// Load reads the persisted record. A missing file yields (nil, nil).
func (f *File) Load() (*models.HostRecord, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read record %s: %w", f.path, err)
	}

	var raw fileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRecordCorrupt, f.path, err)
	}
	if raw.Hostname == nil || raw.IP == nil || raw.Time == nil {
		return nil, fmt.Errorf("%w: %s: missing hostname, ip or time", ErrRecordCorrupt, f.path)
	}
	if math.IsNaN(*raw.Time) || math.IsInf(*raw.Time, 0) {
		return nil, fmt.Errorf("%w: %s: invalid time", ErrRecordCorrupt, f.path)
	}

	return &models.HostRecord{
		Hostname:  *raw.Hostname,
		IP:        *raw.IP,
		Timestamp: fromEpochSeconds(*raw.Time),
	}, nil
}

// Save overwrites the record file atomically, so an interrupted run never
// leaves a truncated record behind.
func (f *File) Save(rec models.HostRecord) error {
	seconds := toEpochSeconds(rec.Timestamp)
	data, err := json.Marshal(fileRecord{
		Hostname: &rec.Hostname,
		IP:       &rec.IP,
		Time:     &seconds,
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}

	if err := atomicwriter.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", f.path, err)
	}

	return nil
}

// Timestamps are kept at millisecond precision so they survive the float
// encoding unchanged.
func toEpochSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

func fromEpochSeconds(s float64) time.Time {
	return time.UnixMilli(int64(math.Round(s * 1000)))
}
