// writer.go implements the date-partitioned append-only file sink for audit
// records, including daily rotation, count-based retention, and the on-demand
// age-based purge operation.
package audit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vitrine-app/vitrine-backend/internal/telemetry"
)

const (
	// partitionPrefix and partitionSuffix bracket the date in partition file
	// names: audit-2026-08-31.log.
	partitionPrefix = "audit-"
	partitionSuffix = ".log"

	// partitionDateLayout is the date portion of a partition file name.
	partitionDateLayout = "2006-01-02"

	// DefaultMaxPartitions is the number of daily partition files kept by
	// automatic retention when no explicit maximum is configured.
	DefaultMaxPartitions = 30
)

// Writer persists audit records to daily partition files under a single
// directory. It is safe for concurrent use; records appended by one Writer
// instance preserve call order. The active partition file handle is the only
// mutable shared state and is owned exclusively by the Writer — it is
// replaced, never concurrently mutated, during rotation.
//
// Writer is constructed explicitly and injected wherever audit emission is
// needed; there is no package-level singleton.
type Writer struct {
	dir           string
	maxPartitions int
	clock         func() time.Time

	mu      sync.Mutex
	file    *os.File
	curDate string // partition date of the open handle, "" when closed
}

// NewWriter creates a Writer that appends under dir, creating the directory
// if needed. maxPartitions bounds automatic retention; values <= 0 fall back
// to DefaultMaxPartitions. The partition file for the current day is created
// lazily on first append, not here.
func NewWriter(dir string, maxPartitions int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}
	if maxPartitions <= 0 {
		maxPartitions = DefaultMaxPartitions
	}
	return &Writer{
		dir:           dir,
		maxPartitions: maxPartitions,
		clock:         time.Now,
	}, nil
}

// Append writes one record to the current day's partition, rotating first if
// the calendar day has changed since the last append. Append never returns
// an error: a failing audit sink must not fail the business operation that
// triggered it, so write errors are reported through slog and swallowed.
// The unflushed tail of the file is the only acceptable data-loss window.
func (w *Writer) Append(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = w.clock()
	}
	if rec.ActorID == "" {
		rec.ActorID = "anonymous"
	}
	if rec.NetworkOrigin == "" {
		rec.NetworkOrigin = "unknown"
	}

	data, err := json.Marshal(rec)
	if err != nil {
		slog.Error("audit: failed to marshal record", "eventType", rec.EventType, "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureOpenLocked(); err != nil {
		slog.Error("audit: failed to open partition", "error", err)
		return
	}

	if _, err := w.file.Write(append(data, '\n')); err != nil {
		slog.Error("audit: failed to append record", "partition", w.curDate, "error", err)
		return
	}
	telemetry.AuditRecordsTotal.WithLabelValues(string(rec.EventType), string(rec.Severity)).Inc()
}

// ensureOpenLocked opens or rotates the active partition so that it matches
// the current date. Caller must hold w.mu.
func (w *Writer) ensureOpenLocked() error {
	today := w.clock().Format(partitionDateLayout)
	if w.file != nil && w.curDate == today {
		return nil
	}

	rotated := w.file != nil
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			slog.Warn("audit: failed to close previous partition", "partition", w.curDate, "error", err)
		}
		w.file = nil
	}

	path := filepath.Join(w.dir, partitionPrefix+today+partitionSuffix)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit partition %s: %w", path, err)
	}
	w.file = f
	w.curDate = today

	if rotated {
		w.applyRetentionLocked()
	}
	return nil
}

// Rotate closes the active partition if the calendar day has changed and
// opens the new day's file, then applies count-based retention. It is called
// by the rotation job on its fixed period and is a cheap no-op when the date
// has not changed. Retention also runs when no handle was open so a restart
// cannot indefinitely defer cleanup.
func (w *Writer) Rotate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	today := w.clock().Format(partitionDateLayout)
	if w.file != nil && w.curDate == today {
		return nil
	}
	if w.file == nil {
		// Nothing open yet; just prune.
		w.applyRetentionLocked()
		return nil
	}
	return w.ensureOpenLocked()
}

// applyRetentionLocked deletes the oldest partition files beyond the
// configured maximum count. Failures are isolated per file: one undeletable
// file does not abort cleanup of the remaining eligible files, and deleting
// a file already removed by a concurrent purge is a no-op.
func (w *Writer) applyRetentionLocked() {
	files, err := w.listPartitions()
	if err != nil {
		slog.Error("audit: retention scan failed", "dir", w.dir, "error", err)
		return
	}
	if len(files) <= w.maxPartitions {
		return
	}

	// Newest first by modification time; everything past the maximum goes.
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})
	for _, pf := range files[w.maxPartitions:] {
		if err := os.Remove(pf.path); err != nil && !os.IsNotExist(err) {
			slog.Warn("audit: failed to delete expired partition", "path", pf.path, "error", err)
			continue
		}
		telemetry.AuditPartitionsDeletedTotal.Inc()
		slog.Info("audit: deleted expired partition", "path", pf.path)
	}
}

// PurgeOlderThan deletes partition files whose partition date is more than
// days days in the past and returns the number of files removed. This is the
// on-demand administrative operation; it is age-based, unlike the count-based
// retention that runs automatically on rotation.
func (w *Writer) PurgeOlderThan(days int) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("purge window must be positive, got %d", days)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	files, err := w.listPartitions()
	if err != nil {
		return 0, fmt.Errorf("failed to scan audit partitions: %w", err)
	}

	cutoff := w.clock().AddDate(0, 0, -days)
	removed := 0
	for _, pf := range files {
		date, err := time.Parse(partitionDateLayout, pf.date)
		if err != nil {
			continue // not a partition file we own
		}
		if !date.Before(cutoff) {
			continue
		}
		if err := os.Remove(pf.path); err != nil {
			if os.IsNotExist(err) {
				continue // raced with retention, already gone
			}
			slog.Warn("audit: purge failed to delete partition", "path", pf.path, "error", err)
			continue
		}
		if pf.date == w.curDate && w.file != nil {
			// Should not happen with a sane window, but never leave a
			// handle pointing at an unlinked file.
			_ = w.file.Close()
			w.file = nil
			w.curDate = ""
		}
		telemetry.AuditPartitionsDeletedTotal.Inc()
		removed++
	}
	return removed, nil
}

// Close flushes and closes the active partition handle. It must be called
// before process exit; records appended after Close are reopened against a
// fresh handle, so Close is safe to call at any shutdown point.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		slog.Warn("audit: failed to sync partition on close", "partition", w.curDate, "error", err)
	}
	err := w.file.Close()
	w.file = nil
	w.curDate = ""
	return err
}

// partitionFile is one audit-YYYY-MM-DD.log file found in the log directory.
type partitionFile struct {
	path    string
	date    string
	modTime time.Time
}

// listPartitions returns every partition file currently in the log directory.
func (w *Writer) listPartitions() ([]partitionFile, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, err
	}

	var files []partitionFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, partitionPrefix) || !strings.HasSuffix(name, partitionSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // deleted between ReadDir and Info
		}
		files = append(files, partitionFile{
			path:    filepath.Join(w.dir, name),
			date:    strings.TrimSuffix(strings.TrimPrefix(name, partitionPrefix), partitionSuffix),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}
