// query.go implements the administrative read surface over accumulated audit
// partitions. It is a filtered aggregation over the line-delimited partition
// files — there is no separate store or index. Result sets are newest-first
// and paginated; a line that fails to parse is skipped rather than failing
// the whole query, since partitions may contain a torn tail line after an
// unclean shutdown.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// QueryFilter narrows a partition scan. Zero values mean "no constraint".
type QueryFilter struct {
	From      time.Time
	To        time.Time
	EventType EventType
	ActorID   string
	Severity  Severity
	Limit     int
	Offset    int
}

// DefaultQueryLimit caps page size when the caller does not specify one.
const DefaultQueryLimit = 50

// Reader scans audit partitions produced by a Writer over the same directory.
// Readers and the Writer may operate concurrently; no read-after-write
// consistency is promised for the active partition.
type Reader struct {
	dir string
}

// NewReader creates a Reader over the given log directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Query returns the records matching filter, newest first, along with the
// total match count before pagination.
func (r *Reader) Query(filter QueryFilter) ([]StoredRecord, int, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	w := &Writer{dir: r.dir}
	files, err := w.listPartitions()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit partitions: %w", err)
	}

	// Partition dates bound record timestamps, so whole files outside the
	// requested window are skipped without being opened.
	var matches []StoredRecord
	for _, pf := range files {
		date, err := time.Parse(partitionDateLayout, pf.date)
		if err != nil {
			continue
		}
		if !filter.From.IsZero() && date.Before(filter.From.Truncate(24*time.Hour).AddDate(0, 0, -1)) {
			continue
		}
		if !filter.To.IsZero() && date.After(filter.To) {
			continue
		}

		recs, err := readPartition(pf.path, filter)
		if err != nil {
			if os.IsNotExist(err) {
				continue // raced with retention
			}
			return nil, 0, err
		}
		matches = append(matches, recs...)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	total := len(matches)
	if offset >= total {
		return []StoredRecord{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

// readPartition parses one partition file and returns the records matching
// filter in file order.
func readPartition(path string, filter QueryFilter) ([]StoredRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []StoredRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec StoredRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // torn or foreign line
		}
		if !matchRecord(rec, filter) {
			continue
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan partition %s: %w", path, err)
	}
	return recs, nil
}

func matchRecord(rec StoredRecord, filter QueryFilter) bool {
	if filter.EventType != "" && rec.EventType != filter.EventType {
		return false
	}
	if filter.ActorID != "" && rec.ActorID != filter.ActorID {
		return false
	}
	if filter.Severity != "" && rec.Severity != filter.Severity {
		return false
	}
	if !filter.From.IsZero() && rec.Timestamp.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && rec.Timestamp.After(filter.To) {
		return false
	}
	return true
}
