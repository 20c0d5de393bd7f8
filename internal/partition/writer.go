package partition

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"Go2FlowLens/internal/model"
)

// flowHeader is the column set every partition file carries. Flow keys and
// partition indices are derivable, so they are never persisted.
var flowHeader = []string{
	"src_ip", "dst_ip", "src_port", "dst_port",
	"protocol", "bytes", "packets", "timestamp",
}

// Writer materializes partitions as CSV files, one per partition, named
// <prefix>_1.csv through <prefix>_N.csv.
type Writer struct {
	Dir    string
	Prefix string
}

// NewWriter creates a writer rooted at dir. An empty prefix defaults to
// "part".
func NewWriter(dir, prefix string) *Writer {
	if prefix == "" {
		prefix = "part"
	}
	return &Writer{Dir: dir, Prefix: prefix}
}

// WriteAll writes every partition file and returns per-partition record
// counts. Each partition targets a distinct file, so the writes run
// concurrently. An empty partition still produces a header-only file, which
// keeps the file set aligned with the worker count downstream.
func (w *Writer) WriteAll(parts [][]model.FlowRecord) ([]int, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	counts := make([]int, len(parts))
	errs := make([]error, len(parts))

	var wg sync.WaitGroup
	wg.Add(len(parts))
	for i := range parts {
		go func(i int) {
			defer wg.Done()
			counts[i] = len(parts[i])
			errs[i] = w.writePartition(i, parts[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	for i, n := range counts {
		log.Printf("partition %d: %d records -> %s", i+1, n, w.Path(i))
	}
	return counts, nil
}

// Path returns the file path of partition i (0-based index, 1-based name).
func (w *Writer) Path(i int) string {
	return filepath.Join(w.Dir, fmt.Sprintf("%s_%d.csv", w.Prefix, i+1))
}

func (w *Writer) writePartition(i int, records []model.FlowRecord) error {
	path := w.Path(i)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create partition file '%s': %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(flowHeader); err != nil {
		return fmt.Errorf("failed to write header to '%s': %w", path, err)
	}
	for _, r := range records {
		row := []string{
			r.SrcIP,
			r.DstIP,
			strconv.FormatUint(uint64(r.SrcPort), 10),
			strconv.FormatUint(uint64(r.DstPort), 10),
			strconv.FormatUint(uint64(r.Protocol), 10),
			strconv.FormatInt(r.Bytes, 10),
			strconv.FormatInt(r.Packets, 10),
			strconv.FormatInt(r.Timestamp, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record to '%s': %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush '%s': %w", path, err)
	}
	return nil
}
