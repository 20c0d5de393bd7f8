package partition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Manifest describes one partitioning run. It lands next to the partition
// files so downstream tooling can pick up the run without re-scanning them.
type Manifest struct {
	RunID        string `json:"run_id"`
	Input        string `json:"input"`
	Partitions   int    `json:"partitions"`
	RecordCounts []int  `json:"record_counts"`
	TotalRecords int    `json:"total_records"`
	CreatedAt    string `json:"created_at"`
}

// NewManifest builds a manifest with a fresh run ID.
func NewManifest(input string, counts []int) Manifest {
	total := 0
	for _, n := range counts {
		total += n
	}
	return Manifest{
		RunID:        uuid.New().String(),
		Input:        input,
		Partitions:   len(counts),
		RecordCounts: counts,
		TotalRecords: total,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// WriteManifest writes manifest.json into dir.
func WriteManifest(dir string, m Manifest) error {
	path := filepath.Join(dir, "manifest.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode manifest to json: %w", err)
	}
	return nil
}

// ReadManifest loads manifest.json from dir.
func ReadManifest(dir string) (Manifest, error) {
	path := filepath.Join(dir, "manifest.json")
	f, err := os.Open(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to open manifest file: %w", err)
	}
	defer f.Close()

	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m, nil
}
