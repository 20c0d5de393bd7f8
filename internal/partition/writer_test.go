package partition

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/table"
)

func TestWriter_WriteAll(t *testing.T) {
	// 1. Two partitions, the second one empty
	parts := [][]model.FlowRecord{
		{
			{SrcIP: "10.0.0.1", DstIP: "10.0.1.1", SrcPort: 443, DstPort: 55001,
				Protocol: 6, Bytes: 1200, Packets: 3, Timestamp: 1700000000},
			{SrcIP: "10.0.0.1", DstIP: "10.0.1.1", SrcPort: 443, DstPort: 55001,
				Protocol: 6, Bytes: 800, Packets: 2, Timestamp: 1700000001},
		},
		nil,
	}

	tmpDir, err := os.MkdirTemp("", "partition_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// 2. Write, nested directory must be created on the fly
	w := NewWriter(filepath.Join(tmpDir, "data", "partitions"), "")
	counts, err := w.WriteAll(parts)
	if err != nil {
		t.Fatalf("WriteAll failed: %v", err)
	}
	if len(counts) != 2 || counts[0] != 2 || counts[1] != 0 {
		t.Errorf("Expected counts [2 0], got %v", counts)
	}

	// 3. Partition 1 reloads with the same records
	flows, err := table.LoadFlows(w.Path(0))
	if err != nil {
		t.Fatalf("Failed to reload partition 1: %v", err)
	}
	if len(flows) != 2 {
		t.Fatalf("Expected 2 records in partition 1, got %d", len(flows))
	}
	if flows[0] != parts[0][0] || flows[1] != parts[0][1] {
		t.Errorf("Reloaded records differ:\n%+v\n%+v", flows, parts[0])
	}

	// 4. Empty partition still produces a header-only file
	raw, err := os.ReadFile(w.Path(1))
	if err != nil {
		t.Fatalf("Failed to read partition 2: %v", err)
	}
	got := strings.TrimSpace(string(raw))
	want := "src_ip,dst_ip,src_port,dst_port,protocol,bytes,packets,timestamp"
	if got != want {
		t.Errorf("Empty partition file content %q, expected header %q", got, want)
	}
}

func TestWriteManifest(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "manifest_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	m := NewManifest("traffic.csv", []int{3, 0, 5})
	if m.RunID == "" {
		t.Fatalf("Manifest has no run ID")
	}
	if m.TotalRecords != 8 || m.Partitions != 3 {
		t.Errorf("Expected 8 records over 3 partitions, got %d over %d",
			m.TotalRecords, m.Partitions)
	}

	if err := WriteManifest(tmpDir, m); err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}

	loaded, err := ReadManifest(tmpDir)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if loaded.RunID != m.RunID || loaded.TotalRecords != 8 {
		t.Errorf("Reloaded manifest differs: %+v", loaded)
	}
	if len(loaded.RecordCounts) != 3 || loaded.RecordCounts[2] != 5 {
		t.Errorf("Reloaded record counts differ: %v", loaded.RecordCounts)
	}
}

func TestReadManifestMissing(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "manifest_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := ReadManifest(tmpDir); err == nil {
		t.Fatal("ReadManifest should fail when manifest.json is absent")
	}
}
