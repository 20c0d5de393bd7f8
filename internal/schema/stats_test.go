package schema

import (
	"strings"
	"testing"

	"Go2FlowLens/internal/model"
)

func TestComputeStats(t *testing.T) {
	records := []model.FlowRecord{
		{SrcIP: "10.0.0.1", DstIP: "10.0.1.1", Protocol: 17, Bytes: 100},
		{SrcIP: "10.0.0.1", DstIP: "10.0.1.2", Protocol: 17, Bytes: 200},
		{SrcIP: "10.0.0.2", DstIP: "10.0.1.1", Protocol: 6, Bytes: 300},
		{SrcIP: "10.0.0.3", DstIP: "10.0.1.1", Protocol: 47, Bytes: 400},
	}

	stats := ComputeStats(records)

	if stats.Records != 4 {
		t.Errorf("Expected 4 records, got %d", stats.Records)
	}
	if stats.UniqueSrcIPs != 3 || stats.UniqueDstIPs != 2 {
		t.Errorf("Expected 3 src / 2 dst unique IPs, got %d / %d",
			stats.UniqueSrcIPs, stats.UniqueDstIPs)
	}
	if stats.TotalBytes != 1000 || stats.MeanBytes != 250 {
		t.Errorf("Expected total 1000 / mean 250 bytes, got %d / %.2f",
			stats.TotalBytes, stats.MeanBytes)
	}

	if len(stats.Protocols) != 3 {
		t.Fatalf("Expected 3 protocol shares, got %d", len(stats.Protocols))
	}
	top := stats.Protocols[0]
	if top.Name != "UDP" || top.Count != 2 || top.Percent != 50 {
		t.Errorf("Expected UDP share first with 2 (50%%), got %s %d (%.1f%%)",
			top.Name, top.Count, top.Percent)
	}
	if stats.Protocols[1].Name != "TCP" {
		t.Errorf("Expected TCP second, got %s", stats.Protocols[1].Name)
	}
	if stats.Protocols[2].Name != "Other(47)" {
		t.Errorf("Expected Other(47) last, got %s", stats.Protocols[2].Name)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.Records != 0 || stats.MeanBytes != 0 || len(stats.Protocols) != 0 {
		t.Errorf("Empty dataset should produce zero stats, got %+v", stats)
	}
}

func TestDatasetStats_Format(t *testing.T) {
	records := []model.FlowRecord{
		{SrcIP: "10.0.0.1", DstIP: "10.0.1.1", Protocol: 17, Bytes: 500},
		{SrcIP: "10.0.0.2", DstIP: "10.0.1.1", Protocol: 6, Bytes: 1500},
	}

	out := ComputeStats(records).Format("drdos_udp")

	for _, want := range []string{
		"=== Dataset Statistics (drdos_udp) ===",
		"Total records: 2",
		"Unique source IPs: 2",
		"Unique destination IPs: 1",
		"  UDP: 1 (50.0%)",
		"  TCP: 1 (50.0%)",
		"Average packet size: 1000.00 bytes",
		"Total traffic: 0.000 GB",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Stats output missing %q:\n%s", want, out)
		}
	}
}
