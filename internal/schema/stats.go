package schema

import (
	"fmt"
	"sort"
	"strings"

	"Go2FlowLens/internal/model"
)

// ProtocolShare is one protocol's slice of the dataset.
type ProtocolShare struct {
	Protocol uint8
	Name     string
	Count    int
	Percent  float64
}

// DatasetStats summarizes a normalized dataset for operator output.
type DatasetStats struct {
	Records      int
	UniqueSrcIPs int
	UniqueDstIPs int
	Protocols    []ProtocolShare
	MeanBytes    float64
	TotalBytes   int64
}

// ComputeStats walks the records once and derives the summary. Protocol
// shares come back sorted by count, largest first.
func ComputeStats(records []model.FlowRecord) DatasetStats {
	stats := DatasetStats{Records: len(records)}

	srcs := make(map[string]struct{})
	dsts := make(map[string]struct{})
	protos := make(map[uint8]int)
	for _, r := range records {
		srcs[r.SrcIP] = struct{}{}
		dsts[r.DstIP] = struct{}{}
		protos[r.Protocol]++
		stats.TotalBytes += r.Bytes
	}
	stats.UniqueSrcIPs = len(srcs)
	stats.UniqueDstIPs = len(dsts)
	if len(records) > 0 {
		stats.MeanBytes = float64(stats.TotalBytes) / float64(len(records))
	}

	for p, count := range protos {
		share := ProtocolShare{Protocol: p, Name: protocolName(p), Count: count}
		if len(records) > 0 {
			share.Percent = 100 * float64(count) / float64(len(records))
		}
		stats.Protocols = append(stats.Protocols, share)
	}
	sort.Slice(stats.Protocols, func(i, j int) bool {
		if stats.Protocols[i].Count != stats.Protocols[j].Count {
			return stats.Protocols[i].Count > stats.Protocols[j].Count
		}
		return stats.Protocols[i].Protocol < stats.Protocols[j].Protocol
	})
	return stats
}

// Format renders the statistics block printed after normalization.
func (s DatasetStats) Format(label string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Dataset Statistics (%s) ===\n", label)
	fmt.Fprintf(&b, "Total records: %d\n", s.Records)
	fmt.Fprintf(&b, "Unique source IPs: %d\n", s.UniqueSrcIPs)
	fmt.Fprintf(&b, "Unique destination IPs: %d\n", s.UniqueDstIPs)
	fmt.Fprintf(&b, "Protocol distribution:\n")
	for _, p := range s.Protocols {
		fmt.Fprintf(&b, "  %s: %d (%.1f%%)\n", p.Name, p.Count, p.Percent)
	}
	fmt.Fprintf(&b, "Average packet size: %.2f bytes\n", s.MeanBytes)
	fmt.Fprintf(&b, "Total traffic: %.3f GB\n", float64(s.TotalBytes)/1e9)
	return b.String()
}

func protocolName(p uint8) string {
	switch p {
	case model.ProtocolTCP:
		return "TCP"
	case model.ProtocolUDP:
		return "UDP"
	default:
		return fmt.Sprintf("Other(%d)", p)
	}
}
