package schema

import (
	"log"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/table"
)

// Normalizer turns a raw table with arbitrary column names into flow
// records. Every record comes out complete: roles with no matching column
// get synthesized values drawn from the normalizer's random source, so a
// degenerate input still yields a usable dataset.
type Normalizer struct {
	rules []Rule
	rng   *rand.Rand
	base  int64
}

// New builds a normalizer. seed pins the synthetic-value stream (0 draws a
// time-based seed); baseTime is the timestamp origin in unix seconds (<=0
// uses the current time). Fixing both makes a run fully reproducible.
func New(seed, baseTime int64) *Normalizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if baseTime <= 0 {
		baseTime = time.Now().Unix()
	}
	return &Normalizer{
		rules: DefaultRules,
		rng:   rand.New(rand.NewSource(seed)),
		base:  baseTime,
	}
}

// Normalize sanitizes the table, resolves columns to roles and maps every
// row to a FlowRecord. Timestamps are never read from the input: row i gets
// baseTime+i, strictly increasing within the run.
func (n *Normalizer) Normalize(t *table.Table) []model.FlowRecord {
	Sanitize(t)
	res := Resolve(t.Columns, n.rules)

	var missing []Role
	for _, rule := range n.rules {
		if _, ok := res.Column(rule.Role); !ok {
			missing = append(missing, rule.Role)
		}
	}
	if len(missing) > 0 {
		log.Printf("normalizer: no column found for %v, synthesizing values", missing)
	}

	records := make([]model.FlowRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		rec := model.FlowRecord{Timestamp: n.base + int64(i)}

		if idx, ok := res.Column(RoleSrcIP); ok {
			rec.SrcIP = strings.TrimSpace(row[idx])
		} else {
			rec.SrcIP = "192.168.1." + strconv.Itoa(1+n.rng.Intn(254))
		}
		if idx, ok := res.Column(RoleDstIP); ok {
			rec.DstIP = strings.TrimSpace(row[idx])
		} else {
			rec.DstIP = "10.0.0." + strconv.Itoa(1+n.rng.Intn(254))
		}

		if idx, ok := res.Column(RoleSrcPort); ok {
			rec.SrcPort = clampPort(table.ParseInt(row[idx]))
		} else {
			rec.SrcPort = uint16(1024 + n.rng.Intn(65535-1024))
		}
		if idx, ok := res.Column(RoleDstPort); ok {
			rec.DstPort = clampPort(table.ParseInt(row[idx]))
		} else {
			rec.DstPort = uint16(1 + n.rng.Intn(1024-1))
		}

		if idx, ok := res.Column(RoleProtocol); ok {
			rec.Protocol = clampProto(table.ParseInt(row[idx]))
		} else {
			rec.Protocol = model.ProtocolUDP
		}

		if idx, ok := res.Column(RoleBytes); ok {
			if v := table.ParseInt(row[idx]); v > 0 {
				rec.Bytes = v
			}
		} else {
			rec.Bytes = int64(64 + n.rng.Intn(1500-64))
		}

		rec.Packets = 1
		if idx, ok := res.Column(RolePackets); ok {
			if v := table.ParseInt(row[idx]); v > 1 {
				rec.Packets = v
			}
		}

		records = append(records, rec)
	}
	return records
}

func clampPort(v int64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func clampProto(v int64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
