package schema

import (
	"reflect"
	"testing"

	"Go2FlowLens/internal/table"
)

func TestResolve_FlowExportColumns(t *testing.T) {
	columns := []string{
		"Flow ID", " Source IP", " Source Port", " Destination IP",
		" Destination Port", " Protocol", "Total Length of Fwd Packets",
		" Total Fwd Packets",
	}

	res := Resolve(columns, DefaultRules)

	expected := map[Role]int{
		RoleSrcIP:    1,
		RoleSrcPort:  2,
		RoleDstIP:    3,
		RoleDstPort:  4,
		RoleProtocol: 5,
		RoleBytes:    6,
		RolePackets:  7,
	}
	for role, want := range expected {
		got, ok := res.Column(role)
		if !ok {
			t.Fatalf("role %s not resolved", role)
		}
		if got != want {
			t.Errorf("role %s resolved to column %d, expected %d", role, got, want)
		}
	}
	if len(res.Resolved()) != len(expected) {
		t.Errorf("Expected %d resolved roles, got %d", len(expected), len(res.Resolved()))
	}
}

func TestResolve_ClaimsEachColumnOnce(t *testing.T) {
	// "Total Length of Fwd Packets" satisfies both the bytes rule and the
	// packets rule. The bytes rule runs first and must claim it, leaving
	// "Total Fwd Packets" for the packets rule.
	columns := []string{"Total Length of Fwd Packets", "Total Fwd Packets"}

	res := Resolve(columns, DefaultRules)

	if idx, ok := res.Column(RoleBytes); !ok || idx != 0 {
		t.Errorf("Expected bytes role on column 0, got (%d, %v)", idx, ok)
	}
	if idx, ok := res.Column(RolePackets); !ok || idx != 1 {
		t.Errorf("Expected packets role on column 1, got (%d, %v)", idx, ok)
	}
}

func TestResolve_UnresolvedRolesAreExplicit(t *testing.T) {
	res := Resolve([]string{"foo", "bar"}, DefaultRules)

	for _, rule := range DefaultRules {
		if idx, ok := res.Column(rule.Role); ok {
			t.Errorf("role %s should be unresolved, got column %d", rule.Role, idx)
		}
	}
	if n := len(res.Resolved()); n != 0 {
		t.Errorf("Expected 0 resolved roles, got %d", n)
	}
}

func TestSanitize(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"Unnamed: 0", "Source IP", "Flow Bytes/s"},
		Rows: [][]string{
			{"0", "10.0.0.1", "inf"},
			{"1", "10.0.0.2", "-Inf"},
			{"2", "NaN", ""},
		},
	}

	Sanitize(tbl)

	if !reflect.DeepEqual(tbl.Columns, []string{"Source IP", "Flow Bytes/s"}) {
		t.Fatalf("Unnamed column not dropped, columns: %v", tbl.Columns)
	}
	want := [][]string{
		{"10.0.0.1", "0"},
		{"10.0.0.2", "0"},
		{"0", "0"},
	}
	if !reflect.DeepEqual(tbl.Rows, want) {
		t.Errorf("Sanitized rows = %v, expected %v", tbl.Rows, want)
	}
}

func TestNormalize_ResolvedColumns(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{
			"Source IP", "Destination IP", "Source Port", "Destination Port",
			"Protocol", "Total Length of Fwd Packets", "Total Fwd Packets",
		},
		Rows: [][]string{
			{"172.16.0.5", "192.168.50.1", "443", "34512", "6", "1200", "10"},
			{"172.16.0.9", "192.168.50.1", "53", "40212", "17", "320", "4"},
		},
	}

	n := New(1, 1700000000)
	records := n.Normalize(tbl)

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	first := records[0]
	if first.SrcIP != "172.16.0.5" || first.DstIP != "192.168.50.1" {
		t.Errorf("Unexpected IPs: %s -> %s", first.SrcIP, first.DstIP)
	}
	if first.SrcPort != 443 || first.DstPort != 34512 {
		t.Errorf("Unexpected ports: %d -> %d", first.SrcPort, first.DstPort)
	}
	if first.Protocol != 6 || first.Bytes != 1200 || first.Packets != 10 {
		t.Errorf("Unexpected protocol/bytes/packets: %d/%d/%d",
			first.Protocol, first.Bytes, first.Packets)
	}

	// Timestamps come from the run origin, not the input, and increase by
	// one per row.
	if records[0].Timestamp != 1700000000 || records[1].Timestamp != 1700000001 {
		t.Errorf("Unexpected timestamps: %d, %d",
			records[0].Timestamp, records[1].Timestamp)
	}
}

func TestNormalize_SynthesizesMissingRoles(t *testing.T) {
	rows := [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}
	tbl := &table.Table{Columns: []string{"foo", "bar"}, Rows: rows}

	n := New(42, 1000)
	records := n.Normalize(tbl)

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	for i, r := range records {
		if len(r.SrcIP) <= len("192.168.1.") || r.SrcIP[:10] != "192.168.1." {
			t.Errorf("record %d: synthesized src ip %q outside 192.168.1.0/24", i, r.SrcIP)
		}
		if len(r.DstIP) <= len("10.0.0.") || r.DstIP[:7] != "10.0.0." {
			t.Errorf("record %d: synthesized dst ip %q outside 10.0.0.0/24", i, r.DstIP)
		}
		if r.SrcPort < 1024 {
			t.Errorf("record %d: synthesized src port %d below 1024", i, r.SrcPort)
		}
		if r.DstPort < 1 || r.DstPort >= 1024 {
			t.Errorf("record %d: synthesized dst port %d outside [1,1024)", i, r.DstPort)
		}
		if r.Protocol != 17 {
			t.Errorf("record %d: expected UDP fallback, got protocol %d", i, r.Protocol)
		}
		if r.Bytes < 64 || r.Bytes >= 1500 {
			t.Errorf("record %d: synthesized bytes %d outside [64,1500)", i, r.Bytes)
		}
		if r.Packets != 1 {
			t.Errorf("record %d: expected 1 packet, got %d", i, r.Packets)
		}
		if r.Timestamp != 1000+int64(i) {
			t.Errorf("record %d: timestamp %d, expected %d", i, r.Timestamp, 1000+int64(i))
		}
	}
}

func TestNormalize_SameSeedSameOutput(t *testing.T) {
	build := func() *table.Table {
		return &table.Table{
			Columns: []string{"foo"},
			Rows:    [][]string{{"1"}, {"2"}, {"3"}, {"4"}},
		}
	}

	a := New(7, 500).Normalize(build())
	b := New(7, 500).Normalize(build())

	if !reflect.DeepEqual(a, b) {
		t.Errorf("Same seed produced different records:\n%v\n%v", a, b)
	}
}

func TestNormalize_ClampsCounts(t *testing.T) {
	tbl := &table.Table{
		Columns: []string{"Source IP", "Destination IP", "Total Length of Fwd Packets", "Total Fwd Packets"},
		Rows: [][]string{
			{"10.0.0.1", "10.0.0.2", "-500", "0"},
			{"10.0.0.3", "10.0.0.4", "junk", "-3"},
		},
	}

	records := New(1, 1).Normalize(tbl)

	for i, r := range records {
		if r.Bytes != 0 {
			t.Errorf("record %d: expected bytes clamped to 0, got %d", i, r.Bytes)
		}
		if r.Packets != 1 {
			t.Errorf("record %d: expected packets clamped to 1, got %d", i, r.Packets)
		}
	}
}
