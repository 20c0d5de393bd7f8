package table

import (
	"fmt"

	"Go2FlowLens/internal/model"
)

// LoadFlows reads a normalized flow file, such as one partition produced by
// the splitter. Columns are matched by name so reordered files still load.
func LoadFlows(path string) ([]model.FlowRecord, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}

	var (
		srcIP   = t.ColumnIndex("src_ip")
		dstIP   = t.ColumnIndex("dst_ip")
		srcPort = t.ColumnIndex("src_port")
		dstPort = t.ColumnIndex("dst_port")
		proto   = t.ColumnIndex("protocol")
		bytes   = t.ColumnIndex("bytes")
		packets = t.ColumnIndex("packets")
		ts      = t.ColumnIndex("timestamp")
	)
	if srcIP < 0 || dstIP < 0 {
		return nil, fmt.Errorf("%s is not a flow file: missing src_ip/dst_ip", path)
	}

	flows := make([]model.FlowRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		flows = append(flows, model.FlowRecord{
			SrcIP:     cell(row, srcIP),
			DstIP:     cell(row, dstIP),
			SrcPort:   uint16(ParseInt(cell(row, srcPort))),
			DstPort:   uint16(ParseInt(cell(row, dstPort))),
			Protocol:  uint8(ParseInt(cell(row, proto))),
			Bytes:     ParseInt(cell(row, bytes)),
			Packets:   ParseInt(cell(row, packets)),
			Timestamp: ParseInt(cell(row, ts)),
		})
	}
	return flows, nil
}
