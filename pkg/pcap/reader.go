package pcap

import (
	"fmt"
	"io"
	"log"
	"os"

	"Go2FlowLens/internal/model"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Reader turns an offline pcap capture into flow records. Each IPv4 TCP or
// UDP packet becomes one single-packet record; everything else is skipped.
type Reader struct {
	file *os.File
	r    *pcapgo.Reader
}

// NewReader opens a pcap file for reading.
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pcap file '%s': %w", path, err)
	}
	r, err := pcapgo.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read pcap header of '%s': %w", path, err)
	}
	return &Reader{file: f, r: r}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Read returns the next flow record in the capture, skipping packets that
// are not IPv4 TCP or UDP. It returns io.EOF after the last packet.
func (r *Reader) Read() (model.FlowRecord, error) {
	for {
		data, ci, err := r.r.ReadPacketData()
		if err == io.EOF {
			return model.FlowRecord{}, io.EOF
		}
		if err != nil {
			return model.FlowRecord{}, fmt.Errorf("failed to read packet: %w", err)
		}
		rec, err := parsePacket(data, ci)
		if err != nil {
			// Unsupported packet types or corrupt data. Skip and keep going.
			continue
		}
		return rec, nil
	}
}

// ReadAll drains the capture into a record slice.
func (r *Reader) ReadAll() ([]model.FlowRecord, error) {
	var records []model.FlowRecord
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	log.Printf("Read %d flow records from pcap", len(records))
	return records, nil
}

// parsePacket decodes one raw packet into a flow record. Bytes come from the
// capture's original wire length, not the possibly truncated snapshot.
func parsePacket(data []byte, ci gopacket.CaptureInfo) (model.FlowRecord, error) {
	packet := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)

	rec := model.FlowRecord{
		Bytes:     int64(ci.Length),
		Packets:   1,
		Timestamp: ci.Timestamp.Unix(),
	}

	l := packet.Layer(layers.LayerTypeIPv4)
	if l == nil {
		return rec, fmt.Errorf("not an IPv4 packet")
	}
	ip := l.(*layers.IPv4)
	rec.SrcIP = ip.SrcIP.String()
	rec.DstIP = ip.DstIP.String()
	rec.Protocol = uint8(ip.Protocol)

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		rec.SrcPort = uint16(tcp.SrcPort)
		rec.DstPort = uint16(tcp.DstPort)
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		rec.SrcPort = uint16(udp.SrcPort)
		rec.DstPort = uint16(udp.DstPort)
	} else {
		return rec, fmt.Errorf("not a TCP or UDP packet")
	}

	return rec, nil
}
