package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"strconv"
	"time"

	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/table"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// flowgen produces synthetic inputs for exercising the pipeline end to end:
// a raw capture-tool CSV with the usual messy headers, worker alert and
// blocking logs, or a pcap capture.

func main() {
	kind := flag.String("kind", "raw", "What to generate: 'raw', 'alerts', 'blocking' or 'pcap'")
	outputFile := flag.String("o", "", "Output file path (defaults per kind)")
	count := flag.Int("c", 1000, "Number of rows or packets to generate")
	workers := flag.Int("workers", 4, "Number of worker ranks (alerts kind)")
	seed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	if *outputFile == "" {
		*outputFile = map[string]string{
			"raw":      "traffic.csv",
			"alerts":   "alerts.csv",
			"blocking": "blocking.csv",
			"pcap":     "traffic.pcap",
		}[*kind]
	}

	var err error
	switch *kind {
	case "raw":
		err = generateRaw(rng, *outputFile, *count)
	case "alerts":
		err = generateAlerts(rng, *outputFile, *count, *workers)
	case "blocking":
		err = generateBlocking(rng, *outputFile, *count)
	case "pcap":
		err = generatePcap(rng, *outputFile, *count)
	default:
		fmt.Fprintf(os.Stderr, "Invalid kind: %s\n", *kind)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
	log.Printf("Successfully generated %d %s rows into %s.", *count, *kind, *outputFile)
}

// generateRaw writes a dataset the way capture tools export them: padded
// column names, an index column, and the occasional Inf or NaN cell, so the
// normalizer has something real to chew on.
func generateRaw(rng *rand.Rand, path string, count int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"Unnamed: 0", " Source IP", " Source Port", " Destination IP",
		" Destination Port", " Protocol", "Total Length of Fwd Packets",
		" Total Fwd Packets", " Label",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	// A small pool of talkers keeps flows repeating, as real traffic does.
	srcs := make([]string, 16)
	for i := range srcs {
		srcs[i] = fmt.Sprintf("172.16.%d.%d", rng.Intn(4), 1+rng.Intn(254))
	}
	victims := []string{"192.168.50.10", "192.168.50.11"}

	for i := 0; i < count; i++ {
		row := []string{
			strconv.Itoa(i),
			srcs[rng.Intn(len(srcs))],
			strconv.Itoa(1024 + rng.Intn(65535-1024)),
			victims[rng.Intn(len(victims))],
			strconv.Itoa(rng.Intn(1024)),
			pick(rng, "6", "17"),
			strconv.Itoa(64 + rng.Intn(1436)),
			strconv.Itoa(1 + rng.Intn(8)),
			pick(rng, "DrDoS_UDP", "BENIGN"),
		}
		// Sprinkle in the dirt the cleaner has to handle.
		if i%97 == 0 {
			row[6] = "Inf"
		}
		if i%131 == 0 {
			row[7] = "NaN"
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// generateAlerts emits a detection log where workers are mostly right: the
// attack flag tracks the ground truth except for a small error rate, giving
// the analyzer a non-trivial confusion matrix.
func generateAlerts(rng *rand.Rand, path string, count, workers int) error {
	alerts := make([]model.AlertRecord, 0, count)
	for i := 0; i < count; i++ {
		truth := 0
		if rng.Float64() < 0.3 {
			truth = 1
		}
		detected := truth
		if rng.Float64() < 0.1 {
			detected = 1 - truth
		}

		a := model.AlertRecord{
			WorkerRank:       i % workers,
			AttackFlag:       detected,
			GlobalAttack:     truth,
			Entropy:          rng.Float64() * 8,
			AvgRate:          rng.Float64() * 10000,
			SpikeScore:       rng.Float64() * 5,
			TotalPackets:     int64(1000 + rng.Intn(50000)),
			TotalFlows:       int64(10 + rng.Intn(500)),
			ProcessingTimeMS: 5 + rng.Float64()*45,
			MemoryUsedKB:     100 + rng.Float64()*1900,
		}
		if detected == 1 {
			a.SuspiciousIP = fmt.Sprintf("172.16.%d.%d", rng.Intn(4), 1+rng.Intn(254))
			a.ChosenIP = a.SuspiciousIP
			a.EntropyDetected = rng.Intn(2)
			a.CusumDetected = rng.Intn(2)
			a.MLDetected = rng.Intn(2)
		}
		alerts = append(alerts, a)
	}
	return table.AppendAlerts(path, alerts)
}

func generateBlocking(rng *rand.Rand, path string, count int) error {
	records := make([]model.BlockingRecord, 0, count)
	for i := 0; i < count; i++ {
		records = append(records, model.BlockingRecord{
			BlockedIP:                fmt.Sprintf("172.16.%d.%d", rng.Intn(4), 1+rng.Intn(254)),
			AttackPacketsBlocked:     int64(1000 + rng.Intn(9000)),
			LegitimatePacketsBlocked: int64(rng.Intn(100)),
			BlockingEfficiency:       0.7 + rng.Float64()*0.3,
			CollateralDamage:         rng.Float64() * 0.1,
			BlockTimeMS:              1 + rng.Float64()*19,
		})
	}
	return table.AppendBlocking(path, records)
}

// generatePcap writes a capture of TCP and UDP packets drawn from a small
// flow pool, suitable for fl-partition's -pcap mode.
func generatePcap(rng *rand.Rand, path string, count int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return err
	}

	base := time.Now().Add(-time.Duration(count) * time.Millisecond)
	for i := 0; i < count; i++ {
		if (i+1)%100000 == 0 {
			log.Printf("Generated %d packets...", i+1)
		}

		srcIP := net.IP{172, 16, byte(rng.Intn(4)), byte(1 + rng.Intn(254))}
		dstIP := net.IP{192, 168, 50, byte(10 + rng.Intn(2))}
		payload := make([]byte, 50+rng.Intn(1400))
		rng.Read(payload)

		ethLayer := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ipLayer := &layers.IPv4{
			SrcIP:   srcIP,
			DstIP:   dstIP,
			Version: 4,
			TTL:     64,
		}

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{
			ComputeChecksums: true,
			FixLengths:       true,
		}

		if rng.Intn(2) == 0 {
			ipLayer.Protocol = layers.IPProtocolTCP
			tcpLayer := &layers.TCP{
				SrcPort: layers.TCPPort(rng.Intn(65535-1024) + 1024),
				DstPort: layers.TCPPort(rng.Intn(1024)),
				Seq:     rng.Uint32(),
				SYN:     true,
				Window:  14600,
			}
			tcpLayer.SetNetworkLayerForChecksum(ipLayer)
			err = gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer, gopacket.Payload(payload))
		} else {
			ipLayer.Protocol = layers.IPProtocolUDP
			udpLayer := &layers.UDP{
				SrcPort: layers.UDPPort(rng.Intn(65535-1024) + 1024),
				DstPort: layers.UDPPort(rng.Intn(1024)),
			}
			udpLayer.SetNetworkLayerForChecksum(ipLayer)
			err = gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, udpLayer, gopacket.Payload(payload))
		}
		if err != nil {
			return fmt.Errorf("failed to serialize layers: %w", err)
		}

		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(i) * time.Millisecond),
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := pcapWriter.WritePacket(ci, buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write packet: %w", err)
		}
	}
	return nil
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}
