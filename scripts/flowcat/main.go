package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/table"
	"Go2FlowLens/pkg/pcap"
)

// flowcat prints the first records of a flow file for a quick look at what a
// partition or capture actually contains.

func main() {
	limit := flag.Int("n", 5, "Number of records to print")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: go run ./scripts/flowcat/main.go [-n count] <flow_csv_or_pcap>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	var (
		records []model.FlowRecord
		err     error
	)
	if filepath.Ext(path) == ".pcap" {
		var reader *pcap.Reader
		reader, err = pcap.NewReader(path)
		if err != nil {
			log.Fatal(err)
		}
		defer reader.Close()
		records, err = reader.ReadAll()
	} else {
		records, err = table.LoadFlows(path)
	}
	if err != nil {
		log.Fatal(err)
	}

	for i, rec := range records {
		if i >= *limit {
			break
		}
		fmt.Printf("[%s] %s:%d -> %s:%d proto=%d bytes=%d packets=%d\n",
			time.Unix(rec.Timestamp, 0).UTC().Format("15:04:05"),
			rec.SrcIP, rec.SrcPort,
			rec.DstIP, rec.DstPort,
			rec.Protocol, rec.Bytes, rec.Packets,
		)
	}
	fmt.Printf("%d records total\n", len(records))
}
