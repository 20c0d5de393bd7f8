package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/feed"
	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/partition"
	"Go2FlowLens/internal/schema"
	"Go2FlowLens/internal/sink"
	"Go2FlowLens/internal/table"
	"Go2FlowLens/pkg/pcap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	seed := flag.Int64("seed", 0, "Seed for synthesized column values (0 derives one from the clock)")
	fromPcap := flag.Bool("pcap", false, "Treat the input file as a pcap capture instead of a CSV dataset")
	publish := flag.Bool("publish", false, "Publish the partitions to the NATS worker subjects after writing")
	showStats := flag.Bool("stats", true, "Print dataset statistics before partitioning")
	flag.Parse()

	// 1. Get input file, partition count and output directory from arguments
	if flag.NArg() < 3 {
		fmt.Println("Usage: fl-partition [flags] <input_file> <num_partitions> <output_dir>")
		fmt.Println("Example: fl-partition data/DrDoS_UDP.csv 4 data")
		flag.PrintDefaults()
		os.Exit(1)
	}
	inputPath := flag.Arg(0)
	numPartitions, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		log.Fatalf("Invalid partition count '%s': %v", flag.Arg(1), err)
	}
	outputDir := flag.Arg(2)

	// 2. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *seed == 0 {
		*seed = cfg.Normalizer.Seed
	}

	// 3. Read the input into flow records
	records, err := loadRecords(inputPath, *fromPcap, *seed)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}

	// 4. Print dataset statistics
	if *showStats {
		label := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		fmt.Print(schema.ComputeStats(records).Format(label))
	}

	// 5. Split by flow and write the partition files
	parts, err := partition.Split(records, numPartitions)
	if err != nil {
		log.Fatalf("Failed to partition records: %v", err)
	}

	partitionDir := filepath.Join(outputDir, "partitions")
	writer := partition.NewWriter(partitionDir, cfg.Partitioner.FilePrefix)
	counts, err := writer.WriteAll(parts)
	if err != nil {
		log.Fatalf("Failed to write partitions: %v", err)
	}

	// 6. Record the run in the manifest
	manifest := partition.NewManifest(inputPath, counts)
	if err := partition.WriteManifest(partitionDir, manifest); err != nil {
		log.Fatalf("Failed to write manifest: %v", err)
	}

	// 7. Store the manifest in every enabled writer
	for _, def := range cfg.Writers {
		if !def.Enabled || def.Type != "clickhouse" {
			continue
		}
		w, err := sink.NewClickHouseWriter(def.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse writer: %v", err)
		}
		if err := w.Write(manifest, manifest.RunID); err != nil {
			log.Fatalf("Failed to store manifest in ClickHouse: %v", err)
		}
		w.Close()
	}

	// 8. Optionally stream the partitions to the workers
	if *publish {
		pub, err := feed.NewPublisher(cfg.Feed)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		if err := pub.PublishAll(parts); err != nil {
			log.Fatalf("Failed to publish partitions: %v", err)
		}
		pub.Close()
	}

	log.Println("Partitioning complete.")
	log.Printf("Ready for processing with %d workers", numPartitions)
}

// loadRecords reads a pcap capture directly or normalizes a raw CSV dataset.
func loadRecords(path string, fromPcap bool, seed int64) ([]model.FlowRecord, error) {
	if fromPcap {
		reader, err := pcap.NewReader(path)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return reader.ReadAll()
	}

	t, err := table.Load(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Loaded dataset: %d rows, %d columns", len(t.Rows), len(t.Columns))

	records := schema.New(seed, time.Now().Unix()).Normalize(t)
	log.Printf("Normalized %d flow records", len(records))
	return records, nil
}
