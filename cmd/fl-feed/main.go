package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/feed"
	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/partition"
	"Go2FlowLens/internal/table"
)

func main() {
	// --- Command-Line Flag Parsing ---
	mode := flag.String("mode", "collect", "Operating mode: 'pub' to publish partition files, 'collect' to collect worker results.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	dir := flag.String("dir", "", "Partition directory to publish (required for pub mode).")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- Mode Dispatch ---
	switch *mode {
	case "pub":
		runPublisher(cfg, *dir)
	case "collect":
		runCollector(cfg)
	default:
		fmt.Fprintf(os.Stderr, "Invalid mode: %s\n", *mode)
		flag.Usage()
		os.Exit(1)
	}
}

// runPublisher replays an on-disk partition run over NATS, one subject per
// partition, so workers can consume their share without filesystem access.
func runPublisher(cfg *config.Config, dir string) {
	if dir == "" {
		log.Println("Error: -dir flag is required for pub mode.")
		flag.Usage()
		os.Exit(1)
	}

	manifest, err := partition.ReadManifest(dir)
	if err != nil {
		log.Fatalf("Failed to read manifest: %v", err)
	}
	log.Printf("Publishing run %s: %d records over %d partitions",
		manifest.RunID, manifest.TotalRecords, manifest.Partitions)

	writer := partition.NewWriter(dir, cfg.Partitioner.FilePrefix)
	parts := make([][]model.FlowRecord, manifest.Partitions)
	for i := range parts {
		records, err := table.LoadFlows(writer.Path(i))
		if err != nil {
			log.Fatalf("Failed to load partition %d: %v", i+1, err)
		}
		parts[i] = records
	}

	pub, err := feed.NewPublisher(cfg.Feed)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	if err := pub.PublishAll(parts); err != nil {
		log.Fatalf("Failed to publish partitions: %v", err)
	}
	log.Println("All partitions published.")
}

// runCollector appends worker results streamed over NATS to the local result
// tables until interrupted.
func runCollector(cfg *config.Config) {
	for _, path := range []string{cfg.Results.AlertsPath, cfg.Results.BlockingPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			log.Fatalf("Failed to create results directory: %v", err)
		}
	}

	collector, err := feed.NewCollector(cfg.Feed)
	if err != nil {
		log.Fatalf("Failed to create collector: %v", err)
	}
	defer collector.Close()

	onAlert := func(alert model.AlertRecord) {
		if err := table.AppendAlerts(cfg.Results.AlertsPath, []model.AlertRecord{alert}); err != nil {
			log.Printf("Failed to append alert: %v", err)
			return
		}
		log.Printf("Alert from worker %d (attack_flag=%d)", alert.WorkerRank, alert.AttackFlag)
	}
	onBlocking := func(rec model.BlockingRecord) {
		if err := table.AppendBlocking(cfg.Results.BlockingPath, []model.BlockingRecord{rec}); err != nil {
			log.Printf("Failed to append blocking record: %v", err)
			return
		}
		log.Printf("Blocking record for %s", rec.BlockedIP)
	}

	if err := collector.Start(onAlert, onBlocking); err != nil {
		log.Fatalf("Collector failed to start: %v", err)
	}

	// Wait for a shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
}
