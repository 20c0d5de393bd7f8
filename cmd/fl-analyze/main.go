package main

import (
	"flag"
	"fmt"
	"log"

	"Go2FlowLens/internal/aggregate"
	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/report"
	"Go2FlowLens/internal/sink"
	"Go2FlowLens/internal/table"

	"github.com/google/uuid"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	alertsPath := flag.String("alerts", "", "Alerts CSV path (overrides config)")
	blockingPath := flag.String("blocking", "", "Blocking CSV path (overrides config)")
	reportPath := flag.String("out", "", "Report output path (overrides config)")
	store := flag.Bool("store", false, "Also store the report in the enabled ClickHouse writer")
	flag.Parse()

	// 1. Load configuration and apply overrides
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *alertsPath != "" {
		cfg.Results.AlertsPath = *alertsPath
	}
	if *blockingPath != "" {
		cfg.Results.BlockingPath = *blockingPath
	}
	if *reportPath != "" {
		cfg.Results.ReportPath = *reportPath
	}

	// 2. Load the worker result tables
	alerts, err := table.LoadAlerts(cfg.Results.AlertsPath)
	if err != nil {
		log.Fatalf("Cannot proceed without alerts data: %v", err)
	}
	log.Printf("Loaded %d alerts from %s", len(alerts), cfg.Results.AlertsPath)

	blocking, err := table.LoadBlocking(cfg.Results.BlockingPath)
	if err != nil {
		log.Fatalf("Failed to load blocking statistics: %v", err)
	}
	if len(blocking) == 0 {
		log.Println("No blocking statistics found (optional)")
	} else {
		log.Printf("Loaded %d blocking records from %s", len(blocking), cfg.Results.BlockingPath)
	}

	// 3. Aggregate and write the report
	rep := aggregate.Aggregate(alerts, blocking)
	if err := report.WriteFile(cfg.Results.ReportPath, rep); err != nil {
		log.Fatalf("Failed to write report: %v", err)
	}

	// 4. Store the report when asked to
	if *store {
		var chCfg *config.ClickHouseConfig
		for _, def := range cfg.Writers {
			if def.Enabled && def.Type == "clickhouse" {
				chCfg = &def.ClickHouse
				break
			}
		}
		if chCfg == nil {
			log.Fatalf("No enabled ClickHouse writer found in config. Cannot store the report.")
		}

		w, err := sink.NewClickHouseWriter(*chCfg)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse writer: %v", err)
		}
		if err := w.Write(rep, uuid.New().String()); err != nil {
			log.Fatalf("Failed to store report in ClickHouse: %v", err)
		}
		w.Close()
	}

	// 5. Display the accuracy summary
	fmt.Print(report.FormatSummary(rep))
	log.Println("Analysis complete.")
}
