package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"Go2FlowLens/internal/config"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// --- Main Function ---
func main() {
	// Define command-line flags
	mode := flag.String("mode", "api", "Query mode: 'api' to query the report server, 'direct' to query ClickHouse directly.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file")
	addr := flag.String("addr", "http://localhost:8080", "Report server base URL (api mode)")
	runID := flag.String("run", "", "Filter direct queries to a single run ID (optional).")
	limit := flag.Int("limit", 5, "Number of reports to list in direct mode")

	defaultEnd := time.Now().UTC().Format(time.RFC3339)
	endTimeStr := flag.String("end", defaultEnd, "End time in RFC3339 format (e.g., 2026-08-25T15:10:00Z).")

	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*addr)
	case "direct":
		directQueryClickHouse(*configPath, *runID, *endTimeStr, *limit)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

// --- API Query Logic ---
func queryViaAPI(addr string) {
	apiURL := addr + "/api/v1/report"

	resp, err := http.Get(apiURL)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	err = json.Indent(&prettyJSON, respBody, "", "  ")
	if err != nil {
		log.Printf("Could not prettify JSON, printing raw response:")
		fmt.Println(string(respBody))
		return
	}

	log.Println("---")
	fmt.Println(prettyJSON.String())
}

// --- Direct ClickHouse Query Logic ---
func directQueryClickHouse(configPath, runID, endTimeStr string, limit int) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var chCfg *config.ClickHouseConfig
	for _, def := range cfg.Writers {
		if def.Enabled && def.Type == "clickhouse" {
			chCfg = &def.ClickHouse
			break
		}
	}
	if chCfg == nil {
		log.Fatalf("No enabled ClickHouse writer found in config.")
	}

	connOpts := clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", chCfg.Host, chCfg.Port)},
		Auth: clickhouse.Auth{
			Database: chCfg.Database,
			Username: chCfg.Username,
			Password: chCfg.Password,
		},
	}

	endTime, err := time.Parse(time.RFC3339, endTimeStr)
	if err != nil {
		log.Fatalf("Invalid end time format: %v", err)
	}

	whereClauses := []string{"GeneratedAt <= ?"}
	args := []interface{}{endTime}
	if runID != "" {
		whereClauses = append(whereClauses, "RunID = ?")
		args = append(args, runID)
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT RunID, GeneratedAt, Workers, TotalAlerts, Precision, Recall, F1, Accuracy
		FROM detection_reports
		WHERE %s
		ORDER BY GeneratedAt DESC
		LIMIT ?
	`, strings.Join(whereClauses, " AND "))

	conn, err := clickhouse.Open(&connOpts)
	if err != nil {
		log.Fatalf("Error connecting to ClickHouse: %v", err)
	}
	defer conn.Close()

	log.Println("Successfully connected to ClickHouse.")

	rows, err := conn.Query(context.Background(), query, args...)
	if err != nil {
		log.Fatalf("Error executing query: %v", err)
	}
	defer rows.Close()

	log.Println("--- Stored Detection Reports (Direct) ---")

	var foundResult bool
	for rows.Next() {
		foundResult = true
		var (
			id          string
			generatedAt time.Time
			workers     uint32
			totalAlerts uint64
			precision   float64
			recall      float64
			f1          float64
			accuracy    float64
		)

		if err := rows.Scan(&id, &generatedAt, &workers, &totalAlerts, &precision, &recall, &f1, &accuracy); err != nil {
			log.Printf("Error scanning row: %v", err)
			continue
		}

		fmt.Printf("RunID: %s\n", id)
		fmt.Printf("  GeneratedAt: %s\n", generatedAt.Format(time.RFC3339))
		fmt.Printf("  Workers: %d  Alerts: %d\n", workers, totalAlerts)
		fmt.Printf("  Precision: %.4f  Recall: %.4f  F1: %.4f  Accuracy: %.4f\n",
			precision, recall, f1, accuracy)
		fmt.Println("---------------------")
	}

	if !foundResult {
		log.Println("No reports found for the given criteria.")
	}

	if err := rows.Err(); err != nil {
		log.Printf("An error occurred during row iteration: %v", err)
	}
}
