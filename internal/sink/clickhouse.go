package sink

import (
	"context"
	"fmt"
	"log"
	"time"

	"Go2FlowLens/internal/config"
	"Go2FlowLens/internal/model"
	"Go2FlowLens/internal/partition"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createPartitionTable = `
CREATE TABLE IF NOT EXISTS partition_summary (
    RunID       String,
    Input       String,
    PartitionID UInt32,
    Records     UInt64,
    CreatedAt   DateTime
) ENGINE = MergeTree()
ORDER BY (RunID, PartitionID);
`

const createReportTable = `
CREATE TABLE IF NOT EXISTS detection_reports (
    RunID              String,
    GeneratedAt        DateTime,
    Workers            UInt32,
    TotalAlerts        UInt64,
    TotalAttacks       UInt64,
    TruePositives      UInt64,
    FalsePositives     UInt64,
    TrueNegatives      UInt64,
    FalseNegatives     UInt64,
    Precision          Float64,
    Recall             Float64,
    F1                 Float64,
    Accuracy           Float64,
    FalsePositiveRate  Float64,
    MeanProcessingMS   Float64,
    TotalPackets       UInt64,
    MeanMemoryKB       Float64,
    ThroughputPerSec   Float64,
    BlockingRecords    Nullable(UInt32),
    BlockingEfficiency Nullable(Float64),
    CollateralDamage   Nullable(Float64)
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(GeneratedAt)
ORDER BY (RunID, GeneratedAt);
`

// ClickHouseWriter persists partitioning manifests and analysis reports so
// runs can be compared over time with plain SQL.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects and ensures both tables exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createPartitionTable, createReportTable} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Write dispatches on the payload type: partition manifests go to
// partition_summary, reports to detection_reports.
func (w *ClickHouseWriter) Write(payload interface{}, runID string) error {
	switch p := payload.(type) {
	case partition.Manifest:
		return w.writeManifest(p, runID)
	case model.Report:
		return w.writeReport(p, runID)
	default:
		return fmt.Errorf("invalid payload type for ClickHouse writer: %T", payload)
	}
}

// Close shuts down the underlying connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}

func (w *ClickHouseWriter) writeManifest(m partition.Manifest, runID string) error {
	if len(m.RecordCounts) == 0 {
		return nil
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO partition_summary")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, m.CreatedAt)
	for i, count := range m.RecordCounts {
		err = batch.Append(
			runID,
			m.Input,
			uint32(i+1),
			uint64(count),
			createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to append partition row to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	log.Printf("Wrote %d partition rows to ClickHouse for run '%s'", len(m.RecordCounts), runID)
	return nil
}

func (w *ClickHouseWriter) writeReport(r model.Report, runID string) error {
	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO detection_reports")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	var blockRecords, blockEff, blockDmg interface{}
	if r.Blocking != nil {
		blockRecords = uint32(r.Blocking.Records)
		blockEff = r.Blocking.MeanBlockingEfficiency
		blockDmg = r.Blocking.MeanCollateralDamage
	}

	err = batch.Append(
		runID,
		r.GeneratedAt,
		uint32(r.Workers),
		uint64(r.TotalAlerts),
		uint64(r.TotalAttacks),
		uint64(r.Accuracy.Confusion.TruePositives),
		uint64(r.Accuracy.Confusion.FalsePositives),
		uint64(r.Accuracy.Confusion.TrueNegatives),
		uint64(r.Accuracy.Confusion.FalseNegatives),
		r.Accuracy.Precision,
		r.Accuracy.Recall,
		r.Accuracy.F1,
		r.Accuracy.Accuracy,
		r.Accuracy.FalsePositiveRate,
		r.Performance.MeanProcessingMS,
		uint64(r.Performance.TotalPackets),
		r.Performance.MeanMemoryKB,
		r.Performance.ThroughputPerSec,
		blockRecords,
		blockEff,
		blockDmg,
	)
	if err != nil {
		return fmt.Errorf("failed to append report to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	log.Printf("Wrote report for run '%s' to ClickHouse", runID)
	return nil
}
