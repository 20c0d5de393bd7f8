package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"Go2FlowLens/internal/model"
)

// Alert and blocking logs are appended by every worker, so column order is
// not guaranteed across pipeline versions. Records are mapped by header name
// and absent columns read as zero.

// LoadAlerts reads the per-worker detection log. The file is required: a run
// without alerts has nothing to analyze.
func LoadAlerts(path string) ([]model.AlertRecord, error) {
	t, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	var (
		rank    = t.ColumnIndex("worker_rank")
		flag    = t.ColumnIndex("attack_flag")
		susIP   = t.ColumnIndex("suspicious_ip")
		entropy = t.ColumnIndex("entropy")
		rate    = t.ColumnIndex("avg_rate")
		spike   = t.ColumnIndex("spike_score")
		packets = t.ColumnIndex("total_packets")
		flows   = t.ColumnIndex("total_flows")
		entDet  = t.ColumnIndex("entropy_detected")
		cusDet  = t.ColumnIndex("cusum_detected")
		mlDet   = t.ColumnIndex("ml_detected")
		truth   = t.ColumnIndex("global_attack")
		chosen  = t.ColumnIndex("chosen_ip")
		procMS  = t.ColumnIndex("processing_time_ms")
		memKB   = t.ColumnIndex("memory_used_kb")
	)

	alerts := make([]model.AlertRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		alerts = append(alerts, model.AlertRecord{
			WorkerRank:       int(ParseInt(cell(row, rank))),
			AttackFlag:       int(ParseInt(cell(row, flag))),
			SuspiciousIP:     cell(row, susIP),
			Entropy:          ParseFloat(cell(row, entropy)),
			AvgRate:          ParseFloat(cell(row, rate)),
			SpikeScore:       ParseFloat(cell(row, spike)),
			TotalPackets:     ParseInt(cell(row, packets)),
			TotalFlows:       ParseInt(cell(row, flows)),
			EntropyDetected:  int(ParseInt(cell(row, entDet))),
			CusumDetected:    int(ParseInt(cell(row, cusDet))),
			MLDetected:       int(ParseInt(cell(row, mlDet))),
			GlobalAttack:     int(ParseInt(cell(row, truth))),
			ChosenIP:         cell(row, chosen),
			ProcessingTimeMS: ParseFloat(cell(row, procMS)),
			MemoryUsedKB:     ParseFloat(cell(row, memKB)),
		})
	}
	return alerts, nil
}

// LoadBlocking reads the mitigation log. Absence of the file or of any rows
// is a valid state (runs without blocking enabled), reported as an empty
// slice rather than an error.
func LoadBlocking(path string) ([]model.BlockingRecord, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	t, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load blocking log: %w", err)
	}

	var (
		ip     = t.ColumnIndex("blocked_ip")
		attack = t.ColumnIndex("attack_packets_blocked")
		legit  = t.ColumnIndex("legitimate_packets_blocked")
		eff    = t.ColumnIndex("blocking_efficiency")
		dmg    = t.ColumnIndex("collateral_damage")
		block  = t.ColumnIndex("block_time_ms")
	)

	records := make([]model.BlockingRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		records = append(records, model.BlockingRecord{
			BlockedIP:                cell(row, ip),
			AttackPacketsBlocked:     ParseInt(cell(row, attack)),
			LegitimatePacketsBlocked: ParseInt(cell(row, legit)),
			BlockingEfficiency:       ParseFloat(cell(row, eff)),
			CollateralDamage:         ParseFloat(cell(row, dmg)),
			BlockTimeMS:              ParseFloat(cell(row, block)),
		})
	}
	return records, nil
}

var alertColumns = []string{
	"worker_rank", "attack_flag", "suspicious_ip", "entropy", "avg_rate",
	"spike_score", "total_packets", "total_flows", "entropy_detected",
	"cusum_detected", "ml_detected", "global_attack", "chosen_ip",
	"processing_time_ms", "memory_used_kb",
}

var blockingColumns = []string{
	"blocked_ip", "attack_packets_blocked", "legitimate_packets_blocked",
	"blocking_efficiency", "collateral_damage", "block_time_ms",
}

// AppendAlerts appends detection records to the alert log, writing the
// header first when the file is new. Used by the feed collector to persist
// alerts streamed from live workers.
func AppendAlerts(path string, alerts []model.AlertRecord) error {
	return appendRows(path, alertColumns, len(alerts), func(i int) []string {
		a := alerts[i]
		return []string{
			strconv.Itoa(a.WorkerRank),
			strconv.Itoa(a.AttackFlag),
			a.SuspiciousIP,
			strconv.FormatFloat(a.Entropy, 'f', -1, 64),
			strconv.FormatFloat(a.AvgRate, 'f', -1, 64),
			strconv.FormatFloat(a.SpikeScore, 'f', -1, 64),
			strconv.FormatInt(a.TotalPackets, 10),
			strconv.FormatInt(a.TotalFlows, 10),
			strconv.Itoa(a.EntropyDetected),
			strconv.Itoa(a.CusumDetected),
			strconv.Itoa(a.MLDetected),
			strconv.Itoa(a.GlobalAttack),
			a.ChosenIP,
			strconv.FormatFloat(a.ProcessingTimeMS, 'f', -1, 64),
			strconv.FormatFloat(a.MemoryUsedKB, 'f', -1, 64),
		}
	})
}

// AppendBlocking appends mitigation records to the blocking log.
func AppendBlocking(path string, records []model.BlockingRecord) error {
	return appendRows(path, blockingColumns, len(records), func(i int) []string {
		b := records[i]
		return []string{
			b.BlockedIP,
			strconv.FormatInt(b.AttackPacketsBlocked, 10),
			strconv.FormatInt(b.LegitimatePacketsBlocked, 10),
			strconv.FormatFloat(b.BlockingEfficiency, 'f', -1, 64),
			strconv.FormatFloat(b.CollateralDamage, 'f', -1, 64),
			strconv.FormatFloat(b.BlockTimeMS, 'f', -1, 64),
		}
	})
}

func appendRows(path string, header []string, n int, row func(i int) []string) error {
	info, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr) || (statErr == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for i := 0; i < n; i++ {
		if err := w.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
