package model

import "time"

// ConfusionMatrix holds the four outcome counts comparing each alert's
// predicted label (attack_flag) against the ground truth (global_attack).
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalseNegatives int `json:"false_negatives"`
}

// Total returns the number of classified records the matrix was built from.
func (m ConfusionMatrix) Total() int {
	return m.TruePositives + m.FalsePositives + m.TrueNegatives + m.FalseNegatives
}

// AccuracyMetrics is the confusion matrix plus the five rates derived from
// it. Every rate resolves to 0 when its denominator is 0 so the report always
// renders a number.
type AccuracyMetrics struct {
	Confusion         ConfusionMatrix `json:"confusion"`
	Precision         float64         `json:"precision"`
	Recall            float64         `json:"recall"`
	F1                float64         `json:"f1"`
	Accuracy          float64         `json:"accuracy"`
	FalsePositiveRate float64         `json:"false_positive_rate"`
}

// MethodCounts totals how many windows each detection method flagged.
type MethodCounts struct {
	Entropy int64 `json:"entropy"`
	Cusum   int64 `json:"cusum"`
	ML      int64 `json:"ml"`
}

// WorkerStats summarizes the load observed by a single worker rank.
type WorkerStats struct {
	Rank             int     `json:"rank"`
	Alerts           int     `json:"alerts"`
	TotalPackets     int64   `json:"total_packets"`
	MeanProcessingMS float64 `json:"mean_processing_ms"`
	MeanMemoryKB     float64 `json:"mean_memory_kb"`
	// ThroughputPerMS is TotalPackets divided by the mean window processing
	// time, 0 when the mean is 0.
	ThroughputPerMS float64 `json:"throughput_per_ms"`
}

// PerformanceMetrics aggregates processing cost across all alerts, globally
// and per worker. Workers are ordered by ascending rank.
type PerformanceMetrics struct {
	MeanProcessingMS float64 `json:"mean_processing_ms"`
	TotalPackets     int64   `json:"total_packets"`
	MeanMemoryKB     float64 `json:"mean_memory_kb"`
	// ThroughputPerSec is the packet total divided by the summed processing
	// time in seconds, 0 when no time was recorded.
	ThroughputPerSec float64       `json:"throughput_per_sec"`
	Workers          []WorkerStats `json:"workers"`
}

// BlockingMetrics summarizes mitigation effectiveness. It is only produced
// when at least one blocking record exists; means over an empty set are a
// "no data" state, not a division by zero.
type BlockingMetrics struct {
	Records                int     `json:"records"`
	AttackBlockedTotal     int64   `json:"attack_blocked_total"`
	LegitimateBlockedTotal int64   `json:"legitimate_blocked_total"`
	MeanAttackBlocked      float64 `json:"mean_attack_blocked"`
	MeanLegitimateBlocked  float64 `json:"mean_legitimate_blocked"`
	MeanBlockingEfficiency float64 `json:"mean_blocking_efficiency"`
	MeanCollateralDamage   float64 `json:"mean_collateral_damage"`
	MeanBlockTimeMS        float64 `json:"mean_block_time_ms"`
}

// Report is the full aggregation result for one analysis run. It is derived,
// immutable, and rebuilt from scratch on every run. Blocking is nil when no
// blocking data was available.
type Report struct {
	GeneratedAt  time.Time          `json:"generated_at"`
	Workers      int                `json:"workers"`
	TotalAlerts  int                `json:"total_alerts"`
	TotalAttacks int64              `json:"total_attacks"`
	Accuracy     AccuracyMetrics    `json:"accuracy"`
	Methods      MethodCounts       `json:"methods"`
	Performance  PerformanceMetrics `json:"performance"`
	Blocking     *BlockingMetrics   `json:"blocking,omitempty"`
}
