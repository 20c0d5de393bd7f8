package aggregate

import (
	"sort"
	"time"

	"Go2FlowLens/internal/model"
)

// Confusion counts classification outcomes over all alerts, with attack_flag
// as the predicted label and global_attack as the ground truth. Flags are
// interpreted as booleans (any nonzero value counts as 1), so the four
// buckets always sum to the number of alerts.
func Confusion(alerts []model.AlertRecord) model.ConfusionMatrix {
	var m model.ConfusionMatrix
	for _, a := range alerts {
		predicted := a.AttackFlag != 0
		actual := a.GlobalAttack != 0
		switch {
		case predicted && actual:
			m.TruePositives++
		case predicted && !actual:
			m.FalsePositives++
		case !predicted && !actual:
			m.TrueNegatives++
		default:
			m.FalseNegatives++
		}
	}
	return m
}

// Accuracy derives the five rates from the confusion matrix. Every division
// by zero resolves to 0 rather than NaN so downstream rendering never has to
// special-case a result.
func Accuracy(alerts []model.AlertRecord) model.AccuracyMetrics {
	m := Confusion(alerts)
	tp := float64(m.TruePositives)
	fp := float64(m.FalsePositives)
	tn := float64(m.TrueNegatives)
	fn := float64(m.FalseNegatives)

	acc := model.AccuracyMetrics{Confusion: m}
	acc.Precision = ratio(tp, tp+fp)
	acc.Recall = ratio(tp, tp+fn)
	acc.F1 = ratio(2*acc.Precision*acc.Recall, acc.Precision+acc.Recall)
	acc.Accuracy = ratio(tp+tn, tp+tn+fp+fn)
	acc.FalsePositiveRate = ratio(fp, fp+tn)
	return acc
}

// Methods totals the per-method detection indicators.
func Methods(alerts []model.AlertRecord) model.MethodCounts {
	var mc model.MethodCounts
	for _, a := range alerts {
		mc.Entropy += int64(a.EntropyDetected)
		mc.Cusum += int64(a.CusumDetected)
		mc.ML += int64(a.MLDetected)
	}
	return mc
}

type workerAccum struct {
	alerts  int
	packets int64
	timeSum float64
	memSum  float64
}

// Performance computes processing cost globally and per worker rank. Global
// throughput is packets over summed processing time in seconds; per-worker
// throughput is packets over the worker's mean window time in milliseconds.
// Both are 0 when the time denominator is 0.
func Performance(alerts []model.AlertRecord) model.PerformanceMetrics {
	var p model.PerformanceMetrics
	var timeSum, memSum float64

	byRank := make(map[int]*workerAccum)
	for _, a := range alerts {
		p.TotalPackets += a.TotalPackets
		timeSum += a.ProcessingTimeMS
		memSum += a.MemoryUsedKB

		w := byRank[a.WorkerRank]
		if w == nil {
			w = &workerAccum{}
			byRank[a.WorkerRank] = w
		}
		w.alerts++
		w.packets += a.TotalPackets
		w.timeSum += a.ProcessingTimeMS
		w.memSum += a.MemoryUsedKB
	}

	if len(alerts) > 0 {
		p.MeanProcessingMS = timeSum / float64(len(alerts))
		p.MeanMemoryKB = memSum / float64(len(alerts))
	}
	p.ThroughputPerSec = ratio(float64(p.TotalPackets), timeSum/1000)

	ranks := make([]int, 0, len(byRank))
	for rank := range byRank {
		ranks = append(ranks, rank)
	}
	sort.Ints(ranks)

	p.Workers = make([]model.WorkerStats, 0, len(ranks))
	for _, rank := range ranks {
		w := byRank[rank]
		stats := model.WorkerStats{
			Rank:             rank,
			Alerts:           w.alerts,
			TotalPackets:     w.packets,
			MeanProcessingMS: w.timeSum / float64(w.alerts),
			MeanMemoryKB:     w.memSum / float64(w.alerts),
		}
		stats.ThroughputPerMS = ratio(float64(w.packets), stats.MeanProcessingMS)
		p.Workers = append(p.Workers, stats)
	}
	return p
}

// Blocking averages the mitigation outcomes. An empty record set is a valid
// "no blocking data" state, reported through the second return value instead
// of dividing by zero.
func Blocking(records []model.BlockingRecord) (model.BlockingMetrics, bool) {
	if len(records) == 0 {
		return model.BlockingMetrics{}, false
	}

	b := model.BlockingMetrics{Records: len(records)}
	var effSum, dmgSum, blockSum float64
	for _, r := range records {
		b.AttackBlockedTotal += r.AttackPacketsBlocked
		b.LegitimateBlockedTotal += r.LegitimatePacketsBlocked
		effSum += r.BlockingEfficiency
		dmgSum += r.CollateralDamage
		blockSum += r.BlockTimeMS
	}

	n := float64(len(records))
	b.MeanAttackBlocked = float64(b.AttackBlockedTotal) / n
	b.MeanLegitimateBlocked = float64(b.LegitimateBlockedTotal) / n
	b.MeanBlockingEfficiency = effSum / n
	b.MeanCollateralDamage = dmgSum / n
	b.MeanBlockTimeMS = blockSum / n
	return b, true
}

// Aggregate computes the full report for one analysis run. Inputs are only
// read; the report is built from scratch every time.
func Aggregate(alerts []model.AlertRecord, blocking []model.BlockingRecord) model.Report {
	report := model.Report{
		GeneratedAt: time.Now().UTC(),
		TotalAlerts: len(alerts),
		Accuracy:    Accuracy(alerts),
		Methods:     Methods(alerts),
		Performance: Performance(alerts),
	}
	report.Workers = len(report.Performance.Workers)
	for _, a := range alerts {
		report.TotalAttacks += int64(a.AttackFlag)
	}
	if b, ok := Blocking(blocking); ok {
		report.Blocking = &b
	}
	return report
}

// ratio applies the global divide-by-zero policy: a/b, or 0 when b is 0.
func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
