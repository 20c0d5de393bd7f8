package report

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"Go2FlowLens/internal/model"
)

const lineWidth = 70

var (
	heavyRule = strings.Repeat("=", lineWidth)
	lightRule = strings.Repeat("-", lineWidth)
)

// Format renders the analysis report as text. Section order and numeric
// precision are fixed: rates carry 4 decimals, millisecond and percentage
// figures 2, block time 3.
func Format(r model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", heavyRule)
	fmt.Fprintf(&b, "DDoS DETECTION SYSTEM - PERFORMANCE ANALYSIS REPORT\n")
	fmt.Fprintf(&b, "%s\n\n", heavyRule)

	fmt.Fprintf(&b, "1. SYSTEM CONFIGURATION\n%s\n", lightRule)
	fmt.Fprintf(&b, "Number of Workers: %d\n", r.Workers)
	fmt.Fprintf(&b, "Total Alerts Generated: %d\n", r.TotalAlerts)
	fmt.Fprintf(&b, "Total Attacks Detected: %d\n\n", r.TotalAttacks)

	fmt.Fprintf(&b, "2. DETECTION ACCURACY METRICS\n%s\n", lightRule)
	m := r.Accuracy
	fmt.Fprintf(&b, "%s %d\n", dotPad("True Positives"), m.Confusion.TruePositives)
	fmt.Fprintf(&b, "%s %d\n", dotPad("False Positives"), m.Confusion.FalsePositives)
	fmt.Fprintf(&b, "%s %d\n", dotPad("True Negatives"), m.Confusion.TrueNegatives)
	fmt.Fprintf(&b, "%s %d\n", dotPad("False Negatives"), m.Confusion.FalseNegatives)
	fmt.Fprintf(&b, "%s %.4f\n", dotPad("Precision"), m.Precision)
	fmt.Fprintf(&b, "%s %.4f\n", dotPad("Recall"), m.Recall)
	fmt.Fprintf(&b, "%s %.4f\n", dotPad("F1-Score"), m.F1)
	fmt.Fprintf(&b, "%s %.4f\n", dotPad("Accuracy"), m.Accuracy)
	fmt.Fprintf(&b, "%s %.4f\n\n", dotPad("False Positive Rate"), m.FalsePositiveRate)

	fmt.Fprintf(&b, "3. DETECTION METHOD ANALYSIS\n%s\n", lightRule)
	fmt.Fprintf(&b, "Entropy-based detections: %d\n", r.Methods.Entropy)
	fmt.Fprintf(&b, "CUSUM detections:         %d\n", r.Methods.Cusum)
	fmt.Fprintf(&b, "ML-based detections:      %d\n\n", r.Methods.ML)

	fmt.Fprintf(&b, "4. PERFORMANCE METRICS\n%s\n", lightRule)
	p := r.Performance
	fmt.Fprintf(&b, "Average Processing Time:  %.2f ms\n", p.MeanProcessingMS)
	fmt.Fprintf(&b, "Total Packets Processed:  %d\n", p.TotalPackets)
	fmt.Fprintf(&b, "Average Memory Usage:     %.2f KB\n", p.MeanMemoryKB)
	fmt.Fprintf(&b, "Throughput:               %.2f packets/sec\n\n", p.ThroughputPerSec)

	fmt.Fprintf(&b, "5. BLOCKING EFFECTIVENESS\n%s\n", lightRule)
	if r.Blocking != nil {
		bl := r.Blocking
		fmt.Fprintf(&b, "Attack Packets Blocked:       %d\n", bl.AttackBlockedTotal)
		fmt.Fprintf(&b, "Legitimate Packets Blocked:   %d\n", bl.LegitimateBlockedTotal)
		fmt.Fprintf(&b, "Average Blocking Efficiency:  %.2f%%\n", bl.MeanBlockingEfficiency*100)
		fmt.Fprintf(&b, "Average Collateral Damage:    %.2f%%\n", bl.MeanCollateralDamage*100)
		fmt.Fprintf(&b, "Average Block Time:           %.3f ms\n\n", bl.MeanBlockTimeMS)
	} else {
		fmt.Fprintf(&b, "No blocking data available\n\n")
	}

	fmt.Fprintf(&b, "6. WORKER LOAD DISTRIBUTION\n%s\n", lightRule)
	fmt.Fprintf(&b, "%-10s %15s %20s\n", "Worker", "Packets", "Avg Time (ms)")
	fmt.Fprintf(&b, "%s\n", lightRule)
	for _, w := range p.Workers {
		fmt.Fprintf(&b, "%-10d %15d %20.2f\n", w.Rank, w.TotalPackets, w.MeanProcessingMS)
	}

	fmt.Fprintf(&b, "\n%s\nEND OF REPORT\n%s\n", heavyRule, heavyRule)
	return b.String()
}

// Render writes the text report to w.
func Render(w io.Writer, r model.Report) error {
	_, err := io.WriteString(w, Format(r))
	return err
}

// WriteFile renders the report into path, creating parent directories as
// needed.
func WriteFile(path string, r model.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", path, err)
	}
	defer f.Close()

	if err := Render(f, r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Printf("Generated analysis report: %s", path)
	return nil
}

// FormatSummary renders the short accuracy block printed to the console
// after an analysis run.
func FormatSummary(r model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nSUMMARY\n%s\n", heavyRule, heavyRule)
	fmt.Fprintf(&b, "Precision:  %.4f\n", r.Accuracy.Precision)
	fmt.Fprintf(&b, "Recall:     %.4f\n", r.Accuracy.Recall)
	fmt.Fprintf(&b, "F1-Score:   %.4f\n", r.Accuracy.F1)
	fmt.Fprintf(&b, "Accuracy:   %.4f\n", r.Accuracy.Accuracy)
	fmt.Fprintf(&b, "FPR:        %.4f\n", r.Accuracy.FalsePositiveRate)
	fmt.Fprintf(&b, "%s\n", heavyRule)
	return b.String()
}

// dotPad left-aligns a metric label in a 30-column dotted field.
func dotPad(label string) string {
	if len(label) >= 30 {
		return label
	}
	return label + strings.Repeat(".", 30-len(label))
}
