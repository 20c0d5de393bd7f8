package schema

import (
	"math"
	"strconv"
	"strings"

	"Go2FlowLens/internal/table"
)

// Sanitize prepares a raw table for column resolution: placeholder columns
// added by export tools are dropped, and infinite or missing cells are
// rewritten to "0". Runs before Resolve so numeric columns never carry
// infinities or missing markers into parsing.
func Sanitize(t *table.Table) {
	t.DropColumns(func(name string) bool {
		return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(name)), "unnamed")
	})

	for _, row := range t.Rows {
		for i, c := range row {
			s := strings.TrimSpace(c)
			if s == "" || isMissing(s) || isInfinite(s) {
				row[i] = "0"
			}
		}
	}
}

func isMissing(s string) bool {
	switch strings.ToLower(s) {
	case "nan", "na", "n/a", "null", "none":
		return true
	}
	return false
}

func isInfinite(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && math.IsInf(f, 0)
}
