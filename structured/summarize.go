package structured

import (
	"fmt"
	"strings"

	"github.com/hupe1980/querymesh/core"
)

// SummarizeResultSet renders a compact textual profile of a result set:
// record count, column list, min/max/avg for the first numeric columns and
// cardinality for the first categorical ones. The summary is fed to the
// model as grounding when narrating query results.
func SummarizeResultSet(rs *core.ResultSet) string {
	if rs == nil || len(rs.Rows) == 0 {
		return "No data found."
	}

	parts := []string{
		fmt.Sprintf("Found %d records", len(rs.Rows)),
		fmt.Sprintf("Columns: %s", strings.Join(rs.Columns, ", ")),
	}

	numericSeen := 0
	categoricalSeen := 0

	for col := range rs.Columns {
		if nums, ok := numericColumn(rs, col); ok {
			if numericSeen >= 3 {
				continue
			}

			numericSeen++

			minVal, maxVal, sum := nums[0], nums[0], 0.0
			for _, v := range nums {
				if v < minVal {
					minVal = v
				}

				if v > maxVal {
					maxVal = v
				}

				sum += v
			}

			parts = append(parts, fmt.Sprintf("%s: min=%v, max=%v, avg=%.2f",
				rs.Columns[col], formatNumber(minVal), formatNumber(maxVal), sum/float64(len(nums))))

			continue
		}

		if categoricalSeen >= 2 {
			continue
		}

		categoricalSeen++

		unique := uniqueStrings(rs, col)
		if len(unique) <= 10 {
			sample := unique
			if len(sample) > 5 {
				sample = sample[:5]
			}

			parts = append(parts, fmt.Sprintf("%s values: %s", rs.Columns[col], strings.Join(sample, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %d unique values", rs.Columns[col], len(unique)))
		}
	}

	return strings.Join(parts, "\n")
}

// numericColumn returns the column's values as floats when every non-nil
// cell is numeric.
func numericColumn(rs *core.ResultSet, col int) ([]float64, bool) {
	var nums []float64

	for _, row := range rs.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}

		v, ok := asFloat(row[col])
		if !ok {
			return nil, false
		}

		nums = append(nums, v)
	}

	return nums, len(nums) > 0
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// formatNumber renders whole floats without a trailing ".0" so summaries of
// integer columns read naturally.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}

	return fmt.Sprintf("%g", v)
}

// uniqueStrings lists distinct cell renderings in first-seen order.
func uniqueStrings(rs *core.ResultSet, col int) []string {
	seen := make(map[string]struct{})

	var unique []string

	for _, row := range rs.Rows {
		if col >= len(row) || row[col] == nil {
			continue
		}

		s := fmt.Sprintf("%v", row[col])
		if _, ok := seen[s]; ok {
			continue
		}

		seen[s] = struct{}{}
		unique = append(unique, s)
	}

	return unique
}
