package structured

import (
	"fmt"
	"strings"

	"github.com/hupe1980/querymesh/core"
)

// Chart types suggested for result sets.
const (
	ChartLine    = "line"
	ChartBar     = "bar"
	ChartScatter = "scatter"
)

// maxChartRows skips visualization for oversized result sets.
const maxChartRows = 1000

// SuggestChart picks a chart type for a result set based on the question
// wording and the shape of the data. It returns "" when no chart is
// appropriate (too few rows, too many rows, or nothing plottable).
func SuggestChart(rs *core.ResultSet, question string) string {
	if rs == nil || len(rs.Rows) < 2 || len(rs.Rows) > maxChartRows {
		return ""
	}

	lower := strings.ToLower(question)

	if strings.Contains(lower, "trend") || strings.Contains(lower, "over time") {
		return ChartLine
	}

	if strings.Contains(lower, "compare") || strings.Contains(lower, " vs") {
		return ChartBar
	}

	numeric, categorical := columnShapes(rs)

	switch {
	case numeric >= 1 && categorical >= 1:
		if len(rs.Rows) <= 20 {
			return ChartBar
		}

		return ChartLine
	case numeric >= 2:
		return ChartScatter
	}

	if len(rs.Rows) <= 50 {
		return ChartBar
	}

	return ""
}

// BuildChartPayload assembles the chart attachment payload for a result set:
// the first categorical column are labels, the first numeric column are
// values. Returns nil when the result set cannot back the given chart type.
func BuildChartPayload(rs *core.ResultSet, chartType string) map[string]any {
	if chartType == "" || rs == nil || len(rs.Rows) == 0 {
		return nil
	}

	labelCol, valueCol := -1, -1

	for col := range rs.Columns {
		if _, ok := numericColumn(rs, col); ok {
			if valueCol < 0 {
				valueCol = col
			}
		} else if labelCol < 0 {
			labelCol = col
		}
	}

	if valueCol < 0 {
		return nil
	}

	var (
		labels []string
		values []float64
	)

	for i, row := range rs.Rows {
		if valueCol >= len(row) {
			continue
		}

		v, ok := asFloat(row[valueCol])
		if !ok {
			continue
		}

		values = append(values, v)

		if labelCol >= 0 {
			labels = append(labels, uniqueLabel(row, labelCol))
		} else {
			labels = append(labels, rs.Columns[valueCol]+"-"+formatNumber(float64(i+1)))
		}
	}

	if len(values) == 0 {
		return nil
	}

	return map[string]any{
		"type":   chartType,
		"title":  rs.Columns[valueCol],
		"labels": labels,
		"values": values,
	}
}

// columnShapes counts numeric versus categorical columns in a result set.
func columnShapes(rs *core.ResultSet) (numeric, categorical int) {
	for col := range rs.Columns {
		if _, ok := numericColumn(rs, col); ok {
			numeric++
		} else {
			categorical++
		}
	}

	return numeric, categorical
}

func uniqueLabel(row []any, col int) string {
	if col >= len(row) || row[col] == nil {
		return ""
	}

	if s, ok := row[col].(string); ok {
		return s
	}

	if v, ok := asFloat(row[col]); ok {
		return formatNumber(v)
	}

	return fmt.Sprintf("%v", row[col])
}
