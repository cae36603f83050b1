package structured

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/querymesh/core"
)

func regionTotals() *core.ResultSet {
	return &core.ResultSet{
		Columns: []string{"region", "total"},
		Rows: [][]any{
			{"north", int64(1200)},
			{"south", int64(1500)},
			{"west", int64(800)},
		},
	}
}

func TestSuggestChart(t *testing.T) {
	tests := []struct {
		name     string
		rs       *core.ResultSet
		question string
		want     string
	}{
		{"trend wording wins", regionTotals(), "show the sales trend", ChartLine},
		{"over time wording wins", regionTotals(), "revenue over time", ChartLine},
		{"compare wording wins", regionTotals(), "compare regions", ChartBar},
		{"categorical plus numeric, few rows", regionTotals(), "totals by region", ChartBar},
		{"two numeric columns", &core.ResultSet{
			Columns: []string{"price", "quantity"},
			Rows:    [][]any{{1.5, int64(10)}, {2.0, int64(7)}, {3.25, int64(4)}},
		}, "price against quantity", ChartScatter},
		{"single row", &core.ResultSet{
			Columns: []string{"total"},
			Rows:    [][]any{{int64(42)}},
		}, "grand total", ""},
		{"nil result set", nil, "anything", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SuggestChart(tt.rs, tt.question))
		})
	}
}

func TestSuggestChartManyRowsUsesLine(t *testing.T) {
	rs := &core.ResultSet{Columns: []string{"day", "total"}}
	for i := 0; i < 30; i++ {
		rs.Rows = append(rs.Rows, []any{"day", int64(i)})
	}

	assert.Equal(t, ChartLine, SuggestChart(rs, "daily totals"))
}

func TestSuggestChartSkipsOversizedResults(t *testing.T) {
	rs := &core.ResultSet{Columns: []string{"region", "total"}}
	for i := 0; i <= maxChartRows; i++ {
		rs.Rows = append(rs.Rows, []any{"r", int64(i)})
	}

	assert.Equal(t, "", SuggestChart(rs, "totals by region"))
}

func TestBuildChartPayload(t *testing.T) {
	payload := BuildChartPayload(regionTotals(), ChartBar)
	require.NotNil(t, payload)

	assert.Equal(t, ChartBar, payload["type"])
	assert.Equal(t, "total", payload["title"])
	assert.Equal(t, []string{"north", "south", "west"}, payload["labels"])
	assert.Equal(t, []float64{1200, 1500, 800}, payload["values"])
}

func TestBuildChartPayloadNumericOnly(t *testing.T) {
	rs := &core.ResultSet{
		Columns: []string{"total"},
		Rows:    [][]any{{int64(10)}, {int64(20)}},
	}

	payload := BuildChartPayload(rs, ChartLine)
	require.NotNil(t, payload)

	assert.Equal(t, []string{"total-1", "total-2"}, payload["labels"])
	assert.Equal(t, []float64{10, 20}, payload["values"])
}

func TestBuildChartPayloadRejectsUnplottable(t *testing.T) {
	assert.Nil(t, BuildChartPayload(regionTotals(), ""))
	assert.Nil(t, BuildChartPayload(nil, ChartBar))

	textOnly := &core.ResultSet{
		Columns: []string{"region"},
		Rows:    [][]any{{"north"}, {"south"}},
	}
	assert.Nil(t, BuildChartPayload(textOnly, ChartBar))
}

func TestBuildChartPayloadRaggedRows(t *testing.T) {
	rs := &core.ResultSet{
		Columns: []string{"region", "total"},
		Rows: [][]any{
			{"north", int64(1200)},
			{"south"},
			{"west", int64(800)},
		},
	}

	payload := BuildChartPayload(rs, ChartBar)
	require.NotNil(t, payload)

	assert.Equal(t, []float64{1200, 800}, payload["values"])
	assert.Equal(t, []string{"north", "west"}, payload["labels"])
}
