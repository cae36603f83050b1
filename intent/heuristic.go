package intent

import (
	"strings"

	"github.com/hupe1980/querymesh/core"
)

// Vocabulary signals per route. Matching is case-insensitive substring over
// the query text; multi-word entries catch phrases like "how many".
var (
	structuredVocab = []string{
		"total", "sum", "average", "avg", "count", "how many", "how much",
		"revenue", "sales", "metric", "kpi", "top ", "per ", "last month",
		"last quarter", "this year", "by region", "trend", "compare",
		"customers", "orders", "aggregate",
	}
	documentVocab = []string{
		"document", "report", "policy", "handbook", "file", "pdf", "doc",
		"says", "mention", "according to", "findings", "section", "paper",
		"notes", "write-up", "meeting minutes",
	}
)

// heuristicScores computes a keyword score in [0,1] for each substantive
// route. Scores saturate after a few hits; a query with no signal for either
// vocabulary leaves general knowledge as the leader.
func heuristicScores(q core.Query) map[core.RouteLabel]float64 {
	text := strings.ToLower(q.Text)
	scores := map[core.RouteLabel]float64{
		core.RouteDocumentRetrieval: vocabScore(text, documentVocab),
		core.RouteStructuredQuery:   vocabScore(text, structuredVocab),
		core.RouteGeneralKnowledge:  0.3, // weak prior; wins only when no signal
	}
	return scores
}

func vocabScore(text string, vocab []string) float64 {
	hits := 0
	for _, term := range vocab {
		if strings.Contains(text, term) {
			hits++
		}
	}
	switch {
	case hits == 0:
		return 0
	case hits == 1:
		return 0.55
	case hits == 2:
		return 0.75
	default:
		return 0.9
	}
}

// pickLabel selects the leading label, breaking epsilon ties toward
// DocumentRetrieval over StructuredQuery over GeneralKnowledge.
func pickLabel(scores map[core.RouteLabel]float64, epsilon float64) (core.RouteLabel, float64) {
	// fixed preference order makes the tie-break deterministic
	order := []core.RouteLabel{core.RouteDocumentRetrieval, core.RouteStructuredQuery, core.RouteGeneralKnowledge}

	best := order[0]
	for _, l := range order[1:] {
		if scores[l] > scores[best]+epsilon {
			best = l
		}
	}
	return best, scores[best]
}
