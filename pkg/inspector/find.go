package inspector

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/matzehuels/orgchart/pkg/chart"
)

// Match is a search hit.
type Match struct {
	Record chart.Record
	Text   string // the matched text
	Rank   int    // lower is closer
}

// Find returns the records whose field value fuzzily matches query, best
// first. Records without the field are matched by key. Ties keep collection
// order. A blank query matches nothing.
func Find(records []chart.Record, query, field string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	targets := make([]string, len(records))
	for i, r := range records {
		targets[i] = searchText(r, field)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]Match, len(ranks))
	for i, rk := range ranks {
		out[i] = Match{Record: records[rk.OriginalIndex], Text: rk.Target, Rank: rk.Distance}
	}
	return out
}

func searchText(r chart.Record, field string) string {
	if v := r.Value(field); v != "" {
		return v
	}
	return r.Key.String()
}
