package retriever

import "sort"

// fuse unions all scored candidates into per-id totals, treating a missing
// component score as 0.
func fuse(lexical, semantic map[string]float64, graph map[string]int, w Weights) map[string]candidateScore {
	out := make(map[string]candidateScore)
	for id, s := range lexical {
		c := out[id]
		c.lexical = s
		out[id] = c
	}
	for id, s := range semantic {
		c := out[id]
		c.semantic = s
		out[id] = c
	}
	for id, hops := range graph {
		c := out[id]
		c.graph = 1.0 / float64(1+hops)
		c.hops = hops
		out[id] = c
	}
	_ = w
	return out
}

// totalScore computes the weighted fused score for one candidate.
func totalScore(c candidateScore, w Weights) float64 {
	return c.lexical*w.Lexical + c.semantic*w.Semantic + c.graph*w.Graph
}

// orderedIDs sorts candidate ids by fused score descending, breaking ties
// by id ascending for a deterministic, cursor-safe ordering.
func orderedIDs(scores map[string]candidateScore, w Weights) []string {
	type row struct {
		id    string
		total float64
	}
	rows := make([]row, 0, len(scores))
	for id, c := range scores {
		rows = append(rows, row{id: id, total: totalScore(c, w)})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].total != rows[j].total {
			return rows[i].total > rows[j].total
		}
		return rows[i].id < rows[j].id
	})
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.id
	}
	return ids
}
