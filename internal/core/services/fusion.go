package services

import (
	"sort"

	"github.com/litdb/litdb/internal/core/ports/driven"
)

// fusedHit is a document with its combined hybrid score.
type fusedHit struct {
	sourceID string
	score    float64
}

// normaliseCosts min-max scales cost scores (lower is better) into [0, 1].
// A list whose costs are all equal maps to 0.
func normaliseCosts(costs map[string]float64) map[string]float64 {
	if len(costs) == 0 {
		return costs
	}
	lo, hi := 0.0, 0.0
	first := true
	for _, c := range costs {
		if first {
			lo, hi = c, c
			first = false
			continue
		}
		lo = min(lo, c)
		hi = max(hi, c)
	}

	out := make(map[string]float64, len(costs))
	for id, c := range costs {
		if hi == lo {
			out[id] = 0
			continue
		}
		out[id] = (c - lo) / (hi - lo)
	}
	return out
}

// fuse combines vector distances and bm25 costs as
// 1/(1+v) + 1/(1+t), where an absent term contributes 0. The result is the
// union of both lists sorted by descending score, ties by source id.
func fuse(vector []driven.VectorHit, text []driven.SearchHit) []fusedHit {
	vc := make(map[string]float64, len(vector))
	for _, h := range vector {
		vc[h.SourceID] = h.Distance
	}
	tc := make(map[string]float64, len(text))
	for _, h := range text {
		tc[h.SourceID] = h.BM25
	}
	vn := normaliseCosts(vc)
	tn := normaliseCosts(tc)

	scores := make(map[string]float64, len(vn)+len(tn))
	for id, v := range vn {
		scores[id] += 1 / (1 + v)
	}
	for id, t := range tn {
		scores[id] += 1 / (1 + t)
	}

	hits := make([]fusedHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, fusedHit{sourceID: id, score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].sourceID < hits[j].sourceID
	})
	return hits
}
