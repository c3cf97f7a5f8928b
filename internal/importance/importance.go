// Package importance ranks classes in a dependency graph by PageRank, so
// callers can surface the small set of classes the rest of the codebase
// leans on most heavily.
package importance

import (
	"math"
	"sort"

	"github.com/tautenhahn/depengine/internal/digraph"
)

// Score pairs a class's display name with its PageRank weight.
type Score struct {
	Name string
	Rank float64
}

// Rank computes PageRank over g's successor arcs (A depends on B means A's
// rank flows to B, so classes many others depend on accumulate weight) and
// returns scores sorted by descending rank, ties broken by name.
func Rank(g *digraph.Graph) []Score {
	n := len(g.Nodes)
	if n == 0 {
		return nil
	}

	outDegree := make([]int, n)
	for i := 0; i < n; i++ {
		outDegree[i] = len(g.Successors(i))
	}

	ranks := pageRank(n, func(i int) []int { return g.Successors(i) }, outDegree, 0.85, 100, 1e-6)

	scores := make([]Score, n)
	for i, node := range g.Nodes {
		scores[i] = Score{Name: node.DisplayName(), Rank: ranks[i]}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Rank != scores[j].Rank {
			return scores[i].Rank > scores[j].Rank
		}
		return scores[i].Name < scores[j].Name
	})
	return scores
}

// TopN returns the first n scores, or all of them if n is <= 0 or exceeds
// the input length.
func TopN(scores []Score, n int) []Score {
	if n <= 0 || n >= len(scores) {
		return scores
	}
	return scores[:n]
}

func pageRank(n int, successors func(int) []int, outDegree []int, alpha float64, maxIter int, tol float64) []float64 {
	rank := make([]float64, n)
	initial := 1.0 / float64(n)
	for i := range rank {
		rank[i] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make([]float64, n)

		var danglingSum float64
		for i := 0; i < n; i++ {
			if outDegree[i] == 0 {
				danglingSum += rank[i]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for i := range newRank {
			newRank[i] = teleport + danglingContrib
		}

		for src := 0; src < n; src++ {
			deg := outDegree[src]
			if deg == 0 {
				continue
			}
			contrib := alpha * rank[src] / float64(deg)
			for _, tgt := range successors(src) {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for i := range newRank {
			diff += math.Abs(newRank[i] - rank[i])
		}

		rank = newRank
		if diff < tol {
			break
		}
	}

	return rank
}
