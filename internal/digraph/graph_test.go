package digraph

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tautenhahn/depengine/internal/filter"
	"github.com/tautenhahn/depengine/internal/tree"
)

func noopFilter() *filter.Filter { return filter.New() }

func refs(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

// buildCycleTree constructs four classes A, B, C, D with arcs A->B, B->C,
// C->A, C->D: a three-node cycle plus a pendant.
func buildCycleTree(t *testing.T) (*tree.Tree, *Graph) {
	t.Helper()
	tr := tree.New()
	f := noopFilter()
	tr.AddClass("dir:/proj", "app.A", refs("app.B"), false, f)
	tr.AddClass("dir:/proj", "app.B", refs("app.C"), false, f)
	tr.AddClass("dir:/proj", "app.C", refs("app.A", "app.D"), false, f)
	tr.AddClass("dir:/proj", "app.D", nil, false, f)
	return tr, Build(tr, tr.Root())
}

func nodeName(g *Graph, i int) string { return g.Nodes[i].DisplayName() }

func namesOf(g *Graph, idxs []int) []string {
	names := make([]string, len(idxs))
	for i, idx := range idxs {
		names[i] = nodeName(g, idx)
	}
	sort.Strings(names)
	return names
}

func allIndices(g *Graph) []int {
	out := make([]int, len(g.Nodes))
	for i := range g.Nodes {
		out[i] = i
	}
	return out
}

func TestTarjanFindsThreeCycleAndPendant(t *testing.T) {
	_, g := buildCycleTree(t)
	comps, err := Tarjan(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, comps, 2)
	assert.Len(t, comps[0], 3)
	assert.Equal(t, []string{"app.A", "app.B", "app.C"}, namesOf(g, comps[0]))
	require.Len(t, comps[1], 1)
	assert.Equal(t, "app.D", nodeName(g, comps[1][0]))
}

func TestCycleSubgraphIsThreeNodesWithCycleArcsOnly(t *testing.T) {
	_, g := buildCycleTree(t)
	sub, err := CycleSubgraph(context.Background(), g)
	require.NoError(t, err)
	assert.Len(t, sub.Nodes, 3)
	assert.Equal(t, 3, sub.ArcCount())
}

func TestDensityOfFourNodeSixArcGraph(t *testing.T) {
	tr := tree.New()
	f := noopFilter()
	tr.AddClass("dir:/proj", "app.A", refs("app.B", "app.C", "app.D"), false, f)
	tr.AddClass("dir:/proj", "app.B", refs("app.C", "app.D"), false, f)
	tr.AddClass("dir:/proj", "app.C", refs("app.D"), false, f)
	tr.AddClass("dir:/proj", "app.D", nil, false, f)
	g := Build(tr, tr.Root())

	require.Equal(t, 6, g.ArcCount())
	density, err := Density(g)
	require.NoError(t, err)
	assert.Equal(t, 0.5, density)
}

func TestDensityUndefinedBelowTwoNodes(t *testing.T) {
	tr := tree.New()
	f := noopFilter()
	tr.AddClass("dir:/proj", "app.Lonely", nil, false, f)
	g := Build(tr, tr.Root())
	_, err := Density(g)
	assert.Error(t, err)
}

func TestImpliedByForwardAndBackward(t *testing.T) {
	// Arcs: A->B, B->C, X->Y. implied-by(B, forward) = {B, C} with {B->C}.
	// implied-by(B, backward) = {A, B} with {A->B}.
	tr := tree.New()
	f := noopFilter()
	tr.AddClass("dir:/proj", "app.A", refs("app.B"), false, f)
	tr.AddClass("dir:/proj", "app.B", refs("app.C"), false, f)
	tr.AddClass("dir:/proj", "app.C", nil, false, f)
	tr.AddClass("dir:/proj", "app.X", refs("app.Y"), false, f)
	tr.AddClass("dir:/proj", "app.Y", nil, false, f)
	g := Build(tr, tr.Root())

	bNode, ok := tr.Find("dir:/proj.app.B")
	require.True(t, ok)
	bIdx := g.IndexOf(tr.Rep(bNode))
	require.GreaterOrEqual(t, bIdx, 0)

	forward := ImpliedBy(g, bIdx, true)
	assert.Equal(t, []string{"app.B", "app.C"}, namesOf(forward, allIndices(forward)))
	assert.Equal(t, 1, forward.ArcCount())

	backward := ImpliedBy(g, bIdx, false)
	assert.Equal(t, []string{"app.A", "app.B"}, namesOf(backward, allIndices(backward)))
	assert.Equal(t, 1, backward.ArcCount())
}

func TestTransitiveClosureIncludesCycleMembersSelves(t *testing.T) {
	_, g := buildCycleTree(t)
	closure, err := TransitiveClosure(context.Background(), g)
	require.NoError(t, err)

	var aIdx, dIdx int
	for i, n := range g.Nodes {
		switch n.DisplayName() {
		case "app.A":
			aIdx = i
		case "app.D":
			dIdx = i
		}
	}

	// A is in a 3-cycle with B and C, so A reaches itself, plus D.
	assert.True(t, closure[aIdx].Has(aIdx))
	assert.True(t, closure[aIdx].Has(dIdx))
	// D has no outgoing arcs and is not in a cycle, so it reaches nothing.
	assert.Equal(t, 0, closure[dIdx].Count())
}

func TestTransitiveDensityOfCycleTree(t *testing.T) {
	_, g := buildCycleTree(t)
	td, err := TransitiveDensity(context.Background(), g)
	require.NoError(t, err)
	require.NotZero(t, g.ArcCount())
	assert.Greater(t, td, 0.0)
	assert.LessOrEqual(t, td, 1.0)
}

func TestTarjanRespectsCancellation(t *testing.T) {
	_, g := buildCycleTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Tarjan(ctx, g)
	assert.Error(t, err)
}

func TestGraphStaleAfterTreeMutation(t *testing.T) {
	tr, g := buildCycleTree(t)
	assert.False(t, g.Stale(tr))
	f := noopFilter()
	tr.AddClass("dir:/proj", "app.E", nil, false, f)
	assert.True(t, g.Stale(tr))
}
