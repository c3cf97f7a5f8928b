// Package digraph builds an immutable, indexed snapshot of the currently
// visible dependency graph and runs the graph algorithms on it: Tarjan
// strongly-connected-components, transitive closure, reachability from a
// set of entry nodes, edge density, and induced subgraphs.
package digraph

import (
	"context"
	"sort"

	"github.com/tautenhahn/depengine/internal/apperr"
	"github.com/tautenhahn/depengine/internal/digraph/bitset"
	"github.com/tautenhahn/depengine/internal/tree"
)

// Graph is a flat, indexed snapshot of the visible nodes under some root,
// at the collapse state in effect when Build was called. It never changes
// after construction; Epoch records the tree epoch it was built from so
// callers can detect staleness.
type Graph struct {
	Nodes []*tree.Node
	succ  [][]int
	pred  [][]int
	index map[*tree.Node]int
	Epoch uint64
}

// Stale reports whether tr has mutated (a collapse state change or a new
// class added) since g was built.
func (g *Graph) Stale(tr *tree.Tree) bool { return tr.Epoch() != g.Epoch }

// IndexOf returns n's index in the snapshot, or -1 if n is not visible.
func (g *Graph) IndexOf(n *tree.Node) int {
	if i, ok := g.index[n]; ok {
		return i
	}
	return -1
}

// Successors returns the visible successor indices of node i.
func (g *Graph) Successors(i int) []int { return g.succ[i] }

// Predecessors returns the visible predecessor indices of node i.
func (g *Graph) Predecessors(i int) []int { return g.pred[i] }

// ArcCount returns the total number of distinct visible arcs.
func (g *Graph) ArcCount() int {
	total := 0
	for _, s := range g.succ {
		total += len(s)
	}
	return total
}

// Build walks root's current projection (tree.Node.WalkSubTree, which
// already honors list mode) and computes, for each visible node, its
// deduplicated, self-arc-free successor set via tree.VisibleSuccessors.
// Expanded containers hold no content of their own and are not graph
// nodes: the snapshot holds class leaves and collapsed or
// leafs-collapsed containers only. Arcs landing outside root's own
// visible set are dropped, which makes Build equally suitable for a
// whole-tree snapshot (root is the tree's root) and for a restricted
// subgraph view.
func Build(tr *tree.Tree, root *tree.Node) *Graph {
	var nodes []*tree.Node
	for n := range root.WalkSubTree() {
		if n.Kind() == tree.KindContainer && n.ListMode() == tree.Expanded {
			continue
		}
		nodes = append(nodes, n)
	}
	index := make(map[*tree.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	succ := make([][]int, len(nodes))
	for i, n := range nodes {
		seen := make(map[int]bool)
		for _, s := range tr.VisibleSuccessors(n) {
			j, ok := index[s]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			succ[i] = append(succ[i], j)
		}
	}

	pred := make([][]int, len(nodes))
	for i, outs := range succ {
		for _, j := range outs {
			pred[j] = append(pred[j], i)
		}
	}

	return &Graph{Nodes: nodes, succ: succ, pred: pred, index: index, Epoch: tr.Epoch()}
}

// induced returns the subgraph of g containing only the nodes whose
// original index is in keep, with arcs preserved where both endpoints
// survive, reindexed contiguously from 0.
func induced(g *Graph, keep []int) *Graph {
	sort.Ints(keep)
	newIndex := make(map[int]int, len(keep))
	nodes := make([]*tree.Node, len(keep))
	index := make(map[*tree.Node]int, len(keep))
	for newI, oldI := range keep {
		newIndex[oldI] = newI
		nodes[newI] = g.Nodes[oldI]
		index[g.Nodes[oldI]] = newI
	}

	succ := make([][]int, len(nodes))
	for newI, oldI := range keep {
		for _, oldJ := range g.succ[oldI] {
			if newJ, ok := newIndex[oldJ]; ok {
				succ[newI] = append(succ[newI], newJ)
			}
		}
	}
	pred := make([][]int, len(nodes))
	for i, outs := range succ {
		for _, j := range outs {
			pred[j] = append(pred[j], i)
		}
	}
	return &Graph{Nodes: nodes, succ: succ, pred: pred, index: index, Epoch: g.Epoch}
}

func cancelled() error { return apperr.New(apperr.Cancelled, "computation was cancelled") }

func checkCancel(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return cancelled()
	}
	return nil
}

// tarjanComponents runs an iterative Tarjan SCC search and returns the
// components in completion order: a component finishes only after every
// component it has an arc into has already finished, so this order is
// already the reverse topological order the transitive closure needs.
func tarjanComponents(ctx context.Context, g *Graph) ([][]int, error) {
	n := len(g.Nodes)
	index := make([]int, n)
	lowlink := make([]int, n)
	onStack := make([]bool, n)
	var stack []int
	var comps [][]int
	counter := 0

	type frame struct {
		node     int
		childIdx int
	}

	for start := 0; start < n; start++ {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		if index[start] != 0 {
			continue
		}

		work := []frame{{node: start}}
		counter++
		index[start] = counter
		lowlink[start] = counter
		stack = append(stack, start)
		onStack[start] = true

		for len(work) > 0 {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
			top := &work[len(work)-1]
			v := top.node
			if top.childIdx < len(g.succ[v]) {
				w := g.succ[v][top.childIdx]
				top.childIdx++
				switch {
				case index[w] == 0:
					counter++
					index[w] = counter
					lowlink[w] = counter
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, frame{node: w})
				case onStack[w] && index[w] < lowlink[v]:
					lowlink[v] = index[w]
				}
				continue
			}

			work = work[:len(work)-1]
			if lowlink[v] == index[v] {
				var comp []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				comps = append(comps, comp)
			}
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if lowlink[v] < lowlink[parent.node] {
					lowlink[parent.node] = lowlink[v]
				}
			}
		}
	}
	return comps, nil
}

// Tarjan returns the graph's strongly-connected components, sorted by
// descending size and, for ties, ascending smallest member index.
func Tarjan(ctx context.Context, g *Graph) ([][]int, error) {
	comps, err := tarjanComponents(ctx, g)
	if err != nil {
		return nil, err
	}
	for _, c := range comps {
		sort.Ints(c)
	}
	sort.Slice(comps, func(i, j int) bool {
		if len(comps[i]) != len(comps[j]) {
			return len(comps[i]) > len(comps[j])
		}
		return comps[i][0] < comps[j][0]
	})
	return comps, nil
}

// CycleSubgraph returns the subgraph induced by the union of every
// strongly-connected component of size 2 or more; inter-component arcs
// are dropped, arcs within a component are preserved.
func CycleSubgraph(ctx context.Context, g *Graph) (*Graph, error) {
	comps, err := tarjanComponents(ctx, g)
	if err != nil {
		return nil, err
	}
	var keep []int
	for _, c := range comps {
		if len(c) > 1 {
			keep = append(keep, c...)
		}
	}
	return induced(g, keep), nil
}

// TransitiveClosure computes, for every node i, the set of nodes reachable
// from i, excluding i itself unless i belongs to a cycle of size 2 or
// more (in which case it reaches itself). Computed by SCC condensation
// followed by a pass over components in reverse topological order.
func TransitiveClosure(ctx context.Context, g *Graph) ([]*bitset.Set, error) {
	comps, err := tarjanComponents(ctx, g)
	if err != nil {
		return nil, err
	}
	n := len(g.Nodes)
	compOf := make([]int, n)
	members := make([]*bitset.Set, len(comps))
	for ci, comp := range comps {
		m := bitset.New(n)
		for _, idx := range comp {
			compOf[idx] = ci
			m.Add(idx)
		}
		members[ci] = m
	}

	closures := make([]*bitset.Set, len(comps))
	for ci, comp := range comps {
		if err := checkCancel(ctx); err != nil {
			return nil, err
		}
		set := bitset.New(n)
		if len(comp) > 1 {
			set.Union(members[ci])
		}
		seen := make(map[int]bool)
		for _, idx := range comp {
			for _, s := range g.succ[idx] {
				sc := compOf[s]
				if sc == ci || seen[sc] {
					continue
				}
				seen[sc] = true
				set.Union(members[sc])
				set.Union(closures[sc])
			}
		}
		closures[ci] = set
	}

	result := make([]*bitset.Set, n)
	for ci, comp := range comps {
		for _, idx := range comp {
			result[idx] = closures[ci]
		}
	}
	return result, nil
}

// ReachableFrom returns the set of node indices reachable from entries by
// following successor arcs, or predecessor arcs if backward is true.
// entries are always included in the result.
func ReachableFrom(g *Graph, entries []int, backward bool) *bitset.Set {
	adj := g.succ
	if backward {
		adj = g.pred
	}
	visited := bitset.New(len(g.Nodes))
	var queue []int
	for _, e := range entries {
		if !visited.Has(e) {
			visited.Add(e)
			queue = append(queue, e)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited.Has(next) {
				visited.Add(next)
				queue = append(queue, next)
			}
		}
	}
	return visited
}

// Density returns the classical edge density m/(n*(n-1)) of g. An
// EmptyGraphDensity error is returned for graphs with fewer than two
// nodes, for which the measure is undefined.
func Density(g *Graph) (float64, error) {
	n := len(g.Nodes)
	if n < 2 {
		return 0, apperr.New(apperr.EmptyGraphDensity, "density is undefined for fewer than two nodes")
	}
	return float64(g.ArcCount()) / float64(n*(n-1)), nil
}

// TransitiveDensity returns the edge density of g's transitive closure.
func TransitiveDensity(ctx context.Context, g *Graph) (float64, error) {
	closure, err := TransitiveClosure(ctx, g)
	if err != nil {
		return 0, err
	}
	succ := make([][]int, len(g.Nodes))
	for i, set := range closure {
		for _, j := range set.Elements() {
			if j != i {
				succ[i] = append(succ[i], j)
			}
		}
	}
	transitive := &Graph{Nodes: g.Nodes, succ: succ, index: g.index, Epoch: g.Epoch}
	return Density(transitive)
}

// ImpliedBy returns the subgraph induced by the nodes reachable from x:
// forward-reachable if useSuccessors, backward-reachable otherwise.
func ImpliedBy(g *Graph, x int, useSuccessors bool) *Graph {
	reachable := ReachableFrom(g, []int{x}, !useSuccessors)
	return induced(g, reachable.Elements())
}
