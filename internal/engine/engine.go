// Package engine wires the classpath enumerator, bytecode extractor,
// filter and hierarchical tree into a single load pass, then exposes the
// graph algorithms and reachability checks as simple queries. It is the
// one package with no single-file analogue elsewhere in the module: its
// shape, a struct wiring sub-components that is loaded once and queried
// many times, follows the same discover-then-query pipeline structure
// used for loading a workload before ranking it.
package engine

import (
	"context"
	"sort"

	"github.com/tautenhahn/depengine/internal/apperr"
	"github.com/tautenhahn/depengine/internal/bytecode"
	"github.com/tautenhahn/depengine/internal/classpath"
	"github.com/tautenhahn/depengine/internal/digraph"
	"github.com/tautenhahn/depengine/internal/filter"
	"github.com/tautenhahn/depengine/internal/importance"
	"github.com/tautenhahn/depengine/internal/logging"
	"github.com/tautenhahn/depengine/internal/qname"
	"github.com/tautenhahn/depengine/internal/reach"
	"github.com/tautenhahn/depengine/internal/tree"
)

// Options configures one Engine. It is an explicit struct, not a file:
// the engine never reads configuration from disk itself.
type Options struct {
	// Classpath is a list of directories or archives, joined with the
	// platform path-list separator, exactly as internal/classpath expects.
	Classpath string
	// IgnoredClassNames, IgnoredSources, Focus extend the filter's built-in
	// defaults; see internal/filter.Filter.
	IgnoredClassNames []string
	IgnoredSources    []string
	Focus             []string
	// EntryPoints names classes that are always reachability entry points,
	// in addition to every class the extractor flags as having a main
	// method. Each entry is a container-prefixed tree path, e.g.
	// "dir:/proj.app.Main".
	EntryPoints []string
}

// Engine owns one loaded tree and memoizes the indexed graph view built
// from it, rebuilding only when the tree's epoch has advanced.
type Engine struct {
	opts     Options
	log      logging.Logger
	filter   *filter.Filter
	tree     *tree.Tree
	graph    *digraph.Graph
	warnings []classpath.Warning
}

// New returns an unloaded Engine; call Load before querying it.
func New(opts Options, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NullLogger{}
	}
	f := filter.New()
	for _, p := range opts.IgnoredClassNames {
		f.AddIgnoredClassName(p)
	}
	for _, p := range opts.IgnoredSources {
		f.AddIgnoredSource(p)
	}
	for _, p := range opts.Focus {
		f.AddFocus(p)
	}
	return &Engine{opts: opts, log: log, filter: f, tree: tree.New()}
}

// Load enumerates the classpath once, extracting and adding every class
// it can read to the tree. Unreadable containers or class files are
// recorded as warnings rather than aborting the load; Load only returns
// an error on context cancellation.
func (e *Engine) Load(ctx context.Context) error {
	entries, collectWarnings := classpath.Entries(ctx, e.opts.Classpath, e.filter)
	cancelled := false
	for entry := range entries {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			continue
		}
		e.loadOne(entry)
	}
	e.warnings = append(collectWarnings(), e.warnings...)
	if cancelled {
		return apperr.Wrap(apperr.Cancelled, "load cancelled", ctx.Err())
	}
	e.log.Info("loaded %d classes, %d warnings", len(e.tree.AllClassLeaves()), len(e.warnings))
	return nil
}

func (e *Engine) loadOne(entry classpath.Entry) {
	r, err := entry.Open()
	if err != nil {
		e.warnings = append(e.warnings, classpath.Warning{
			Container: entry.ContainerName,
			Err:       apperr.Wrap(apperr.UnreadableContainer, entry.ClassPath, err),
		})
		return
	}
	defer r.Close()

	class, err := bytecode.Extract(r)
	if err != nil {
		e.warnings = append(e.warnings, classpath.Warning{Container: entry.ContainerName, Err: err})
		return
	}
	e.tree.AddClass(entry.ContainerName, class.Name, class.References, class.HasMainMethod, e.filter)
}

// Warnings returns every non-fatal problem encountered during Load.
func (e *Engine) Warnings() []classpath.Warning { return e.warnings }

// Tree returns the loaded hierarchy. Its collapse state can be mutated
// directly via tree.Tree.SetListMode; Graph picks up the change lazily.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Graph returns the indexed snapshot of the currently visible projection,
// rebuilding it only if the tree has mutated since the last call.
func (e *Engine) Graph() *digraph.Graph {
	if e.graph == nil || e.graph.Stale(e.tree) {
		e.graph = digraph.Build(e.tree, e.tree.Root())
	}
	return e.graph
}

// componentNames renders a Tarjan component as sorted display names.
func componentNames(g *digraph.Graph, comp []int) []string {
	names := make([]string, len(comp))
	for i, idx := range comp {
		names[i] = g.Nodes[idx].DisplayName()
	}
	sort.Strings(names)
	return names
}

// Cycles returns the strongly-connected components of the current
// projection, each rendered as display names, sorted by descending size.
func (e *Engine) Cycles(ctx context.Context) ([][]string, error) {
	comps, err := digraph.Tarjan(ctx, e.Graph())
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = componentNames(e.Graph(), c)
	}
	return out, nil
}

// Density returns the edge density of the current projection.
func (e *Engine) Density() (float64, error) { return digraph.Density(e.Graph()) }

// TransitiveDensity returns the edge density of the current projection's
// transitive closure.
func (e *Engine) TransitiveDensity(ctx context.Context) (float64, error) {
	return digraph.TransitiveDensity(ctx, e.Graph())
}

// UnreferencedClasses returns the display names of every focus class leaf
// not reachable from any declared or auto-detected entry point, computed
// over the full unprojected graph. Classes outside the focus set are not
// reported.
func (e *Engine) UnreferencedClasses() []string {
	entries := make([]qname.Name, len(e.opts.EntryPoints))
	for i, p := range e.opts.EntryPoints {
		entries[i] = qname.Name(p)
	}
	nodes := reach.UnreferencedClasses(e.tree, e.filter, entries)
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.DisplayName()
	}
	sort.Strings(names)
	return names
}

// UnreferencedArchives returns the display names of every non-focus
// top-level container all of whose classes are unreferenced. Focus
// containers are never reported.
func (e *Engine) UnreferencedArchives() []string {
	entries := make([]qname.Name, len(e.opts.EntryPoints))
	for i, p := range e.opts.EntryPoints {
		entries[i] = qname.Name(p)
	}
	nodes := reach.UnreferencedArchives(e.tree, e.filter, entries)
	names := make([]string, len(nodes))
	for i, n := range nodes {
		names[i] = n.DisplayName()
	}
	sort.Strings(names)
	return names
}

// Importance ranks every class currently visible in the graph by PageRank,
// most-depended-on first, so callers can spot the small set of classes the
// rest of the codebase leans on most heavily.
func (e *Engine) Importance() []importance.Score {
	return importance.Rank(e.Graph())
}

// ImpliedBy returns the display names of the subgraph induced by the
// nodes reachable from the node at path: forward-reachable if
// useSuccessors, backward-reachable otherwise.
func (e *Engine) ImpliedBy(path string, useSuccessors bool) ([]string, error) {
	n, ok := e.tree.Find(path)
	if !ok {
		return nil, apperr.New(apperr.UnknownNode, path+" not found")
	}
	g := e.Graph()
	idx := g.IndexOf(e.tree.Rep(n))
	if idx < 0 {
		return nil, apperr.New(apperr.UnknownNode, path+" is not currently visible")
	}
	sub := digraph.ImpliedBy(g, idx, useSuccessors)
	names := make([]string, len(sub.Nodes))
	for i, node := range sub.Nodes {
		names[i] = node.DisplayName()
	}
	sort.Strings(names)
	return names, nil
}
