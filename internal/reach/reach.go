// Package reach identifies classes and archives that are never referenced
// from any declared or auto-detected entry point, working over the full
// unprojected class-leaf graph rather than the current collapsed view.
package reach

import (
	"github.com/tautenhahn/depengine/internal/filter"
	"github.com/tautenhahn/depengine/internal/qname"
	"github.com/tautenhahn/depengine/internal/tree"
)

// entryPoints returns the union of explicit, the caller-supplied entries
// and every class leaf the extractor flagged as having a main method.
func entryPoints(t *tree.Tree, explicit []qname.Name) []*tree.Node {
	var out []*tree.Node
	seen := make(map[*tree.Node]bool)
	for _, name := range explicit {
		if n, ok := t.Find(name.String()); ok && !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, c := range t.AllClassLeaves() {
		if c.HasMainMethod() && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// reachableClasses returns the set of class leaves reachable from entries
// by following raw reference arcs forward, entries themselves included.
func reachableClasses(t *tree.Tree, entries []*tree.Node) map[*tree.Node]bool {
	visited := make(map[*tree.Node]bool, len(entries))
	var queue []*tree.Node
	for _, e := range entries {
		if !visited[e] {
			visited[e] = true
			queue = append(queue, e)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for ref := range cur.References() {
			target, ok := t.ResolveClass(ref)
			if !ok || visited[target] {
				continue
			}
			visited[target] = true
			queue = append(queue, target)
		}
	}
	return visited
}

// UnreferencedClasses returns every focus class leaf not reachable,
// directly or transitively, from any entry point. Non-focus classes (by
// default, anything outside a "dir:" container — i.e. dependency jars) are
// taken as trustworthy and excluded even when unreachable, per f's focus
// configuration. entries holds fully qualified class names
// (container-prefixed tree paths); entry points are the union of this
// list and every class whose HasMainMethod flag is set.
func UnreferencedClasses(t *tree.Tree, f *filter.Filter, entries []qname.Name) []*tree.Node {
	reachable := reachableClasses(t, entryPoints(t, entries))
	var unreferenced []*tree.Node
	for _, c := range t.AllClassLeaves() {
		if reachable[c] {
			continue
		}
		if !f.IsInFocus(t.TopLevelContainerOf(c).SimpleName()) {
			continue
		}
		unreferenced = append(unreferenced, c)
	}
	return unreferenced
}

// UnreferencedArchives returns every non-focus top-level container
// (archive or directory outside the focus set) all of whose classes are
// unreferenced, including containers holding no classes at all. Focus
// containers are excluded: a source directory with nothing reachable in
// it is a problem for UnreferencedClasses to report class-by-class, not a
// "dead dependency" the way an unused jar is.
func UnreferencedArchives(t *tree.Tree, f *filter.Filter, entries []qname.Name) []*tree.Node {
	reachable := reachableClasses(t, entryPoints(t, entries))
	var unreferenced []*tree.Node
	for _, container := range t.TopLevelContainers() {
		if f.IsInFocus(container.SimpleName()) {
			continue
		}
		allUnreferenced := true
		for _, c := range t.ClassLeavesIn(container) {
			if reachable[c] {
				allUnreferenced = false
				break
			}
		}
		if allUnreferenced {
			unreferenced = append(unreferenced, container)
		}
	}
	return unreferenced
}
