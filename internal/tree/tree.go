// Package tree implements the hierarchical dependency model: a single-rooted
// tree of containers and class leaves, its collapse state, and the
// projection that derives visible successors and predecessors from that
// state. Container and class leaf are modeled as a tagged sum rather than
// through abstract-method polymorphism: only a couple of operations
// actually differ between the two variants.
package tree

import (
	"iter"
	"regexp"
	"strings"

	"github.com/tautenhahn/depengine/internal/apperr"
	"github.com/tautenhahn/depengine/internal/filter"
	"github.com/tautenhahn/depengine/internal/qname"
)

// Kind distinguishes the two node variants.
type Kind int

const (
	KindContainer Kind = iota
	KindClass
)

// ListMode controls how a node's children are presented in a projection.
type ListMode int

const (
	// Expanded lists all children separately. The default.
	Expanded ListMode = iota
	// LeafsCollapsed hides direct class-leaf children, folding them into
	// this node, while still listing non-leaf children separately.
	LeafsCollapsed
	// Collapsed hides the entire subtree, folding it into this node.
	Collapsed
)

// Node is one unit of the hierarchy: a container (root, archive, directory,
// package) or a class leaf.
type Node struct {
	tree       *Tree
	parent     *Node
	simpleName string
	kind       Kind
	listMode   ListMode

	children   map[string]*Node
	childOrder []string

	// references and hasMainMethod are meaningful only for KindClass nodes.
	references    map[string]struct{}
	hasMainMethod bool
}

// Kind reports whether n is a container or a class leaf.
func (n *Node) Kind() Kind { return n.kind }

// SimpleName returns n's own name, not including its ancestors.
func (n *Node) SimpleName() string { return n.simpleName }

// Parent returns n's parent, or nil at the root.
func (n *Node) Parent() *Node { return n.parent }

// ListMode returns the node's current list mode.
func (n *Node) ListMode() ListMode { return n.listMode }

// HasMainMethod reports whether a class leaf declares a public static void
// main(String[]) method. Always false for containers.
func (n *Node) HasMainMethod() bool { return n.hasMainMethod }

// References returns the set of qualified class names this class leaf
// references, after filtering. Empty for containers.
func (n *Node) References() map[string]struct{} { return n.references }

// Name returns n's fully qualified name: its ancestors' simple names joined
// with '.', starting from the root (whose own name is empty).
func (n *Node) Name() string {
	if n.parent == nil {
		return n.simpleName
	}
	return string(qname.Join(qname.Name(n.parent.Name()), n.simpleName))
}

// displayName strips the container prefix and collapses encoded archive
// suffixes back to a human-readable form.
var (
	displayStripPrefix  = regexp.MustCompile(`.*:[^.]*\.`)
	displayStripArchive = regexp.MustCompile(`[jwer]ar:`)
	displaySuffixDot    = regexp.MustCompile(`_([jwer]ar)`)
)

// DisplayName returns a human-readable name: a class or package's bare
// qualified name without its container origin, or an archive's plain file
// name, intended for presentation rather than unique identification.
func (n *Node) DisplayName() string {
	name := n.Name()
	name = displayStripPrefix.ReplaceAllString(name, "")
	name = displayStripArchive.ReplaceAllString(name, "")
	name = displaySuffixDot.ReplaceAllString(name, ".$1")
	return name
}

// IsAncestorOf reports whether n is a container containing other, including other==n.
func (n *Node) IsAncestorOf(other *Node) bool {
	for cur := other; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

// RelativeName renders n's name relative to ancestor. If ancestor is n
// itself or n's direct parent, the bare simple name is returned since
// that reads better than an empty string.
func (n *Node) RelativeName(ancestor *Node) (string, error) {
	if ancestor == n.parent || ancestor == n {
		return n.simpleName, nil
	}
	if n.parent == nil {
		return "", apperr.New(apperr.UnknownNode, ancestor.Name()+" is not an ancestor of "+n.Name())
	}
	parentRel, err := n.parent.RelativeName(ancestor)
	if err != nil {
		return "", err
	}
	return parentRel + "." + n.simpleName, nil
}

// Find walks path, which is relative to n and dot-separated, child by
// child. It descends even into collapsed nodes, since structural children
// always exist regardless of list mode.
func (n *Node) Find(path string) (*Node, bool) {
	if path == "" {
		return n, true
	}
	head, rest := qname.Split(path)
	child, ok := n.children[head]
	if !ok {
		return nil, false
	}
	return child.Find(rest)
}

// WalkSubTree yields n and its visible descendants in depth-first order,
// skipping children hidden by the current list mode: all children of a
// Collapsed node, and class-leaf children of a LeafsCollapsed node.
func (n *Node) WalkSubTree() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		var walk func(*Node) bool
		walk = func(cur *Node) bool {
			if !yield(cur) {
				return false
			}
			if cur.kind == KindClass || cur.listMode == Collapsed {
				return true
			}
			for _, name := range cur.childOrder {
				child := cur.children[name]
				if cur.listMode == LeafsCollapsed && child.kind == KindClass {
					continue
				}
				if !walk(child) {
					return false
				}
			}
			return true
		}
		walk(n)
	}
}

// Tree owns the single rooted hierarchy and the index used to resolve raw
// references by qualified class name. Epoch is bumped on every mutation
// (new class added, list mode changed) so memoized projections downstream
// can detect staleness.
type Tree struct {
	root       *Node
	classByIdx map[string]*Node // Java qualified class name -> class leaf
	epoch      uint64
}

// New returns an empty tree with just a root container.
func New() *Tree {
	t := &Tree{classByIdx: make(map[string]*Node)}
	t.root = &Node{tree: t, kind: KindContainer, children: make(map[string]*Node)}
	return t
}

// Root returns the tree's root container node.
func (t *Tree) Root() *Node { return t.root }

// Epoch returns the tree's current mutation counter.
func (t *Tree) Epoch() uint64 { return t.epoch }

// Find walks path from the root.
func (t *Tree) Find(path string) (*Node, bool) { return t.root.Find(path) }

// resolve looks up a class leaf by its Java-qualified name, independent of
// where it physically lives in the container hierarchy.
func (t *Tree) resolve(name string) (*Node, bool) {
	n, ok := t.classByIdx[name]
	return n, ok
}

func (n *Node) ensureChild(simpleName string, kind Kind) *Node {
	if child, ok := n.children[simpleName]; ok {
		return child
	}
	child := &Node{
		tree:       n.tree,
		parent:     n,
		simpleName: simpleName,
		kind:       kind,
		children:   make(map[string]*Node),
	}
	n.children[simpleName] = child
	n.childOrder = append(n.childOrder, simpleName)
	return child
}

// AddClass creates every intermediate container node named by
// qualifiedName under containerName (itself created as a top-level child
// of the root on first use) and a class leaf at the end, recording its
// filtered reference set and main-method flag. Classes and references
// matching f's ignored-class-name rule are dropped entirely — they are
// "taken for granted" rather than analyzed. Re-adding the same
// (container, qualifiedName) pair is idempotent.
func (t *Tree) AddClass(containerName, qualifiedName string, rawReferences map[string]struct{}, hasMain bool, f *filter.Filter) *Node {
	if f.IsIgnoredClass(qualifiedName) {
		return nil
	}
	cur := t.root.ensureChild(containerName, KindContainer)
	segments := strings.Split(qualifiedName, ".")
	for i, seg := range segments {
		kind := KindContainer
		if i == len(segments)-1 {
			kind = KindClass
		}
		cur = cur.ensureChild(seg, kind)
	}
	cur.kind = KindClass

	filtered := make(map[string]struct{}, len(rawReferences))
	for ref := range rawReferences {
		if ref != qualifiedName && !f.IsIgnoredClass(ref) {
			filtered[ref] = struct{}{}
		}
	}
	cur.references = filtered
	cur.hasMainMethod = hasMain
	t.classByIdx[qualifiedName] = cur
	t.epoch++
	return cur
}

// SetListMode mutates n's list mode. Collapsing the root is rejected: there
// would be nothing left to show.
func (t *Tree) SetListMode(n *Node, mode ListMode) error {
	if n.parent == nil && mode == Collapsed {
		return apperr.New(apperr.InvalidCollapse, "cannot collapse the root node")
	}
	if n.listMode == mode {
		return nil
	}
	n.listMode = mode
	t.epoch++
	return nil
}

// Rep returns n's visible representative: the outermost ancestor whose
// list mode hides n, or n itself if no ancestor does. Only a node's direct
// parent can hide it via LeafsCollapsed; any ancestor can hide it via
// Collapsed. rep(rep(n)) == rep(n) always holds.
func (t *Tree) Rep(n *Node) *Node {
	result := n
	acceptLeafsCollapsed := n.kind == KindClass
	for ancestor := n.parent; ancestor != nil; ancestor = ancestor.parent {
		if ancestor.listMode == Collapsed || (acceptLeafsCollapsed && ancestor.listMode == LeafsCollapsed) {
			result = ancestor
		}
		acceptLeafsCollapsed = false
	}
	return result
}

// TopLevelContainerOf returns the top-level container (a direct child of
// the root) that n descends from, or n itself if n is already top-level.
func (t *Tree) TopLevelContainerOf(n *Node) *Node {
	cur := n
	for cur.parent != nil && cur.parent.parent != nil {
		cur = cur.parent
	}
	return cur
}

func (t *Tree) classLeavesIn(n *Node) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.kind == KindClass {
			out = append(out, cur)
			return
		}
		for _, name := range cur.childOrder {
			walk(cur.children[name])
		}
	}
	walk(n)
	return out
}

// AllClassLeaves returns every class leaf in the tree, ignoring list mode.
func (t *Tree) AllClassLeaves() []*Node { return t.classLeavesIn(t.root) }

// ClassLeavesIn returns every class leaf in n's structural subtree,
// ignoring list mode entirely — unlike WalkSubTree, collapsed containers
// still yield their descendants.
func (t *Tree) ClassLeavesIn(n *Node) []*Node { return t.classLeavesIn(n) }

// ResolveClass looks up a class leaf by its Java-qualified name,
// independent of where it physically lives in the container hierarchy.
func (t *Tree) ResolveClass(name string) (*Node, bool) { return t.resolve(name) }

// TopLevelContainers returns the root's direct children: one per
// classpath entry (archive or directory), in the order they were added.
func (t *Tree) TopLevelContainers() []*Node {
	out := make([]*Node, 0, len(t.root.childOrder))
	for _, name := range t.root.childOrder {
		out = append(out, t.root.children[name])
	}
	return out
}

// VisibleSuccessors returns the distinct representatives of every class
// reachable by a raw reference from some class in v's structural subtree,
// excluding v itself (self-loops at the representative level are
// suppressed). v is expected to already be a representative.
func (t *Tree) VisibleSuccessors(v *Node) []*Node {
	seen := make(map[*Node]bool)
	var result []*Node
	for _, c := range t.classLeavesIn(v) {
		for ref := range c.references {
			target, ok := t.resolve(ref)
			if !ok {
				continue
			}
			rep := t.Rep(target)
			if rep == v || seen[rep] {
				continue
			}
			seen[rep] = true
			result = append(result, rep)
		}
	}
	return result
}

// VisiblePredecessors is the inverse of VisibleSuccessors: the distinct
// representatives of every class, anywhere in the tree, with a raw
// reference landing inside v's structural subtree.
func (t *Tree) VisiblePredecessors(v *Node) []*Node {
	seen := make(map[*Node]bool)
	var result []*Node
	for _, c := range t.AllClassLeaves() {
		for ref := range c.references {
			target, ok := t.resolve(ref)
			if !ok || !v.IsAncestorOf(target) {
				continue
			}
			rep := t.Rep(c)
			if rep == v || seen[rep] {
				continue
			}
			seen[rep] = true
			result = append(result, rep)
			break
		}
	}
	return result
}

// Pair is a (source, target) pair of class leaves witnessing a dependency.
type Pair struct {
	From *Node
	To   *Node
}

// DependencyReason returns every (a', b') pair of class leaves, a' in a's
// structural subtree and b' in b's, such that a' references b'. An empty
// result means a does not depend on b.
func (t *Tree) DependencyReason(a, b *Node) []Pair {
	var reasons []Pair
	for _, from := range t.classLeavesIn(a) {
		for ref := range from.references {
			to, ok := t.resolve(ref)
			if !ok || !b.IsAncestorOf(to) {
				continue
			}
			reasons = append(reasons, Pair{From: from, To: to})
		}
	}
	return reasons
}

// StringPair is a pair of short, human-readable dependency explanations.
type StringPair struct {
	From string
	To   string
}

// ExplainDependencyTo is DependencyReason rendered as relative names: From
// is relative to a, To is relative to b.
func (t *Tree) ExplainDependencyTo(a, b *Node) ([]StringPair, error) {
	reasons := t.DependencyReason(a, b)
	out := make([]StringPair, 0, len(reasons))
	for _, r := range reasons {
		from, err := r.From.RelativeName(a)
		if err != nil {
			return nil, err
		}
		to, err := r.To.RelativeName(b)
		if err != nil {
			return nil, err
		}
		out = append(out, StringPair{From: from, To: to})
	}
	return out, nil
}
