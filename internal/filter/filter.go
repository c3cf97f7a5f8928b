// Package filter decides, per name, which sources are opened, which
// referenced classes are kept as arcs, and which elements are "in focus".
package filter

import "regexp"

// Filter holds three ordered lists of regular expressions, matched exactly
// as the original did: a name is ignored/in-focus if ANY pattern matches.
type Filter struct {
	ignoredClassNames []*regexp.Regexp
	ignoredSources    []*regexp.Regexp
	focus             []*regexp.Regexp
}

// New returns a Filter pre-loaded with the same defaults as the original
// Filter() constructor: ignore java.* classes, module descriptors and
// META-INF resources; ignore JRE and build-resource paths; focus only on
// directory-backed containers.
func New() *Filter {
	f := &Filter{}
	f.AddIgnoredClassName(`java\..*`)
	f.AddIgnoredClassName(`.*module-info`)
	f.AddIgnoredClassName(`META-INF\..*`)
	f.AddIgnoredSource(`.*/jre/lib/.*`)
	f.AddIgnoredSource(`.*/build/resources/.*`)
	f.AddIgnoredSource(`.*/configuration/org\.eclipse.*/\.cp`)
	f.AddFocus(`dir:.*`)
	return f
}

// AddIgnoredClassName adds a regular expression for fully qualified class
// names to ignore. Matching classes are not analyzed; dependencies to them
// are taken for granted.
func (f *Filter) AddIgnoredClassName(regex string) {
	f.ignoredClassNames = append(f.ignoredClassNames, compileWhole(regex))
}

// AddIgnoredSource adds a regular expression for container names not to be opened.
func (f *Filter) AddIgnoredSource(regex string) {
	f.ignoredSources = append(f.ignoredSources, compileWhole(regex))
}

// AddFocus adds a regular expression for node names considered in focus.
func (f *Filter) AddFocus(regex string) {
	f.focus = append(f.focus, compileWhole(regex))
}

// compileWhole anchors regex to match the whole name, mirroring Java's
// Matcher.matches() semantics rather than Go's default unanchored search.
func compileWhole(regex string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + regex + `)$`)
}

// IsIgnoredSource reports whether name denotes a source not to be parsed.
func (f *Filter) IsIgnoredSource(name string) bool {
	return anyMatch(f.ignoredSources, name)
}

// IsIgnoredClass reports whether name is the class name of an ignored class.
func (f *Filter) IsIgnoredClass(name string) bool {
	return anyMatch(f.ignoredClassNames, name)
}

// IsInFocus reports whether name denotes an element which should undergo
// all analyzing procedures — i.e. something with source code in the
// analyzed project.
func (f *Filter) IsInFocus(name string) bool {
	return anyMatch(f.focus, name)
}

func anyMatch(patterns []*regexp.Regexp, name string) bool {
	for _, p := range patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}
