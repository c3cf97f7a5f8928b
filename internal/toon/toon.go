// Package toon implements TOON (Token-Oriented Object Notation) encoding:
// a compact, tabular text format for structured results, cheaper to read
// as a model prompt or a terminal than indented JSON.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tautenhahn/depengine/internal/importance"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Report is the subset of an engine's query results worth encoding for
// CLI consumption.
type Report struct {
	ClassCount           int
	Density              float64
	TransitiveDensity    float64
	Cycles               [][]string
	UnreferencedClasses  []string
	UnreferencedArchives []string
	Important            []importance.Score
}

// Encode renders r as TOON.
func Encode(r Report) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("classes: %s", strconv.Itoa(r.ClassCount)))
	parts = append(parts, fmt.Sprintf("density: %s", strconv.FormatFloat(r.Density, 'f', 4, 64)))
	parts = append(parts, fmt.Sprintf("transitive_density: %s", strconv.FormatFloat(r.TransitiveDensity, 'f', 4, 64)))

	var cycleRows [][]string
	for i, c := range r.Cycles {
		cycleRows = append(cycleRows, []string{strconv.Itoa(i), strconv.Itoa(len(c)), strings.Join(c, " ")})
	}
	parts = append(parts, formatTabular("cycles", []string{"index", "size", "members"}, cycleRows))

	parts = append(parts, formatList("unreferenced_classes", r.UnreferencedClasses))
	parts = append(parts, formatList("unreferenced_archives", r.UnreferencedArchives))

	var importantRows [][]string
	for _, s := range r.Important {
		importantRows = append(importantRows, []string{s.Name, strconv.FormatFloat(s.Rank, 'f', 6, 64)})
	}
	parts = append(parts, formatTabular("important", []string{"name", "rank"}, importantRows))

	return strings.Join(parts, "\n")
}

// formatList renders a bare array section: a row per value, no column
// header. It is formatSection with each value wrapped as its own row.
func formatList(name string, values []string) string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{v}
	}
	return formatSection(name, nil, rows)
}

// formatTabular renders a row-and-column section: "name[count]{cols}:"
// followed by one indented, comma-joined line per row.
func formatTabular(name string, columns []string, rows [][]string) string {
	return formatSection(name, columns, rows)
}

// formatSection writes the shared "name[count]{...}:" header, omitting the
// "{...}" column list entirely when columns is nil so a bare list and a
// tabular section share one rendering path.
func formatSection(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	if columns == nil {
		fmt.Fprintf(&b, "%s[%d]:", name, len(rows))
	} else {
		fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	}
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

// encodeValue renders a single cell, quoting it whenever the bare form
// would be ambiguous with TOON's own syntax. Numeric-looking values are
// checked first so a sign character never triggers the quoting a bare "-"
// prefix would otherwise demand.
func encodeValue(value string) string {
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuotedForm(value) {
		return quote(value)
	}
	return value
}

// needsQuotedForm reports whether value must be wrapped, for any reason
// other than failing the numeric-literal shortcut in encodeValue.
func needsQuotedForm(value string) bool {
	switch {
	case value == "":
		return true
	case value != strings.TrimSpace(value):
		return true
	case strings.ContainsAny(value, "\n\r\t"):
		return true
	case needsQuoting.MatchString(value):
		return true
	case strings.HasPrefix(value, "-"):
		return true
	}
	_, isKeyword := keywords[strings.ToLower(value)]
	return isKeyword
}

// escaper performs all five substitutions in one simultaneous pass, so a
// backslash introduced by escaping "\n" is never itself re-escaped.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func quote(value string) string {
	return `"` + escaper.Replace(value) + `"`
}
