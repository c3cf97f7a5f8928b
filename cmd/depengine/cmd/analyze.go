package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tautenhahn/depengine/internal/importance"
	"github.com/tautenhahn/depengine/internal/toon"
)

// analysisSummary bundles every top-level query into one result, the way
// junjiewwang-perf-analysis's analyze command bundles its report sections.
type analysisSummary struct {
	ClassCount           int                `json:"class_count"`
	Density              float64            `json:"density"`
	TransitiveDensity    float64            `json:"transitive_density"`
	Cycles               [][]string         `json:"cycles"`
	UnreferencedClasses  []string           `json:"unreferenced_classes"`
	UnreferencedArchives []string           `json:"unreferenced_archives"`
	Important            []importance.Score `json:"important"`
	Warnings             []string           `json:"warnings,omitempty"`
}

var topImportant int

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run every analysis and print a combined summary",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVar(&topImportant, "top", 10, "Number of most-depended-on classes to report")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(c *cobra.Command, args []string) error {
	e, cancel, err := newEngine()
	if err != nil {
		return err
	}
	defer cancel()

	ctx := c.Context()

	density, err := e.Density()
	if err != nil {
		return err
	}
	transitiveDensity, err := e.TransitiveDensity(ctx)
	if err != nil {
		return err
	}
	all, err := e.Cycles(ctx)
	if err != nil {
		return err
	}
	var cycles [][]string
	for _, comp := range all {
		if len(comp) >= 2 {
			cycles = append(cycles, comp)
		}
	}

	warnings := make([]string, len(e.Warnings()))
	for i, w := range e.Warnings() {
		warnings[i] = fmt.Sprintf("%s: %v", w.Container, w.Err)
	}

	summary := analysisSummary{
		ClassCount:           len(e.Tree().AllClassLeaves()),
		Density:              density,
		TransitiveDensity:    transitiveDensity,
		Cycles:               cycles,
		UnreferencedClasses:  e.UnreferencedClasses(),
		UnreferencedArchives: e.UnreferencedArchives(),
		Important:            importance.TopN(e.Importance(), topImportant),
		Warnings:             warnings,
	}

	report := toon.Report{
		ClassCount:           summary.ClassCount,
		Density:              summary.Density,
		TransitiveDensity:    summary.TransitiveDensity,
		Cycles:               summary.Cycles,
		UnreferencedClasses:  summary.UnreferencedClasses,
		UnreferencedArchives: summary.UnreferencedArchives,
		Important:            summary.Important,
	}

	return printReport(summary, toon.Encode(report), func() {
		fmt.Printf("classes analyzed: %d\n", summary.ClassCount)
		fmt.Printf("density: %.4f (transitive: %.4f)\n", summary.Density, summary.TransitiveDensity)
		fmt.Printf("cycles: %d\n", len(summary.Cycles))
		for _, comp := range summary.Cycles {
			fmt.Printf("  %v\n", comp)
		}
		fmt.Printf("unreferenced classes: %d\n", len(summary.UnreferencedClasses))
		for _, n := range summary.UnreferencedClasses {
			fmt.Printf("  %s\n", n)
		}
		fmt.Printf("unreferenced archives: %d\n", len(summary.UnreferencedArchives))
		for _, n := range summary.UnreferencedArchives {
			fmt.Printf("  %s\n", n)
		}
		fmt.Printf("most depended-on classes:\n")
		for _, s := range summary.Important {
			fmt.Printf("  %s (%.4f)\n", s.Name, s.Rank)
		}
		if len(summary.Warnings) > 0 {
			fmt.Printf("warnings: %d\n", len(summary.Warnings))
			for _, w := range summary.Warnings {
				fmt.Printf("  %s\n", w)
			}
		}
	})
}
