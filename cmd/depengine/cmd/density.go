package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var transitive bool

var densityCmd = &cobra.Command{
	Use:   "density",
	Short: "Report edge density of the dependency graph",
	RunE:  runDensity,
}

func init() {
	densityCmd.Flags().BoolVar(&transitive, "transitive", false, "Compute density of the transitive closure instead of the raw graph")
	rootCmd.AddCommand(densityCmd)
}

func runDensity(c *cobra.Command, args []string) error {
	e, cancel, err := newEngine()
	if err != nil {
		return err
	}
	defer cancel()

	var d float64
	if transitive {
		d, err = e.TransitiveDensity(c.Context())
	} else {
		d, err = e.Density()
	}
	if err != nil {
		return err
	}

	result := struct {
		Transitive bool    `json:"transitive"`
		Density    float64 `json:"density"`
	}{transitive, d}

	return printResult(result, func() {
		kind := "raw"
		if transitive {
			kind = "transitive"
		}
		fmt.Printf("%s density: %.4f\n", kind, d)
	})
}
