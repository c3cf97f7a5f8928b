package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "List strongly-connected components in the dependency graph",
	RunE:  runCycles,
}

func init() {
	rootCmd.AddCommand(cyclesCmd)
}

func runCycles(c *cobra.Command, args []string) error {
	e, cancel, err := newEngine()
	if err != nil {
		return err
	}
	defer cancel()

	all, err := e.Cycles(c.Context())
	if err != nil {
		return err
	}
	var cycles [][]string
	for _, comp := range all {
		if len(comp) >= 2 {
			cycles = append(cycles, comp)
		}
	}

	return printResult(cycles, func() {
		if len(cycles) == 0 {
			fmt.Println("no cycles found")
			return
		}
		for _, comp := range cycles {
			fmt.Printf("cycle (%d classes): %v\n", len(comp), comp)
		}
	})
}
