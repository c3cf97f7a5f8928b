package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archivesOnly bool

var unreferencedCmd = &cobra.Command{
	Use:   "unreferenced",
	Short: "List classes or archives unreachable from any entry point",
	RunE:  runUnreferenced,
}

func init() {
	unreferencedCmd.Flags().BoolVar(&archivesOnly, "archives", false, "List non-focus archives/directories whose classes are all unreferenced, instead of individual focus classes")
	rootCmd.AddCommand(unreferencedCmd)
}

func runUnreferenced(c *cobra.Command, args []string) error {
	e, cancel, err := newEngine()
	if err != nil {
		return err
	}
	defer cancel()

	var names []string
	if archivesOnly {
		names = e.UnreferencedArchives()
	} else {
		names = e.UnreferencedClasses()
	}

	return printResult(names, func() {
		if len(names) == 0 {
			fmt.Println("none found")
			return
		}
		for _, n := range names {
			fmt.Println(n)
		}
	})
}
