package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tautenhahn/depengine/internal/config"
	"github.com/tautenhahn/depengine/internal/engine"
	"github.com/tautenhahn/depengine/internal/logging"
)

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
	toonOutput bool
	classpath  string
	entryFlags []string

	cfg *config.Config
	log logging.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "depengine",
	Short: "Analyze dependency structure across a Java classpath",
	Long: `depengine loads a compiled Java classpath (directories and
.jar/.war/.ear/.rar archives), builds its class-level dependency graph and
answers structural questions about it: which classes form cycles, how
dense the dependency graph is, and which classes or archives are never
referenced from any entry point.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		log = logging.New(level, os.Stderr)

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if classpath != "" {
			loaded.Classpath.Entries = strings.Split(classpath, string(os.PathListSeparator))
		}
		if len(entryFlags) > 0 {
			loaded.EntryPointClasses = entryFlags
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command, exiting the process with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a depengine config file (default: ./depengine.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&toonOutput, "toon", false, "Print results as TOON (compact tabular text) instead of text; ignored if --json is set")
	rootCmd.PersistentFlags().StringVar(&classpath, "classpath", "", "Override classpath.entries: directories/archives joined with the OS path separator")
	rootCmd.PersistentFlags().StringSliceVar(&entryFlags, "entry", nil, "Override entry_point_classes (repeatable)")
}

// newEngine builds and loads an Engine from the configuration resolved by
// PersistentPreRunE, applying timeout_seconds as a load deadline.
func newEngine() (*engine.Engine, func(), error) {
	opts := engine.Options{
		Classpath:         strings.Join(cfg.Classpath.Entries, string(os.PathListSeparator)),
		IgnoredClassNames: cfg.Filter.IgnoredClassNames,
		IgnoredSources:    cfg.Filter.IgnoredSources,
		Focus:             cfg.Filter.Focus,
		EntryPoints:       cfg.EntryPointClasses,
	}
	e := engine.New(opts, log)

	ctx := context.Background()
	cancel := func() {}
	if cfg.TimeoutSeconds > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	}
	if err := e.Load(ctx); err != nil {
		cancel()
		return nil, func() {}, err
	}
	for _, w := range e.Warnings() {
		log.Warn("%s: %v", w.Container, w.Err)
	}
	return e, cancel, nil
}
