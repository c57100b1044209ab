// Command typecheck is the CLI driver for the checker (SPEC_FULL §10.3): a
// small github.com/spf13/cobra command tree wrapping internal/checker,
// internal/config and internal/cache, following the teacher's
// cmd/ailang/main.go conventions for flags, colored output and versioning
// but promoting cobra/pflag from indirect, unused dependencies to the
// module's actual CLI framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/arbor-lang/arbor/internal/checker"
	"github.com/arbor-lang/arbor/internal/config"
	"github.com/arbor-lang/arbor/internal/types"
)

var (
	// Version info — set by ldflags during build, matching the teacher's
	// cmd/ailang/main.go convention.
	Version = "dev"
	Commit  = "unknown"
)

var (
	flagDebug   bool
	flagConfig  string
	flagWorkers int
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "typecheck",
		Short:   "Type-check arbor programs",
		Version: Version,
	}

	// cobra's PersistentFlags returns a *pflag.FlagSet directly; naming the
	// type here (rather than leaving it inferred) is what keeps pflag an
	// actual, direct import of this command rather than dead weight pulled
	// in only transitively through cobra.
	var flags *pflag.FlagSet = root.PersistentFlags()
	flags.BoolVar(&flagDebug, "debug", false, "enable defaulting/diagnostic trace logging")
	flags.StringVar(&flagConfig, "config", "", "path to a CheckerConfig YAML file")
	flags.IntVar(&flagWorkers, "workers", 0, "worker pool size (0 = use config/CPU default)")

	root.AddCommand(newCheckCmd())
	return root
}

func loadConfig() *config.CheckerConfig {
	var cfg *config.CheckerConfig
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}
	cfg.Debug = cfg.Debug || flagDebug
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	cfg.Normalize()
	return cfg
}

func newCheckCmd() *cobra.Command {
	var watch bool
	var cacheDir string
	var replMode bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Type-check a single definitions file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			instances := types.LoadBuiltinInstances()

			if replMode {
				runRepl(instances, cfg)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("check requires a file argument (or --repl)")
			}
			file := args[0]

			if watch {
				return watchFile(file, cacheDir, instances, cfg)
			}
			return runCheck(file, cacheDir, instances, cfg)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "re-check file on every change")
	cmd.Flags().StringVar(&cacheDir, "cache", "", "incremental-cache directory (enables manifest reuse)")
	cmd.Flags().BoolVar(&replMode, "repl", false, "start an interactive line-at-a-time checking session")

	return cmd
}

// runCheck drives one full check pass over file and renders the result,
// using the incremental cache when cacheDir is set.
func runCheck(file, cacheDir string, instances *types.InstanceEnv, cfg *config.CheckerConfig) error {
	if cacheDir != "" {
		typed, _, err := runCheckWithCache(cacheDir, file, instances, cfg)
		if err != nil {
			return err
		}
		renderRoot(os.Stdout, typed)
		return nil
	}

	root, err := loadRoot(file)
	if err != nil {
		return err
	}
	c := checker.NewFromConfig(root, instances, cfg)
	typed, _ := c.CheckRoot()
	renderRoot(os.Stdout, typed)
	return nil
}
