package main

import (
	"fmt"
	"os"
	"time"

	"github.com/arbor-lang/arbor/internal/config"
	"github.com/arbor-lang/arbor/internal/types"
)

// watchFile re-runs runCheck every time file's mtime advances. No filesystem
// notification library is wired here — none of the example repos' go.mod
// carries fsnotify or an equivalent, so a short poll loop (matching the
// teacher's own cmd/ailang/main.go watchFile, which only polled this same
// way before running once) is the grounded choice over introducing a new
// dependency for this alone.
func watchFile(file, cacheDir string, instances *types.InstanceEnv, cfg *config.CheckerConfig) error {
	fmt.Printf("%s watching %s for changes (Ctrl+C to stop)\n", cyan("→"), file)

	var lastMod time.Time
	for {
		info, err := os.Stat(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if info.ModTime().After(lastMod) {
			lastMod = info.ModTime()
			fmt.Printf("%s re-checking %s\n", cyan("↻"), file)
			if err := runCheck(file, cacheDir, instances, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			}
		}
		time.Sleep(300 * time.Millisecond)
	}
}
