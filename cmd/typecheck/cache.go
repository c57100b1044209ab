package main

import (
	"os"
	"path/filepath"

	"github.com/arbor-lang/arbor/internal/cache"
	"github.com/arbor-lang/arbor/internal/checker"
	"github.com/arbor-lang/arbor/internal/config"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// runCheckWithCache always runs a full CheckRoot on file. The only file a
// --cache <dir> keeps is manifest.yaml, the content-hash Manifest of the
// checked root (SPEC_FULL §12.3); the typed root itself is not persisted.
// The previous run's Manifest is loaded and diffed against the new one only
// to decide whether it is kept as-is (nothing changed) or replaced. This CLI
// never calls Reuse.
func runCheckWithCache(cacheDir, file string, instances *types.InstanceEnv, cfg *config.CheckerConfig) (*typedast.TypedRoot, []*types.UnificationError, error) {
	root, err := loadRoot(file)
	if err != nil {
		return nil, nil, err
	}

	manifestFile := filepath.Join(cacheDir, "manifest.yaml")
	old, loadErr := cache.Load(manifestFile)
	fresh := cache.NewManifest(root)

	c := checker.NewFromConfig(root, instances, cfg)
	typed, errs := c.CheckRoot()

	if loadErr == nil {
		changed := old.Diff(root)
		if len(changed) == 0 {
			fresh = old
		}
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return typed, errs, err
	}
	if err := fresh.Save(manifestFile); err != nil {
		return typed, errs, err
	}
	return typed, errs, nil
}
