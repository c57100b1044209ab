// Package cache is the incremental-compilation cache spec §6 names in one
// sentence ("the core accepts an old TypedAst.Root and a change set...").
// SPEC_FULL §12.3 supplements this into a full implementation: a
// YAML-serialized Manifest of symbol content hashes, and Reuse, which
// copies over every typed definition unaffected by a change set and
// re-checks only the changed symbols and their transitive dependents.
// The hashing technique is adapted from the teacher's internal/sid stable-
// ID scheme (sha256, hex-truncated) applied to a definition's own source
// text rather than an AST node's structural path.
package cache

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/arbor-lang/arbor/internal/checker"
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/sid"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// SymbolSet names the top-level definitions a change set touches directly
// (before closing over dependents).
type SymbolSet map[string]bool

// Manifest is the on-disk record of each symbol's last-checked content
// hash, serialized as YAML (SPEC_FULL §11.1 wires yaml.v3 here too).
type Manifest struct {
	Symbols map[string]string `yaml:"symbols"`
}

// NewManifest computes a fresh Manifest from root: one content hash per
// Def, keyed by name.
func NewManifest(root *kindedast.Root) *Manifest {
	m := &Manifest{Symbols: map[string]string{}}
	for _, def := range root.Defs {
		m.Symbols[def.Name] = hashDef(def)
	}
	return m
}

// hashDef reuses internal/sid.NewSID's stable-identifier formula directly —
// sha256 over canonical-path|start|end|kind|childpath, hex-truncated to 16
// chars — feeding it the def's rendered declared-type-and-body text as the
// "kind" slot, since a kinded Def carries no raw source span of its own to
// hash a byte range from. This keeps one hashing implementation shared
// between surface/core SID tracking and cache invalidation rather than a
// second sha256 call site reinventing the same formula.
func hashDef(def *kindedast.Def) string {
	content := fmt.Sprintf("%s|%v", def.Declared, def.Body)
	id := sid.NewSID(def.NodeSpan.File, int(def.NodeID), len(content), content, nil)
	return string(id)
}

// Load reads a Manifest from a YAML file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Symbols == nil {
		m.Symbols = map[string]string{}
	}
	return &m, nil
}

// Save writes m to path as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Diff compares m against a freshly computed manifest for root and returns
// the set of symbols whose content hash changed, plus any symbol new to
// root that m never saw (both count as "changed" for Reuse's purposes).
func (m *Manifest) Diff(root *kindedast.Root) SymbolSet {
	fresh := NewManifest(root)
	changed := SymbolSet{}
	for name, hash := range fresh.Symbols {
		if old, ok := m.Symbols[name]; !ok || old != hash {
			changed[name] = true
		}
	}
	return changed
}

// closeDependents extends changed with every symbol that transitively uses
// a changed symbol, per root.Uses (symbol -> symbols it references).
func closeDependents(root *kindedast.Root, changed SymbolSet) SymbolSet {
	reverse := map[string][]string{}
	for user, deps := range root.Uses {
		for _, dep := range deps {
			reverse[dep] = append(reverse[dep], user)
		}
	}

	closure := SymbolSet{}
	var queue []string
	for name := range changed {
		closure[name] = true
		queue = append(queue, name)
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, dependent := range reverse[next] {
			if closure[dependent] {
				continue
			}
			closure[dependent] = true
			queue = append(queue, dependent)
		}
	}
	return closure
}

// Reuse checks only changed's transitive dependency closure against newRoot,
// copying every other definition over unchanged from old. instances
// configures the sub-checker identically to a full CheckRoot pass; a nil
// old (first build, no cache yet) behaves like a full check.
func Reuse(old *typedast.TypedRoot, changed SymbolSet, newRoot *kindedast.Root, instances *types.InstanceEnv) (*typedast.TypedRoot, []*types.UnificationError) {
	if old == nil {
		c := checker.New(newRoot, instances)
		return c.CheckRoot()
	}

	closure := closeDependents(newRoot, changed)
	if len(closure) == 0 {
		return old, nil
	}

	reduced := &kindedast.Root{
		Classes:   newRoot.Classes,
		Instances: newRoot.Instances,
		Sigs:      newRoot.Sigs,
		Enums:     newRoot.Enums,
		Effects:   newRoot.Effects,
		Aliases:   newRoot.Aliases,
		Uses:      newRoot.Uses,
		EntryName: newRoot.EntryName,
		Sources:   newRoot.Sources,
	}
	for _, def := range newRoot.Defs {
		if closure[def.Name] {
			reduced.Defs = append(reduced.Defs, def)
		}
	}

	c := checker.New(reduced, instances)
	rechecked, errs := c.CheckRoot()

	kept := map[string]*typedast.TypedDef{}
	for _, d := range old.Defs {
		if !closure[d.Name] {
			kept[d.Name] = d
		}
	}
	for _, d := range rechecked.Defs {
		kept[d.Name] = d
	}

	merged := make([]*typedast.TypedDef, 0, len(kept))
	for _, d := range kept {
		merged = append(merged, d)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })

	allErrs := append(append([]*types.UnificationError{}, old.Messages...), errs...)

	return &typedast.TypedRoot{Defs: merged, Instances: instances, Messages: allErrs}, errs
}
