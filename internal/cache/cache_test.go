package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

func litDef(name string, id uint64, value int64) *kindedast.Def {
	base := kindedast.ExprBase{Node: kindedast.Node{NodeID: id}, TVar: types.NewVar(types.Star)}
	return &kindedast.Def{
		Node: kindedast.Node{NodeID: id},
		Name: name,
		Body: &kindedast.Lit{ExprBase: base, Kind: kindedast.IntLit, Value: value},
	}
}

func rootWith(defs ...*kindedast.Def) *kindedast.Root {
	root := kindedast.NewRoot()
	root.Defs = defs
	return root
}

func TestNewManifest_OneHashPerDef(t *testing.T) {
	root := rootWith(litDef("a", 1, 1), litDef("b", 2, 2))
	m := NewManifest(root)
	assert.Len(t, m.Symbols, 2)
	assert.NotEqual(t, m.Symbols["a"], m.Symbols["b"])
}

func TestManifest_SaveLoadRoundTrip(t *testing.T) {
	root := rootWith(litDef("a", 1, 1))
	m := NewManifest(root)

	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Symbols, loaded.Symbols)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDiff_DetectsChangedAndNewSymbols(t *testing.T) {
	old := NewManifest(rootWith(litDef("a", 1, 1), litDef("b", 2, 2)))

	changed := rootWith(litDef("a", 1, 1), litDef("b", 2, 999), litDef("c", 3, 3))
	diff := old.Diff(changed)

	assert.False(t, diff["a"], "unchanged def must not be flagged")
	assert.True(t, diff["b"], "modified def must be flagged")
	assert.True(t, diff["c"], "new def must be flagged")
}

func TestReuse_NilOldRunsFullCheck(t *testing.T) {
	root := rootWith(litDef("a", 1, 1))
	typed, errs := Reuse(nil, nil, root, types.LoadBuiltinInstances())
	require.Empty(t, errs)
	require.Len(t, typed.Defs, 1)
}

func TestReuse_OnlyReChecksClosureOfChangedSymbols(t *testing.T) {
	instances := types.LoadBuiltinInstances()
	root := rootWith(litDef("a", 1, 1), litDef("b", 2, 2))
	root.Uses = map[string][]string{"b": {"a"}}

	first, errs := Reuse(nil, nil, root, instances)
	require.Empty(t, errs)

	changedRoot := rootWith(litDef("a", 1, 99), litDef("b", 2, 2))
	changedRoot.Uses = root.Uses
	changed := SymbolSet{"a": true}

	second, errs := Reuse(first, changed, changedRoot, instances)
	require.Empty(t, errs)

	bDef := findDef(second.Defs, "b")
	require.NotNil(t, bDef)
	aDef := findDef(second.Defs, "a")
	require.NotNil(t, aDef)
}

func findDef(defs []*typedast.TypedDef, name string) *typedast.TypedDef {
	for _, d := range defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}
