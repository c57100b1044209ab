package kinds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/types"
)

func TestCheck_AcceptsWellKindedTypes(t *testing.T) {
	cases := []struct {
		name string
		t    types.Type
	}{
		{"primitive", types.TInt},
		{"pure func", &types.TFunc{Params: []types.Type{types.TInt}, EffectRow: types.EffPure, Return: types.TBool}},
		{"effectful func", &types.TFunc{Params: []types.Type{types.TString}, EffectRow: types.EffAtom{Name: "IO"}, Return: types.TUnit}},
		{"tuple", &types.TTuple{Elements: []types.Type{types.TInt, types.TBool}}},
		{"closed record", &types.TRecord{Row: &types.Row{K: types.RecordRow, Labels: map[string]types.Type{"x": types.TInt}}}},
		{"open record", &types.TRecord{Row: types.OpenRecordRow(map[string]types.Type{"x": types.TInt})}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.NoError(t, Check(c.t))
		})
	}
}

func TestCheck_RejectsIllKindedApplication(t *testing.T) {
	// types.TInt has Kind() == Star, so applying it to an argument is
	// ill-kinded: Star is not a KArrow.
	app := &types.App{Func: types.TInt, Arg: types.TBool}
	err := Check(app)
	require.Error(t, err)
	var kindErr *Error
	require.ErrorAs(t, err, &kindErr)
}

func TestCheck_RejectsWrongEffectRowKind(t *testing.T) {
	// A Star-kinded type used where an Effect-kinded term is required.
	badFunc := &types.TFunc{Params: []types.Type{types.TInt}, EffectRow: types.TInt, Return: types.TBool}
	err := Check(badFunc)
	require.Error(t, err)
}

func TestCheck_RejectsMismatchedRowTailKind(t *testing.T) {
	schemaTail := types.NewVar(types.SchemaRow)
	row := &types.Row{K: types.RecordRow, Labels: map[string]types.Type{"x": types.TInt}, Tail: schemaTail}
	err := Check(&types.TRecord{Row: row})
	require.Error(t, err)
}

func TestCheckInstance_RejectsNonStarHead(t *testing.T) {
	inst := &types.ClassInstance{ClassName: "Num", TypeHead: &types.Cst{Name: "List", K: types.Arrow(types.Star, types.Star)}}
	err := CheckInstance(inst)
	require.Error(t, err)
}

func TestCheckInstance_AcceptsStarHead(t *testing.T) {
	inst := &types.ClassInstance{ClassName: "Num", TypeHead: types.TInt}
	assert.NoError(t, CheckInstance(inst))
}

func TestDefaultStar(t *testing.T) {
	assert.True(t, DefaultStar(types.Star).Equals(types.Star))
}
