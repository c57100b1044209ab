package checker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbor-lang/arbor/internal/checker"
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// eb returns a fresh ExprBase with its own Star-kinded type variable, the
// pattern cmd/typecheck/loader.go uses to build kindedast nodes from YAML.
func eb() kindedast.ExprBase {
	return kindedast.ExprBase{TVar: types.NewVar(types.Star)}
}

func rootOf(defs ...*kindedast.Def) *kindedast.Root {
	root := kindedast.NewRoot()
	root.Defs = defs
	return root
}

func checkOne(t *testing.T, def *kindedast.Def) (*kindedast.Def, []*types.UnificationError) {
	t.Helper()
	c := checker.New(rootOf(def), types.LoadBuiltinInstances())
	typed, errs := c.CheckRoot()
	require.Len(t, typed.Defs, 1)
	return def, errs
}

// S1: def id(x: a): a = x  ->  forall a. a -> a, Pure.
func TestScenario_S1_Identity(t *testing.T) {
	x := types.NewVar(types.Star)
	def := &kindedast.Def{
		Name:   "id",
		Params: []kindedast.Param{{Name: "x", TVar: x}},
		Body:   &kindedast.Var{ExprBase: eb(), Name: "x"},
	}

	c := checker.New(rootOf(def), types.LoadBuiltinInstances())
	typed, errs := c.CheckRoot()
	require.Empty(t, errs)
	require.Len(t, typed.Defs, 1)

	scheme := typed.Defs[0].Scheme
	fn, ok := scheme.Type.(*types.TFunc)
	require.True(t, ok, "id must generalize to an arrow type")
	require.Len(t, fn.Params, 1)
	assert.Equal(t, fn.Params[0].String(), fn.Return.String(), "param and return must be the same generalized var")
	assert.True(t, types.EffIsPure(fn.EffectRow))
	assert.NotEmpty(t, scheme.Vars, "id must generalize at least one type variable")
}

// S2: def twice(f: a -> a, x: a): a = f(f(x))  ->  forall a, e. (a ->{e} a, a) ->{e} a.
func TestScenario_S2_Twice(t *testing.T) {
	x := types.NewVar(types.Star)
	f := types.NewVar(types.Star)

	innerApply := &kindedast.Apply{
		ExprBase: eb(),
		Func:     &kindedast.Var{ExprBase: eb(), Name: "f"},
		Args:     []kindedast.Expr{&kindedast.Var{ExprBase: eb(), Name: "x"}},
	}
	outerApply := &kindedast.Apply{
		ExprBase: eb(),
		Func:     &kindedast.Var{ExprBase: eb(), Name: "f"},
		Args:     []kindedast.Expr{innerApply},
	}
	def := &kindedast.Def{
		Name: "twice",
		Params: []kindedast.Param{
			{Name: "f", TVar: f},
			{Name: "x", TVar: x},
		},
		Body: outerApply,
	}

	c := checker.New(rootOf(def), types.LoadBuiltinInstances())
	typed, errs := c.CheckRoot()
	require.Empty(t, errs)
	require.Len(t, typed.Defs, 1)

	scheme := typed.Defs[0].Scheme
	fn, ok := scheme.Type.(*types.TFunc)
	require.True(t, ok, "twice must generalize to an arrow type")
	require.Len(t, fn.Params, 2)

	fParamFunc, ok := fn.Params[0].(*types.TFunc)
	require.True(t, ok, "f's parameter must itself be an arrow a -> a")
	assert.Equal(t, fParamFunc.Params[0].String(), fParamFunc.Return.String())
	assert.Equal(t, fParamFunc.Params[0].String(), fn.Params[1].String(), "f's domain must match x's type")
	assert.Equal(t, fParamFunc.Return.String(), fn.Return.String())
	assert.GreaterOrEqual(t, len(scheme.Vars), 2, "twice must generalize both the element type and the latent effect")
}

// S3: def bad(): Int = true  ->  a type mismatch at the declared return type.
func TestScenario_S3_DeclaredReturnMismatch(t *testing.T) {
	def := &kindedast.Def{
		Name:     "bad",
		Declared: &kindedast.DeclaredType{Type: types.TInt},
		Body:     &kindedast.Lit{ExprBase: eb(), Kind: kindedast.BoolLit, Value: true},
	}

	_, errs := checkOne(t, def)
	require.NotEmpty(t, errs)
	assert.Equal(t, types.ErrHeadMismatch, errs[0].Kind)
}

// S4: def get(r: {x: Int | rho}): Int = r.x  ->  accepted, row-polymorphic.
func TestScenario_S4_RowPolymorphicSelect(t *testing.T) {
	r := types.NewVar(types.Star)
	rowDecl := &types.TRecord{Row: types.OpenRecordRow(map[string]types.Type{"x": types.TInt})}

	def := &kindedast.Def{
		Name: "get",
		Params: []kindedast.Param{
			{Name: "r", TVar: r, Declared: rowDecl},
		},
		Declared: &kindedast.DeclaredType{
			Type: &types.TFunc{Params: []types.Type{rowDecl}, EffectRow: types.EffPure, Return: types.TInt},
		},
		Body: &kindedast.RecordSelect{
			ExprBase: eb(),
			Record:   &kindedast.Var{ExprBase: eb(), Name: "r"},
			Field:    "x",
		},
	}

	_, errs := checkOne(t, def)
	require.Empty(t, errs)
}

// S5: def escape(): Int = region r { let p = ref 1 @ r; deref p }
// accepted: r is purified out of the effect and does not appear in Int.
func TestScenario_S5_RegionPurifiedNoEscape(t *testing.T) {
	regionVar := types.NewVar(types.Effect)
	pVar := types.NewVar(types.Star)

	refExpr := &kindedast.Ref{
		ExprBase: eb(),
		Value:    &kindedast.Lit{ExprBase: eb(), Kind: kindedast.IntLit, Value: int64(1)},
		Region:   regionVar,
	}
	letExpr := &kindedast.Let{
		ExprBase: eb(),
		Name:     "p",
		NameTVar: pVar,
		Value:    refExpr,
		Body:     &kindedast.Deref{ExprBase: eb(), Cell: &kindedast.Var{ExprBase: eb(), Name: "p"}},
	}
	scope := &kindedast.Scope{
		ExprBase:   eb(),
		RegionName: "r",
		RegionVar:  regionVar,
		Body:       letExpr,
	}

	def := &kindedast.Def{
		Name:     "escape",
		Declared: &kindedast.DeclaredType{Type: types.TInt},
		Body:     scope,
	}

	_, errs := checkOne(t, def)
	require.Empty(t, errs)
}

// S6: def escape2(): Ref[Int, r] = region r { ref 1 @ r }
// rejected: the region variable itself escapes through the result type.
func TestScenario_S6_RegionEscapes(t *testing.T) {
	regionVar := types.NewVar(types.Effect)

	scope := &kindedast.Scope{
		ExprBase:   eb(),
		RegionName: "r",
		RegionVar:  regionVar,
		Body: &kindedast.Ref{
			ExprBase: eb(),
			Value:    &kindedast.Lit{ExprBase: eb(), Kind: kindedast.IntLit, Value: int64(1)},
			Region:   regionVar,
		},
	}

	def := &kindedast.Def{Name: "escape2", Body: scope}

	_, errs := checkOne(t, def)
	require.NotEmpty(t, errs)
	assert.Equal(t, types.ErrEffectGeneralization, errs[0].Kind)
}

// S7: def eq(x: a, y: a): Bool = x == y, with no Eq[a] instance reachable
// for the flexible parameter type -> a missing-instance diagnostic.
func TestScenario_S7_MissingEqConstraint(t *testing.T) {
	x := types.NewVar(types.Star)
	y := types.NewVar(types.Star)

	def := &kindedast.Def{
		Name: "eq",
		Params: []kindedast.Param{
			{Name: "x", TVar: x},
			{Name: "y", TVar: y},
		},
		Body: &kindedast.BinOp{
			ExprBase: eb(),
			Op:       "==",
			Left:     &kindedast.Var{ExprBase: eb(), Name: "x"},
			Right:    &kindedast.Var{ExprBase: eb(), Name: "y"},
		},
	}

	// x and y stay flexible, unconstrained by any concrete head, so the
	// Eq obligation the == operator raises has nothing concrete to resolve
	// against and the checker must report it instead of silently defaulting.
	c := checker.New(rootOf(def), types.NewInstanceEnv())
	typed, errs := c.CheckRoot()
	require.Len(t, typed.Defs, 1)
	require.NotEmpty(t, errs)
	assert.Equal(t, types.ErrMissingEq, errs[0].Kind)
}

// S8: two identical class-membership obligations for the same concrete type
// resolve exactly like one — entailment does not choke on or duplicate-report
// a redundant constraint.
func TestScenario_S8_RedundantConstraintResolvesOnce(t *testing.T) {
	a := types.NewVar(types.Star)

	def := &kindedast.Def{
		Name:     "showTwice",
		Params:   []kindedast.Param{{Name: "a", TVar: a}},
		Declared: &kindedast.DeclaredType{Type: &types.TFunc{Params: []types.Type{types.TInt}, EffectRow: types.EffPure, Return: types.TBool}},
		Body: &kindedast.BinOp{
			ExprBase: eb(),
			Op:       "&&",
			Left: &kindedast.BinOp{
				ExprBase: eb(),
				Op:       "==",
				Left:     &kindedast.Var{ExprBase: eb(), Name: "a"},
				Right:    &kindedast.Var{ExprBase: eb(), Name: "a"},
			},
			Right: &kindedast.BinOp{
				ExprBase: eb(),
				Op:       "==",
				Left:     &kindedast.Var{ExprBase: eb(), Name: "a"},
				Right:    &kindedast.Var{ExprBase: eb(), Name: "a"},
			},
		},
	}

	_, errs := checkOne(t, def)
	require.Empty(t, errs, "a redundant Eq obligation against a resolvable concrete type must not surface as an error")
}
