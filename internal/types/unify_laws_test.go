package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnifierSoundness covers algebraic law 1 (spec §8): for every success
// s = unify(t1, t2), apply(s, t1) and apply(s, t2) must agree.
func TestUnifierSoundness(t *testing.T) {
	cases := []struct {
		name   string
		t1, t2 Type
	}{
		{"var-vs-const", NewVar(Star), TInt},
		{"var-vs-func", NewVar(Star), &TFunc{Params: []Type{TInt}, EffectRow: EffPure, Return: TBool}},
		{"func-vs-func-with-vars", &TFunc{Params: []Type{NewVar(Star)}, EffectRow: EffPure, Return: TInt},
			&TFunc{Params: []Type{TString}, EffectRow: EffPure, Return: NewVar(Star)}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			u := NewUnifier()
			sub, err := u.Unify(c.t1, c.t2, Subst{}, nil)
			require.NoError(t, err)
			assert.Equal(t, ApplySubst(sub, c.t1).String(), ApplySubst(sub, c.t2).String())
		})
	}
}

// TestUnifierIdempotence covers law 2: apply(s, apply(s, t)) = apply(s, t).
func TestUnifierIdempotence(t *testing.T) {
	u := NewUnifier()
	v := NewVar(Star)
	sub, err := u.Unify(v, TInt, Subst{}, nil)
	require.NoError(t, err)

	once := ApplySubst(sub, &TFunc{Params: []Type{v}, EffectRow: EffPure, Return: v})
	twice := ApplySubst(sub, once)
	assert.Equal(t, once.String(), twice.String())
}

// TestCompositionAssociativity covers law 4: compose(compose(a,b),c) =
// compose(a, compose(b,c)).
func TestCompositionAssociativity(t *testing.T) {
	v1, v2, v3 := NewVar(Star), NewVar(Star), NewVar(Star)
	a := Subst{v1.ID: TInt}
	b := Subst{v2.ID: v1}
	c := Subst{v3.ID: v2}

	left := Compose(Compose(a, b), c)
	right := Compose(a, Compose(b, c))

	probe := &TTuple{Elements: []Type{v1, v2, v3}}
	assert.Equal(t, ApplySubst(left, probe).String(), ApplySubst(right, probe).String())
}

// TestUnifierMostGeneral covers law 3: the substitution unify(t1, t2) returns
// must be no more specific than necessary — its domain is confined to
// variables actually free in t1 or t2, never reaching into unrelated fresh
// variables the unifier happened to allocate internally.
func TestUnifierMostGeneral(t *testing.T) {
	sharedVar := NewVar(Star)
	cases := []struct {
		name   string
		t1, t2 Type
	}{
		{"var-vs-const", NewVar(Star), TInt},
		{"nested-func", &TFunc{Params: []Type{NewVar(Star), TBool}, EffectRow: EffPure, Return: NewVar(Star)},
			&TFunc{Params: []Type{TInt, NewVar(Star)}, EffectRow: EffPure, Return: TString}},
		{"tuple-with-shared-var", &TTuple{Elements: []Type{sharedVar, sharedVar}}, &TTuple{Elements: []Type{TInt, TInt}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			allowed := map[VarID]bool{}
			for _, v := range FreeVars(c.t1) {
				allowed[v.ID] = true
			}
			for _, v := range FreeVars(c.t2) {
				allowed[v.ID] = true
			}

			u := NewUnifier()
			sub, err := u.Unify(c.t1, c.t2, Subst{}, nil)
			require.NoError(t, err)

			for id := range sub {
				assert.True(t, allowed[id], "unify must not bind a variable (%d) that isn't free in either input", id)
			}
		})
	}
}

// TestRowUnificationPermutationInvariant covers law 5: unifying
// {a: t1, b: t2 | r} with {b: t2, a: t1 | r'} succeeds with r -> r' and no
// other bindings.
func TestRowUnificationPermutationInvariant(t *testing.T) {
	tail1 := NewVar(RecordRow)
	tail2 := NewVar(RecordRow)

	row1 := &Row{K: RecordRow, Labels: map[string]Type{"a": TInt, "b": TBool}, Tail: tail1}
	row2 := &Row{K: RecordRow, Labels: map[string]Type{"b": TBool, "a": TInt}, Tail: tail2}

	u := NewUnifier()
	sub, err := u.Unify(&TRecord{Row: row1}, &TRecord{Row: row2}, Subst{}, nil)
	require.NoError(t, err)

	bound, ok := sub[tail1.ID]
	require.True(t, ok, "tail1 must be bound")
	assert.Equal(t, tail2.String(), bound.String())

	for id := range sub {
		if id != tail1.ID {
			t.Fatalf("unexpected extra binding for var %d", id)
		}
	}
}

// TestBooleanUnifierCorrectness covers law 6: for every t1, t2 of kind Bool,
// if the unifier returns s, apply(s,t1) and apply(s,t2) are Boolean-
// equivalent under every assignment of the remaining free variables.
func TestBooleanUnifierCorrectness(t *testing.T) {
	a := NewVar(Effect)
	b := NewVar(Effect)

	t1 := EffUnion{Left: a, Right: EffAtom{Name: "IO"}}
	t2 := EffUnion{Left: EffAtom{Name: "IO"}, Right: b}

	u := NewUnifier()
	sub, err := u.Unify(t1, t2, Subst{}, nil)
	require.NoError(t, err)

	resolved1 := NormalizeEffect(ApplySubst(sub, t1))
	resolved2 := NormalizeEffect(ApplySubst(sub, t2))
	assert.True(t, EffectEquivalent(resolved1, resolved2))
}

// TestGeneralizeInstantiateRoundTrip covers law 7: for a closed type with no
// free rigid vars, generalize then instantiate is alpha-equivalent to the
// original shape.
func TestGeneralizeInstantiateRoundTrip(t *testing.T) {
	v := NewVar(Star)
	env := NewTypeEnvWithBuiltins()
	closedFunc := &TFunc{Params: []Type{v}, EffectRow: EffPure, Return: v}

	scheme := Generalize(env, closedFunc)
	require.Len(t, scheme.Vars, 1, "the only free var should be generalized")

	instantiated := Instantiate(scheme)
	fn, ok := instantiated.(*TFunc)
	require.True(t, ok)
	assert.Equal(t, fn.Params[0].String(), fn.Return.String(), "param and return must still be the same fresh var")
}

// TestRigidityInvariant covers law 8: no successful unify binds a rigid
// variable.
func TestRigidityInvariant(t *testing.T) {
	rigid := NewRigidVar(Star, "a")
	u := NewUnifier()

	_, err := u.Unify(rigid, TInt, Subst{}, nil)
	require.Error(t, err, "unifying a rigid var against a concrete type must fail")

	sub, err := u.Unify(rigid, rigid, Subst{}, nil)
	require.NoError(t, err, "a rigid var unifies with itself")
	_, bound := sub[rigid.ID]
	assert.False(t, bound, "self-unification of a rigid var must not introduce a binding")
}

// TestOccursCheck covers law 9: unify(v, f(v)) always fails.
func TestOccursCheck(t *testing.T) {
	v := NewVar(Star)
	selfRef := &TFunc{Params: []Type{v}, EffectRow: EffPure, Return: TInt}

	u := NewUnifier()
	_, err := u.Unify(v, selfRef, Subst{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "occurs")
}
