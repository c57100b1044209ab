package types

import "fmt"

// Unifier threads no state of its own (VarIDs are globally unique, so two
// Unifiers never collide) but gives unification a receiver to hang
// kind-specific dispatch methods off of (unifyRows, unifyBoolean), matching
// the teacher's RowUnifier/Unifier split while folding both into one entry
// point, per spec §4.1's single `unify(t1, t2)` operation.
type Unifier struct{}

// NewUnifier returns a Unifier. It carries no state; the zero value works
// equally well, but NewUnifier is kept so call sites read like the
// teacher's NewUnifier()/NewRowUnifier() construction style.
func NewUnifier() *Unifier { return &Unifier{} }

// Unify is the single dispatch point for spec §4.1: Robinson unification for
// Star/Region/Predicate-kinded types, permutation-tolerant row unification
// for RecordRow/SchemaRow, and Boolean SVE unification for Effect-kinded
// terms. path accumulates the field/argument trail for error messages.
func (u *Unifier) Unify(t1, t2 Type, sub Subst, path []string) (Subst, error) {
	t1 = ApplySubst(sub, t1)
	t2 = ApplySubst(sub, t2)

	t1 = unfoldAlias(t1)
	t2 = unfoldAlias(t2)

	if !t1.Kind().Equals(t2.Kind()) {
		return nil, NewKindMismatchError(t1.Kind(), t2.Kind(), path)
	}

	if t1.Kind().Equals(Effect) {
		return u.unifyBoolean(t1, t2, sub)
	}

	if v1, ok := t1.(*Var); ok {
		return u.bindVar(v1, t2, sub, path)
	}
	if v2, ok := t2.(*Var); ok {
		return u.bindVar(v2, t1, sub, path)
	}

	r1, r1ok := asRow(t1)
	r2, r2ok := asRow(t2)
	if r1ok && r2ok {
		return u.unifyRows(r1, r2, sub, path)
	}

	switch n1 := t1.(type) {
	case *Cst:
		n2, ok := t2.(*Cst)
		if !ok || n1.Name != n2.Name {
			return nil, NewHeadMismatchError(t1, t2, path)
		}
		return sub, nil

	case *App:
		n2, ok := t2.(*App)
		if !ok {
			return nil, NewHeadMismatchError(t1, t2, path)
		}
		sub, err := u.Unify(n1.Func, n2.Func, sub, path)
		if err != nil {
			return nil, err
		}
		return u.Unify(n1.Arg, n2.Arg, sub, path)

	case *TFunc:
		n2, ok := t2.(*TFunc)
		if !ok || len(n1.Params) != len(n2.Params) {
			return nil, NewHeadMismatchError(t1, t2, path)
		}
		for i := range n1.Params {
			var err error
			sub, err = u.Unify(n1.Params[i], n2.Params[i], sub, append(path, fmt.Sprintf("param%d", i)))
			if err != nil {
				return nil, err
			}
		}
		sub, err := u.Unify(effectOrPure(n1.EffectRow), effectOrPure(n2.EffectRow), sub, append(path, "effect"))
		if err != nil {
			return nil, err
		}
		return u.Unify(n1.Return, n2.Return, sub, append(path, "return"))

	case *TTuple:
		n2, ok := t2.(*TTuple)
		if !ok || len(n1.Elements) != len(n2.Elements) {
			return nil, NewHeadMismatchError(t1, t2, path)
		}
		for i := range n1.Elements {
			var err error
			sub, err = u.Unify(n1.Elements[i], n2.Elements[i], sub, append(path, fmt.Sprintf("elem%d", i)))
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *TEnum:
		n2, ok := t2.(*TEnum)
		if !ok || n1.Sym != n2.Sym || len(n1.Args) != len(n2.Args) {
			return nil, NewHeadMismatchError(t1, t2, path)
		}
		for i := range n1.Args {
			var err error
			sub, err = u.Unify(n1.Args[i], n2.Args[i], sub, append(path, fmt.Sprintf("arg%d", i)))
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *TNative:
		n2, ok := t2.(*TNative)
		if !ok || n1.Class != n2.Class {
			return nil, NewHeadMismatchError(t1, t2, path)
		}
		return sub, nil

	default:
		return nil, NewHeadMismatchError(t1, t2, path)
	}
}

func effectOrPure(t Type) Type {
	if t == nil {
		return EffPure
	}
	return t
}

func asRow(t Type) (*Row, bool) {
	switch n := t.(type) {
	case *Row:
		return n, true
	case *TRecord:
		return n.Row, true
	case *TSchema:
		return n.Row, true
	default:
		return nil, false
	}
}

func unfoldAlias(t Type) Type {
	for {
		a, ok := t.(*Alias)
		if !ok {
			return t
		}
		t = a.Expansion
	}
}

// bindVar attempts to bind v to t, rejecting rigid variables and failing
// the occurs check (spec §7 RigidVar / OccursCheck). Binding v to itself is
// a no-op, not a self-occurs failure.
func (u *Unifier) bindVar(v *Var, t Type, sub Subst, path []string) (Subst, error) {
	if other, ok := t.(*Var); ok && other.ID == v.ID {
		return sub, nil
	}
	if v.Rigid {
		return nil, NewRigidVarError(v, t)
	}
	if Occurs(v, t) {
		return nil, NewOccursCheckError(v, t)
	}
	result := make(Subst, len(sub)+1)
	for k, val := range sub {
		result[k] = val
	}
	result[v.ID] = t
	return result, nil
}
