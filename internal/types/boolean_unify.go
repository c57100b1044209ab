package types

import "fmt"

// Boolean unification over effect terms (spec §4.1.3): Successive Variable
// Elimination via Shannon expansion, producing a most general unifier via
// Löwenheim's formula.
//
// Open Question resolution (spec §9, decision recorded in DESIGN.md): the
// minimizer is BYPASSED rather than completed. NormalizeEffect below only
// applies algebraic identities (unit and zero laws for Pure/Impure,
// idempotence on identical atoms or variables, complement of a constant,
// double negation) to keep terms small; it does not reduce arbitrary
// formulas to a canonical CNF/DNF. Correctness instead relies solely on
// Löwenheim's formula (which is already a most general unifier by
// construction) plus this lightweight post-normalization for readability.

// NormalizeEffect applies Boolean simplification rules to shrink a term
// without computing a full canonical form.
func NormalizeEffect(t Type) Type {
	switch n := t.(type) {
	case EffUnion:
		l, r := NormalizeEffect(n.Left), NormalizeEffect(n.Right)
		if isPureTerm(l) {
			return r
		}
		if isPureTerm(r) {
			return l
		}
		if isImpureTerm(l) || isImpureTerm(r) {
			return EffImpure
		}
		if effectEqualShape(l, r) {
			return l
		}
		return EffUnion{Left: l, Right: r}
	case EffIntersection:
		l, r := NormalizeEffect(n.Left), NormalizeEffect(n.Right)
		if isImpureTerm(l) {
			return r
		}
		if isImpureTerm(r) {
			return l
		}
		if isPureTerm(l) || isPureTerm(r) {
			return EffPure
		}
		if effectEqualShape(l, r) {
			return l
		}
		return EffIntersection{Left: l, Right: r}
	case EffComplement:
		inner := NormalizeEffect(n.Term)
		if isPureTerm(inner) {
			return EffImpure
		}
		if isImpureTerm(inner) {
			return EffPure
		}
		if dn, ok := inner.(EffComplement); ok {
			return NormalizeEffect(dn.Term)
		}
		return EffComplement{Term: inner}
	default:
		return t
	}
}

func isPureTerm(t Type) bool   { _, ok := t.(EffPureT); return ok }
func isImpureTerm(t Type) bool { _, ok := t.(EffImpureT); return ok }

// effectEqualShape is a syntactic (not semantic) equality used only to spot
// trivial `t op t` simplifications during normalization; it is not a
// substitute for EffectEquivalent.
func effectEqualShape(a, b Type) bool {
	switch x := a.(type) {
	case EffAtom:
		y, ok := b.(EffAtom)
		return ok && x.Name == y.Name
	case *Var:
		y, ok := b.(*Var)
		return ok && x.ID == y.ID
	default:
		return false
	}
}

// effectVars collects, in a stable order, the distinct flexible and rigid
// Boolean-kinded variables occurring free in t.
func effectVars(t Type, seen map[VarID]*Var, order *[]*Var) {
	switch n := t.(type) {
	case *Var:
		if _, ok := seen[n.ID]; !ok {
			seen[n.ID] = n
			*order = append(*order, n)
		}
	case EffUnion:
		effectVars(n.Left, seen, order)
		effectVars(n.Right, seen, order)
	case EffIntersection:
		effectVars(n.Left, seen, order)
		effectVars(n.Right, seen, order)
	case EffComplement:
		effectVars(n.Term, seen, order)
	}
}

// substEffectConst replaces every occurrence of v in t with the Boolean
// constant val (EffImpure for true, EffPure for false), per Shannon
// expansion's f[v:=1] / f[v:=0].
func substEffectConst(t Type, v *Var, val bool) Type {
	constVal := Type(EffPure)
	if val {
		constVal = EffImpure
	}
	switch n := t.(type) {
	case *Var:
		if n.ID == v.ID {
			return constVal
		}
		return n
	case EffUnion:
		return EffUnion{Left: substEffectConst(n.Left, v, val), Right: substEffectConst(n.Right, v, val)}
	case EffIntersection:
		return EffIntersection{Left: substEffectConst(n.Left, v, val), Right: substEffectConst(n.Right, v, val)}
	case EffComplement:
		return EffComplement{Term: substEffectConst(n.Term, v, val)}
	default:
		return t
	}
}

// evalEffect evaluates a term to a truth value under assignment (one bit per
// variable) and atoms (one presence bit per named atom): false = Pure
// (bottom), true = Impure (top). Used by EffectEquivalent's truth-table
// check (testable property #6, spec §8).
func evalEffect(t Type, assignment map[VarID]bool, atoms map[string]bool) bool {
	switch n := t.(type) {
	case EffPureT:
		return false
	case EffImpureT:
		return true
	case EffAtom:
		return atoms[n.Name]
	case *Var:
		return assignment[n.ID]
	case EffUnion:
		return evalEffect(n.Left, assignment, atoms) || evalEffect(n.Right, assignment, atoms)
	case EffIntersection:
		return evalEffect(n.Left, assignment, atoms) && evalEffect(n.Right, assignment, atoms)
	case EffComplement:
		return !evalEffect(n.Term, assignment, atoms)
	default:
		return false
	}
}

// effectAtomNames collects the distinct named-atom identities in t so that
// EffectEquivalent's truth table also ranges each distinct atom over
// {present, absent}, treating it like a variable for the table.
func effectAtomNames(t Type, seen map[string]bool, order *[]string) {
	switch n := t.(type) {
	case EffAtom:
		if !seen[n.Name] {
			seen[n.Name] = true
			*order = append(*order, n.Name)
		}
	case EffUnion:
		effectAtomNames(n.Left, seen, order)
		effectAtomNames(n.Right, seen, order)
	case EffIntersection:
		effectAtomNames(n.Left, seen, order)
		effectAtomNames(n.Right, seen, order)
	case EffComplement:
		effectAtomNames(n.Term, seen, order)
	}
}

// EffectEquivalent reports whether two effect terms are Boolean-equivalent
// by exhaustive truth-table evaluation over their joined free variables and
// named atoms — this is exactly testable property #6 (spec §8) used directly
// in tests.
func EffectEquivalent(a, b Type) bool {
	varSeen, atomSeen := map[VarID]*Var{}, map[string]bool{}
	var varOrder []*Var
	var atomOrder []string
	effectVars(a, varSeen, &varOrder)
	effectVars(b, varSeen, &varOrder)
	effectAtomNames(a, atomSeen, &atomOrder)
	effectAtomNames(b, atomSeen, &atomOrder)

	n := len(varOrder)
	m := len(atomOrder)
	total := 1 << uint(n+m)
	for mask := 0; mask < total; mask++ {
		assignment := map[VarID]bool{}
		for i, v := range varOrder {
			assignment[v.ID] = mask&(1<<uint(i)) != 0
		}
		atoms := map[string]bool{}
		for j, name := range atomOrder {
			atoms[name] = mask&(1<<uint(n+j)) != 0
		}
		if evalEffect(a, assignment, atoms) != evalEffect(b, assignment, atoms) {
			return false
		}
	}
	return true
}

// unifyBoolean implements Successive Variable Elimination for t1 ≡ t2 of
// kind Effect. It returns a substitution extending sub such that the
// result is a most general unifier, or a BooleanUnsat error.
func (u *Unifier) unifyBoolean(t1, t2 Type, sub Subst) (Subst, error) {
	t1 = ApplySubst(sub, t1)
	t2 = ApplySubst(sub, t2)

	// f = t1 ⊕ t2 (symmetric difference); t1 ≡ t2 iff f ≡ ⊥.
	f := NormalizeEffect(EffUnion{
		Left:  EffIntersection{Left: t1, Right: EffComplement{Term: t2}},
		Right: EffIntersection{Left: EffComplement{Term: t1}, Right: t2},
	})

	return sveSolve(f, sub)
}

// sveSolve eliminates flexible variables from f one at a time until either
// f collapses to Pure (success) or no flexible variable remains and f is
// not Pure (BooleanUnsat). Rigid variables and atoms are uninterpreted.
func sveSolve(f Type, sub Subst) (Subst, error) {
	f = NormalizeEffect(f)

	var seen = map[VarID]*Var{}
	var order []*Var
	effectVars(f, seen, &order)

	var v *Var
	for _, candidate := range order {
		if !candidate.Rigid {
			v = candidate
			break
		}
	}

	if v == nil {
		if isPureTerm(f) {
			return sub, nil
		}
		return nil, &UnificationError{Kind: ErrBooleanUnsat, Message: fmt.Sprintf("effect formula %s is not satisfiable", f)}
	}

	f1 := NormalizeEffect(substEffectConst(f, v, true))  // f[v := Impure]
	f0 := NormalizeEffect(substEffectConst(f, v, false)) // f[v := Pure]

	remainder := NormalizeEffect(EffIntersection{Left: f1, Right: f0})
	newSub, err := sveSolve(remainder, sub)
	if err != nil {
		return nil, err
	}

	f0s := ApplySubst(newSub, f0)
	f1s := ApplySubst(newSub, f1)

	fresh := NewVar(Effect)
	// Löwenheim's formula: v ↦ f0 ∨ (fresh ∧ ¬(f0 ⊕ f1))
	symDiff := EffUnion{Left: EffIntersection{Left: f0s, Right: EffComplement{Term: f1s}},
		Right: EffIntersection{Left: EffComplement{Term: f0s}, Right: f1s}}
	repl := NormalizeEffect(EffUnion{
		Left:  f0s,
		Right: EffIntersection{Left: fresh, Right: EffComplement{Term: symDiff}},
	})

	result := make(Subst, len(newSub)+1)
	for k, val := range newSub {
		result[k] = val
	}
	result[v.ID] = repl
	return result, nil
}
