package types

import "sort"

// Scheme is a let-bound polymorphic type: ∀ Vars. Type (spec §3.1 "Type
// scheme"). Vars lists every flexible variable quantified over, in a fixed
// deterministic order so two calls to Generalize on alpha-equivalent types
// produce textually identical schemes.
type Scheme struct {
	Vars []*Var
	Type Type
}

// FreeVars returns the flexible variables occurring free in t — i.e. not
// nil and not rigid; rigid variables are skolem constants, never subject to
// generalization or instantiation.
func FreeVars(t Type) []*Var {
	seen := map[VarID]*Var{}
	var order []*Var
	collectVars(t, seen, &order)
	var free []*Var
	for _, v := range order {
		if !v.Rigid {
			free = append(free, v)
		}
	}
	return free
}

func collectVars(t Type, seen map[VarID]*Var, order *[]*Var) {
	switch n := t.(type) {
	case *Var:
		if _, ok := seen[n.ID]; !ok {
			seen[n.ID] = n
			*order = append(*order, n)
		}
	case *App:
		collectVars(n.Func, seen, order)
		collectVars(n.Arg, seen, order)
	case *Alias:
		for _, a := range n.Args {
			collectVars(a, seen, order)
		}
		collectVars(n.Expansion, seen, order)
	case *TFunc:
		for _, p := range n.Params {
			collectVars(p, seen, order)
		}
		collectVars(n.EffectRow, seen, order)
		collectVars(n.Return, seen, order)
	case *TTuple:
		for _, e := range n.Elements {
			collectVars(e, seen, order)
		}
	case *TRecord:
		collectVarsRow(n.Row, seen, order)
	case *TSchema:
		collectVarsRow(n.Row, seen, order)
	case *Row:
		collectVarsRow(n, seen, order)
	case *TEnum:
		for _, a := range n.Args {
			collectVars(a, seen, order)
		}
	case EffUnion:
		collectVars(n.Left, seen, order)
		collectVars(n.Right, seen, order)
	case EffIntersection:
		collectVars(n.Left, seen, order)
		collectVars(n.Right, seen, order)
	case EffComplement:
		collectVars(n.Term, seen, order)
	}
}

func collectVarsRow(r *Row, seen map[VarID]*Var, order *[]*Var) {
	if r == nil {
		return
	}
	names := r.SortedLabels()
	for _, name := range names {
		collectVars(r.Labels[name], seen, order)
	}
	if r.Tail != nil {
		collectVars(r.Tail, seen, order)
	}
}

// Generalize closes over every flexible variable in t that is free in t but
// not free in env (spec §3.1 "let-polymorphism"), producing the principal
// type scheme for a let-bound definition.
func Generalize(env *TypeEnv, t Type) *Scheme {
	envFree := map[VarID]bool{}
	for _, v := range env.FreeVars() {
		envFree[v.ID] = true
	}
	var quantified []*Var
	for _, v := range FreeVars(t) {
		if !envFree[v.ID] {
			quantified = append(quantified, v)
		}
	}
	sort.Slice(quantified, func(i, j int) bool { return quantified[i].ID < quantified[j].ID })
	return &Scheme{Vars: quantified, Type: t}
}

// Instantiate replaces every quantified variable in s with a fresh variable
// of the same kind, yielding a monomorphic instance of the scheme ready for
// unification at a use site (spec §3.1 "Instantiate").
func Instantiate(s *Scheme) Type {
	if len(s.Vars) == 0 {
		return s.Type
	}
	sub := make(Subst, len(s.Vars))
	for _, v := range s.Vars {
		sub[v.ID] = NewVar(v.K)
	}
	return ApplySubst(sub, s.Type)
}
