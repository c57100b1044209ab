package types

// InferM is the inference monad of spec §4.2: a thin wrapper around the
// mutable state a constraint generator threads through a single
// definition's checking pass — the current substitution, the class and
// equality constraints accumulated so far, and the set of variables that
// have been rigidified in this scope. Each per-definition check
// (internal/checker) owns exactly one InferM; the worker pool (spec §5)
// gives each goroutine its own, so there is no shared mutable state across
// definitions.
type InferM struct {
	Subst               Subst
	ClassConstraints    []ClassConstraint
	EqualityConstraints []EqualityConstraint
	rigidScope          map[VarID]bool
}

// NewInferM starts a fresh inference monad with the empty substitution.
func NewInferM() *InferM {
	return &InferM{Subst: Subst{}, rigidScope: map[VarID]bool{}}
}

// Fresh allocates a new flexible type variable of kind k.
func (m *InferM) Fresh(k Kind) *Var { return NewVar(k) }

// UnifyM unifies t1 and t2 against the monad's current substitution,
// replacing it with the extended result on success.
func (m *InferM) UnifyM(t1, t2 Type, path []string) error {
	sub, err := NewUnifier().Unify(t1, t2, m.Subst, path)
	if err != nil {
		return err
	}
	m.Subst = sub
	return nil
}

// Rigidify marks v as rigid for the remainder of this scope (spec §4.3:
// used when entering a signature-annotated definition, a Scope region
// variable, or a TypeMatch branch's existentially-bound variable). v's own
// Rigid flag is flipped in place — rigidification is scoped to a single
// definition check because a fresh Var is never reused across definitions,
// so there is nothing further to "pop" when the scope ends.
func (m *InferM) Rigidify(v *Var) {
	v.Rigid = true
	m.rigidScope[v.ID] = true
}

// IsRigidInScope reports whether v was rigidified by this monad (as opposed
// to being rigid from an outer signature it instantiated-then-rigidified
// elsewhere).
func (m *InferM) IsRigidInScope(v *Var) bool { return m.rigidScope[v.ID] }

// AddClassConstraint records a deferred class-membership obligation.
func (m *InferM) AddClassConstraint(class string, t Type, path []string) {
	m.ClassConstraints = append(m.ClassConstraints, ClassConstraint{Class: class, Type: t, Path: path})
}

// AddEqualityConstraint records a deferred equality obligation without
// unifying immediately — used where the generator wants to keep checking
// sibling expressions even if this equality will eventually fail (spec
// §5 "partial results").
func (m *InferM) AddEqualityConstraint(t1, t2 Type, path []string) {
	m.EqualityConstraints = append(m.EqualityConstraints, EqualityConstraint{Left: t1, Right: t2, Path: path})
}

// ExpectType unifies actual against expected, the operation every
// bidirectional-checking rule in spec §4.4's table performs at its leaves
// (e.g. `If`'s branches, a `Sig`-annotated `Def`'s body).
func (m *InferM) ExpectType(expected, actual Type, path []string) error {
	return m.UnifyM(expected, actual, path)
}

// Apply resolves t against the monad's current substitution.
func (m *InferM) Apply(t Type) Type { return ApplySubst(m.Subst, t) }

// SolveEqualityConstraints drains EqualityConstraints by unifying each pair
// in order, short-circuiting (spec §7: presenting the first encountered
// error — later category-4 Generalization errors are only attempted once
// all Unification/Constraint-resolution errors from this pass are known).
func (m *InferM) SolveEqualityConstraints() error {
	for _, c := range m.EqualityConstraints {
		if err := m.UnifyM(c.Left, c.Right, c.Path); err != nil {
			return err
		}
	}
	m.EqualityConstraints = nil
	return nil
}
