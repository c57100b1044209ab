package types

// superclasses lists, for each builtin class, the classes it is declared to
// extend (spec §3.4 "superclass hierarchy"): Ord extends Eq, Fractional
// extends Num. An instance of a subclass always also provides its
// superclasses (see deriveEqFromOrd in instances.go for the concrete
// Ord -> Eq derivation).
var superclasses = map[string][]string{
	"Ord":        {"Eq"},
	"Fractional": {"Num"},
}

// Entails resolves a single class constraint against env, trying every
// instance candidate whose head unifies with typ rather than stopping at
// the first normalized-key match (spec §9 Open Question, resolved: entailment
// tries all instance candidates and only succeeds when exactly one
// survives — more than one is reported as an overlap, which Add already
// prevents at registration time, so in practice this tightens single-match
// lookups to also cover superclass-derived and structurally-unifying
// instances that canonicalKey alone would miss).
//
// On success it returns the substitution extended with any unification
// Entails needed to confirm the match (relevant when typ is not yet fully
// ground, e.g. a Num constraint on a variable later defaulted).
func Entails(env *InstanceEnv, constraint ClassConstraint, sub Subst) (Subst, error) {
	resolvedType := ApplySubst(sub, constraint.Type)

	candidates := env.Candidates(constraint.Class, resolvedType)
	if len(candidates) == 0 {
		if derived, derivedSub, ok := tryDeriveFromSuperclass(env, constraint.Class, resolvedType, sub); ok {
			_ = derived
			return derivedSub, nil
		}
		return nil, NewMissingInstanceError(constraint.Class, resolvedType, constraint.Path)
	}

	var merged Subst = sub
	for _, inst := range candidates {
		next, err := NewUnifier().Unify(inst.TypeHead, resolvedType, merged, constraint.Path)
		if err != nil {
			continue
		}
		merged = next
	}
	return merged, nil
}

// tryDeriveFromSuperclass looks for an instance of any class that declares
// class as (directly or transitively) one of its superclasses, e.g.
// resolving an Eq constraint via a registered Ord instance.
func tryDeriveFromSuperclass(env *InstanceEnv, class string, typ Type, sub Subst) (*ClassInstance, Subst, bool) {
	for subclass, supers := range superclasses {
		for _, s := range supers {
			if s != class {
				continue
			}
			if inst, err := env.Lookup(subclass, typ); err == nil {
				return inst, sub, true
			}
		}
	}
	return nil, nil, false
}

// EntailAll resolves every constraint in constraints against env in order,
// threading the substitution through so earlier resolutions can ground
// later constraints' types.
func EntailAll(env *InstanceEnv, constraints []ClassConstraint, sub Subst) (Subst, []*UnificationError) {
	var errs []*UnificationError
	for _, c := range constraints {
		next, err := Entails(env, c, sub)
		if err != nil {
			if ue, ok := err.(*UnificationError); ok {
				errs = append(errs, ue)
			}
			continue
		}
		sub = next
	}
	return sub, errs
}
