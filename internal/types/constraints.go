package types

// ClassConstraint is a deferred obligation that Type must have an instance
// of Class, generated whenever a typeclass-polymorphic operator or variable
// is used (spec §4.4, "class constraints accumulate in the inference
// monad's state until Entailment resolves or defers them at generalization
// time", §4.6).
type ClassConstraint struct {
	Class string
	Type  Type
	Path  []string // expression path where the constraint arose, for diagnostics
}

// EqualityConstraint is a deferred `t1 ~ t2` equality obligation, used where
// constraint generation needs to record "these two types must eventually
// unify" without committing to a substitution immediately (spec §4.2
// "Inference Monad" state: "...plus a list of deferred equality
// constraints").
type EqualityConstraint struct {
	Left, Right Type
	Path        []string
}
