package types

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorCategory groups error kinds the way spec §7 groups them: Unification,
// Constraint resolution, Operation signature, and Generalization errors are
// reported and (eventually) recovered from differently by the checker.
type ErrorCategory string

const (
	CategoryUnification ErrorCategory = "unification"
	CategoryConstraint   ErrorCategory = "constraint_resolution"
	CategoryOperation    ErrorCategory = "operation_signature"
	CategoryGeneralize   ErrorCategory = "generalization"
)

// ErrorKind enumerates every distinguishable failure spec §7 names.
type ErrorKind string

const (
	ErrOccursCheck    ErrorKind = "occurs_check"
	ErrRigidVar       ErrorKind = "rigid_var"
	ErrKindMismatch   ErrorKind = "kind_mismatch"
	ErrHeadMismatch   ErrorKind = "head_mismatch"
	ErrMissingLabel   ErrorKind = "missing_label"
	ErrBooleanUnsat   ErrorKind = "boolean_unsat"

	ErrMissingInstance     ErrorKind = "missing_instance"
	ErrMissingEq           ErrorKind = "missing_eq"
	ErrMissingOrder        ErrorKind = "missing_order"
	ErrMissingToString     ErrorKind = "missing_to_string"
	ErrMissingSendable     ErrorKind = "missing_sendable"
	ErrMissingArrowInstance ErrorKind = "missing_arrow_instance"

	ErrInvalidOpParamCount ErrorKind = "invalid_op_param_count"

	ErrGeneralization                  ErrorKind = "generalization"
	ErrEffectGeneralization            ErrorKind = "effect_generalization"
	ErrImpureDeclaredAsPure            ErrorKind = "impure_declared_as_pure"
	ErrEffectPolymorphicDeclaredAsPure ErrorKind = "effect_polymorphic_declared_as_pure"
)

var errorCategories = map[ErrorKind]ErrorCategory{
	ErrOccursCheck:  CategoryUnification,
	ErrRigidVar:     CategoryUnification,
	ErrKindMismatch: CategoryUnification,
	ErrHeadMismatch: CategoryUnification,
	ErrMissingLabel: CategoryUnification,
	ErrBooleanUnsat: CategoryUnification,

	ErrMissingInstance:      CategoryConstraint,
	ErrMissingEq:            CategoryConstraint,
	ErrMissingOrder:         CategoryConstraint,
	ErrMissingToString:      CategoryConstraint,
	ErrMissingSendable:      CategoryConstraint,
	ErrMissingArrowInstance: CategoryConstraint,

	ErrInvalidOpParamCount: CategoryOperation,

	ErrGeneralization:                  CategoryGeneralize,
	ErrEffectGeneralization:            CategoryGeneralize,
	ErrImpureDeclaredAsPure:            CategoryGeneralize,
	ErrEffectPolymorphicDeclaredAsPure: CategoryGeneralize,
}

// UnificationError is the single error shape every failure mode in spec §7
// is reported through; Kind selects which category and message template
// applies. Path records the field/argument path to where the failure was
// detected (e.g. ["arg1", "field", "x"]), Position a source location string
// supplied by the caller (the checker, not this package, owns source spans).
type UnificationError struct {
	Kind       ErrorKind
	Category   ErrorCategory
	Path       []string
	Position   string
	Expected   Type
	Actual     Type
	ClassName  string
	Message    string
	Suggestion string
}

func (e *UnificationError) Error() string {
	var parts []string
	if e.Position != "" {
		parts = append(parts, e.Position)
	}
	if len(e.Path) > 0 {
		parts = append(parts, fmt.Sprintf("at %s", strings.Join(e.Path, ".")))
	}
	parts = append(parts, e.Message)
	if e.Expected != nil && e.Actual != nil {
		parts = append(parts, fmt.Sprintf("\n  Expected: %s\n  Actual:   %s", e.Expected, e.Actual))
	}
	if e.Suggestion != "" {
		parts = append(parts, fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	return strings.Join(parts, ": ")
}

func newErr(kind ErrorKind, msg string) *UnificationError {
	return &UnificationError{Kind: kind, Category: errorCategories[kind], Message: msg}
}

// NewOccursCheckError reports v occurring within t — binding it would build
// an infinite type (spec §7 OccursCheck).
func NewOccursCheckError(v *Var, t Type) *UnificationError {
	e := newErr(ErrOccursCheck, fmt.Sprintf("infinite type: %s occurs in %s", v, t))
	e.Suggestion = "this would create an infinite type; check for recursive definitions without a base case"
	return e
}

// NewRigidVarError reports an attempt to bind a rigid (skolem) variable.
func NewRigidVarError(v *Var, t Type) *UnificationError {
	e := newErr(ErrRigidVar, fmt.Sprintf("cannot unify rigid variable %s with %s", v, t))
	e.Suggestion = "this variable was fixed by a type signature or scope boundary and cannot be specialized here"
	return e
}

// NewKindMismatchError reports two kinds that a unification step required to
// be equal but were not.
func NewKindMismatchError(expected, actual Kind, path []string) *UnificationError {
	e := newErr(ErrKindMismatch, fmt.Sprintf("kind mismatch: expected %s, got %s", expected, actual))
	e.Path = path
	return e
}

// NewHeadMismatchError reports two structurally incompatible type heads
// (different Cst names, or an App against a non-App, etc).
func NewHeadMismatchError(expected, actual Type, path []string) *UnificationError {
	e := newErr(ErrHeadMismatch, "type mismatch")
	e.Path, e.Expected, e.Actual = path, expected, actual
	return e
}

// NewMissingLabelError reports a closed row missing a label the other side
// of unification requires (spec §4.1.2 "both closed" / "closed vs open"
// cases).
func NewMissingLabelError(label string, row *Row, path []string) *UnificationError {
	e := newErr(ErrMissingLabel, fmt.Sprintf("missing field %q in %s", label, row))
	e.Path = path
	if row.Tail == nil {
		e.Suggestion = "this row type doesn't allow extra or missing fields"
	}
	return e
}

// NewBooleanUnsatError reports an effect-formula that SVE proved has no
// satisfying assignment.
func NewBooleanUnsatError(formula Type) *UnificationError {
	return newErr(ErrBooleanUnsat, fmt.Sprintf("effect formula %s is not satisfiable", formula))
}

// NewMissingInstanceError reports className having no instance for typ, with
// class-specific phrasing for the built-in classes spec's table calls out by
// name (Eq/Ord/Show/Sendable/Arrow's implicit function-space instance).
func NewMissingInstanceError(className string, typ Type, path []string) *UnificationError {
	kind := ErrMissingInstance
	suggestion := fmt.Sprintf("type %s needs an instance of %s", typ, className)
	switch className {
	case "Num":
		suggestion = fmt.Sprintf("type %s must support numeric operations (+, -, *, /)", typ)
	case "Eq":
		kind = ErrMissingEq
		suggestion = fmt.Sprintf("type %s must support equality (==, !=)", typ)
	case "Ord":
		kind = ErrMissingOrder
		suggestion = fmt.Sprintf("type %s must support ordering (<, >, <=, >=)", typ)
	case "Show":
		kind = ErrMissingToString
		suggestion = fmt.Sprintf("type %s must be convertible to string", typ)
	case "Sendable":
		kind = ErrMissingSendable
		suggestion = fmt.Sprintf("type %s must be safe to send across a channel boundary", typ)
	case "Arrow":
		kind = ErrMissingArrowInstance
		suggestion = fmt.Sprintf("type %s is not a function and cannot be applied", typ)
	}
	e := newErr(kind, fmt.Sprintf("unsolved constraint: %s[%s]", className, typ))
	e.Path, e.ClassName, e.Expected, e.Suggestion = path, className, typ, suggestion
	return e
}

// NewInvalidOpParamCountError reports an intrinsic/operator applied with the
// wrong number of arguments for its fixed signature (spec §4.4 "Arithmetic
// and comparison").
func NewInvalidOpParamCountError(op string, expected, actual int) *UnificationError {
	return newErr(ErrInvalidOpParamCount,
		fmt.Sprintf("operator %s expects %d argument(s), got %d", op, expected, actual))
}

// NewGeneralizationError reports a generalization-time failure not covered
// by the more specific effect-related kinds below.
func NewGeneralizationError(msg string) *UnificationError {
	return newErr(ErrGeneralization, msg)
}

// NewEffectGeneralizationError reports an attempt to generalize over an
// effect variable that escapes into the surrounding scope (spec §4.3
// "a Boolean-kinded variable is never generalized past a scope boundary
// that still observes it").
func NewEffectGeneralizationError(v *Var) *UnificationError {
	return newErr(ErrEffectGeneralization,
		fmt.Sprintf("effect variable %s escapes its scope and cannot be generalized", v))
}

// NewImpureDeclaredAsPureError reports a declared-pure signature whose
// inferred effect is provably Impure.
func NewImpureDeclaredAsPureError(declared, inferred Type) *UnificationError {
	e := newErr(ErrImpureDeclaredAsPure, "declared pure but inferred effect is impure")
	e.Expected, e.Actual = declared, inferred
	return e
}

// NewEffectPolymorphicDeclaredAsPureError reports a declared-pure signature
// whose inferred effect still contains a free effect variable — it is
// neither provably pure nor provably impure, which the declaration forbids.
func NewEffectPolymorphicDeclaredAsPureError(inferred Type) *UnificationError {
	e := newErr(ErrEffectPolymorphicDeclaredAsPure,
		"declared pure but inferred effect is still polymorphic")
	e.Actual = inferred
	return e
}

// ErrorList aggregates multiple UnificationErrors from a single checking
// pass (spec §5: partial results plus per-definition errors).
type ErrorList []*UnificationError

func (e ErrorList) Error() string {
	if len(e) == 0 {
		return "no errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	parts := []string{fmt.Sprintf("%d type errors:", len(e))}
	for i, err := range e {
		parts = append(parts, fmt.Sprintf("\n[%d] %s", i+1, err.Error()))
	}
	return strings.Join(parts, "\n")
}

// SortedByPosition returns a copy of e ordered by Position then Message, for
// deterministic diagnostic output regardless of the concurrent order
// definitions finished checking in (spec §5 "deterministic merge").
func (e ErrorList) SortedByPosition() ErrorList {
	out := make(ErrorList, len(e))
	copy(out, e)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Message < out[j].Message
	})
	return out
}
