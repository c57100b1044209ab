// Package kinds is the kind checker spec §4.7 describes as "interface
// only... part of the core" (SPEC_FULL §12.1): a minimal but real
// well-kinded-application checker, so KindedAst.Root values used in tests
// are actually well-kinded rather than hand-waved. Grounded in the
// teacher's internal/types validation style (small recursive checks
// returning a descriptive error, no panics).
package kinds

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/types"
)

// Error reports a kind mismatch: a type applied where its head's kind
// doesn't accept the argument's kind, or a context (an EffectRow, a row
// label) that demands a specific kind the type doesn't have.
type Error struct {
	Type     types.Type
	Expected types.Kind
	Actual   types.Kind
	Context  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("kind error: %s expected %s, got %s (in %s)", e.Type, e.Expected, e.Actual, e.Context)
}

// Check walks t and reports the first kind inconsistency found: an App
// whose Func is not Arrow-kinded or whose Arg's kind doesn't match the
// arrow's From, a TFunc whose EffectRow isn't Effect-kinded or whose
// Params/Return aren't Star-kinded, or a row whose labels/tail carry the
// wrong kind for the row's own kind.
func Check(t types.Type) error {
	return checkWithContext(t, "type")
}

func checkWithContext(t types.Type, ctx string) error {
	switch n := t.(type) {
	case *types.Var, *types.Cst:
		return nil

	case *types.App:
		if err := checkWithContext(n.Func, ctx); err != nil {
			return err
		}
		if err := checkWithContext(n.Arg, ctx); err != nil {
			return err
		}
		arrow, ok := n.Func.Kind().(types.KArrow)
		if !ok {
			return &Error{Type: n.Func, Expected: types.Arrow(n.Arg.Kind(), types.Star), Actual: n.Func.Kind(), Context: ctx}
		}
		if !arrow.From.Equals(n.Arg.Kind()) {
			return &Error{Type: n.Arg, Expected: arrow.From, Actual: n.Arg.Kind(), Context: ctx}
		}
		return nil

	case *types.TFunc:
		for i, p := range n.Params {
			if err := checkWithContext(p, fmt.Sprintf("%s param %d", ctx, i)); err != nil {
				return err
			}
			if !p.Kind().Equals(types.Star) {
				return &Error{Type: p, Expected: types.Star, Actual: p.Kind(), Context: ctx}
			}
		}
		if n.EffectRow != nil {
			if err := checkWithContext(n.EffectRow, ctx+" effect"); err != nil {
				return err
			}
			if !n.EffectRow.Kind().Equals(types.Effect) {
				return &Error{Type: n.EffectRow, Expected: types.Effect, Actual: n.EffectRow.Kind(), Context: ctx}
			}
		}
		if err := checkWithContext(n.Return, ctx+" return"); err != nil {
			return err
		}
		if !n.Return.Kind().Equals(types.Star) {
			return &Error{Type: n.Return, Expected: types.Star, Actual: n.Return.Kind(), Context: ctx}
		}
		return nil

	case *types.TTuple:
		for i, el := range n.Elements {
			if err := checkWithContext(el, fmt.Sprintf("%s elem %d", ctx, i)); err != nil {
				return err
			}
		}
		return nil

	case *types.TRecord:
		return checkRow(n.Row, types.RecordRow, ctx)

	case *types.TSchema:
		return checkRow(n.Row, types.SchemaRow, ctx)

	case *types.TEnum:
		for i, a := range n.Args {
			if err := checkWithContext(a, fmt.Sprintf("%s arg %d", ctx, i)); err != nil {
				return err
			}
		}
		return nil

	case *types.TNative:
		return nil
	}

	return nil
}

// checkRow verifies every label's type is Star-kinded and the tail, if
// present, carries the row's own kind — the shape spec §3.3's row
// constructors require.
func checkRow(row *types.Row, wantKind types.Kind, ctx string) error {
	if row == nil {
		return nil
	}
	if !row.K.Equals(wantKind) {
		return &Error{Expected: wantKind, Actual: row.K, Context: ctx}
	}
	for label, t := range row.Labels {
		if err := checkWithContext(t, fmt.Sprintf("%s field %q", ctx, label)); err != nil {
			return err
		}
		if wantKind.Equals(types.RecordRow) && !t.Kind().Equals(types.Star) {
			return &Error{Type: t, Expected: types.Star, Actual: t.Kind(), Context: ctx}
		}
	}
	if row.Tail != nil {
		if err := checkWithContext(row.Tail, ctx+" tail"); err != nil {
			return err
		}
		if !row.Tail.Kind().Equals(wantKind) {
			return &Error{Type: row.Tail, Expected: wantKind, Actual: row.Tail.Kind(), Context: ctx}
		}
	}
	return nil
}

// CheckInstance verifies a class instance's type head is Star-kinded —
// every builtin and user-declared class in this module ranges over Star
// types only (SPEC_FULL §12.1 "instance-kind matching").
func CheckInstance(inst *types.ClassInstance) error {
	if inst.TypeHead == nil {
		return nil
	}
	if err := Check(inst.TypeHead); err != nil {
		return err
	}
	if !inst.TypeHead.Kind().Equals(types.Star) {
		return &Error{Type: inst.TypeHead, Expected: types.Star, Actual: inst.TypeHead.Kind(), Context: fmt.Sprintf("instance %s", inst.ClassName)}
	}
	return nil
}

// DefaultStar resolves a kind-polymorphic var with no kind yet assigned to
// Star, the defaulting rule spec §4.7 names. types.NewVar always supplies
// a concrete kind today, so this only matters for vars built by a future
// upstream collaborator that leaves K unset.
func DefaultStar(k types.Kind) types.Kind {
	return types.DefaultKind(k)
}
