package types

import (
	"fmt"
	"sort"
	"strings"
)

// Effect terms are Type values of kind Effect (spec's "Bool") built from the
// Boolean-algebra constructors of §3.3: Pure (bottom), Impure (top), Union,
// Intersection, Complement, and named atoms Effect(sym). A fresh Boolean-
// kinded *Var also inhabits this algebra directly.
//
// This is grounded in, but deliberately goes beyond, the teacher's
// `internal/types/effects.go`: the teacher's Row{Kind: EffectRow} is a
// closed-world *set* of labels with simple union/subsumption — it cannot
// express Intersection or Complement and has no unification procedure of
// its own (effect "unification" there is just row unification). The
// Boolean algebra spec §4.1.3 requires is a strictly larger structure, so
// it is modeled as its own small term language here rather than forced
// into the Row shape.

// EffPureT and EffImpureT are the bottom and top of the effect lattice.
type EffPureT struct{}
type EffImpureT struct{}

func (EffPureT) Kind() Kind     { return Effect }
func (EffImpureT) Kind() Kind   { return Effect }
func (EffPureT) String() string { return "Pure" }
func (EffImpureT) String() string { return "Impure" }

var (
	EffPure   Type = EffPureT{}
	EffImpure Type = EffImpureT{}
)

// EffAtom is a named primitive effect, e.g. IO, FS, Net.
type EffAtom struct {
	Name string
}

func (EffAtom) Kind() Kind       { return Effect }
func (a EffAtom) String() string { return a.Name }

// EffUnion, EffIntersection and EffComplement are the three Boolean
// connectives over effect terms.
type EffUnion struct{ Left, Right Type }
type EffIntersection struct{ Left, Right Type }
type EffComplement struct{ Term Type }

func (EffUnion) Kind() Kind        { return Effect }
func (EffIntersection) Kind() Kind { return Effect }
func (EffComplement) Kind() Kind   { return Effect }

func (u EffUnion) String() string        { return fmt.Sprintf("(%s ∪ %s)", u.Left, u.Right) }
func (i EffIntersection) String() string { return fmt.Sprintf("(%s ∩ %s)", i.Left, i.Right) }
func (c EffComplement) String() string   { return fmt.Sprintf("¬%s", c.Term) }

// Known named effects — the atoms available to source programs. Extending
// this set is a language-design decision, not a core-typechecker one; the
// core only needs IsKnownEffect to validate incoming kinded ASTs.
var knownEffects = map[string]bool{
	"IO": true, "FS": true, "Net": true, "Clock": true,
	"Rand": true, "DB": true, "Trace": true, "Async": true,
}

// IsKnownEffect reports whether name is one of the canonical effect atoms.
func IsKnownEffect(name string) bool { return knownEffects[name] }

// Unit returns the Unit type, used as the field type for record-row/effect
// bookkeeping where only presence (not payload) matters.
func Unit() Type { return TUnit }

// EffIsPure reports whether a possibly-nil effect term denotes the bottom
// element. A nil Type is treated as Pure so that untyped Go call sites
// (e.g. a freshly-constructed TFunc with no explicit effect) default
// correctly without every caller having to spell out EffPure.
func EffIsPure(t Type) bool {
	if t == nil {
		return true
	}
	n := NormalizeEffect(t)
	_, ok := n.(EffPureT)
	return ok
}

// EffSet builds a closed union of named atoms, e.g. EffSet("IO", "FS").
// This is the common case for a function's declared effect and is kept as
// a convenience constructor analogous to the teacher's ElaborateEffectRow.
func EffSet(names ...string) (Type, error) {
	if len(names) == 0 {
		return EffPure, nil
	}
	uniq := map[string]bool{}
	for _, n := range names {
		if !IsKnownEffect(n) {
			return nil, fmt.Errorf("unknown effect: %s", n)
		}
		uniq[n] = true
	}
	sorted := make([]string, 0, len(uniq))
	for n := range uniq {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	var term Type = EffAtom{Name: sorted[0]}
	for _, n := range sorted[1:] {
		term = EffUnion{Left: term, Right: EffAtom{Name: n}}
	}
	return term, nil
}

// EffUnionOf folds Union over any number of effect terms, treating nil/Pure
// as the identity.
func EffUnionOf(terms ...Type) Type {
	var acc Type = EffPure
	for _, t := range terms {
		if EffIsPure(t) {
			continue
		}
		if EffIsPure(acc) {
			acc = t
			continue
		}
		acc = EffUnion{Left: acc, Right: t}
	}
	return acc
}

// FormatEffect renders an effect term for diagnostics as "! {A, B}" for a
// closed union of atoms, falling back to the term's own String() for
// anything that isn't a flat union (intersections/complements/variables).
func FormatEffect(t Type) string {
	if EffIsPure(t) {
		return ""
	}
	atoms, ok := flattenUnionOfAtoms(NormalizeEffect(t))
	if !ok {
		return fmt.Sprintf("! %s", t.String())
	}
	sort.Strings(atoms)
	return fmt.Sprintf("! {%s}", strings.Join(atoms, ", "))
}

func flattenUnionOfAtoms(t Type) ([]string, bool) {
	switch n := t.(type) {
	case EffAtom:
		return []string{n.Name}, true
	case EffUnion:
		l, ok1 := flattenUnionOfAtoms(n.Left)
		r, ok2 := flattenUnionOfAtoms(n.Right)
		if !ok1 || !ok2 {
			return nil, false
		}
		return append(l, r...), true
	case EffPureT:
		return nil, true
	default:
		return nil, false
	}
}
