package checker

import "github.com/arbor-lang/arbor/internal/types"

// removeEffectAtom rebuilds t with every occurrence of the named effect
// atom replaced by Pure — the Boolean difference TryWith's rule performs to
// remove a handled effect from its body's inferred effect term (spec §4.4
// "TryWith ... Boolean effect difference"). Kept in this package rather
// than internal/types so the already-reviewed effects algebra there needs
// no further changes for this one caller.
func removeEffectAtom(t types.Type, name string) types.Type {
	switch n := t.(type) {
	case types.EffAtom:
		if n.Name == name {
			return types.EffPure
		}
		return n
	case types.EffUnion:
		return types.EffUnionOf(removeEffectAtom(n.Left, name), removeEffectAtom(n.Right, name))
	case types.EffIntersection:
		left := removeEffectAtom(n.Left, name)
		right := removeEffectAtom(n.Right, name)
		return types.EffIntersection{Left: left, Right: right}
	case types.EffComplement:
		return types.EffComplement{Term: removeEffectAtom(n.Term, name)}
	default:
		return t
	}
}

// combineEffects unions every non-nil effect term, treating a nil term
// (an expression form with no EffVar of its own) as Pure.
func combineEffects(terms ...types.Type) types.Type {
	nonNil := make([]types.Type, 0, len(terms))
	for _, t := range terms {
		if t != nil {
			nonNil = append(nonNil, t)
		}
	}
	return types.EffUnionOf(nonNil...)
}
