package types

import (
	"fmt"
	"sort"
)

// unifyRows implements permutation-tolerant row unification (spec §4.1.2):
// unlike Robinson unification, row unification never fails over label
// order, only over labels one side requires and the other can't supply.
// Grounded on the teacher's RowUnifier.UnifyRows four-case tail logic,
// generalized to run over both RecordRow and SchemaRow kinds via the new
// Row/*Var representation.
func (u *Unifier) unifyRows(r1, r2 *Row, sub Subst, path []string) (Subst, error) {
	if !r1.K.Equals(r2.K) {
		return nil, NewKindMismatchError(r1.K, r2.K, path)
	}

	r1 = applySubstRow(sub, r1)
	r2 = applySubstRow(sub, r2)

	common, only1, only2 := diffLabels(r1.Labels, r2.Labels)

	var err error
	names := make([]string, 0, len(common))
	for label := range common {
		names = append(names, label)
	}
	sort.Strings(names) // deterministic unification order, not just deterministic output
	for _, label := range names {
		sub, err = u.Unify(r1.Labels[label], r2.Labels[label], sub, append(path, label))
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", label, err)
		}
	}

	switch {
	case r1.Tail == nil && r2.Tail == nil:
		if len(only1) > 0 {
			return nil, NewMissingLabelError(anyLabel(only1), r2, path)
		}
		if len(only2) > 0 {
			return nil, NewMissingLabelError(anyLabel(only2), r1, path)
		}
		return sub, nil

	case r1.Tail != nil && r2.Tail == nil:
		// r1 open, r2 closed: r1's tail absorbs r2's unique labels; closed
		// r2 cannot supply labels only r1 has.
		if len(only1) > 0 {
			return nil, NewMissingLabelError(anyLabel(only1), r2, path)
		}
		return bindRowTail(sub, r1.Tail, &Row{K: r1.K, Labels: only2}), nil

	case r1.Tail == nil && r2.Tail != nil:
		// r1 closed, r2 open: r2's tail absorbs r1's unique labels; closed
		// r1 cannot supply labels only r2 has.
		if len(only2) > 0 {
			return nil, NewMissingLabelError(anyLabel(only2), r1, path)
		}
		return bindRowTail(sub, r2.Tail, &Row{K: r2.K, Labels: only1}), nil

	default: // both open
		if r1.Tail.ID == r2.Tail.ID {
			if len(only1) > 0 || len(only2) > 0 {
				return nil, newErr(ErrHeadMismatch, "same row variable cannot be extended with different labels on each side")
			}
			return sub, nil
		}
		fresh := NewVar(r1.K)
		sub = bindRowTail(sub, r1.Tail, &Row{K: r1.K, Labels: only2, Tail: fresh})
		sub = bindRowTail(sub, r2.Tail, &Row{K: r2.K, Labels: only1, Tail: fresh})
		return sub, nil
	}
}

func diffLabels(l1, l2 map[string]Type) (common map[string]bool, only1, only2 map[string]Type) {
	common = map[string]bool{}
	only1 = map[string]Type{}
	only2 = map[string]Type{}
	for label, ty := range l1 {
		if _, ok := l2[label]; ok {
			common[label] = true
		} else {
			only1[label] = ty
		}
	}
	for label, ty := range l2 {
		if !common[label] {
			only2[label] = ty
		}
	}
	return
}

func anyLabel(labels map[string]Type) string {
	for name := range labels {
		return name
	}
	return ""
}

func bindRowTail(sub Subst, tail *Var, row *Row) Subst {
	result := make(Subst, len(sub)+1)
	for k, v := range sub {
		result[k] = v
	}
	result[tail.ID] = row
	return result
}

// UnionEffectRows merges a set of RecordRow/SchemaRow-shaped effect
// annotations into one row. Nothing in this module calls it: effect
// combination goes through the Boolean EffUnionOf in effects.go instead.
func UnionEffectRows(rows ...*Row) *Row {
	if len(rows) == 0 {
		return EmptyRecordRow()
	}
	merged := map[string]Type{}
	var tail *Var
	for _, r := range rows {
		if r == nil {
			continue
		}
		for k, v := range r.Labels {
			merged[k] = v
		}
		if r.Tail != nil {
			tail = r.Tail
		}
	}
	return &Row{K: rows[0].K, Labels: merged, Tail: tail}
}

// RecordSelection looks up field's type in record, per spec §4.4's Select
// rule. An open row with a missing field is not itself an error here — the
// caller unifies the row with a fresh extension instead — so this only
// fails outright for a closed row.
func RecordSelection(record *Row, field string) (Type, error) {
	if !record.K.Equals(RecordRow) {
		return nil, fmt.Errorf("selection from non-record row of kind %s", record.K)
	}
	if ty, ok := record.Labels[field]; ok {
		return ty, nil
	}
	if record.Tail != nil {
		return nil, fmt.Errorf("field %s not yet known; row is still open", field)
	}
	return nil, fmt.Errorf("field %s not found in record", field)
}
