package types

import (
	"fmt"
	"sort"
	"strings"
)

// Row is a labeled, order-irrelevant, extensible sequence of field types
// (spec §3.3 "Rows", Glossary "Row"). Kind is either RecordRow or
// SchemaRow; Labels map field/predicate names to their types; Tail is nil
// for a closed row or a row-kinded Var for an open one.
//
// RecordRowExtend/RecordRowEmpty and SchemaRowExtend/SchemaRowEmpty from
// spec §3.3 are represented by this single struct rather than as separate
// nested constructors — Labels+Tail is the canonical normal form those
// constructors always reduce to, and keeping it as one struct (rather than
// a cons-list of App nodes) is what makes permutation-tolerant row
// unification (§4.1.2) a map-diff instead of a list-splice.
type Row struct {
	K      Kind
	Labels map[string]Type
	Tail   *Var // must have Kind() == K, or be nil for a closed row
}

func (r *Row) Kind() Kind { return r.K }

func (r *Row) String() string {
	names := make([]string, 0, len(r.Labels))
	for name := range r.Labels {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, name := range names {
		fields = append(fields, fmt.Sprintf("%s: %s", name, r.Labels[name].String()))
	}

	body := strings.Join(fields, ", ")
	if r.Tail != nil {
		if body == "" {
			return fmt.Sprintf("{ | %s }", r.Tail.String())
		}
		return fmt.Sprintf("{ %s | %s }", body, r.Tail.String())
	}
	return fmt.Sprintf("{ %s }", body)
}

// EmptyRecordRow returns a closed, empty record row.
func EmptyRecordRow() *Row {
	return &Row{K: RecordRow, Labels: map[string]Type{}}
}

// EmptySchemaRow returns a closed, empty schema row.
func EmptySchemaRow() *Row {
	return &Row{K: SchemaRow, Labels: map[string]Type{}}
}

// OpenRecordRow returns a record row with the given labels and a fresh
// open tail.
func OpenRecordRow(labels map[string]Type) *Row {
	return &Row{K: RecordRow, Labels: labels, Tail: NewVar(RecordRow)}
}

// IsClosed reports whether the row has no open tail.
func (r *Row) IsClosed() bool { return r.Tail == nil }

// SortedLabels returns the row's field names in deterministic lexical
// order (spec §4.1.2: "Labels are ordered by lexical comparison for
// determinism"). Deterministic Unicode-aware ordering for non-ASCII field
// names is applied at the diagnostics-rendering boundary (see
// internal/checker/diagnostics.go), not here — the unifier itself only
// needs a total order, not locale-correct collation.
func (r *Row) SortedLabels() []string {
	names := make([]string, 0, len(r.Labels))
	for name := range r.Labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasLabel reports whether field is present directly in this row (not
// considering an open tail that might supply it later).
func (r *Row) HasLabel(field string) bool {
	_, ok := r.Labels[field]
	return ok
}
