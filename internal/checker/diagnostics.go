package checker

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/arbor-lang/arbor/internal/types"
)

// diagnosticCollator gives the diagnostic channel a single, Unicode-aware
// ordering so that two checks of the same program produce byte-identical
// output regardless of platform locale — the same determinism §4.1.2
// requires of row-label ordering, extended here to error-message ordering
// (internal/types.Row.SortedLabels keeps the unifier itself locale-free,
// per its own doc comment, and defers this collation to the boundary here).
var diagnosticCollator = collate.New(language.Und)

// sortDiagnostics orders a finished pass's errors deterministically: spec §6
// already requires error lists sorted by source location, which each
// *types.UnificationError carries via Path rather than a line/column (the
// kinded AST's positions are owned by kindedast.Node, not surfaced on the
// error itself) — so this sorts by the rendered message text as the
// reproducible tiebreak CheckRoot's otherwise goroutine-order-dependent
// errsByDef concatenation needs.
func sortDiagnostics(errs []*types.UnificationError) []*types.UnificationError {
	sorted := make([]*types.UnificationError, len(errs))
	copy(sorted, errs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return diagnosticCollator.CompareString(sorted[i].Error(), sorted[j].Error()) < 0
	})
	return sorted
}

// collatedLabels returns row's field names in deterministic, locale-correct
// order for diagnostic rendering, picking up where Row.SortedLabels' own
// doc comment says Unicode collation belongs: at the checker/diagnostics
// boundary, not inside the pure-Go unifier core.
func collatedLabels(row *types.Row) []string {
	names := row.SortedLabels()
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		return diagnosticCollator.CompareString(sorted[i], sorted[j]) < 0
	})
	return sorted
}

// missingFieldError builds a friendlier diagnostic than a bare row-unify
// failure for RecordSelect: it names the field actually missing and lists
// the record's real fields, collated for a stable read across platforms.
// Falls back to the original unify error when resolved is not a record with
// a row, or when that row already has field (e.g. the mismatch was something
// other than a missing field).
func missingFieldError(fallback error, resolved types.Type, field string) error {
	rec, ok := resolved.(*types.TRecord)
	if !ok || rec.Row == nil || rec.Row.HasLabel(field) {
		return fallback
	}
	available := collatedLabels(rec.Row)
	return types.NewGeneralizationError(fmt.Sprintf(
		"field %q not found; record has: %s", field, strings.Join(available, ", ")))
}
