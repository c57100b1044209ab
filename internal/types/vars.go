package types

import (
	"fmt"
	"sync/atomic"
)

// VarID is a globally unique type-variable identity (spec §3.1, §9 "Global
// mutable state"). It is allocated from a single process-wide atomic
// counter so that the concurrent per-definition checker (spec §5) never
// hands out the same identity twice across workers.
type VarID uint64

var varCounter uint64

// NextVarID atomically allocates the next type-variable identity.
func NextVarID() VarID {
	return VarID(atomic.AddUint64(&varCounter, 1))
}

// ResetVarCounter rewinds the allocator. Only safe between independent
// compilation units (e.g. separate test cases); never call it while any
// live Type still references previously allocated identities.
func ResetVarCounter() {
	atomic.StoreUint64(&varCounter, 0)
}

// varDisplayName produces a diagnostic-only Greek-letter name for a fresh
// variable of the given kind and identity, purely cosmetic (spec §3.1:
// "Variables carry an optional user-given name... purely for diagnostics").
func varDisplayName(k Kind, id VarID) string {
	switch {
	case k.Equals(Effect):
		return fmt.Sprintf("ε%d", id)
	case k.Equals(RecordRow), k.Equals(SchemaRow):
		return fmt.Sprintf("ρ%d", id)
	default:
		return fmt.Sprintf("α%d", id)
	}
}
