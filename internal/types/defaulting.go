package types

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultingTrace records one numeric-literal defaulting decision, kept so
// the CLI's --debug output and golden tests can show exactly where and why
// an ambiguous Num/Fractional variable was resolved (spec §4.6 "Entailment
// ... defaulting for ambiguous numeric literals").
type DefaultingTrace struct {
	VarID     VarID
	TypeVar   string
	ClassName string
	Default   Type
	Location  string
}

// DefaultingConfig controls whether, and to what, ambiguous numeric type
// variables default once generalization would otherwise leave them
// unconstrained.
type DefaultingConfig struct {
	Enabled bool
	Defaults map[string]Type
	Traces   []DefaultingTrace
}

// NewDefaultingConfig returns the standard defaulting configuration:
// ambiguous Num variables default to Int, Fractional to Float.
func NewDefaultingConfig() *DefaultingConfig {
	return &DefaultingConfig{
		Enabled: true,
		Defaults: map[string]Type{
			"Num":        TInt,
			"Fractional": TFloat,
		},
	}
}

// DisableDefaulting returns a configuration that leaves ambiguous numeric
// variables unresolved (they surface as MissingInstance errors instead).
func DisableDefaulting() *DefaultingConfig {
	return &DefaultingConfig{Enabled: false, Defaults: map[string]Type{}}
}

// ApplyNumericDefaulting resolves ambiguous Num/Fractional-constrained type
// variables to their configured defaults. The checker calls it after
// unification and after entailment of the def's constraints, extending sub
// and returning
// the traces recorded this round in addition to appending them to
// config.Traces for later FormatDefaultingTraces output. debug, when true,
// mirrors each decision immediately (the teacher's tc.debugMode gate).
func ApplyNumericDefaulting(sub Subst, constraints []ClassConstraint, config *DefaultingConfig, debug bool) (Subst, []DefaultingTrace) {
	if !config.Enabled {
		return sub, nil
	}

	byVar := map[VarID][]ClassConstraint{}
	varOf := map[VarID]*Var{}
	for _, c := range constraints {
		v, ok := ApplySubst(sub, c.Type).(*Var)
		if !ok {
			continue
		}
		if _, resolved := sub[v.ID]; resolved {
			continue
		}
		byVar[v.ID] = append(byVar[v.ID], c)
		varOf[v.ID] = v
	}

	var traces []DefaultingTrace
	result := make(Subst, len(sub))
	for k, v := range sub {
		result[k] = v
	}

	ids := make([]VarID, 0, len(byVar))
	for id := range byVar {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		for _, c := range byVar[id] {
			defaultType, ok := config.Defaults[c.Class]
			if !ok {
				continue
			}
			result[id] = defaultType
			trace := DefaultingTrace{
				VarID:     id,
				TypeVar:   varOf[id].String(),
				ClassName: c.Class,
				Default:   defaultType,
				Location:  fmt.Sprintf("%v", c.Path),
			}
			traces = append(traces, trace)
			config.Traces = append(config.Traces, trace)
			if debug {
				logDefaulting(trace)
			}
			break // only default once per variable
		}
	}

	return result, traces
}

func logDefaulting(trace DefaultingTrace) {
	fmt.Printf("[default] %s under %s -> %s at %s\n",
		trace.TypeVar, trace.ClassName, trace.Default.String(), trace.Location)
}

// FormatDefaultingTraces renders a deterministic, human-readable summary of
// the defaulting decisions made during a checking pass.
func FormatDefaultingTraces(traces []DefaultingTrace) string {
	if len(traces) == 0 {
		return ""
	}
	sorted := make([]DefaultingTrace, len(traces))
	copy(sorted, traces)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Location != sorted[j].Location {
			return sorted[i].Location < sorted[j].Location
		}
		return sorted[i].TypeVar < sorted[j].TypeVar
	})

	lines := []string{"Numeric defaulting applied:"}
	for _, trace := range sorted {
		lines = append(lines, fmt.Sprintf("  • %s: %s[%s] defaulted to %s",
			trace.Location, trace.ClassName, trace.TypeVar, trace.Default.String()))
	}
	return strings.Join(lines, "\n")
}

// isAmbiguousNumeric reports whether v carries a Num/Fractional/Integral/
// RealFrac constraint among constraints.
func isAmbiguousNumeric(v *Var, constraints []ClassConstraint) bool {
	for _, c := range constraints {
		if cv, ok := c.Type.(*Var); ok && cv.ID == v.ID {
			switch c.Class {
			case "Num", "Fractional", "Integral", "RealFrac":
				return true
			}
		}
	}
	return false
}

// ModuleScopedDefaults lets a module override the standard defaulting
// configuration; not yet exposed to source programs, only to CheckerConfig.
type ModuleScopedDefaults struct {
	ModuleName string
	Config     *DefaultingConfig
}

// GetModuleDefaults returns the defaulting config for moduleName. Every
// module uses the standard configuration today; this indirection exists so
// CheckerConfig (internal/config) can plug in per-module overrides without
// changing callers.
func GetModuleDefaults(moduleName string) *DefaultingConfig {
	return NewDefaultingConfig()
}
