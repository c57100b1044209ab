// Package checker is the constraint generator and checker (spec §4.4):
// a recursive walk over a kindedast.Root that produces a typedast.TypedRoot,
// resolving every expression's type and effect against the unifiers and
// entailment procedure of internal/types. This is the single largest
// component of the core (spec.md §2 component 5) and the only consumer of
// internal/types/monad.go's InferM primitives.
//
// Checking runs per-definition sequentially and cross-definition in
// parallel (spec §5): each definition gets its own InferM and its own
// worker goroutine, sharing only the read-only base environment built
// before the pool starts. A definition whose body fails to check does not
// abort the pass — it is replaced by a typedast.Error sentinel so sibling
// definitions still check and callers of the failed definition still see
// a consistent (if unresolved) shape.
package checker

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/arbor-lang/arbor/internal/config"
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/kinds"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// Checker holds the configuration and shared, read-only state for one
// checking pass over a Root.
type Checker struct {
	Root       *kindedast.Root
	Instances  *types.InstanceEnv
	Defaulting *types.DefaultingConfig
	Workers    int
	Debug      bool
}

// New returns a Checker ready to check root, defaulting Instances to the
// builtin class table and Workers to the host's CPU count (spec §5
// "embarrassingly parallel worker pool").
func New(root *kindedast.Root, instances *types.InstanceEnv) *Checker {
	if instances == nil {
		instances = types.LoadBuiltinInstances()
	}
	return &Checker{
		Root:       root,
		Instances:  instances,
		Defaulting: types.NewDefaultingConfig(),
		Workers:    runtime.NumCPU(),
	}
}

// NewFromConfig returns a Checker whose worker count, debug gate, and
// numeric-defaulting policy come from cfg rather than runtime/teacher
// defaults (SPEC_FULL §10.3).
func NewFromConfig(root *kindedast.Root, instances *types.InstanceEnv, cfg *config.CheckerConfig) *Checker {
	c := New(root, instances)
	if cfg == nil {
		return c
	}
	cfg.Normalize()
	c.Workers = cfg.Workers
	c.Debug = cfg.Debug
	c.Defaulting = cfg.ToDefaultingConfig()
	return c
}

// CheckRoot runs the full pass: builds the shared base environment from
// every Sig/Def's declared (or placeholder) scheme, checks each Def on its
// own worker, and merges results deterministically by definition name
// (spec §5 "deterministic merge by symbol identity") regardless of which
// worker finished first.
func (c *Checker) CheckRoot() (*typedast.TypedRoot, []*types.UnificationError) {
	kindErrs := c.checkKinds()
	baseEnv := c.buildBaseEnv()

	defs := c.Root.Defs
	results := make([]*typedast.TypedDef, len(defs))
	errsByDef := make([][]*types.UnificationError, len(defs))

	workers := c.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, def := range defs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, def *kindedast.Def) {
			defer wg.Done()
			defer func() { <-sem }()
			td, errs := c.checkDef(baseEnv, def)
			results[i] = td
			errsByDef[i] = errs
		}(i, def)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	allErrs := append([]*types.UnificationError{}, kindErrs...)
	for _, errs := range errsByDef {
		allErrs = append(allErrs, errs...)
	}
	allErrs = sortDiagnostics(allErrs)

	root := &typedast.TypedRoot{
		Defs:      results,
		Instances: c.Instances,
		Messages:  allErrs,
	}
	return root, allErrs
}

// checkKinds validates every declared signature and instance head before
// the main pass, per SPEC_FULL §12.1's "well-kinded-application checking".
// A kind error is recorded as a diagnostic rather than aborting the pass
// (spec §5 "partial results") — the unifier's own App.Kind() fallback to
// Star means a downstream unification can still proceed, just against a
// type the kind checker has already flagged as unsound.
func (c *Checker) checkKinds() []*types.UnificationError {
	var errs []*types.UnificationError
	for _, sig := range c.Root.Sigs {
		if sig.Declared == nil {
			continue
		}
		if err := kinds.Check(sig.Declared.Type); err != nil {
			errs = append(errs, types.NewGeneralizationError(err.Error()))
		}
	}
	for _, def := range c.Root.Defs {
		if def.Declared == nil {
			continue
		}
		if err := kinds.Check(def.Declared.Type); err != nil {
			errs = append(errs, types.NewGeneralizationError(err.Error()))
		}
	}
	if c.Instances != nil {
		for _, inst := range c.Instances.All() {
			if err := kinds.CheckInstance(inst); err != nil {
				errs = append(errs, types.NewGeneralizationError(err.Error()))
			}
		}
	}
	return errs
}

// buildBaseEnv extends the builtin environment with a binding for every
// top-level Sig and Def: declared schemes are installed as-is (rigidified
// at use inside checkDef), undeclared defs get a single shared monomorphic
// placeholder variable so a recursive group of undeclared definitions can
// still reference each other across workers. A def's own scheme, once
// actually inferred, is not re-substituted back into this shared env — so
// mutual polymorphic recursion across *undeclared* top-level definitions is
// intentionally out of scope; declaring a Sig is the escape hatch spec §4.4
// assumes for that case.
func (c *Checker) buildBaseEnv() *types.TypeEnv {
	env := types.NewTypeEnvWithBuiltins()
	bound := map[string]bool{}

	for _, sig := range c.Root.Sigs {
		env = declareScheme(env, sig.Name, sig.Declared)
		bound[sig.Name] = true
	}
	for _, def := range c.Root.Defs {
		if bound[def.Name] {
			continue
		}
		bound[def.Name] = true
		if def.Declared != nil {
			env = declareScheme(env, def.Name, def.Declared)
			continue
		}
		placeholder := types.NewVar(types.Star)
		env = env.Extend(def.Name, placeholder)
	}
	return env
}

func declareScheme(env *types.TypeEnv, name string, declared *kindedast.DeclaredType) *types.TypeEnv {
	if declared == nil {
		return env.Extend(name, types.NewVar(types.Star))
	}
	return env.ExtendScheme(name, &types.Scheme{Vars: declared.Vars, Type: declared.Type})
}

// checkDef infers def's body, unifies it against any declared signature,
// resolves class constraints and numeric defaulting, and generalizes the
// result. On any failure it returns a TypedDef whose Body is a typedast.Error
// sentinel carrying the declared (or fresh) type/effect, per spec §6.
func (c *Checker) checkDef(baseEnv *types.TypeEnv, def *kindedast.Def) (*typedast.TypedDef, []*types.UnificationError) {
	m := types.NewInferM()
	env := baseEnv

	paramTypes := make([]types.Type, len(def.Params))
	for i, p := range def.Params {
		if p.Declared != nil {
			if err := m.UnifyM(p.TVar, p.Declared, []string{def.Name, "param", p.Name}); err != nil {
				return c.failDef(def, err)
			}
		}
		paramTypes[i] = p.TVar
		env = env.Extend(p.Name, p.TVar)
	}

	bodyNode, err := c.inferExpr(m, env, def.Body)
	if err != nil {
		return c.failDef(def, err)
	}

	bodyEffect := bodyNode.GetEffect()
	if bodyEffect == nil {
		bodyEffect = types.EffPure
	}

	var defType types.Type
	if len(def.Params) == 0 {
		defType = bodyNode.GetType()
	} else {
		defType = &types.TFunc{Params: paramTypes, EffectRow: bodyEffect, Return: bodyNode.GetType()}
	}

	if def.Declared != nil {
		if err := m.UnifyM(defType, def.Declared.Type, []string{def.Name}); err != nil {
			return c.failDef(def, err)
		}
		if err := c.checkDeclaredEffect(def, bodyEffect, m); err != nil {
			return c.failDef(def, err)
		}
	}

	if err := m.SolveEqualityConstraints(); err != nil {
		return c.failDef(def, err)
	}

	finalSub, unresolved := types.EntailAll(c.Instances, m.ClassConstraints, m.Subst)
	finalSub, traces := types.ApplyNumericDefaulting(finalSub, m.ClassConstraints, c.Defaulting, c.Debug)
	m.Subst = finalSub
	if c.Debug && len(traces) > 0 {
		_ = types.FormatDefaultingTraces(traces)
	}
	if len(unresolved) > 0 {
		return c.failDefWithErrors(def, unresolved)
	}

	typedBody := finalize(m, bodyNode)
	finalType := m.Apply(defType)
	scheme := types.Generalize(baseEnv, finalType)

	return &typedast.TypedDef{Name: def.Name, Scheme: scheme, Body: typedBody}, nil
}

// checkDeclaredEffect re-enables the declared-vs-inferred effect check the
// kinded signature's purity promise makes (spec §4.3/§4.6 "declared pure
// but inferred impure/effect-polymorphic" — the checker's own resolution of
// the open question internal/types left deferred): a Def declared to return
// a pure Arrow must infer to a statically Pure effect, not merely an
// effect term the caller hasn't yet pinned down.
func (c *Checker) checkDeclaredEffect(def *kindedast.Def, inferredEffect types.Type, m *types.InferM) error {
	declaredFunc, ok := def.Declared.Type.(*types.TFunc)
	if !ok {
		return nil
	}
	if !types.EffIsPure(declaredFunc.EffectRow) {
		return nil
	}
	resolved := types.NormalizeEffect(m.Apply(inferredEffect))
	if types.EffIsPure(resolved) {
		return nil
	}
	if len(types.FreeVars(resolved)) > 0 {
		return types.NewEffectPolymorphicDeclaredAsPureError(resolved)
	}
	return types.NewImpureDeclaredAsPureError(declaredFunc.EffectRow, resolved)
}

func (c *Checker) failDef(def *kindedast.Def, err error) (*typedast.TypedDef, []*types.UnificationError) {
	var ue *types.UnificationError
	if asUE, ok := err.(*types.UnificationError); ok {
		ue = asUE
	} else {
		ue = types.NewGeneralizationError(err.Error())
	}
	return c.failDefWithErrors(def, []*types.UnificationError{ue})
}

func (c *Checker) failDefWithErrors(def *kindedast.Def, errs []*types.UnificationError) (*typedast.TypedDef, []*types.UnificationError) {
	declType := sentinelType(def)
	var declEff types.Type = types.NewVar(types.Effect)
	if fn, ok := declType.(*types.TFunc); ok && fn.EffectRow != nil {
		declEff = fn.EffectRow
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	sentinel := &typedast.Error{
		TypedExpr: typedast.TypedExpr{
			NodeID: def.ID(),
			Span:   def.Span(),
			Type:   declType,
			Effect: declEff,
		},
		Msg: fmt.Sprint(msgs),
	}
	return &typedast.TypedDef{Name: def.Name, Scheme: &types.Scheme{Type: declType}, Body: sentinel}, errs
}

// sentinelType returns def's declared type, or a fresh variable if def
// carries no signature, so a failed definition's Error sentinel still
// presents a consistent shape to its callers (spec §6).
func sentinelType(def *kindedast.Def) types.Type {
	if def.Declared != nil {
		return def.Declared.Type
	}
	return types.NewVar(types.Star)
}
