package checker

import (
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// fixpointClass names the class constraint each schema-row operation emits
// against its SchemaVar — illustrative rather than resolvable, since no
// builtin instance declares Order/Foldable/Semigroup (SPEC_FULL's
// acknowledged simplification: full Datalog-style stratification is out of
// scope). An unresolved constraint is reported as a MissingInstance error by
// entailment, and the definition's body is then replaced by the Error
// sentinel like any other failing definition.
var fixpointClass = map[kindedast.FixpointOp]string{
	kindedast.FixpointMerge:  "Semigroup",
	kindedast.FixpointSolve:  "Order",
	kindedast.FixpointFilter: "Foldable",
}

// inferFixpoint handles the six schema-row operations of spec §4.4's last
// table row. Every op builds its result over the node's own SchemaVar
// (already kinded by the external kinder): a TSchema for most ops, a TRecord
// over a fresh row for Project; PredVar is not consulted. Where the op's
// meaning implies an ordering or combination over the row, records the
// matching class constraint on that row's type.
func (c *Checker) inferFixpoint(m *types.InferM, env *types.TypeEnv, f *kindedast.Fixpoint, path []string) (typedast.TypedNode, error) {
	argNodes := make([]typedast.TypedNode, len(f.Args))
	effects := make([]types.Type, len(f.Args))
	for i, a := range f.Args {
		an, err := c.inferExpr(m, env, a)
		if err != nil {
			return nil, err
		}
		argNodes[i] = an
		effects[i] = an.GetEffect()
	}

	schemaRow := &types.Row{K: types.SchemaRow, Labels: map[string]types.Type{}, Tail: f.SchemaVar}
	resultType := types.Type(&types.TSchema{Row: schemaRow})

	switch f.Op {
	case kindedast.FixpointProject:
		recordRow := &types.Row{K: types.RecordRow, Labels: map[string]types.Type{}, Tail: types.NewVar(types.RecordRow)}
		resultType = &types.TRecord{Row: recordRow}
	case kindedast.FixpointInject:
		if len(argNodes) > 0 {
			if err := m.UnifyM(argNodes[0].GetType(), &types.TNative{Class: "Predicate"}, path); err != nil {
				return nil, err
			}
		}
	}

	if class, ok := fixpointClass[f.Op]; ok {
		m.AddClassConstraint(class, resultType, path)
	}

	if _, err := setType(m, f, resultType, path); err != nil {
		return nil, err
	}
	eff, err := setEffect(m, f, combineEffects(effects...), path)
	if err != nil {
		return nil, err
	}
	return &typedast.TypedApp{
		TypedExpr: mkExpr(f, f.Type(), eff),
		Func:      &typedast.TypedVar{TypedExpr: mkExpr(f, resultType, types.EffPure), Name: f.Op.String()},
		Args:      argNodes,
	}, nil
}
