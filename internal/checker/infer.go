package checker

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

var arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}
var equalityOps = map[string]bool{"==": true, "!=": true}
var comparisonOps = map[string]bool{"<": true, "<=": true, ">": true, ">=": true}
var booleanOps = map[string]bool{"&&": true, "||": true}

func mkExpr(e kindedast.Expr, typ, eff types.Type) typedast.TypedExpr {
	return typedast.TypedExpr{NodeID: e.ID(), Span: e.Span(), Type: typ, Effect: eff, Kinded: e}
}

// setType unifies e's own tvar with t and returns it as the node's
// canonical type.
func setType(m *types.InferM, e kindedast.Expr, t types.Type, path []string) (types.Type, error) {
	if err := m.UnifyM(e.Type(), t, path); err != nil {
		return nil, err
	}
	return e.Type(), nil
}

// setEffect unifies e's own effect var (if it has one) with eff; expression
// forms with no EffVar of their own just report the computed term directly
// (spec: "nil for expression forms whose effect is always composed from
// their subterms").
func setEffect(m *types.InferM, e kindedast.Expr, eff types.Type, path []string) (types.Type, error) {
	if e.Effect() == nil {
		return eff, nil
	}
	if err := m.UnifyM(e.Effect(), eff, path); err != nil {
		return nil, err
	}
	return e.Effect(), nil
}

// inferExpr is the constraint generator's recursive walk over a kinded
// expression (spec §4.4's full rule table), producing the matching typedast
// node. Every kindedast.Expr variant is handled explicitly; there is no
// silent default case.
func (c *Checker) inferExpr(m *types.InferM, env *types.TypeEnv, expr kindedast.Expr) (typedast.TypedNode, error) {
	path := []string{fmt.Sprintf("node%d", expr.ID())}

	switch e := expr.(type) {
	case *kindedast.Var:
		scheme, err := env.Lookup(e.Name)
		if err != nil {
			return nil, types.NewGeneralizationError(fmt.Sprintf("unbound variable %q", e.Name))
		}
		t := types.Instantiate(scheme)
		if _, err := setType(m, e, t, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, types.EffPure, path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedVar{TypedExpr: mkExpr(e, e.Type(), eff), Name: e.Name}, nil

	case *kindedast.Lit:
		litType, err := literalType(e.Kind, e.Value)
		if err != nil {
			return nil, err
		}
		if _, err := setType(m, e, litType, path); err != nil {
			return nil, err
		}
		return &typedast.TypedLit{TypedExpr: mkExpr(e, e.Type(), types.EffPure), Kind: e.Kind, Value: e.Value}, nil

	case *kindedast.Lambda:
		bodyEnv := env
		paramTypes := make([]types.Type, len(e.Params))
		names := make([]string, len(e.Params))
		for i, p := range e.Params {
			if p.Declared != nil {
				if err := m.UnifyM(p.TVar, p.Declared, append(path, p.Name)); err != nil {
					return nil, err
				}
			}
			paramTypes[i] = p.TVar
			names[i] = p.Name
			bodyEnv = bodyEnv.Extend(p.Name, p.TVar)
		}
		bodyNode, err := c.inferExpr(m, bodyEnv, e.Body)
		if err != nil {
			return nil, err
		}
		funcType := &types.TFunc{Params: paramTypes, EffectRow: orPure(bodyNode.GetEffect()), Return: bodyNode.GetType()}
		if _, err := setType(m, e, funcType, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, types.EffPure, path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedLambda{TypedExpr: mkExpr(e, e.Type(), eff), Params: names, ParamTypes: paramTypes, Body: bodyNode}, nil

	case *kindedast.Apply:
		funcNode, err := c.inferExpr(m, env, e.Func)
		if err != nil {
			return nil, err
		}
		argNodes := make([]typedast.TypedNode, len(e.Args))
		argTypes := make([]types.Type, len(e.Args))
		effects := []types.Type{funcNode.GetEffect()}
		for i, a := range e.Args {
			an, err := c.inferExpr(m, env, a)
			if err != nil {
				return nil, err
			}
			argNodes[i] = an
			argTypes[i] = an.GetType()
			effects = append(effects, an.GetEffect())
		}
		latent := m.Fresh(types.Effect)
		result := m.Fresh(types.Star)
		want := &types.TFunc{Params: argTypes, EffectRow: latent, Return: result}
		if err := m.UnifyM(funcNode.GetType(), want, path); err != nil {
			return nil, err
		}
		effects = append(effects, latent)
		if _, err := setType(m, e, result, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: funcNode, Args: argNodes}, nil

	case *kindedast.If:
		condNode, err := c.inferExpr(m, env, e.Cond)
		if err != nil {
			return nil, err
		}
		if err := m.UnifyM(condNode.GetType(), types.TBool, path); err != nil {
			return nil, err
		}
		thenNode, err := c.inferExpr(m, env, e.Then)
		if err != nil {
			return nil, err
		}
		elseNode, err := c.inferExpr(m, env, e.Else)
		if err != nil {
			return nil, err
		}
		if err := m.UnifyM(thenNode.GetType(), elseNode.GetType(), path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, thenNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(condNode.GetEffect(), thenNode.GetEffect(), elseNode.GetEffect()), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedIf{TypedExpr: mkExpr(e, e.Type(), eff), Cond: condNode, Then: thenNode, Else: elseNode}, nil

	case *kindedast.Let:
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		if err := m.UnifyM(e.NameTVar, valNode.GetType(), path); err != nil {
			return nil, err
		}
		bodyEnv := env.Extend(e.Name, e.NameTVar)
		bodyNode, err := c.inferExpr(m, bodyEnv, e.Body)
		if err != nil {
			return nil, err
		}
		if _, err := setType(m, e, bodyNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(valNode.GetEffect(), bodyNode.GetEffect()), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedLet{TypedExpr: mkExpr(e, e.Type(), eff), Name: e.Name, Value: valNode, Body: bodyNode}, nil

	case *kindedast.LetRec:
		bodyEnv := env
		for _, b := range e.Bindings {
			bodyEnv = bodyEnv.Extend(b.Name, b.NameTVar)
		}
		typedBindings := make([]typedast.TypedRecBinding, len(e.Bindings))
		effects := []types.Type{}
		for i, b := range e.Bindings {
			vn, err := c.inferExpr(m, bodyEnv, b.Value)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(b.NameTVar, vn.GetType(), path); err != nil {
				return nil, err
			}
			typedBindings[i] = typedast.TypedRecBinding{Name: b.Name, Type: b.NameTVar, Value: vn}
			effects = append(effects, vn.GetEffect())
		}
		bodyNode, err := c.inferExpr(m, bodyEnv, e.Body)
		if err != nil {
			return nil, err
		}
		effects = append(effects, bodyNode.GetEffect())
		if _, err := setType(m, e, bodyNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedLetRec{TypedExpr: mkExpr(e, e.Type(), eff), Bindings: typedBindings, Body: bodyNode}, nil

	case *kindedast.Match:
		scrutNode, err := c.inferExpr(m, env, e.Scrutinee)
		if err != nil {
			return nil, err
		}
		effects := []types.Type{scrutNode.GetEffect()}
		arms := make([]typedast.TypedMatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			typedPat, armEnv, err := c.inferPattern(m, env, arm.Pattern, scrutNode.GetType(), path)
			if err != nil {
				return nil, err
			}
			var guardNode typedast.TypedNode
			if arm.Guard != nil {
				guardNode, err = c.inferExpr(m, armEnv, arm.Guard)
				if err != nil {
					return nil, err
				}
				if err := m.UnifyM(guardNode.GetType(), types.TBool, path); err != nil {
					return nil, err
				}
				effects = append(effects, guardNode.GetEffect())
			}
			bodyNode, err := c.inferExpr(m, armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(e.Type(), bodyNode.GetType(), path); err != nil {
				return nil, err
			}
			effects = append(effects, bodyNode.GetEffect())
			arms[i] = typedast.TypedMatchArm{Pattern: typedPat, Guard: guardNode, Body: bodyNode}
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedMatch{TypedExpr: mkExpr(e, e.Type(), eff), Scrutinee: scrutNode, Arms: arms}, nil

	case *kindedast.TypeMatch:
		scrutNode, err := c.inferExpr(m, env, e.Scrutinee)
		if err != nil {
			return nil, err
		}
		effects := []types.Type{scrutNode.GetEffect()}
		arms := make([]typedast.TypedMatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			for _, v := range arm.Declared.Vars {
				m.Rigidify(v)
			}
			armEnv := env.Extend(arm.BindName, arm.BindTVar)
			if err := m.UnifyM(arm.BindTVar, arm.Declared.Type, path); err != nil {
				return nil, err
			}
			bodyNode, err := c.inferExpr(m, armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(e.Type(), bodyNode.GetType(), path); err != nil {
				return nil, err
			}
			effects = append(effects, bodyNode.GetEffect())
			arms[i] = typedast.TypedMatchArm{Pattern: &typedast.TypedVarPattern{Name: arm.BindName, Type: arm.BindTVar}, Body: bodyNode}
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedMatch{TypedExpr: mkExpr(e, e.Type(), eff), Scrutinee: scrutNode, Arms: arms}, nil

	case *kindedast.BinOp:
		leftNode, err := c.inferExpr(m, env, e.Left)
		if err != nil {
			return nil, err
		}
		rightNode, err := c.inferExpr(m, env, e.Right)
		if err != nil {
			return nil, err
		}
		var resultType types.Type
		switch {
		case arithmeticOps[e.Op]:
			if err := m.UnifyM(leftNode.GetType(), rightNode.GetType(), path); err != nil {
				return nil, err
			}
			m.AddClassConstraint("Num", leftNode.GetType(), path)
			resultType = leftNode.GetType()
		case equalityOps[e.Op]:
			if err := m.UnifyM(leftNode.GetType(), rightNode.GetType(), path); err != nil {
				return nil, err
			}
			m.AddClassConstraint("Eq", leftNode.GetType(), path)
			resultType = types.TBool
		case comparisonOps[e.Op]:
			if err := m.UnifyM(leftNode.GetType(), rightNode.GetType(), path); err != nil {
				return nil, err
			}
			m.AddClassConstraint("Ord", leftNode.GetType(), path)
			resultType = types.TBool
		case booleanOps[e.Op]:
			if err := m.UnifyM(leftNode.GetType(), types.TBool, path); err != nil {
				return nil, err
			}
			if err := m.UnifyM(rightNode.GetType(), types.TBool, path); err != nil {
				return nil, err
			}
			resultType = types.TBool
		default:
			return nil, types.NewGeneralizationError(fmt.Sprintf("unknown operator %q", e.Op))
		}
		if _, err := setType(m, e, resultType, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(leftNode.GetEffect(), rightNode.GetEffect()), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedBinOp{TypedExpr: mkExpr(e, e.Type(), eff), Op: e.Op, Left: leftNode, Right: rightNode}, nil

	case *kindedast.UnOp:
		operandNode, err := c.inferExpr(m, env, e.Operand)
		if err != nil {
			return nil, err
		}
		var resultType types.Type
		if e.Op == "!" {
			if err := m.UnifyM(operandNode.GetType(), types.TBool, path); err != nil {
				return nil, err
			}
			resultType = types.TBool
		} else {
			m.AddClassConstraint("Num", operandNode.GetType(), path)
			resultType = operandNode.GetType()
		}
		if _, err := setType(m, e, resultType, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, operandNode.GetEffect(), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedUnOp{TypedExpr: mkExpr(e, e.Type(), eff), Op: e.Op, Operand: operandNode}, nil

	case *kindedast.Tuple:
		elemTypes := make([]types.Type, len(e.Elements))
		typedElems := make([]typedast.TypedNode, len(e.Elements))
		effects := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			en, err := c.inferExpr(m, env, el)
			if err != nil {
				return nil, err
			}
			typedElems[i] = en
			elemTypes[i] = en.GetType()
			effects[i] = en.GetEffect()
		}
		if _, err := setType(m, e, &types.TTuple{Elements: elemTypes}, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedTuple{TypedExpr: mkExpr(e, e.Type(), eff), Elements: typedElems}, nil

	case *kindedast.RecordEmpty:
		if _, err := setType(m, e, &types.TRecord{Row: types.EmptyRecordRow()}, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, types.EffPure, path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedRecord{TypedExpr: mkExpr(e, e.Type(), eff), Fields: map[string]typedast.TypedNode{}}, nil

	case *kindedast.RecordSelect:
		recordNode, err := c.inferExpr(m, env, e.Record)
		if err != nil {
			return nil, err
		}
		fieldType := m.Fresh(types.Star)
		want := &types.TRecord{Row: types.OpenRecordRow(map[string]types.Type{e.Field: fieldType})}
		if err := m.UnifyM(recordNode.GetType(), want, path); err != nil {
			return nil, missingFieldError(err, m.Apply(recordNode.GetType()), e.Field)
		}
		if _, err := setType(m, e, fieldType, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, recordNode.GetEffect(), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedRecordAccess{TypedExpr: mkExpr(e, e.Type(), eff), Record: recordNode, Field: e.Field}, nil

	case *kindedast.RecordExtend:
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		restNode, err := c.inferExpr(m, env, e.Rest)
		if err != nil {
			return nil, err
		}
		tail := types.NewVar(types.RecordRow)
		if err := m.UnifyM(restNode.GetType(), &types.TRecord{Row: &types.Row{K: types.RecordRow, Labels: map[string]types.Type{}, Tail: tail}}, path); err != nil {
			return nil, err
		}
		resultRow := &types.Row{K: types.RecordRow, Labels: map[string]types.Type{e.Field: valNode.GetType()}, Tail: tail}
		if _, err := setType(m, e, &types.TRecord{Row: resultRow}, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(valNode.GetEffect(), restNode.GetEffect()), path)
		if err != nil {
			return nil, err
		}
		fields := map[string]typedast.TypedNode{e.Field: valNode}
		return &typedast.TypedRecord{TypedExpr: mkExpr(e, e.Type(), eff), Fields: fields}, nil

	case *kindedast.RecordRestrict:
		restNode, err := c.inferExpr(m, env, e.Rest)
		if err != nil {
			return nil, err
		}
		fieldType := m.Fresh(types.Star)
		tail := types.NewVar(types.RecordRow)
		want := &types.TRecord{Row: &types.Row{K: types.RecordRow, Labels: map[string]types.Type{e.Field: fieldType}, Tail: tail}}
		if err := m.UnifyM(restNode.GetType(), want, path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, &types.TRecord{Row: &types.Row{K: types.RecordRow, Labels: map[string]types.Type{}, Tail: tail}}, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, restNode.GetEffect(), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedRecord{TypedExpr: mkExpr(e, e.Type(), eff), Fields: map[string]typedast.TypedNode{}}, nil

	case *kindedast.Ref:
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		if _, err := setType(m, e, types.TRef(valNode.GetType(), e.Region), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(valNode.GetEffect(), e.Region), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedRef{TypedExpr: mkExpr(e, e.Type(), eff), Value: valNode, Region: e.Region}, nil

	case *kindedast.Deref:
		cellNode, err := c.inferExpr(m, env, e.Cell)
		if err != nil {
			return nil, err
		}
		elem := m.Fresh(types.Star)
		region := m.Fresh(types.Effect)
		if err := m.UnifyM(cellNode.GetType(), types.TRef(elem, region), path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, elem, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(cellNode.GetEffect(), region), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedDeref{TypedExpr: mkExpr(e, e.Type(), eff), Cell: cellNode}, nil

	case *kindedast.Assign:
		cellNode, err := c.inferExpr(m, env, e.Cell)
		if err != nil {
			return nil, err
		}
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		region := m.Fresh(types.Effect)
		if err := m.UnifyM(cellNode.GetType(), types.TRef(valNode.GetType(), region), path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, types.TUnit, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(cellNode.GetEffect(), valNode.GetEffect(), region), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedAssign{TypedExpr: mkExpr(e, e.Type(), eff), Cell: cellNode, Value: valNode}, nil

	case *kindedast.ArrayLit:
		elem := m.Fresh(types.Star)
		typedElems := make([]typedast.TypedNode, len(e.Elements))
		effects := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			en, err := c.inferExpr(m, env, el)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(en.GetType(), elem, path); err != nil {
				return nil, err
			}
			typedElems[i] = en
			effects[i] = en.GetEffect()
		}
		if _, err := setType(m, e, types.TArray(elem), path); err != nil {
			return nil, err
		}
		effects = append(effects, types.EffImpure)
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedList{TypedExpr: mkExpr(e, e.Type(), eff), Elements: typedElems}, nil

	case *kindedast.VectorLit:
		elem := m.Fresh(types.Star)
		typedElems := make([]typedast.TypedNode, len(e.Elements))
		effects := make([]types.Type, len(e.Elements))
		for i, el := range e.Elements {
			en, err := c.inferExpr(m, env, el)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(en.GetType(), elem, path); err != nil {
				return nil, err
			}
			typedElems[i] = en
			effects[i] = en.GetEffect()
		}
		if _, err := setType(m, e, types.TVector(elem), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedList{TypedExpr: mkExpr(e, e.Type(), eff), Elements: typedElems}, nil

	case *kindedast.ArrayIndex:
		containerNode, err := c.inferExpr(m, env, e.Container)
		if err != nil {
			return nil, err
		}
		indexNode, err := c.inferExpr(m, env, e.Index)
		if err != nil {
			return nil, err
		}
		if err := m.UnifyM(indexNode.GetType(), types.TInt, path); err != nil {
			return nil, err
		}
		elem, err := sequenceElem(m, containerNode.GetType(), path)
		if err != nil {
			return nil, err
		}
		if _, err := setType(m, e, elem, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(containerNode.GetEffect(), indexNode.GetEffect()), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: containerNode, Args: []typedast.TypedNode{indexNode}}, nil

	case *kindedast.ArraySet:
		containerNode, err := c.inferExpr(m, env, e.Container)
		if err != nil {
			return nil, err
		}
		indexNode, err := c.inferExpr(m, env, e.Index)
		if err != nil {
			return nil, err
		}
		if err := m.UnifyM(indexNode.GetType(), types.TInt, path); err != nil {
			return nil, err
		}
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		elem, err := sequenceElem(m, containerNode.GetType(), path)
		if err != nil {
			return nil, err
		}
		if err := m.UnifyM(elem, valNode.GetType(), path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, types.TUnit, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(containerNode.GetEffect(), indexNode.GetEffect(), valNode.GetEffect()), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: containerNode, Args: []typedast.TypedNode{indexNode, valNode}}, nil

	case *kindedast.Scope:
		m.Rigidify(e.RegionVar)
		bodyNode, err := c.inferExpr(m, env, e.Body)
		if err != nil {
			return nil, err
		}
		purify := types.Subst{e.RegionVar.ID: types.EffPure}
		purified := types.NormalizeEffect(types.ApplySubst(purify, m.Apply(orPure(bodyNode.GetEffect()))))
		if types.Occurs(e.RegionVar, m.Apply(bodyNode.GetType())) {
			return nil, types.NewEffectGeneralizationError(e.RegionVar)
		}
		if _, err := setType(m, e, bodyNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, purified, path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedScope{TypedExpr: mkExpr(e, e.Type(), eff), RegionName: e.RegionName, Body: bodyNode}, nil

	case *kindedast.NewChannel:
		elem := m.Fresh(types.Star)
		var bufferNode typedast.TypedNode
		effects := []types.Type{e.Region}
		if e.Buffer != nil {
			var err error
			bufferNode, err = c.inferExpr(m, env, e.Buffer)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(bufferNode.GetType(), types.TInt, path); err != nil {
				return nil, err
			}
			effects = append(effects, bufferNode.GetEffect())
		}
		if _, err := setType(m, e, types.TSender(elem, e.Region), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		args := []typedast.TypedNode{}
		if bufferNode != nil {
			args = append(args, bufferNode)
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: &typedast.TypedVar{TypedExpr: mkExpr(e, e.Type(), types.EffPure), Name: "newChannel"}, Args: args}, nil

	case *kindedast.GetChannel:
		chanNode, err := c.inferExpr(m, env, e.Channel)
		if err != nil {
			return nil, err
		}
		elem := m.Fresh(types.Star)
		region := m.Fresh(types.Effect)
		if err := m.UnifyM(chanNode.GetType(), types.TSender(elem, region), path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, elem, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(chanNode.GetEffect(), region), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: chanNode, Args: nil}, nil

	case *kindedast.PutChannel:
		chanNode, err := c.inferExpr(m, env, e.Channel)
		if err != nil {
			return nil, err
		}
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		region := m.Fresh(types.Effect)
		if err := m.UnifyM(chanNode.GetType(), types.TSender(valNode.GetType(), region), path); err != nil {
			return nil, err
		}
		if _, err := setType(m, e, types.TUnit, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(chanNode.GetEffect(), valNode.GetEffect(), region), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: chanNode, Args: []typedast.TypedNode{valNode}}, nil

	case *kindedast.SelectChannel:
		effects := []types.Type{}
		arms := make([]typedast.TypedMatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			chanNode, err := c.inferExpr(m, env, arm.Channel)
			if err != nil {
				return nil, err
			}
			region := m.Fresh(types.Effect)
			if err := m.UnifyM(chanNode.GetType(), types.TSender(arm.BindTVar, region), path); err != nil {
				return nil, err
			}
			armEnv := env.Extend(arm.BindName, arm.BindTVar)
			bodyNode, err := c.inferExpr(m, armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(e.Type(), bodyNode.GetType(), path); err != nil {
				return nil, err
			}
			effects = append(effects, chanNode.GetEffect(), region, bodyNode.GetEffect())
			arms[i] = typedast.TypedMatchArm{Pattern: &typedast.TypedVarPattern{Name: arm.BindName, Type: arm.BindTVar}, Body: bodyNode}
		}
		if e.Default != nil {
			defNode, err := c.inferExpr(m, env, e.Default)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(e.Type(), defNode.GetType(), path); err != nil {
				return nil, err
			}
			effects = append(effects, defNode.GetEffect())
			arms = append(arms, typedast.TypedMatchArm{Pattern: &typedast.TypedWildcardPattern{Type: types.TUnit}, Body: defNode})
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedMatch{TypedExpr: mkExpr(e, e.Type(), eff), Arms: arms}, nil

	case *kindedast.TryCatch:
		bodyNode, err := c.inferExpr(m, env, e.Body)
		if err != nil {
			return nil, err
		}
		effects := []types.Type{bodyNode.GetEffect()}
		catchType := m.Fresh(types.Star)
		arms := make([]typedast.TypedMatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			typedPat, armEnv, err := c.inferPattern(m, env, arm.Pattern, catchType, path)
			if err != nil {
				return nil, err
			}
			armBody, err := c.inferExpr(m, armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(bodyNode.GetType(), armBody.GetType(), path); err != nil {
				return nil, err
			}
			effects = append(effects, armBody.GetEffect())
			arms[i] = typedast.TypedMatchArm{Pattern: typedPat, Body: armBody}
		}
		if _, err := setType(m, e, bodyNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedMatch{TypedExpr: mkExpr(e, e.Type(), eff), Scrutinee: bodyNode, Arms: arms}, nil

	case *kindedast.TryWith:
		bodyNode, err := c.inferExpr(m, env, e.Body)
		if err != nil {
			return nil, err
		}
		effectDecl := c.Root.LookupEffect(e.EffectName)
		arms := make([]typedast.TypedTryWithArm, len(e.Arms))
		armEffects := []types.Type{}
		for i, arm := range e.Arms {
			armEnv := env
			var opType *types.TFunc
			if effectDecl != nil {
				for _, op := range effectDecl.Ops {
					if op.Name == arm.Op {
						if ft, ok := op.Declared.Type.(*types.TFunc); ok {
							opType = ft
						}
					}
				}
			}
			paramNames := make([]string, len(arm.Params))
			for j, p := range arm.Params {
				if opType != nil && j < len(opType.Params) {
					if err := m.UnifyM(p.TVar, opType.Params[j], path); err != nil {
						return nil, err
					}
				}
				armEnv = armEnv.Extend(p.Name, p.TVar)
				paramNames[j] = p.Name
			}
			if opType != nil {
				if err := m.UnifyM(arm.ResumeTVar, opType.Return, path); err != nil {
					return nil, err
				}
			}
			resumeType := &types.TFunc{Params: []types.Type{arm.ResumeTVar}, EffectRow: types.EffPure, Return: e.Type()}
			armEnv = armEnv.Extend("resume", resumeType)
			armBody, err := c.inferExpr(m, armEnv, arm.Body)
			if err != nil {
				return nil, err
			}
			if err := m.UnifyM(e.Type(), armBody.GetType(), path); err != nil {
				return nil, err
			}
			armEffects = append(armEffects, armBody.GetEffect())
			arms[i] = typedast.TypedTryWithArm{Op: arm.Op, Params: paramNames, Body: armBody}
		}
		handled := types.NormalizeEffect(removeEffectAtom(m.Apply(orPure(bodyNode.GetEffect())), e.EffectName))
		if _, err := setType(m, e, bodyNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(append(armEffects, handled)...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedTryWith{TypedExpr: mkExpr(e, e.Type(), eff), Body: bodyNode, EffectName: e.EffectName, Arms: arms}, nil

	case *kindedast.Do:
		effectDecl := c.Root.LookupEffect(e.EffectName)
		argNodes := make([]typedast.TypedNode, len(e.Args))
		effects := []types.Type{types.EffAtom{Name: e.EffectName}}
		var resultType types.Type = m.Fresh(types.Star)
		var declParams []types.Type
		if effectDecl != nil {
			for _, op := range effectDecl.Ops {
				if op.Name == e.Op {
					if ft, ok := op.Declared.Type.(*types.TFunc); ok {
						declParams = ft.Params
						resultType = ft.Return
					}
				}
			}
		}
		for i, a := range e.Args {
			an, err := c.inferExpr(m, env, a)
			if err != nil {
				return nil, err
			}
			if i < len(declParams) {
				if err := m.UnifyM(an.GetType(), declParams[i], path); err != nil {
					return nil, err
				}
			}
			argNodes[i] = an
			effects = append(effects, an.GetEffect())
		}
		if _, err := setType(m, e, resultType, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedDo{TypedExpr: mkExpr(e, e.Type(), eff), EffectName: e.EffectName, Op: e.Op, Args: argNodes}, nil

	case *kindedast.TypeCast:
		valNode, err := c.inferExpr(m, env, e.Value)
		if err != nil {
			return nil, err
		}
		if e.Kind != kindedast.CheckedCast {
			if _, err := setType(m, e, e.Declared, path); err != nil {
				return nil, err
			}
		}
		castEffect := types.EffImpure
		switch e.Kind {
		case kindedast.UncheckedCast:
			castEffect = types.EffPure
		case kindedast.CheckedCast:
			castEffect = m.Fresh(types.Effect)
		}
		eff, err := setEffect(m, e, combineEffects(valNode.GetEffect(), castEffect), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedCast{TypedExpr: mkExpr(e, e.Type(), eff), Kind: e.Kind, Value: valNode}, nil

	case *kindedast.ForeignAccess:
		effects := []types.Type{types.EffImpure}
		var recvNode typedast.TypedNode
		if e.Receiver != nil {
			var err error
			recvNode, err = c.inferExpr(m, env, e.Receiver)
			if err != nil {
				return nil, err
			}
			effects = append(effects, recvNode.GetEffect())
		}
		argNodes := make([]typedast.TypedNode, len(e.Args))
		for i, a := range e.Args {
			an, err := c.inferExpr(m, env, a)
			if err != nil {
				return nil, err
			}
			argNodes[i] = an
			effects = append(effects, an.GetEffect())
		}
		result := m.Fresh(types.Star)
		if _, err := setType(m, e, result, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		funcNode := recvNode
		if funcNode == nil {
			funcNode = &typedast.TypedVar{TypedExpr: mkExpr(e, result, types.EffImpure), Name: fmt.Sprintf("%s.%s", e.ClassName, e.Member)}
		}
		return &typedast.TypedApp{TypedExpr: mkExpr(e, e.Type(), eff), Func: funcNode, Args: argNodes}, nil

	case *kindedast.Fixpoint:
		return c.inferFixpoint(m, env, e, path)

	case *kindedast.DictAbs:
		bodyEnv := env
		for _, p := range e.Params {
			bodyEnv = bodyEnv.Extend(p.Name, &types.TNative{Class: fmt.Sprintf("%s[%s]", p.ClassName, p.Type)})
		}
		bodyNode, err := c.inferExpr(m, bodyEnv, e.Body)
		if err != nil {
			return nil, err
		}
		if _, err := setType(m, e, bodyNode.GetType(), path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, bodyNode.GetEffect(), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedDictAbs{TypedExpr: mkExpr(e, e.Type(), eff), Params: e.Params, Body: bodyNode}, nil

	case *kindedast.DictApp:
		dictNode, err := c.inferExpr(m, env, e.Dict)
		if err != nil {
			return nil, err
		}
		effects := []types.Type{dictNode.GetEffect()}
		argNodes := make([]typedast.TypedNode, len(e.Args))
		for i, a := range e.Args {
			an, err := c.inferExpr(m, env, a)
			if err != nil {
				return nil, err
			}
			argNodes[i] = an
			effects = append(effects, an.GetEffect())
		}
		result := m.Fresh(types.Star)
		if _, err := setType(m, e, result, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, combineEffects(effects...), path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedDictApp{TypedExpr: mkExpr(e, e.Type(), eff), Dict: dictNode, Method: e.Method, Args: argNodes}, nil

	case *kindedast.DictRef:
		t := &types.TNative{Class: fmt.Sprintf("%s[%s]", e.ClassName, e.TypeName)}
		if _, err := setType(m, e, t, path); err != nil {
			return nil, err
		}
		eff, err := setEffect(m, e, types.EffPure, path)
		if err != nil {
			return nil, err
		}
		return &typedast.TypedDictRef{TypedExpr: mkExpr(e, e.Type(), eff), ClassName: e.ClassName, TypeName: e.TypeName}, nil
	}

	return nil, fmt.Errorf("unhandled expression form %T", expr)
}

// orPure treats a nil effect term as Pure, the convention ExprBase.Effect()
// uses for expression forms computed purely from their subterms.
func orPure(t types.Type) types.Type {
	if t == nil {
		return types.EffPure
	}
	return t
}

// sequenceElem unifies container against either the Array or Vector
// container head and returns its element type — ArrayIndex/ArraySet are
// shared surface forms over both (spec §4.4 "shared by Array and Vector").
func sequenceElem(m *types.InferM, container types.Type, path []string) (types.Type, error) {
	elem := types.NewVar(types.Star)
	if sub, err := types.NewUnifier().Unify(container, types.TArray(elem), m.Subst, path); err == nil {
		m.Subst = sub
		return elem, nil
	}
	elem2 := types.NewVar(types.Star)
	sub, err := types.NewUnifier().Unify(container, types.TVector(elem2), m.Subst, path)
	if err != nil {
		return nil, types.NewHeadMismatchError(types.TArray(elem), container, path)
	}
	m.Subst = sub
	return elem2, nil
}
