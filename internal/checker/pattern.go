package checker

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// inferPattern walks a kinded Pattern against scrutType, unifying the
// pattern's own tvar with the scrutinee's type and extending env with every
// variable the pattern binds (spec §4.5: "Tag instantiates the enum's
// scheme and unifies the payload", and the simpler structural rules for the
// remaining pattern forms).
func (c *Checker) inferPattern(m *types.InferM, env *types.TypeEnv, pat kindedast.Pattern, scrutType types.Type, path []string) (typedast.TypedPattern, *types.TypeEnv, error) {
	if err := m.UnifyM(pat.Type(), scrutType, path); err != nil {
		return nil, nil, err
	}

	switch p := pat.(type) {
	case *kindedast.VarPattern:
		env = env.Extend(p.Name, p.Type())
		return &typedast.TypedVarPattern{Name: p.Name, Type: p.Type()}, env, nil

	case *kindedast.WildcardPattern:
		return &typedast.TypedWildcardPattern{Type: p.Type()}, env, nil

	case *kindedast.LitPattern:
		litType, err := literalType(p.Kind, p.Value)
		if err != nil {
			return nil, nil, err
		}
		if err := m.UnifyM(p.Type(), litType, path); err != nil {
			return nil, nil, err
		}
		return &typedast.TypedLitPattern{Value: p.Value, Type: p.Type()}, env, nil

	case *kindedast.TuplePattern:
		elemTypes := make([]types.Type, len(p.Elements))
		typedElems := make([]typedast.TypedPattern, len(p.Elements))
		for i, el := range p.Elements {
			elemTypes[i] = el.Type()
		}
		if err := m.UnifyM(pat.Type(), &types.TTuple{Elements: elemTypes}, path); err != nil {
			return nil, nil, err
		}
		for i, el := range p.Elements {
			tp, newEnv, err := c.inferPattern(m, env, el, el.Type(), append(path, fmt.Sprintf("elem%d", i)))
			if err != nil {
				return nil, nil, err
			}
			env = newEnv
			typedElems[i] = tp
		}
		return &typedast.TypedTuplePattern{Elements: typedElems, Type: pat.Type()}, env, nil

	case *kindedast.RecordPattern:
		labels := make(map[string]types.Type, len(p.Fields))
		for name, fp := range p.Fields {
			labels[name] = fp.Type()
		}
		row := &types.Row{K: types.RecordRow, Labels: labels}
		if p.Open {
			row.Tail = types.NewVar(types.RecordRow)
		}
		if err := m.UnifyM(pat.Type(), &types.TRecord{Row: row}, path); err != nil {
			return nil, nil, err
		}
		typedFields := make(map[string]typedast.TypedPattern, len(p.Fields))
		for name, fp := range p.Fields {
			tp, newEnv, err := c.inferPattern(m, env, fp, fp.Type(), append(path, name))
			if err != nil {
				return nil, nil, err
			}
			env = newEnv
			typedFields[name] = tp
		}
		return &typedast.TypedRecordPattern{Fields: typedFields, Type: pat.Type()}, env, nil

	case *kindedast.ListPattern:
		elem := types.NewVar(types.Star)
		if err := m.UnifyM(pat.Type(), types.TList(elem), path); err != nil {
			return nil, nil, err
		}
		typedElems := make([]typedast.TypedPattern, len(p.Elements))
		for i, el := range p.Elements {
			if err := m.UnifyM(el.Type(), elem, append(path, fmt.Sprintf("elem%d", i))); err != nil {
				return nil, nil, err
			}
			tp, newEnv, err := c.inferPattern(m, env, el, elem, append(path, fmt.Sprintf("elem%d", i)))
			if err != nil {
				return nil, nil, err
			}
			env = newEnv
			typedElems[i] = tp
		}
		if p.Tail != nil {
			env = env.Extend(p.Tail.Name, types.TList(elem))
		}
		return &typedast.TypedListPattern{Elements: typedElems, Type: pat.Type()}, env, nil

	case *kindedast.TagPattern:
		enum := c.Root.LookupEnum(p.EnumSym)
		if enum == nil {
			return nil, nil, types.NewGeneralizationError(fmt.Sprintf("unknown enum %q", p.EnumSym))
		}
		enumType, argTypes, ok := instantiateEnumCase(enum, p.Tag)
		if !ok {
			return nil, nil, types.NewGeneralizationError(fmt.Sprintf("enum %q has no case %q", p.EnumSym, p.Tag))
		}
		if err := m.UnifyM(pat.Type(), enumType, path); err != nil {
			return nil, nil, err
		}
		if len(p.Args) != len(argTypes) {
			return nil, nil, types.NewInvalidOpParamCountError(p.Tag, len(argTypes), len(p.Args))
		}
		typedArgs := make([]typedast.TypedPattern, len(p.Args))
		for i, argPat := range p.Args {
			tp, newEnv, err := c.inferPattern(m, env, argPat, argTypes[i], append(path, fmt.Sprintf("arg%d", i)))
			if err != nil {
				return nil, nil, err
			}
			env = newEnv
			typedArgs[i] = tp
		}
		return &typedast.TypedTagPattern{Tag: p.Tag, Args: typedArgs, Type: pat.Type()}, env, nil
	}

	return nil, nil, fmt.Errorf("unhandled pattern form %T", pat)
}

// literalType maps a literal pattern's kind to its static type.
func literalType(kind kindedast.LitKind, value interface{}) (types.Type, error) {
	switch kind {
	case kindedast.IntLit:
		return types.TInt, nil
	case kindedast.FloatLit:
		return types.TFloat, nil
	case kindedast.StringLit:
		return types.TString, nil
	case kindedast.BoolLit:
		return types.TBool, nil
	case kindedast.UnitLit:
		return types.TUnit, nil
	default:
		return nil, fmt.Errorf("unknown literal kind %v for value %v", kind, value)
	}
}

// instantiateEnumCase finds tag among enum's cases and returns a fresh
// instantiation of the enum's type together with that case's argument
// types under the same instantiation.
func instantiateEnumCase(enum *kindedast.Enum, tag string) (types.Type, []types.Type, bool) {
	for _, c := range enum.Cases {
		if c.Tag != tag {
			continue
		}
		sub := types.Subst{}
		freshArgs := make([]types.Type, len(enum.TypeParams))
		for i, tp := range enum.TypeParams {
			fv := types.NewVar(tp.Kind())
			sub[tp.ID] = fv
			freshArgs[i] = fv
		}
		argTypes := make([]types.Type, len(c.Args))
		for i, a := range c.Args {
			argTypes[i] = types.ApplySubst(sub, a)
		}
		return &types.TEnum{Sym: enum.Name, Args: freshArgs, Restrictable: enum.Restrictable}, argTypes, true
	}
	return nil, nil, false
}
