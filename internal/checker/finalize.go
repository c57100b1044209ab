package checker

import (
	"github.com/arbor-lang/arbor/internal/typedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// finalize walks a typed node produced mid-pass and resolves every Type and
// Effect against m's final substitution — class entailment and numeric
// defaulting (checkDef) both run after the body is first built, so a node's
// Type/Effect captured at construction time can still contain variables
// later substitution pins down.
func finalize(m *types.InferM, node typedast.TypedNode) typedast.TypedNode {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *typedast.TypedVar:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		return n
	case *typedast.TypedLit:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		return n
	case *typedast.TypedLambda:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for i, t := range n.ParamTypes {
			n.ParamTypes[i] = m.Apply(t)
		}
		n.Body = finalize(m, n.Body)
		return n
	case *typedast.TypedLet:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Value = finalize(m, n.Value)
		n.Body = finalize(m, n.Body)
		return n
	case *typedast.TypedLetRec:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for i := range n.Bindings {
			n.Bindings[i].Type = m.Apply(n.Bindings[i].Type)
			n.Bindings[i].Value = finalize(m, n.Bindings[i].Value)
		}
		n.Body = finalize(m, n.Body)
		return n
	case *typedast.TypedApp:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Func = finalize(m, n.Func)
		for i, a := range n.Args {
			n.Args[i] = finalize(m, a)
		}
		return n
	case *typedast.TypedIf:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Cond = finalize(m, n.Cond)
		n.Then = finalize(m, n.Then)
		n.Else = finalize(m, n.Else)
		return n
	case *typedast.TypedMatch:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Scrutinee = finalize(m, n.Scrutinee)
		for i := range n.Arms {
			n.Arms[i].Pattern = finalizePattern(m, n.Arms[i].Pattern)
			n.Arms[i].Guard = finalize(m, n.Arms[i].Guard)
			n.Arms[i].Body = finalize(m, n.Arms[i].Body)
		}
		return n
	case *typedast.TypedBinOp:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Left = finalize(m, n.Left)
		n.Right = finalize(m, n.Right)
		return n
	case *typedast.TypedUnOp:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Operand = finalize(m, n.Operand)
		return n
	case *typedast.TypedTuple:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for i, el := range n.Elements {
			n.Elements[i] = finalize(m, el)
		}
		return n
	case *typedast.TypedRecord:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for k, v := range n.Fields {
			n.Fields[k] = finalize(m, v)
		}
		return n
	case *typedast.TypedRecordAccess:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Record = finalize(m, n.Record)
		return n
	case *typedast.TypedRef:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Region = m.Apply(n.Region)
		n.Value = finalize(m, n.Value)
		return n
	case *typedast.TypedDeref:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Cell = finalize(m, n.Cell)
		return n
	case *typedast.TypedAssign:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Cell = finalize(m, n.Cell)
		n.Value = finalize(m, n.Value)
		return n
	case *typedast.TypedList:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for i, el := range n.Elements {
			n.Elements[i] = finalize(m, el)
		}
		return n
	case *typedast.TypedScope:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Body = finalize(m, n.Body)
		return n
	case *typedast.TypedDo:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for i, a := range n.Args {
			n.Args[i] = finalize(m, a)
		}
		return n
	case *typedast.TypedTryWith:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Body = finalize(m, n.Body)
		for i := range n.Arms {
			n.Arms[i].Body = finalize(m, n.Arms[i].Body)
		}
		return n
	case *typedast.TypedCast:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Value = finalize(m, n.Value)
		return n
	case *typedast.Error:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		return n
	case *typedast.TypedDictAbs:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		for i := range n.Params {
			n.Params[i].Type = m.Apply(n.Params[i].Type)
		}
		n.Body = finalize(m, n.Body)
		return n
	case *typedast.TypedDictApp:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		n.Dict = finalize(m, n.Dict)
		for i, a := range n.Args {
			n.Args[i] = finalize(m, a)
		}
		return n
	case *typedast.TypedDictRef:
		n.Type, n.Effect = m.Apply(n.Type), applyEff(m, n.Effect)
		return n
	}

	return node
}

func finalizePattern(m *types.InferM, pat typedast.TypedPattern) typedast.TypedPattern {
	if pat == nil {
		return nil
	}
	switch p := pat.(type) {
	case *typedast.TypedVarPattern:
		p.Type = m.Apply(p.Type)
		return p
	case *typedast.TypedLitPattern:
		p.Type = m.Apply(p.Type)
		return p
	case *typedast.TypedTagPattern:
		p.Type = m.Apply(p.Type)
		for i, a := range p.Args {
			p.Args[i] = finalizePattern(m, a)
		}
		return p
	case *typedast.TypedWildcardPattern:
		p.Type = m.Apply(p.Type)
		return p
	case *typedast.TypedTuplePattern:
		p.Type = m.Apply(p.Type)
		for i, el := range p.Elements {
			p.Elements[i] = finalizePattern(m, el)
		}
		return p
	case *typedast.TypedRecordPattern:
		p.Type = m.Apply(p.Type)
		for k, fp := range p.Fields {
			p.Fields[k] = finalizePattern(m, fp)
		}
		return p
	case *typedast.TypedListPattern:
		p.Type = m.Apply(p.Type)
		for i, el := range p.Elements {
			p.Elements[i] = finalizePattern(m, el)
		}
		return p
	}
	return pat
}

// applyEff resolves eff against m's substitution, leaving a nil term (an
// expression form with no EffVar of its own) as nil rather than inventing a
// Pure term where none was ever recorded.
func applyEff(m *types.InferM, eff types.Type) types.Type {
	if eff == nil {
		return nil
	}
	return types.NormalizeEffect(m.Apply(eff))
}
