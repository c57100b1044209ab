// Package typedast is the output representation the constraint generator
// produces (spec §6 "TypedAst.Root"): the same shape as kindedast.Root, but
// every expression and pattern now carries a concrete type and effect (any
// variable left in either is still present, just consistently substituted),
// every definition carries its inferred scheme, and failed definitions are
// replaced by an Error sentinel rather than aborting the whole phase.
package typedast

import (
	"fmt"
	"strings"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// TypedExpr is embedded by every typed node. Kinded points back at the
// kindedast.Expr this was produced from, so a diagnostic or the
// incremental cache can recover the original source position and surface
// shape without duplicating them here.
type TypedExpr struct {
	NodeID uint64
	Span   ast.Pos
	Type   types.Type // always ground after the final substitution's applied, modulo unresolved vars
	Effect types.Type // the Boolean effect term; nil means statically Pure
	Kinded kindedast.Expr
}

// TypedNode is the interface every typed node satisfies.
type TypedNode interface {
	GetNodeID() uint64
	GetSpan() ast.Pos
	GetType() types.Type
	GetEffect() types.Type
	String() string
}

func (t TypedExpr) GetNodeID() uint64    { return t.NodeID }
func (t TypedExpr) GetSpan() ast.Pos     { return t.Span }
func (t TypedExpr) GetType() types.Type  { return t.Type }
func (t TypedExpr) GetEffect() types.Type { return t.Effect }

// TypedVar is a resolved variable reference.
type TypedVar struct {
	TypedExpr
	Name string
}

func (t TypedVar) String() string { return t.Name }

// TypedLit is a resolved literal.
type TypedLit struct {
	TypedExpr
	Kind  kindedast.LitKind
	Value interface{}
}

func (t TypedLit) String() string { return fmt.Sprintf("%v", t.Value) }

// TypedLambda is a resolved anonymous function.
type TypedLambda struct {
	TypedExpr
	Params     []string
	ParamTypes []types.Type
	Body       TypedNode
}

func (t TypedLambda) String() string {
	return fmt.Sprintf("λ%v. %s : %s", t.Params, t.Body, t.Type)
}

// TypedLet is a resolved non-generalizing local binding. Unlike TypedDef,
// it carries no Scheme — spec §4.4 "No generalization at let".
type TypedLet struct {
	TypedExpr
	Name  string
	Value TypedNode
	Body  TypedNode
}

func (t TypedLet) String() string {
	return fmt.Sprintf("let %s : %s = %s in %s", t.Name, t.Value.GetType(), t.Value, t.Body)
}

// TypedRecBinding is one binding of a resolved LetRec group.
type TypedRecBinding struct {
	Name  string
	Type  types.Type
	Value TypedNode
}

// TypedLetRec is a resolved mutually-recursive binding group.
type TypedLetRec struct {
	TypedExpr
	Bindings []TypedRecBinding
	Body     TypedNode
}

func (t TypedLetRec) String() string {
	var binds []string
	for _, b := range t.Bindings {
		binds = append(binds, fmt.Sprintf("%s : %s", b.Name, b.Type))
	}
	return fmt.Sprintf("let rec %s in %s", strings.Join(binds, ", "), t.Body)
}

// TypedApp is a resolved function application.
type TypedApp struct {
	TypedExpr
	Func TypedNode
	Args []TypedNode
}

func (t TypedApp) String() string { return fmt.Sprintf("%s(%v) : %s", t.Func, t.Args, t.Type) }

// TypedIf is a resolved conditional.
type TypedIf struct {
	TypedExpr
	Cond TypedNode
	Then TypedNode
	Else TypedNode
}

func (t TypedIf) String() string {
	return fmt.Sprintf("if %s then %s else %s : %s", t.Cond, t.Then, t.Else, t.Type)
}

// TypedMatchArm is one resolved arm of a Match.
type TypedMatchArm struct {
	Pattern TypedPattern
	Guard   TypedNode
	Body    TypedNode
}

// TypedMatch is resolved pattern matching.
type TypedMatch struct {
	TypedExpr
	Scrutinee TypedNode
	Arms      []TypedMatchArm
}

func (t TypedMatch) String() string { return fmt.Sprintf("match %s { ... } : %s", t.Scrutinee, t.Type) }

// TypedBinOp is a resolved binary operator.
type TypedBinOp struct {
	TypedExpr
	Op    string
	Left  TypedNode
	Right TypedNode
}

func (t TypedBinOp) String() string {
	return fmt.Sprintf("(%s %s %s) : %s", t.Left, t.Op, t.Right, t.Type)
}

// TypedUnOp is a resolved unary operator.
type TypedUnOp struct {
	TypedExpr
	Op      string
	Operand TypedNode
}

func (t TypedUnOp) String() string { return fmt.Sprintf("%s%s : %s", t.Op, t.Operand, t.Type) }

// TypedTuple is a resolved tuple construction.
type TypedTuple struct {
	TypedExpr
	Elements []TypedNode
}

func (t TypedTuple) String() string { return fmt.Sprintf("(...) : %s", t.Type) }

// TypedRecord is a resolved record construction (Empty/Extend folded flat,
// since by the time checking finishes the row's full field set is known).
type TypedRecord struct {
	TypedExpr
	Fields map[string]TypedNode
}

func (t TypedRecord) String() string { return fmt.Sprintf("{...} : %s", t.Type) }

// TypedRecordAccess is a resolved field selection.
type TypedRecordAccess struct {
	TypedExpr
	Record TypedNode
	Field  string
}

func (t TypedRecordAccess) String() string {
	return fmt.Sprintf("%s.%s : %s", t.Record, t.Field, t.Type)
}

// TypedRef, TypedDeref, TypedAssign are resolved mutable-cell operations.
type TypedRef struct {
	TypedExpr
	Value  TypedNode
	Region types.Type
}

func (t TypedRef) String() string { return fmt.Sprintf("ref %s : %s", t.Value, t.Type) }

type TypedDeref struct {
	TypedExpr
	Cell TypedNode
}

func (t TypedDeref) String() string { return fmt.Sprintf("!%s : %s", t.Cell, t.Type) }

type TypedAssign struct {
	TypedExpr
	Cell  TypedNode
	Value TypedNode
}

func (t TypedAssign) String() string { return fmt.Sprintf("%s := %s", t.Cell, t.Value) }

// TypedList is a resolved Array/Vector literal.
type TypedList struct {
	TypedExpr
	Elements []TypedNode
}

func (t TypedList) String() string { return fmt.Sprintf("[...] : %s", t.Type) }

// TypedScope is a resolved region scope; Region is recorded for
// diagnostics even though it no longer appears in Type or Effect once
// purified (scenarios S5/S6).
type TypedScope struct {
	TypedExpr
	RegionName string
	Body       TypedNode
}

func (t TypedScope) String() string { return fmt.Sprintf("region %s { %s } : %s", t.RegionName, t.Body, t.Type) }

// TypedDo is a resolved effect-operation invocation.
type TypedDo struct {
	TypedExpr
	EffectName string
	Op         string
	Args       []TypedNode
}

func (t TypedDo) String() string { return fmt.Sprintf("do %s.%s(%v) : %s", t.EffectName, t.Op, t.Args, t.Type) }

// TypedTryWithArm is one resolved handler rule of a TryWith.
type TypedTryWithArm struct {
	Op     string
	Params []string
	Body   TypedNode
}

// TypedTryWith is a resolved effect handler installation.
type TypedTryWith struct {
	TypedExpr
	Body       TypedNode
	EffectName string
	Arms       []TypedTryWithArm
}

func (t TypedTryWith) String() string {
	return fmt.Sprintf("try %s with %s { ... } : %s", t.Body, t.EffectName, t.Type)
}

// TypedCast is a resolved type coercion.
type TypedCast struct {
	TypedExpr
	Kind  kindedast.CastKind
	Value TypedNode
}

func (t TypedCast) String() string { return fmt.Sprintf("%s(%s) : %s", t.Kind, t.Value, t.Type) }

// Error is the sentinel substituted for a definition whose body failed to
// type-check (spec §6 "A sentinel Error(msg, tpe, eff) expression is
// substituted where a definition failed to type-check, preserving
// downstream shape"): Type and Effect are the definition's *declared*
// type/effect (or fresh variables if undeclared), so callers referencing
// this definition still see a consistent shape to check against.
type Error struct {
	TypedExpr
	Msg string
}

func (e Error) String() string { return fmt.Sprintf("Error(%q) : %s", e.Msg, e.Type) }

// DictAbs/DictApp/DictRef mirror kindedast's dictionary-passing nodes
// (SPEC_FULL §12.2), now carrying their resolved types. Adapted from the
// teacher's internal/core dictionary nodes.

type TypedDictAbs struct {
	TypedExpr
	Params []types.DictParam
	Body   TypedNode
}

func (t TypedDictAbs) String() string { return fmt.Sprintf("DictAbs(%v, %s)", t.Params, t.Body) }

type TypedDictApp struct {
	TypedExpr
	Dict   TypedNode
	Method string
	Args   []TypedNode
}

func (t TypedDictApp) String() string {
	return fmt.Sprintf("DictApp(%s.%s, %v)", t.Dict, t.Method, t.Args)
}

type TypedDictRef struct {
	TypedExpr
	ClassName string
	TypeName  string
}

func (t TypedDictRef) String() string { return fmt.Sprintf("dict_%s_%s", t.ClassName, t.TypeName) }

// Typed patterns.

type TypedPattern interface {
	GetType() types.Type
	String() string
}

type TypedVarPattern struct {
	Name string
	Type types.Type
}

func (p TypedVarPattern) GetType() types.Type { return p.Type }
func (p TypedVarPattern) String() string      { return p.Name }

type TypedLitPattern struct {
	Value interface{}
	Type  types.Type
}

func (p TypedLitPattern) GetType() types.Type { return p.Type }
func (p TypedLitPattern) String() string      { return fmt.Sprintf("%v", p.Value) }

type TypedTagPattern struct {
	Tag  string
	Args []TypedPattern
	Type types.Type
}

func (p TypedTagPattern) GetType() types.Type { return p.Type }
func (p TypedTagPattern) String() string      { return fmt.Sprintf("%s(%v)", p.Tag, p.Args) }

type TypedWildcardPattern struct {
	Type types.Type
}

func (p TypedWildcardPattern) GetType() types.Type { return p.Type }
func (p TypedWildcardPattern) String() string      { return "_" }

type TypedTuplePattern struct {
	Elements []TypedPattern
	Type     types.Type
}

func (p TypedTuplePattern) GetType() types.Type { return p.Type }
func (p TypedTuplePattern) String() string {
	parts := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

type TypedRecordPattern struct {
	Fields map[string]TypedPattern
	Type   types.Type
}

func (p TypedRecordPattern) GetType() types.Type { return p.Type }
func (p TypedRecordPattern) String() string       { return fmt.Sprintf("{%v}", p.Fields) }

type TypedListPattern struct {
	Elements []TypedPattern
	Type     types.Type
}

func (p TypedListPattern) GetType() types.Type { return p.Type }
func (p TypedListPattern) String() string {
	parts := make([]string, len(p.Elements))
	for i, e := range p.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// TypedDef is a fully checked top-level definition.
type TypedDef struct {
	Name   string
	Scheme *types.Scheme
	Body   TypedNode
}

// TypedRoot is the output of the core (spec §6 "TypedAst.Root"): the same
// shape as kindedast.Root with every Def resolved to a TypedDef, plus the
// class instance environment and the accumulated compilation messages. No
// equality environment is carried.
type TypedRoot struct {
	Defs      []*TypedDef
	Instances *types.InstanceEnv
	Messages  []*types.UnificationError
}

// PrintTypedRoot pretty-prints every definition, in the teacher's
// PrintTypedProgram style.
func PrintTypedRoot(root *TypedRoot) string {
	var b strings.Builder
	for _, d := range root.Defs {
		fmt.Fprintf(&b, "%s : %s = %s\n", d.Name, d.Scheme, d.Body)
	}
	return b.String()
}
