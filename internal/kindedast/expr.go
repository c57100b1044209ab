package kindedast

import (
	"fmt"
	"strings"

	"github.com/arbor-lang/arbor/internal/types"
)

// Var is a reference to a bound name — a lambda parameter, a let-binding,
// or a top-level Def/Sig (spec §4.4 "Var x").
type Var struct {
	ExprBase
	Name string
}

func (v *Var) exprNode()      {}
func (v *Var) String() string { return v.Name }

// LitKind enumerates the primitive literal forms.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	BoolLit
	UnitLit
)

// Lit is a literal constant.
type Lit struct {
	ExprBase
	Kind  LitKind
	Value interface{}
}

func (l *Lit) exprNode()      {}
func (l *Lit) String() string { return fmt.Sprintf("%v", l.Value) }

// Param is a lambda or Def parameter: a name, its own tvar, and an optional
// declared type the kinder resolved from a surface annotation.
type Param struct {
	Name     string
	TVar     *types.Var
	Declared types.Type // nil if unannotated
}

// Lambda is an anonymous function (spec §4.4 "Lambda p . e").
type Lambda struct {
	ExprBase
	Params []Param
	Body   Expr
}

func (l *Lambda) exprNode() {}
func (l *Lambda) String() string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("λ(%s). %s", strings.Join(names, ", "), l.Body)
}

// Apply is function application (spec §4.4 "Apply f es"). DirectRef, when
// non-empty, names a Def/Sig that Func resolves to statically. The generator
// does not read DirectRef: Func is inferred like any other callee (a Var
// callee's scheme is instantiated at lookup) and unified with an arrow over
// the inferred argument types.
type Apply struct {
	ExprBase
	Func      Expr
	Args      []Expr
	DirectRef string
}

func (a *Apply) exprNode() {}
func (a *Apply) String() string {
	return fmt.Sprintf("%s(%v)", a.Func, a.Args)
}

// If is a conditional.
type If struct {
	ExprBase
	Cond Expr
	Then Expr
	Else Expr
}

func (i *If) exprNode() {}
func (i *If) String() string {
	return fmt.Sprintf("if %s then %s else %s", i.Cond, i.Then, i.Else)
}

// Let is a non-recursive, non-generalizing local binding (spec §4.4: "No
// generalization at let — monomorphic inside a definition").
type Let struct {
	ExprBase
	Name  string
	NameTVar *types.Var
	Value Expr
	Body  Expr
}

func (l *Let) exprNode() {}
func (l *Let) String() string {
	return fmt.Sprintf("let %s = %s in %s", l.Name, l.Value, l.Body)
}

// RecBinding is one binding of a LetRec group.
type RecBinding struct {
	Name     string
	NameTVar *types.Var
	Value    Expr // always a Lambda, for self-reference
}

// LetRec is a group of mutually recursive local bindings (spec §4.4: each
// binding's tvar is unified with its lambda type *before* inferring the
// body, to support self-reference).
type LetRec struct {
	ExprBase
	Bindings []RecBinding
	Body     Expr
}

func (l *LetRec) exprNode() {}
func (l *LetRec) String() string {
	return fmt.Sprintf("let rec %v in %s", l.Bindings, l.Body)
}

// MatchArm is one rule of a Match or TypeMatch.
type MatchArm struct {
	Pattern Pattern
	Guard   Expr // optional, nil if absent
	Body    Expr
}

// Match is ordinary pattern matching on a scrutinee's value.
type Match struct {
	ExprBase
	Scrutinee Expr
	Arms      []MatchArm
}

func (m *Match) exprNode() {}
func (m *Match) String() string {
	return fmt.Sprintf("match %s { %v }", m.Scrutinee, m.Arms)
}

// TypeMatchArm rigidifies the tvars occurring in Declared before binding
// Pattern's variable to it and checking Body (spec §4.4 "TypeMatch").
type TypeMatchArm struct {
	Declared *DeclaredType
	BindName string
	BindTVar *types.Var
	Body     Expr
}

// TypeMatch dispatches on an expression's static type rather than its
// runtime value.
type TypeMatch struct {
	ExprBase
	Scrutinee Expr
	Arms      []TypeMatchArm
}

func (t *TypeMatch) exprNode() {}
func (t *TypeMatch) String() string {
	return fmt.Sprintf("typematch %s { %v }", t.Scrutinee, t.Arms)
}

// BinOp is an arithmetic or comparison binary operator.
type BinOp struct {
	ExprBase
	Op    string
	Left  Expr
	Right Expr
}

func (b *BinOp) exprNode() {}
func (b *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnOp is a unary operator (negation, boolean not).
type UnOp struct {
	ExprBase
	Op      string
	Operand Expr
}

func (u *UnOp) exprNode() {}
func (u *UnOp) String() string {
	return fmt.Sprintf("%s%s", u.Op, u.Operand)
}

// Tuple constructs a fixed-arity product.
type Tuple struct {
	ExprBase
	Elements []Expr
}

func (t *Tuple) exprNode() {}
func (t *Tuple) String() string {
	return fmt.Sprintf("(%v)", t.Elements)
}

// RecordEmpty is the empty record literal `{}`.
type RecordEmpty struct {
	ExprBase
}

func (r *RecordEmpty) exprNode()      {}
func (r *RecordEmpty) String() string { return "{}" }

// RecordSelect projects a single field out of a record (spec §4.4
// "Records: Select f e").
type RecordSelect struct {
	ExprBase
	Record Expr
	Field  string
}

func (r *RecordSelect) exprNode() {}
func (r *RecordSelect) String() string {
	return fmt.Sprintf("%s.%s", r.Record, r.Field)
}

// RecordExtend adds a field to a (possibly open) record (spec §4.4
// "Records: Extend f v r").
type RecordExtend struct {
	ExprBase
	Field string
	Value Expr
	Rest  Expr
}

func (r *RecordExtend) exprNode() {}
func (r *RecordExtend) String() string {
	return fmt.Sprintf("{%s = %s | %s}", r.Field, r.Value, r.Rest)
}

// RecordRestrict removes a field from a record (spec §4.4 "Records:
// Restrict f r").
type RecordRestrict struct {
	ExprBase
	Field string
	Rest  Expr
}

func (r *RecordRestrict) exprNode() {}
func (r *RecordRestrict) String() string {
	return fmt.Sprintf("{%s - %s}", r.Rest, r.Field)
}

// Ref allocates a mutable cell in the given region (spec §4.4 "Ref e").
type Ref struct {
	ExprBase
	Value  Expr
	Region *types.Var
}

func (r *Ref) exprNode() {}
func (r *Ref) String() string {
	return fmt.Sprintf("ref %s @ %s", r.Value, r.Region)
}

// Deref reads through a reference.
type Deref struct {
	ExprBase
	Cell Expr
}

func (d *Deref) exprNode()      {}
func (d *Deref) String() string { return fmt.Sprintf("!%s", d.Cell) }

// Assign writes through a reference.
type Assign struct {
	ExprBase
	Cell  Expr
	Value Expr
}

func (a *Assign) exprNode() {}
func (a *Assign) String() string {
	return fmt.Sprintf("%s := %s", a.Cell, a.Value)
}

// ArrayLit and VectorLit construct the two sequence container forms. ArrayLit
// contributes Impure to its enclosing effect on top of its elements' effects
// (spec §4.4 "Array*, Vector*"); VectorLit's effect is its elements' effects
// alone.
type ArrayLit struct {
	ExprBase
	Elements []Expr
}

func (a *ArrayLit) exprNode()      {}
func (a *ArrayLit) String() string { return fmt.Sprintf("[|%v|]", a.Elements) }

type VectorLit struct {
	ExprBase
	Elements []Expr
}

func (v *VectorLit) exprNode()      {}
func (v *VectorLit) String() string { return fmt.Sprintf("#[%v]", v.Elements) }

// ArrayIndex and ArraySet are the indexed read/write operations shared by
// Array and Vector.
type ArrayIndex struct {
	ExprBase
	Container Expr
	Index     Expr
}

func (a *ArrayIndex) exprNode()      {}
func (a *ArrayIndex) String() string { return fmt.Sprintf("%s[%s]", a.Container, a.Index) }

type ArraySet struct {
	ExprBase
	Container Expr
	Index     Expr
	Value     Expr
}

func (a *ArraySet) exprNode() {}
func (a *ArraySet) String() string {
	return fmt.Sprintf("%s[%s] = %s", a.Container, a.Index, a.Value)
}

// Scope allocates a fresh region variable, rigidifies it, infers Body, then
// purifies the region out of Body's effect and checks it does not escape
// via the result type (spec §4.4 "Scope s { e }", scenarios S5/S6).
type Scope struct {
	ExprBase
	RegionName string
	RegionVar  *types.Var
	Body       Expr
}

func (s *Scope) exprNode() {}
func (s *Scope) String() string {
	return fmt.Sprintf("region %s { %s }", s.RegionName, s.Body)
}

// NewChannel, GetChannel, PutChannel, SelectChannel are the channel
// primitives, parameterized by element type and region (spec §4.4).
type NewChannel struct {
	ExprBase
	Region *types.Var
	Buffer Expr // optional: buffer-size expression, nil for unbuffered
}

func (n *NewChannel) exprNode()      {}
func (n *NewChannel) String() string { return fmt.Sprintf("chan@%s", n.Region) }

type GetChannel struct {
	ExprBase
	Channel Expr
}

func (g *GetChannel) exprNode()      {}
func (g *GetChannel) String() string { return fmt.Sprintf("<-%s", g.Channel) }

type PutChannel struct {
	ExprBase
	Channel Expr
	Value   Expr
}

func (p *PutChannel) exprNode() {}
func (p *PutChannel) String() string {
	return fmt.Sprintf("%s <- %s", p.Channel, p.Value)
}

// SelectArm is one arm of a SelectChannel.
type SelectArm struct {
	Channel Expr
	BindName string
	BindTVar *types.Var
	Body    Expr
}

type SelectChannel struct {
	ExprBase
	Arms    []SelectArm
	Default Expr // optional
}

func (s *SelectChannel) exprNode()      {}
func (s *SelectChannel) String() string { return fmt.Sprintf("select { %v }", s.Arms) }

// CatchArm is one arm of a TryCatch.
type CatchArm struct {
	Pattern Pattern
	Body    Expr
}

// TryCatch unifies the body's type with every handler arm's type (spec
// §4.4 "TryCatch e rs").
type TryCatch struct {
	ExprBase
	Body Expr
	Arms []CatchArm
}

func (t *TryCatch) exprNode()      {}
func (t *TryCatch) String() string { return fmt.Sprintf("try %s catch { %v }", t.Body, t.Arms) }

// WithArm is one operation handler of a TryWith.
type WithArm struct {
	Op       string
	Params   []Param
	ResumeTVar *types.Var
	Body     Expr
}

// TryWith installs a handler for a named effect: each handler rule's
// formals and return unify with the declared operation signature, and the
// resulting block's effect excludes the handled atom via Boolean
// difference (spec §4.4 "TryWith e effUse rs").
type TryWith struct {
	ExprBase
	Body       Expr
	EffectName string
	Arms       []WithArm
}

func (t *TryWith) exprNode() {}
func (t *TryWith) String() string {
	return fmt.Sprintf("try %s with %s { %v }", t.Body, t.EffectName, t.Arms)
}

// Do invokes a named effect operation (spec §4.4 "Do op args").
type Do struct {
	ExprBase
	EffectName string
	Op         string
	Args       []Expr
}

func (d *Do) exprNode() {}
func (d *Do) String() string {
	return fmt.Sprintf("do %s.%s(%v)", d.EffectName, d.Op, d.Args)
}

// CastKind distinguishes the three cast forms of spec §4.4.
type CastKind int

const (
	Cast CastKind = iota
	CheckedCast
	UncheckedCast
)

func (k CastKind) String() string {
	switch k {
	case CheckedCast:
		return "checked_cast"
	case UncheckedCast:
		return "unchecked_cast"
	default:
		return "cast"
	}
}

// TypeCast is a type coercion: Unchecked binds the tvar directly to
// Declared, while Checked leaves the effect/type as a fresh variable the
// surrounding context constrains (spec §4.4 "Cast, CheckedCast,
// UncheckedCast").
type TypeCast struct {
	ExprBase
	Kind     CastKind
	Value    Expr
	Declared types.Type
}

func (c *TypeCast) exprNode() {}
func (c *TypeCast) String() string {
	return fmt.Sprintf("%s(%s : %s)", c.Kind, c.Value, c.Declared)
}

// ForeignKind distinguishes the three host-interop forms of spec §4.4.
type ForeignKind int

const (
	ForeignConstructor ForeignKind = iota
	ForeignMethod
	ForeignField
)

// ForeignAccess is a call into reflected host-platform surface: argument
// types unify with the reflected parameter types, result is the reflected
// return type, and effect is always Impure (spec §4.4 "Foreign constructor
// / method / field access").
type ForeignAccess struct {
	ExprBase
	Kind      ForeignKind
	ClassName string
	Member    string // method or field name; empty for a constructor
	Receiver  Expr   // nil for a constructor or static access
	Args      []Expr
}

func (f *ForeignAccess) exprNode() {}
func (f *ForeignAccess) String() string {
	return fmt.Sprintf("foreign %s.%s(%v)", f.ClassName, f.Member, f.Args)
}

// FixpointOp enumerates the six schema-row operations of spec §4.4's last
// table row.
type FixpointOp int

const (
	FixpointConstraintSet FixpointOp = iota
	FixpointMerge
	FixpointSolve
	FixpointFilter
	FixpointInject
	FixpointProject
)

func (op FixpointOp) String() string {
	switch op {
	case FixpointMerge:
		return "FixpointMerge"
	case FixpointSolve:
		return "FixpointSolve"
	case FixpointFilter:
		return "FixpointFilter"
	case FixpointInject:
		return "FixpointInject"
	case FixpointProject:
		return "FixpointProject"
	default:
		return "FixpointConstraintSet"
	}
}

// Fixpoint is a schema-row operation: it introduces fresh predicate and
// schema-row variables and emits class constraints (Order, Foldable, etc.)
// as spec §4.4's rule table requires for the specific Op.
type Fixpoint struct {
	ExprBase
	Op        FixpointOp
	Args      []Expr
	PredVar   *types.Var // fresh Predicate-kinded var this op introduces
	SchemaVar *types.Var // fresh SchemaRow-kinded var this op introduces
}

func (f *Fixpoint) exprNode() {}
func (f *Fixpoint) String() string {
	return fmt.Sprintf("%s(%v)", f.Op, f.Args)
}

// DictAbs abstracts a definition's body over the dictionary parameters its
// class constraints require — the compile-time half of dictionary-passing
// elaboration (SPEC_FULL §12.2), attached to a Def once its constraints are
// resolved. Adapted from the teacher's internal/core.DictAbs.
type DictAbs struct {
	ExprBase
	Params []types.DictParam
	Body   Expr
}

func (d *DictAbs) exprNode() {}
func (d *DictAbs) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = fmt.Sprintf("%s: %s[%s]", p.Name, p.ClassName, p.Type)
	}
	return fmt.Sprintf("DictAbs([%s], %s)", strings.Join(parts, ", "), d.Body)
}

// DictApp is a class method call resolved to go through an explicit
// dictionary argument rather than static overload resolution. Adapted from
// the teacher's internal/core.DictApp.
type DictApp struct {
	ExprBase
	Dict   Expr
	Method string
	Args   []Expr
}

func (d *DictApp) exprNode() {}
func (d *DictApp) String() string {
	return fmt.Sprintf("DictApp(%s.%s, %v)", d.Dict, d.Method, d.Args)
}

// DictRef names a resolved builtin instance dictionary directly, with no
// DictAbs/DictApp indirection needed (e.g. a monomorphic Num[Int] use).
// Adapted from the teacher's internal/core.DictRef.
type DictRef struct {
	ExprBase
	ClassName string
	TypeName  string
}

func (d *DictRef) exprNode() {}
func (d *DictRef) String() string {
	return fmt.Sprintf("dict_%s_%s", d.ClassName, d.TypeName)
}
