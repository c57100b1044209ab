package types

import (
	"fmt"
	"strings"
)

// Type is a tree over the fixed constructor set of spec §3.1/§3.3: type
// variables, nullary constructors, left-associative application, and
// transparent aliases. Every Type knows its own Kind so the unifier can
// reject ill-kinded unifications before looking at structure.
type Type interface {
	String() string
	Kind() Kind
}

// Var is a type variable: a globally unique identity plus a fixed kind.
// Flexible variables may be bound by the unifier; Rigid ones (universally
// quantified skolems introduced by rigidify, §4.3) must never be bound —
// attempting to do so is a RigidVar error.
type Var struct {
	ID    VarID
	K     Kind
	Name  string // diagnostics only, see vars.go
	Rigid bool
}

// NewVar allocates a fresh flexible variable of the given kind.
func NewVar(k Kind) *Var {
	id := NextVarID()
	return &Var{ID: id, K: k, Name: varDisplayName(k, id)}
}

// NewRigidVar allocates a rigid (skolem) variable of the given kind.
func NewRigidVar(k Kind, name string) *Var {
	return &Var{ID: NextVarID(), K: k, Name: name, Rigid: true}
}

func (v *Var) Kind() Kind     { return v.K }
func (v *Var) String() string { return v.Name }

// Cst is a nullary type constructor drawn from the closed enumeration of
// spec §3.3 (primitives, and the "head" symbol of parameterized families
// before application).
type Cst struct {
	Name string
	K    Kind
}

func (c *Cst) Kind() Kind     { return c.K }
func (c *Cst) String() string { return c.Name }

// App is left-associative type application: App(App(c, a), b) denotes
// `c a b`. The kind of App(t1, t2) is determined by kind(t1) = Arrow(k2, k).
type App struct {
	Func Type
	Arg  Type
}

func (a *App) Kind() Kind {
	if arrow, ok := a.Func.Kind().(KArrow); ok {
		return arrow.To
	}
	return Star // ill-kinded; the kind checker (internal/kinds) rejects this upstream
}

func (a *App) String() string {
	return fmt.Sprintf("%s %s", parenIfComplex(a.Func), parenIfComplex(a.Arg))
}

func parenIfComplex(t Type) string {
	switch t.(type) {
	case *App:
		return "(" + t.String() + ")"
	default:
		return t.String()
	}
}

// Alias is a transparent type alias: equality is up to Expansion, and the
// alias form is preserved only so error messages can show the user's
// original spelling.
type Alias struct {
	Sym       string
	Args      []Type
	Expansion Type
}

func (a *Alias) Kind() Kind { return a.Expansion.Kind() }
func (a *Alias) String() string {
	if len(a.Args) == 0 {
		return a.Sym
	}
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s<%s>", a.Sym, strings.Join(parts, ", "))
}

// TFunc is the Arrow(arity) family of spec §3.3, kept as a dedicated struct
// (rather than spelled out as nested App/Cst applications) purely for Go
// ergonomics — it is definitionally sugar for
// `App(...App(App(Arrow_n, eff), p1)..., pn), ret)`.
// Its Kind is always Star.
type TFunc struct {
	Params    []Type
	EffectRow Type // kind Effect; nil is treated as Pure, see EffIsPure
	Return    Type
}

func (t *TFunc) Kind() Kind { return Star }

func (t *TFunc) String() string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = p.String()
	}
	eff := ""
	if !EffIsPure(t.EffectRow) {
		eff = fmt.Sprintf(" ! %s", t.EffectRow.String())
	}
	if len(params) == 1 {
		return fmt.Sprintf("%s ->%s %s", params[0], eff, t.Return.String())
	}
	return fmt.Sprintf("(%s) ->%s %s", strings.Join(params, ", "), eff, t.Return.String())
}

// TTuple is the fixed-arity product type.
type TTuple struct {
	Elements []Type
}

func (t *TTuple) Kind() Kind { return Star }
func (t *TTuple) String() string {
	elems := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		elems[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(elems, ", "))
}

// TRecord lifts a RecordRow to Star (spec §3.3 "wrapper constructors Record,
// Schema lifting a row to *").
type TRecord struct {
	Row *Row
}

func (t *TRecord) Kind() Kind { return Star }
func (t *TRecord) String() string {
	if t.Row == nil {
		return "{}"
	}
	return t.Row.String()
}

// TSchema lifts a SchemaRow to Star.
type TSchema struct {
	Row *Row
}

func (t *TSchema) Kind() Kind { return Star }
func (t *TSchema) String() string {
	if t.Row == nil {
		return "<>"
	}
	return "<" + t.Row.String() + ">"
}

// Predefined primitive constructors (spec §3.3 "Primitives").
var (
	TUnit       = &Cst{Name: "Unit", K: Star}
	TBool       = &Cst{Name: "Bool", K: Star}
	TChar       = &Cst{Name: "Char", K: Star}
	TInt8       = &Cst{Name: "Int8", K: Star}
	TInt16      = &Cst{Name: "Int16", K: Star}
	TInt32      = &Cst{Name: "Int32", K: Star}
	TInt64      = &Cst{Name: "Int64", K: Star}
	TFloat32    = &Cst{Name: "Float32", K: Star}
	TFloat64    = &Cst{Name: "Float64", K: Star}
	TBigInt     = &Cst{Name: "BigInt", K: Star}
	TBigDecimal = &Cst{Name: "BigDecimal", K: Star}
	TString     = &Cst{Name: "String", K: Star}
	TRegex      = &Cst{Name: "Regex", K: Star}
	TNull       = &Cst{Name: "Null", K: Star}

	// Aliases used throughout the checker and tests for the common case.
	TInt   = TInt64
	TFloat = TFloat64
)

// Container type constructors (spec §3.3 "Containers"), each Star -> Star
// except Ref/Sender/Receiver which are region-parameterized (Star -> Region -> Star).
// A region is "a Boolean-kinded variable representing a lexically scoped
// effect of stateful operations" (Glossary), so the region parameter carries
// kind Effect, not Predicate: Scope's rule purifies a region atom out of a
// Bool-kinded effect term, which only typechecks if regions live in that
// same Boolean algebra.
var (
	conArray    = &Cst{Name: "Array", K: Arrow(Star, Star)}
	conVector   = &Cst{Name: "Vector", K: Arrow(Star, Star)}
	conLazy     = &Cst{Name: "Lazy", K: Arrow(Star, Star)}
	conList     = &Cst{Name: "List", K: Arrow(Star, Star)}
	conRef      = &Cst{Name: "Ref", K: Arrow(Star, Arrow(Effect, Star))}
	conSender   = &Cst{Name: "Sender", K: Arrow(Star, Arrow(Effect, Star))}
	conReceiver = &Cst{Name: "Receiver", K: Arrow(Star, Arrow(Effect, Star))}
)

func TArray(elem Type) Type  { return &App{Func: conArray, Arg: elem} }
func TVector(elem Type) Type { return &App{Func: conVector, Arg: elem} }
func TLazy(elem Type) Type   { return &App{Func: conLazy, Arg: elem} }
func TList(elem Type) Type   { return &App{Func: conList, Arg: elem} }
func TRef(elem Type, region Type) Type {
	return &App{Func: &App{Func: conRef, Arg: elem}, Arg: region}
}
func TSender(elem Type, region Type) Type {
	return &App{Func: &App{Func: conSender, Arg: elem}, Arg: region}
}
func TReceiver(elem Type, region Type) Type {
	return &App{Func: &App{Func: conReceiver, Arg: elem}, Arg: region}
}

// TEnum is a user-declared enum constructor applied to its type arguments.
type TEnum struct {
	Sym          string
	Args         []Type
	Restrictable bool
}

func (e *TEnum) Kind() Kind { return Star }
func (e *TEnum) String() string {
	if len(e.Args) == 0 {
		return e.Sym
	}
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", e.Sym, strings.Join(parts, ", "))
}

// TNative wraps an opaque host-language class identity (spec §3.3 "Foreign").
type TNative struct {
	Class string
}

func (n *TNative) Kind() Kind     { return Star }
func (n *TNative) String() string { return fmt.Sprintf("Native<%s>", n.Class) }

// Relation and Lattice are the two Predicate-kinded constructors used by
// schema rows (spec §3.3 "Predicates").
var (
	TRelation = &Cst{Name: "Relation", K: Predicate}
	TLattice  = &Cst{Name: "Lattice", K: Predicate}
)

