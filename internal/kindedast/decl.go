package kindedast

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/types"
)

// Sig is a standalone type signature: `sig f : T` ahead of its Def. Adapted
// from the teacher's ast.TypeClass/Method shape but kept top-level since
// the spec's generator treats `Sig s` identically to `Def d` (spec §4.4).
type Sig struct {
	Node
	Name     string
	Declared *DeclaredType
}

func (s *Sig) String() string { return fmt.Sprintf("sig %s : %s", s.Name, s.Declared) }

// Def is a top-level, possibly-generalized definition. Scheme is filled in
// by the generator after checking Body (and is nil beforehand); Declared,
// if non-nil, is the surface-annotated scheme the checker must validate
// Body's inferred type against (spec §7's GeneralizationError compares
// Declared to the inferred scheme).
type Def struct {
	Node
	Name     string
	Params   []Param
	Declared *DeclaredType // nil if unannotated
	Body     Expr
	Scheme   *types.Scheme // filled in post-check
}

func (d *Def) String() string { return fmt.Sprintf("def %s(...) = %s", d.Name, d.Body) }

// ClassMethod is one method signature declared by a class, with an
// optional default implementation (spec §3.4 superclass hierarchies).
type ClassMethod struct {
	Name     string
	Declared *DeclaredType
	Default  Expr // nil if the class provides no default body
}

// Class declares a type class: its type parameter, optional superclass
// (spec §4.6's superclass DAG), and method signatures. Adapted from the
// teacher's ast.TypeClass.
type Class struct {
	Node
	Name       string
	TypeParam  *types.Var
	Superclass string // "" if none
	Methods    []ClassMethod
}

func (c *Class) String() string { return fmt.Sprintf("class %s[%s]", c.Name, c.TypeParam) }

// Instance implements a class for a concrete type head, supplying a body
// for each method (spec §4.6 "instance declarations"). Adapted from the
// teacher's ast.Instance.
type Instance struct {
	Node
	ClassName string
	Head      types.Type
	Methods   map[string]Expr
}

func (i *Instance) String() string { return fmt.Sprintf("instance %s[%s]", i.ClassName, i.Head) }

// EnumCase is one constructor of an enum declaration.
type EnumCase struct {
	Tag  string
	Args []types.Type
}

// Enum declares a closed (or, if Restrictable, open-world) sum type (spec
// §3.3 "Container list": Enum(sym,kind), RestrictableEnum).
type Enum struct {
	Node
	Name         string
	TypeParams   []*types.Var
	Cases        []EnumCase
	Restrictable bool
}

func (e *Enum) String() string { return fmt.Sprintf("enum %s", e.Name) }

// EffectOp is one operation an Effect declares, used by TryWith to look up
// the declared operation signature (spec §4.4 "TryWith").
type EffectOp struct {
	Name     string
	Declared *DeclaredType
}

// Effect declares a named algebraic effect and its operations (spec §4.4
// "Do op args", "TryWith").
type Effect struct {
	Node
	Name string
	Ops  []EffectOp
}

func (e *Effect) String() string { return fmt.Sprintf("effect %s", e.Name) }

// Alias is a transparent type alias (spec §3.1 "Alias(sym, args, expansion)
// — transparent").
type Alias struct {
	Node
	Name   string
	Params []*types.Var
	Target types.Type
}

func (a *Alias) String() string { return fmt.Sprintf("type %s = %s", a.Name, a.Target) }

// Root is the compilation unit the generator consumes (spec §6
// "KindedAst.Root = { classes, instances, defs, sigs, enums, restrictable
// enums, effects, type aliases, uses, entry point, sources }"). Restrictable
// enums are just Enum values with Restrictable set, per the DESIGN.md
// decision not to duplicate the constructor.
type Root struct {
	Classes   []*Class
	Instances []*Instance
	Defs      []*Def
	Sigs      []*Sig
	Enums     []*Enum
	Effects   []*Effect
	Aliases   []*Alias
	Uses      map[string][]string // symbol -> symbols it references, for the incremental cache's dependency closure
	EntryName string
	Sources   map[string]string // file path -> contents, for diagnostic rendering
}

// NewRoot returns an empty Root ready to be populated by the kinder.
func NewRoot() *Root {
	return &Root{Uses: map[string][]string{}, Sources: map[string]string{}}
}

// LookupDef finds a top-level definition by name.
func (r *Root) LookupDef(name string) *Def {
	for _, d := range r.Defs {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// LookupSig finds a standalone signature by name.
func (r *Root) LookupSig(name string) *Sig {
	for _, s := range r.Sigs {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// LookupEnum finds an enum declaration by name.
func (r *Root) LookupEnum(name string) *Enum {
	for _, e := range r.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// LookupEffect finds an effect declaration by name.
func (r *Root) LookupEffect(name string) *Effect {
	for _, e := range r.Effects {
		if e.Name == name {
			return e
		}
	}
	return nil
}
