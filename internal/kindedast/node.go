// Package kindedast is the input representation the constraint generator
// walks (spec §6 "KindedAst.Root"): types resolved to canonical form, every
// tvar kinded, every expression and pattern carrying the fresh type (and,
// where relevant, effect) variable the generator will unify against. It is
// produced by an external collaborator (lexing/parsing/name resolution/
// desugaring/kinding — out of scope here, per spec §1) and consumed by
// internal/checker.
package kindedast

import (
	"fmt"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/types"
)

// Node is the base embedded in every kinded AST node: a stable id (useful
// for the incremental cache's change-set tracking, SPEC_FULL §12.3) and the
// two positions the teacher's Core AST carries — the node's own span and
// the original surface span, kept distinct because desugaring can
// synthesize nodes with no direct surface counterpart.
type Node struct {
	NodeID   uint64
	NodeSpan ast.Pos
	OrigSpan ast.Pos
}

func (n Node) ID() uint64          { return n.NodeID }
func (n Node) Span() ast.Pos       { return n.NodeSpan }
func (n Node) OriginalSpan() ast.Pos { return n.OrigSpan }

// Expr is the base interface for every kinded expression node. TVar is the
// fresh type variable the kinder allocated for this expression's result;
// the generator unifies it to pin down the expression's type. EffVar is the
// fresh Effect-kinded variable for the expression's effect, nil for
// expression forms whose effect is always composed from their subterms
// rather than carrying one of its own.
type Expr interface {
	ID() uint64
	Span() ast.Pos
	OriginalSpan() ast.Pos
	String() string
	Type() *types.Var
	Effect() *types.Var
	exprNode()
}

// ExprBase is embedded by every concrete Expr, recording the tvars the
// kinder assigned.
type ExprBase struct {
	Node
	TVar    *types.Var
	EffVar  *types.Var
}

func (e ExprBase) Type() *types.Var   { return e.TVar }
func (e ExprBase) Effect() *types.Var { return e.EffVar }

// Pattern is the base interface for kinded patterns (spec §4.5): a pattern
// produces a type (the scrutinee-side type in Match) and binds the tvars of
// any variables it introduces.
type Pattern interface {
	Span() ast.Pos
	String() string
	Type() *types.Var
	patternNode()
}

// PatternBase is embedded by every concrete Pattern.
type PatternBase struct {
	PatSpan ast.Pos
	TVar    *types.Var
}

func (p PatternBase) Span() ast.Pos  { return p.PatSpan }
func (p PatternBase) Type() *types.Var { return p.TVar }

// DeclaredType is a type signature as written by the programmer and
// resolved by the kinder to a canonical types.Type — e.g. a Def's
// parameter annotations or a Sig's declared scheme. The Vars field lists
// the rigid type variables a generalized signature introduces; the
// generator rigidifies these (InferM.Rigidify) before checking the body
// they scope over.
type DeclaredType struct {
	Vars []*types.Var
	Type types.Type
}

func (d *DeclaredType) String() string {
	if d == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s", d.Type)
}
