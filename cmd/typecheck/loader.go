package main

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/kindedast"
	"github.com/arbor-lang/arbor/internal/types"
)

// docRoot is the on-disk shape check <file> reads: a small YAML dialect for
// a kindedast.Root, standing in for the lexer/parser/kinder pipeline that
// spec §1 places out of scope ("KindedAst.Root... produced by an external
// collaborator"). Grounded in the teacher's config-loading convention
// (internal/eval_harness.LoadSpec) applied to the demo ASTs
// cmd/typecheck/demo_ast.go used to hand-build in Go source.
type docRoot struct {
	Entry string   `yaml:"entry"`
	Sigs  []docSig `yaml:"sigs"`
	Defs  []docDef `yaml:"defs"`
}

type docSig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type docDef struct {
	Name     string   `yaml:"name"`
	Params   []string `yaml:"params"`
	Declared string   `yaml:"declared"`
	Body     *docExpr `yaml:"body"`
}

// docExpr is a tagged union over the expression forms worth exercising from
// a hand-authored file: literals, variables, application, lambda, if, let,
// binary/unary operators and tuples. The full kindedast.Expr surface (rows,
// channels, effects, fixpoint) is exercised by internal/checker's own test
// fixtures instead of this CLI-facing format.
type docExpr struct {
	Int    *int64     `yaml:"int,omitempty"`
	Float  *float64   `yaml:"float,omitempty"`
	Str    *string    `yaml:"str,omitempty"`
	Bool   *bool      `yaml:"bool,omitempty"`
	Unit   bool       `yaml:"unit,omitempty"`
	Var    string     `yaml:"var,omitempty"`
	Lambda *docLambda `yaml:"lambda,omitempty"`
	Apply  *docApply  `yaml:"apply,omitempty"`
	If     *docIf     `yaml:"if,omitempty"`
	Let    *docLet    `yaml:"let,omitempty"`
	BinOp  *docBinOp  `yaml:"binop,omitempty"`
	UnOp   *docUnOp   `yaml:"unop,omitempty"`
	Tuple  []*docExpr `yaml:"tuple,omitempty"`
}

type docLambda struct {
	Params []string `yaml:"params"`
	Body   *docExpr `yaml:"body"`
}

type docApply struct {
	Func string     `yaml:"func"`
	Args []*docExpr `yaml:"args"`
}

type docIf struct {
	Cond *docExpr `yaml:"cond"`
	Then *docExpr `yaml:"then"`
	Else *docExpr `yaml:"else"`
}

type docLet struct {
	Name  string   `yaml:"name"`
	Value *docExpr `yaml:"value"`
	Body  *docExpr `yaml:"body"`
}

type docBinOp struct {
	Op    string   `yaml:"op"`
	Left  *docExpr `yaml:"left"`
	Right *docExpr `yaml:"right"`
}

type docUnOp struct {
	Op      string   `yaml:"op"`
	Operand *docExpr `yaml:"operand"`
}

// nodeSeq hands out stable, increasing NodeIDs across one loadRoot call,
// matching the "stable id" contract kindedast.Node documents for the
// incremental cache's change-set tracking.
var nodeSeq uint64

func nextID() uint64 { return atomic.AddUint64(&nodeSeq, 1) }

func loadRoot(path string) (*kindedast.Root, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc docRoot
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	root := kindedast.NewRoot()
	root.EntryName = doc.Entry
	root.Sources[path] = string(data)

	for _, s := range doc.Sigs {
		declared, err := parseDeclared(s.Type)
		if err != nil {
			return nil, fmt.Errorf("sig %s: %w", s.Name, err)
		}
		root.Sigs = append(root.Sigs, &kindedast.Sig{
			Node:     newNode(path),
			Name:     s.Name,
			Declared: declared,
		})
	}

	uses := map[string]bool{}
	for _, d := range doc.Defs {
		def, err := buildDef(path, d, uses)
		if err != nil {
			return nil, fmt.Errorf("def %s: %w", d.Name, err)
		}
		root.Defs = append(root.Defs, def)
		names := make([]string, 0, len(uses))
		for name := range uses {
			names = append(names, name)
		}
		root.Uses[d.Name] = names
		for name := range uses {
			delete(uses, name)
		}
	}

	return root, nil
}

func newNode(path string) kindedast.Node {
	pos := ast.Pos{File: path}
	return kindedast.Node{NodeID: nextID(), NodeSpan: pos, OrigSpan: pos}
}

func buildDef(path string, d docDef, uses map[string]bool) (*kindedast.Def, error) {
	if d.Body == nil {
		return nil, fmt.Errorf("missing body")
	}
	params := make([]kindedast.Param, len(d.Params))
	for i, name := range d.Params {
		params[i] = kindedast.Param{Name: name, TVar: types.NewVar(types.Star)}
	}
	body, err := buildExpr(path, d.Body, uses)
	if err != nil {
		return nil, err
	}
	declared, err := parseDeclared(d.Declared)
	if err != nil {
		return nil, err
	}
	return &kindedast.Def{
		Node:     newNode(path),
		Name:     d.Name,
		Params:   params,
		Declared: declared,
		Body:     body,
	}, nil
}

func exprBase(path string) kindedast.ExprBase {
	return kindedast.ExprBase{
		Node:   newNode(path),
		TVar:   types.NewVar(types.Star),
		EffVar: types.NewVar(types.Effect),
	}
}

func buildExpr(path string, e *docExpr, uses map[string]bool) (kindedast.Expr, error) {
	if e == nil {
		return nil, fmt.Errorf("nil expression")
	}
	switch {
	case e.Int != nil:
		return &kindedast.Lit{ExprBase: exprBase(path), Kind: kindedast.IntLit, Value: *e.Int}, nil
	case e.Float != nil:
		return &kindedast.Lit{ExprBase: exprBase(path), Kind: kindedast.FloatLit, Value: *e.Float}, nil
	case e.Str != nil:
		return &kindedast.Lit{ExprBase: exprBase(path), Kind: kindedast.StringLit, Value: *e.Str}, nil
	case e.Bool != nil:
		return &kindedast.Lit{ExprBase: exprBase(path), Kind: kindedast.BoolLit, Value: *e.Bool}, nil
	case e.Unit:
		return &kindedast.Lit{ExprBase: exprBase(path), Kind: kindedast.UnitLit, Value: nil}, nil
	case e.Var != "":
		uses[e.Var] = true
		return &kindedast.Var{ExprBase: exprBase(path), Name: e.Var}, nil
	case e.Lambda != nil:
		params := make([]kindedast.Param, len(e.Lambda.Params))
		for i, name := range e.Lambda.Params {
			params[i] = kindedast.Param{Name: name, TVar: types.NewVar(types.Star)}
		}
		body, err := buildExpr(path, e.Lambda.Body, uses)
		if err != nil {
			return nil, err
		}
		return &kindedast.Lambda{ExprBase: exprBase(path), Params: params, Body: body}, nil
	case e.Apply != nil:
		uses[e.Apply.Func] = true
		args := make([]kindedast.Expr, len(e.Apply.Args))
		for i, a := range e.Apply.Args {
			arg, err := buildExpr(path, a, uses)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return &kindedast.Apply{
			ExprBase:  exprBase(path),
			Func:      &kindedast.Var{ExprBase: exprBase(path), Name: e.Apply.Func},
			Args:      args,
			DirectRef: e.Apply.Func,
		}, nil
	case e.If != nil:
		cond, err := buildExpr(path, e.If.Cond, uses)
		if err != nil {
			return nil, err
		}
		then, err := buildExpr(path, e.If.Then, uses)
		if err != nil {
			return nil, err
		}
		els, err := buildExpr(path, e.If.Else, uses)
		if err != nil {
			return nil, err
		}
		return &kindedast.If{ExprBase: exprBase(path), Cond: cond, Then: then, Else: els}, nil
	case e.Let != nil:
		value, err := buildExpr(path, e.Let.Value, uses)
		if err != nil {
			return nil, err
		}
		body, err := buildExpr(path, e.Let.Body, uses)
		if err != nil {
			return nil, err
		}
		return &kindedast.Let{
			ExprBase: exprBase(path),
			Name:     e.Let.Name,
			NameTVar: types.NewVar(types.Star),
			Value:    value,
			Body:     body,
		}, nil
	case e.BinOp != nil:
		left, err := buildExpr(path, e.BinOp.Left, uses)
		if err != nil {
			return nil, err
		}
		right, err := buildExpr(path, e.BinOp.Right, uses)
		if err != nil {
			return nil, err
		}
		return &kindedast.BinOp{ExprBase: exprBase(path), Op: e.BinOp.Op, Left: left, Right: right}, nil
	case e.UnOp != nil:
		operand, err := buildExpr(path, e.UnOp.Operand, uses)
		if err != nil {
			return nil, err
		}
		return &kindedast.UnOp{ExprBase: exprBase(path), Op: e.UnOp.Op, Operand: operand}, nil
	case len(e.Tuple) > 0:
		elems := make([]kindedast.Expr, len(e.Tuple))
		for i, el := range e.Tuple {
			built, err := buildExpr(path, el, uses)
			if err != nil {
				return nil, err
			}
			elems[i] = built
		}
		return &kindedast.Tuple{ExprBase: exprBase(path), Elements: elems}, nil
	default:
		return nil, fmt.Errorf("empty expression node")
	}
}

var namedTypes = map[string]types.Type{
	"Int":    types.TInt,
	"Float":  types.TFloat,
	"String": types.TString,
	"Bool":   types.TBool,
	"Char":   types.TChar,
	"Unit":   types.TUnit,
}

// parseDeclared parses a tiny type-expression language: base names from
// namedTypes, right-associative "->" arrows, and "(A, B, ...) -> R" for
// multi-argument functions. Returns (nil, nil) for an empty string — an
// undeclared signature.
func parseDeclared(src string) (*kindedast.DeclaredType, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	t, err := parseTypeExpr(src)
	if err != nil {
		return nil, err
	}
	return &kindedast.DeclaredType{Type: t}, nil
}

func parseTypeExpr(src string) (types.Type, error) {
	src = strings.TrimSpace(src)
	if idx := splitArrow(src); idx >= 0 {
		lhs := strings.TrimSpace(src[:idx])
		rhs := strings.TrimSpace(src[idx+2:])
		ret, err := parseTypeExpr(rhs)
		if err != nil {
			return nil, err
		}
		params, err := parseParamList(lhs)
		if err != nil {
			return nil, err
		}
		return &types.TFunc{Params: params, EffectRow: types.EffPure, Return: ret}, nil
	}
	return parseAtomType(src)
}

// splitArrow finds the top-level (paren-depth 0) "->" that separates a
// function type's parameter list from its result, scanning left to right and
// taking the first top-level arrow so "A -> B -> C" parses as "A -> (B -> C)".
func splitArrow(src string) int {
	depth := 0
	for i := 0; i+1 < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && src[i] == '-' && src[i+1] == '>' {
			return i
		}
	}
	return -1
}

func parseParamList(src string) ([]types.Type, error) {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "(") && strings.HasSuffix(src, ")") {
		inner := strings.TrimSpace(src[1 : len(src)-1])
		if inner == "" {
			return nil, nil
		}
		parts := splitTopLevelComma(inner)
		out := make([]types.Type, len(parts))
		for i, p := range parts {
			t, err := parseAtomType(strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}
	t, err := parseAtomType(src)
	if err != nil {
		return nil, err
	}
	return []types.Type{t}, nil
}

func splitTopLevelComma(src string) []string {
	var parts []string
	depth := 0
	last := 0
	for i, c := range src {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, src[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, src[last:])
	return parts
}

func parseAtomType(src string) (types.Type, error) {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "(") && strings.HasSuffix(src, ")") {
		return parseTypeExpr(src[1 : len(src)-1])
	}
	if t, ok := namedTypes[src]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", src)
}
