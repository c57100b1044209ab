package typedast

import (
	"testing"

	"github.com/arbor-lang/arbor/internal/ast"
	"github.com/arbor-lang/arbor/internal/types"
)

func TestTypedExpr(t *testing.T) {
	typedExpr := TypedExpr{
		NodeID: 42,
		Span:   ast.Pos{Line: 10, Column: 5, File: "test.ail"},
		Type:   types.TInt,
		Effect: nil,
	}

	if typedExpr.NodeID != 42 {
		t.Errorf("TypedExpr.NodeID = %v, want %v", typedExpr.NodeID, 42)
	}

	expectedSpan := ast.Pos{Line: 10, Column: 5, File: "test.ail"}
	if typedExpr.Span != expectedSpan {
		t.Errorf("TypedExpr.Span = %v, want %v", typedExpr.Span, expectedSpan)
	}

	if typedExpr.Type != types.TInt {
		t.Errorf("TypedExpr.Type = %v, want %v", typedExpr.Type, types.TInt)
	}

	if typedExpr.Effect != nil {
		t.Errorf("TypedExpr.Effect = %v, want nil", typedExpr.Effect)
	}
}

func TestTypedVar(t *testing.T) {
	typedVar := &TypedVar{
		TypedExpr: TypedExpr{
			NodeID: 1,
			Span:   ast.Pos{Line: 1, Column: 1, File: "test.ail"},
			Type:   types.TInt,
		},
		Name: "x",
	}

	if typedVar.Name != "x" {
		t.Errorf("TypedVar.Name = %v, want %v", typedVar.Name, "x")
	}

	if typedVar.NodeID != 1 {
		t.Errorf("TypedVar.NodeID = %v, want %v", typedVar.NodeID, 1)
	}

	var _ TypedNode = typedVar
}

func TestTypedLit(t *testing.T) {
	typedLit := &TypedLit{
		TypedExpr: TypedExpr{
			NodeID: 1,
			Span:   ast.Pos{Line: 1, Column: 1, File: "test.ail"},
			Type:   types.TInt,
		},
		Kind:  0, // kindedast.IntLit
		Value: int64(42),
	}

	if typedLit.Value != int64(42) {
		t.Errorf("TypedLit.Value = %v, want %v", typedLit.Value, int64(42))
	}

	var _ TypedNode = typedLit
}

func TestTypedLambda(t *testing.T) {
	bodyVar := &TypedVar{
		TypedExpr: TypedExpr{NodeID: 2, Type: types.TInt},
		Name:      "x",
	}

	typedLambda := &TypedLambda{
		TypedExpr: TypedExpr{
			NodeID: 1,
			Span:   ast.Pos{Line: 1, Column: 1, File: "test.ail"},
			Type:   &types.TFunc{Params: []types.Type{types.TInt}, EffectRow: types.EffPure, Return: types.TInt},
		},
		Params:     []string{"x"},
		ParamTypes: []types.Type{types.TInt},
		Body:       bodyVar,
	}

	if len(typedLambda.Params) != 1 {
		t.Errorf("TypedLambda.Params length = %v, want %v", len(typedLambda.Params), 1)
	}

	if typedLambda.Body != bodyVar {
		t.Error("TypedLambda.Body not set correctly")
	}

	var _ TypedNode = typedLambda
}

func TestTypedLet(t *testing.T) {
	value := &TypedLit{
		TypedExpr: TypedExpr{NodeID: 2, Type: types.TInt},
		Value:     int64(5),
	}

	body := &TypedVar{
		TypedExpr: TypedExpr{NodeID: 3, Type: types.TInt},
		Name:      "x",
	}

	typedLet := &TypedLet{
		TypedExpr: TypedExpr{
			NodeID: 1,
			Span:   ast.Pos{Line: 1, Column: 1, File: "test.ail"},
			Type:   types.TInt,
		},
		Name:  "x",
		Value: value,
		Body:  body,
	}

	if typedLet.Name != "x" {
		t.Errorf("TypedLet.Name = %v, want %v", typedLet.Name, "x")
	}

	if typedLet.Value != value {
		t.Error("TypedLet.Value not set correctly")
	}

	if typedLet.Body != body {
		t.Error("TypedLet.Body not set correctly")
	}

	var _ TypedNode = typedLet
}

func TestTypedApp(t *testing.T) {
	fn := &TypedVar{
		TypedExpr: TypedExpr{NodeID: 1, Type: types.TInt},
		Name:      "add",
	}

	arg1 := &TypedLit{TypedExpr: TypedExpr{NodeID: 2, Type: types.TInt}, Value: int64(1)}
	arg2 := &TypedLit{TypedExpr: TypedExpr{NodeID: 3, Type: types.TInt}, Value: int64(2)}

	typedApp := &TypedApp{
		TypedExpr: TypedExpr{
			NodeID: 4,
			Span:   ast.Pos{Line: 1, Column: 1, File: "test.ail"},
			Type:   types.TInt,
		},
		Func: fn,
		Args: []TypedNode{arg1, arg2},
	}

	if typedApp.Func != fn {
		t.Error("TypedApp.Func not set correctly")
	}

	if len(typedApp.Args) != 2 {
		t.Errorf("TypedApp.Args length = %v, want %v", len(typedApp.Args), 2)
	}

	var _ TypedNode = typedApp
}

func TestTypedIf(t *testing.T) {
	cond := &TypedLit{TypedExpr: TypedExpr{NodeID: 1, Type: types.TBool}, Value: true}
	thenBranch := &TypedLit{TypedExpr: TypedExpr{NodeID: 2, Type: types.TString}, Value: "yes"}
	elseBranch := &TypedLit{TypedExpr: TypedExpr{NodeID: 3, Type: types.TString}, Value: "no"}

	typedIf := &TypedIf{
		TypedExpr: TypedExpr{
			NodeID: 4,
			Span:   ast.Pos{Line: 1, Column: 1, File: "test.ail"},
			Type:   types.TString,
		},
		Cond: cond,
		Then: thenBranch,
		Else: elseBranch,
	}

	if typedIf.Cond != cond {
		t.Error("TypedIf.Cond not set correctly")
	}
	if typedIf.Then != thenBranch {
		t.Error("TypedIf.Then not set correctly")
	}
	if typedIf.Else != elseBranch {
		t.Error("TypedIf.Else not set correctly")
	}

	var _ TypedNode = typedIf
}

func TestTypedRoot(t *testing.T) {
	def1 := &TypedDef{
		Name:   "answer",
		Scheme: &types.Scheme{Type: types.TInt},
		Body:   &TypedLit{TypedExpr: TypedExpr{NodeID: 1, Type: types.TInt}, Value: int64(42)},
	}
	def2 := &TypedDef{
		Name:   "result",
		Scheme: &types.Scheme{Type: types.TString},
		Body:   &TypedVar{TypedExpr: TypedExpr{NodeID: 2, Type: types.TString}, Name: "result"},
	}

	root := &TypedRoot{Defs: []*TypedDef{def1, def2}}

	if len(root.Defs) != 2 {
		t.Errorf("TypedRoot.Defs length = %v, want %v", len(root.Defs), 2)
	}
	if root.Defs[0] != def1 || root.Defs[1] != def2 {
		t.Error("TypedRoot.Defs not set correctly")
	}
}

func TestErrorSentinel(t *testing.T) {
	e := &Error{
		TypedExpr: TypedExpr{NodeID: 1, Type: types.TInt, Effect: types.EffPure},
		Msg:       "Mismatch(Int, Bool)",
	}

	if e.Msg == "" {
		t.Error("Error.Msg should not be empty")
	}
	var _ TypedNode = e
}
