package semant

import (
	"testing"

	"github.com/fis25/fisc/ast"
	"github.com/fis25/fisc/symtable"
	"github.com/fis25/fisc/token"
)

func tok(typ token.Type, lit string) token.Token {
	return token.Token{Type: typ, Literal: lit}
}

func ident(name string) *ast.Identifier {
	return ast.NewIdentifier(tok(token.IDENT, name), name)
}

func intLit(v int32) *ast.IntLit {
	return ast.NewIntLit(tok(token.INT, ""), v)
}

func TestAnalyzeDeclWithMatchingInit(t *testing.T) {
	table := symtable.NewTable()
	decl := ast.NewDecl(tok(token.INT_TYPE, "int"), ast.Int, "x", intLit(5))
	list := ast.NewStatementList(decl.Token, decl, nil)

	if err := Analyze(list, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sym, ok := table.LookupCurrentScope("x")
	if !ok || sym.Type != ast.Int {
		t.Fatalf("expected 'x' declared as Int, got %+v ok=%v", sym, ok)
	}
}

func TestAnalyzeDeclWidensIntToFloat(t *testing.T) {
	table := symtable.NewTable()
	decl := ast.NewDecl(tok(token.FLOAT_TYPE, "float"), ast.Float, "pi", intLit(3))
	list := ast.NewStatementList(decl.Token, decl, nil)

	if err := Analyze(list, table); err != nil {
		t.Fatalf("expected Int to widen into Float init, got error: %v", err)
	}
}

func TestAnalyzeDeclTypeMismatch(t *testing.T) {
	table := symtable.NewTable()
	boolLit := ast.NewBoolLit(tok(token.TRUE, "true"), true)
	decl := ast.NewDecl(tok(token.INT_TYPE, "int"), ast.Int, "x", boolLit)
	list := ast.NewStatementList(decl.Token, decl, nil)

	if err := Analyze(list, table); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestAnalyzeRedeclarationFails(t *testing.T) {
	table := symtable.NewTable()
	d1 := ast.NewDecl(tok(token.INT_TYPE, "int"), ast.Int, "x", nil)
	d2 := ast.NewDecl(tok(token.INT_TYPE, "int"), ast.Int, "x", nil)
	list := ast.NewStatementList(d1.Token, d1, ast.NewStatementList(d2.Token, d2, nil))

	if err := Analyze(list, table); err == nil {
		t.Fatalf("expected redeclaration error")
	}
}

func TestAnalyzeUndeclaredIdentifier(t *testing.T) {
	table := symtable.NewTable()
	assign := ast.NewAssign(tok(token.IDENT, "y"), "y", intLit(1))
	list := ast.NewStatementList(assign.Token, assign, nil)

	if err := Analyze(list, table); err == nil {
		t.Fatalf("expected undeclared-variable error")
	}
}

func TestAnalyzeArrayAccessOnNonArray(t *testing.T) {
	table := symtable.NewTable()
	decl := ast.NewDecl(tok(token.INT_TYPE, "int"), ast.Int, "x", nil)
	access := ast.NewArrayAccess(tok(token.IDENT, "x"), "x", intLit(0))
	print := ast.NewPrint(tok(token.PRINT, "print"), access)
	list := ast.NewStatementList(decl.Token, decl, ast.NewStatementList(print.Token, print, nil))

	if err := Analyze(list, table); err == nil {
		t.Fatalf("expected 'x is not an array' error")
	}
}

func TestAnalyzeArrayIndexMustBeInt(t *testing.T) {
	table := symtable.NewTable()
	args := ast.NewArgument(tok(token.INT, ""), intLit(1), nil)
	arrDecl := ast.NewArrayDecl(tok(token.INT_TYPE, "int"), ast.Int, "xs", args)
	badIdx := ast.NewBoolLit(tok(token.TRUE, "true"), true)
	access := ast.NewArrayAccess(tok(token.IDENT, "xs"), "xs", badIdx)
	print := ast.NewPrint(tok(token.PRINT, "print"), access)
	list := ast.NewStatementList(arrDecl.Token, arrDecl, ast.NewStatementList(print.Token, print, nil))

	if err := Analyze(list, table); err == nil {
		t.Fatalf("expected 'array index must be integer' error")
	}
}

func TestAnalyzeIfConditionMustBeBool(t *testing.T) {
	table := symtable.NewTable()
	ifStmt := ast.NewIf(tok(token.IF, "if"), intLit(1), nil, nil)
	list := ast.NewStatementList(ifStmt.Token, ifStmt, nil)

	if err := Analyze(list, table); err == nil {
		t.Fatalf("expected non-bool if condition error")
	}
}

func TestAnalyzeBinOpArithmeticResultType(t *testing.T) {
	table := symtable.NewTable()
	add := ast.NewBinOp(tok(token.PLUS, "+"), ast.Add, intLit(1), ast.NewFloatLit(tok(token.FLOAT, "2.0"), 2.0))

	_, err := checkExpressionType(add, table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if add.GetDataType() != ast.Float {
		t.Fatalf("expected Int+Float to widen to Float, got %s", add.GetDataType())
	}
}

func TestAnalyzeLogicalOperatorsRequireBool(t *testing.T) {
	table := symtable.NewTable()
	and := ast.NewBinOp(tok(token.AND, "&&"), ast.And, intLit(1), intLit(2))

	if _, err := checkExpressionType(and, table); err == nil {
		t.Fatalf("expected logical operator type error")
	}
}

func TestAnalyzeFunctionDefScopesParameters(t *testing.T) {
	table := symtable.NewTable()
	params := ast.NewParameter(tok(token.INT_TYPE, "int"), ast.Int, "a", nil)
	ret := ast.NewReturn(tok(token.RETURN, "return"), ident("a"))
	body := ast.NewStatementList(ret.Token, ret, nil)
	fn := ast.NewFunctionDef(tok(token.FUNC, "func"), "id", params, ast.Int, body)
	list := ast.NewStatementList(fn.Token, fn, nil)

	if err := Analyze(list, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := table.LookupCurrentScope("a"); ok {
		t.Fatalf("parameter 'a' must not leak into the outer scope")
	}
	sym, ok := table.LookupCurrentScope("id")
	if !ok || !sym.IsFunction || sym.ReturnType != ast.Int {
		t.Fatalf("expected function symbol 'id' returning Int, got %+v ok=%v", sym, ok)
	}
}

func TestAnalyzeScopeIsolationAfterFunctionExit(t *testing.T) {
	table := symtable.NewTable()
	decl := ast.NewDecl(tok(token.INT_TYPE, "int"), ast.Int, "x", intLit(1))
	body := ast.NewStatementList(decl.Token, decl, nil)
	fn := ast.NewFunctionDef(tok(token.FUNC, "func"), "f", nil, ast.Void, body)
	list := ast.NewStatementList(fn.Token, fn, nil)

	if err := Analyze(list, table); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := table.Lookup("x"); ok {
		t.Fatalf("declaration inside a function must not be visible in the outer scope")
	}
}
