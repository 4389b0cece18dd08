package parser

import (
	"fmt"
	"testing"

	"github.com/fis25/fisc/ast"
	"github.com/fis25/fisc/lexer"
)

func parseProgram(t *testing.T, input string) *ast.StatementList {
	t.Helper()
	p := New(lexer.New(input))
	prog := p.ParseProgram()
	checkParserErrors(t, p)
	return prog
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	for _, msg := range errs {
		t.Errorf("parser error: %s", msg)
	}
	t.FailNow()
}

func stmts(list *ast.StatementList) []ast.Statement {
	var out []ast.Statement
	for n := list; n != nil; n = n.Next {
		if n.Stmt != nil {
			out = append(out, n.Stmt)
		}
	}
	return out
}

func TestParseScalarDeclarations(t *testing.T) {
	prog := parseProgram(t, `
int x = 5;
float pi = 3.14;
bool flag = true;
string s = "hi";
`)
	got := stmts(prog)
	if len(got) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(got))
	}

	decl, ok := got[0].(*ast.Decl)
	if !ok {
		t.Fatalf("expected *ast.Decl, got %T", got[0])
	}
	if decl.Name != "x" || decl.Type != ast.Int {
		t.Fatalf("unexpected decl: %+v", decl)
	}
	intLit, ok := decl.InitOpt.(*ast.IntLit)
	if !ok || intLit.Value != 5 {
		t.Fatalf("expected init IntLit(5), got %#v", decl.InitOpt)
	}

	str, ok := got[3].(*ast.Decl)
	if !ok || str.Type != ast.String {
		t.Fatalf("expected string decl, got %+v", got[3])
	}
	strLit, ok := str.InitOpt.(*ast.StringLit)
	if !ok || strLit.Value != "hi" {
		t.Fatalf("expected StringLit(hi), got %#v", str.InitOpt)
	}
}

func TestParseArrayDeclaration(t *testing.T) {
	prog := parseProgram(t, `int[] xs = {1, 2, 3};`)
	got := stmts(prog)
	if len(got) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(got))
	}

	arr, ok := got[0].(*ast.ArrayDecl)
	if !ok {
		t.Fatalf("expected *ast.ArrayDecl, got %T", got[0])
	}
	if arr.Name != "xs" || arr.ElemType != ast.Int || arr.Size != 3 {
		t.Fatalf("unexpected array decl: %+v", arr)
	}
	if arr.GetDataType() != ast.Array {
		t.Fatalf("expected self-typed Array, got %s", arr.GetDataType())
	}
}

func TestParseAssignAndArrayAssign(t *testing.T) {
	prog := parseProgram(t, `
x = 5;
xs[0] = 1;
`)
	got := stmts(prog)
	if len(got) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(got))
	}

	assign, ok := got[0].(*ast.Assign)
	if !ok || assign.Name != "x" {
		t.Fatalf("expected Assign(x), got %+v", got[0])
	}

	arrAssign, ok := got[1].(*ast.ArrayAssign)
	if !ok {
		t.Fatalf("expected *ast.ArrayAssign, got %T", got[1])
	}
	if arrAssign.Access.Name != "xs" {
		t.Fatalf("unexpected array assign target: %+v", arrAssign.Access)
	}
}

func TestParseFunctionDefWithParamsAndReturn(t *testing.T) {
	prog := parseProgram(t, `
func add(int a, int b): int {
    return a + b;
}
`)
	got := stmts(prog)
	if len(got) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(got))
	}

	fn, ok := got[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("expected *ast.FunctionDef, got %T", got[0])
	}
	if fn.Name != "add" || fn.RetType != ast.Int {
		t.Fatalf("unexpected function def: %+v", fn)
	}
	if fn.Params == nil || fn.Params.Name != "a" || fn.Params.Next == nil || fn.Params.Next.Name != "b" {
		t.Fatalf("unexpected parameter list: %+v", fn.Params)
	}

	body := stmts(fn.Body)
	if len(body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(body))
	}
	ret, ok := body[0].(*ast.Return)
	if !ok {
		t.Fatalf("expected *ast.Return, got %T", body[0])
	}
	bin, ok := ret.ValueOpt.(*ast.BinOp)
	if !ok || bin.Op != ast.Add {
		t.Fatalf("expected Add BinOp, got %#v", ret.ValueOpt)
	}
}

func TestParseIfElse(t *testing.T) {
	prog := parseProgram(t, `
if (total > 10) {
    print(total);
} else {
    print(0);
}
`)
	got := stmts(prog)
	ifStmt, ok := got[0].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", got[0])
	}
	cond, ok := ifStmt.Cond.(*ast.BinOp)
	if !ok || cond.Op != ast.Gt {
		t.Fatalf("expected Gt condition, got %#v", ifStmt.Cond)
	}
	if len(stmts(ifStmt.Then)) != 1 {
		t.Fatalf("expected 1 then-statement")
	}
	if ifStmt.ElseOpt == nil || len(stmts(ifStmt.ElseOpt)) != 1 {
		t.Fatalf("expected 1 else-statement")
	}
}

func TestParseForLoop(t *testing.T) {
	prog := parseProgram(t, `
for (int i = 0; i < 10; i = i + 1) {
    total = total + i;
}
`)
	got := stmts(prog)
	forStmt, ok := got[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", got[0])
	}

	initDecl, ok := forStmt.Init.(*ast.Decl)
	if !ok || initDecl.Name != "i" {
		t.Fatalf("expected init Decl(i), got %#v", forStmt.Init)
	}
	cond, ok := forStmt.Cond.(*ast.BinOp)
	if !ok || cond.Op != ast.Lt {
		t.Fatalf("expected Lt condition, got %#v", forStmt.Cond)
	}
	stepAssign, ok := forStmt.Step.(*ast.Assign)
	if !ok || stepAssign.Name != "i" {
		t.Fatalf("expected step Assign(i), got %#v", forStmt.Step)
	}
	if len(stmts(forStmt.Body)) != 1 {
		t.Fatalf("expected 1 body statement")
	}
}

func TestParseHardwarePrimitivesAndLength(t *testing.T) {
	prog := parseProgram(t, `
pixel(1, 2, 7);
key(87, k);
input(x);
print(length(xs));
`)
	got := stmts(prog)
	if len(got) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(got))
	}

	pixel, ok := got[0].(*ast.Pixel)
	if !ok {
		t.Fatalf("expected *ast.Pixel, got %T", got[0])
	}
	if lit, ok := pixel.Color.(*ast.IntLit); !ok || lit.Value != 7 {
		t.Fatalf("unexpected pixel color: %#v", pixel.Color)
	}

	key, ok := got[1].(*ast.Key)
	if !ok || key.DestVarName != "k" {
		t.Fatalf("expected Key(..., k), got %+v", got[1])
	}

	input, ok := got[2].(*ast.Input)
	if !ok || input.VarName != "x" {
		t.Fatalf("expected Input(x), got %+v", got[2])
	}

	print, ok := got[3].(*ast.Print)
	if !ok {
		t.Fatalf("expected *ast.Print, got %T", got[3])
	}
	length, ok := print.Expr.(*ast.Length)
	if !ok {
		t.Fatalf("expected length() argument, got %#v", print.Expr)
	}
	if ident, ok := length.ArrayExpr.(*ast.Identifier); !ok || ident.Name != "xs" {
		t.Fatalf("expected length(xs), got %#v", length.ArrayExpr)
	}
}

func TestParseFunctionCallStatementAndExpression(t *testing.T) {
	prog := parseProgram(t, `
draw();
int r = add(1, 2);
`)
	got := stmts(prog)
	if _, ok := got[0].(*ast.FunctionCall); !ok {
		t.Fatalf("expected *ast.FunctionCall statement, got %T", got[0])
	}

	decl, ok := got[1].(*ast.Decl)
	if !ok {
		t.Fatalf("expected *ast.Decl, got %T", got[1])
	}
	call, ok := decl.InitOpt.(*ast.FunctionCall)
	if !ok || call.Name != "add" {
		t.Fatalf("expected call to add, got %#v", decl.InitOpt)
	}
	if call.Args == nil || call.Args.Next == nil || call.Args.Next.Next != nil {
		t.Fatalf("expected exactly 2 arguments")
	}
}

func TestParseUnaryAndPrecedence(t *testing.T) {
	prog := parseProgram(t, `bool ok = !flag && a + b * c == 10;`)
	decl := stmts(prog)[0].(*ast.Decl)

	top, ok := decl.InitOpt.(*ast.BinOp)
	if !ok || top.Op != ast.And {
		t.Fatalf("expected top-level And, got %#v", decl.InitOpt)
	}
	not, ok := top.Lhs.(*ast.UnOp)
	if !ok || not.Op != ast.Not {
		t.Fatalf("expected Not on the left of &&, got %#v", top.Lhs)
	}
	eq, ok := top.Rhs.(*ast.BinOp)
	if !ok || eq.Op != ast.Eq {
		t.Fatalf("expected Eq on the right of &&, got %#v", top.Rhs)
	}
	sum, ok := eq.Lhs.(*ast.BinOp)
	if !ok || sum.Op != ast.Add {
		t.Fatalf("expected a + (b * c), got %#v", eq.Lhs)
	}
	if _, ok := sum.Rhs.(*ast.BinOp); !ok {
		t.Fatalf("expected product to bind tighter than sum, got %#v", sum.Rhs)
	}
}

func TestParseFullProgramFromSpec(t *testing.T) {
	input := `
int x = 5;
float pi = 3.14;
bool flag = true;
string s = "hi";
int[] xs = {1, 2, 3};

func add(int a, int b): int {
    return a + b;
}

func main(): void {
    int total = 0;
    for (int i = 0; i < 10; i = i + 1) {
        total = total + i;
    }
    if (total > 10) {
        print(total);
    } else {
        print(0);
    }
    pixel(1, 2, 7);
    key(87, k);
    input(x);
    print(length(xs));
}
`
	prog := parseProgram(t, input)
	got := stmts(prog)
	if len(got) != 7 {
		t.Fatalf("expected 7 top-level statements, got %d: %s", len(got), fmt.Sprint(got))
	}
	main, ok := got[6].(*ast.FunctionDef)
	if !ok || main.Name != "main" || main.RetType != ast.Void {
		t.Fatalf("expected void main() last, got %+v", got[6])
	}
}
