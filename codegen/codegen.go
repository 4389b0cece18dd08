// Package codegen implements the code generator: a deterministic lowering
// of a type-checked AST and its symbol table into a textual three-address
// code (TAC) stream, one [tac.Opcode] instruction per line.
//
// Generate is the single entry point. It walks the same StatementList the
// semantic analyzer already validated, using the same symbol table the
// analyzer populated (codegen re-queries it, in particular for function
// return types at call sites), and writes TAC lines to a caller-supplied
// io.Writer.
package codegen

import (
	"fmt"
	"io"

	"github.com/fis25/fisc/ast"
	"github.com/fis25/fisc/symtable"
	"github.com/fis25/fisc/tac"
	"github.com/fis25/fisc/token"
)

// Error is returned for a construct the generator must reject: arrays,
// Length, or a global declaration with an initializer (§4.4 "Current
// restrictions").
type Error struct {
	Token token.Token
	Msg   string
}

func (e *Error) Error() string {
	if e.Token.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s (line %d)", e.Msg, e.Token.Line)
}

// keyRemap maps the ASCII codes of FIS-25's four movement keys and its two
// stop keys to their hardware key codes. Both 27 (ESC) and 32 (Space) map to
// 8: this is intentional, the two keys share the "stop" code.
var keyRemap = map[int32]int32{
	87: 4, // W
	83: 5, // S
	65: 6, // A
	68: 7, // D
	27: 8, // ESC
	32: 8, // Space
}

// Generator holds the per-compilation state of a single Generate call: the
// monotonic temp/label counters and the current function context. These
// live on the Generator, never as package-level globals, so that concurrent
// or repeated compilations never interfere with each other.
type Generator struct {
	w      io.Writer
	global *symtable.Table

	nextTemp  int
	nextLabel int

	currentFunction   string
	currentReturnType ast.DataType
}

// Generate lowers root into TAC text written to w, using table to resolve
// function return types at call sites and to emit the global-declaration
// preamble.
func Generate(root *ast.StatementList, table *symtable.Table, w io.Writer) error {
	g := &Generator{w: w, global: table, currentReturnType: ast.Void}

	if err := g.preamble(); err != nil {
		return err
	}
	if err := g.genStatements(root); err != nil {
		return err
	}
	return g.emitRaw("; Fin del programa")
}

func (g *Generator) emitRaw(line string) error {
	_, err := fmt.Fprintln(g.w, line)
	return err
}

func (g *Generator) emitOp(op tac.Opcode, operands ...string) error {
	line, err := tac.Line(op, operands...)
	if err != nil {
		return err
	}
	return g.emitRaw(line)
}

func (g *Generator) freshTemp() (string, error) {
	name := fmt.Sprintf("_t%d", g.nextTemp)
	g.nextTemp++
	if err := g.emitOp(tac.VAR, name); err != nil {
		return "", err
	}
	return name, nil
}

func (g *Generator) freshLabel() string {
	name := fmt.Sprintf("L%d", g.nextLabel)
	g.nextLabel++
	return name
}

func funcLabel(name string) string { return "func_" + name }
func funcRetVar(name string) string { return "ret_" + name }

// preamble emits the TAC header comments, one VAR per relevant global
// symbol in bucket-major order (part of the output's stable contract), and
// the GOSUB func_main / infinite-loop trailer.
func (g *Generator) preamble() error {
	if err := g.emitRaw("; Código generado por el compilador FIS-25"); err != nil {
		return err
	}
	if err := g.emitRaw("; Arquitectura: FIS-25"); err != nil {
		return err
	}

	var walkErr error
	g.global.Walk(func(sym *symtable.Symbol) {
		if walkErr != nil {
			return
		}
		if sym.IsFunction {
			if sym.ReturnType != ast.Void {
				walkErr = g.emitOp(tac.VAR, funcRetVar(sym.Name))
			}
		} else if !sym.IsArray {
			walkErr = g.emitOp(tac.VAR, sym.Name)
		}
	})
	if walkErr != nil {
		return walkErr
	}

	if err := g.emitRaw(""); err != nil {
		return err
	}
	if err := g.emitOp(tac.GOSUB, funcLabel("main")); err != nil {
		return err
	}
	endLabel := g.freshLabel()
	if err := g.emitOp(tac.LABEL, endLabel); err != nil {
		return err
	}
	if err := g.emitOp(tac.GOTO, endLabel); err != nil {
		return err
	}
	return g.emitRaw("")
}

func (g *Generator) genStatements(list *ast.StatementList) error {
	for n := list; n != nil; n = n.Next {
		if n.Stmt == nil {
			continue
		}
		if err := g.genStatement(n.Stmt); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) genStatement(stmt ast.Statement) error {
	switch node := stmt.(type) {
	case *ast.Decl:
		return g.genDecl(node)
	case *ast.ArrayDecl:
		return &Error{node.Token, "array declarations are not supported by this code generator"}
	case *ast.Assign:
		return g.genAssign(node)
	case *ast.ArrayAssign:
		return &Error{node.Token, "array assignment is not supported by this code generator"}
	case *ast.If:
		return g.genIf(node)
	case *ast.While:
		return g.genWhile(node)
	case *ast.For:
		return g.genFor(node)
	case *ast.FunctionDef:
		return g.genFunctionDef(node)
	case *ast.Pixel:
		return g.genPixel(node)
	case *ast.Key:
		return g.genKey(node)
	case *ast.Input:
		return g.emitOp(tac.INPUT, node.VarName)
	case *ast.Print:
		return g.genPrint(node)
	case *ast.Return:
		return g.genReturn(node)
	case *ast.FunctionCall:
		_, err := g.genExpression(node)
		return err
	default:
		return nil
	}
}

func (g *Generator) genDecl(node *ast.Decl) error {
	if g.currentFunction == "" {
		if node.InitOpt != nil {
			return &Error{node.Token, "global initialization is not supported by this code generator"}
		}
		return nil
	}

	if err := g.emitOp(tac.VAR, node.Name); err != nil {
		return err
	}
	if node.InitOpt == nil {
		return nil
	}
	value, err := g.genExpression(node.InitOpt)
	if err != nil {
		return err
	}
	return g.emitOp(tac.ASSIGN, value, node.Name)
}

func (g *Generator) genAssign(node *ast.Assign) error {
	value, err := g.genExpression(node.Expr)
	if err != nil {
		return err
	}
	return g.emitOp(tac.ASSIGN, value, node.Name)
}

func (g *Generator) genIf(node *ast.If) error {
	cond, err := g.genExpression(node.Cond)
	if err != nil {
		return err
	}

	if node.ElseOpt != nil {
		elseLabel := g.freshLabel()
		endLabel := g.freshLabel()

		if err := g.emitOp(tac.IFFALSE, cond, elseLabel); err != nil {
			return err
		}
		if err := g.genStatements(node.Then); err != nil {
			return err
		}
		if err := g.emitOp(tac.GOTO, endLabel); err != nil {
			return err
		}
		if err := g.emitOp(tac.LABEL, elseLabel); err != nil {
			return err
		}
		if err := g.genStatements(node.ElseOpt); err != nil {
			return err
		}
		return g.emitOp(tac.LABEL, endLabel)
	}

	endLabel := g.freshLabel()
	if err := g.emitOp(tac.IFFALSE, cond, endLabel); err != nil {
		return err
	}
	if err := g.genStatements(node.Then); err != nil {
		return err
	}
	return g.emitOp(tac.LABEL, endLabel)
}

func (g *Generator) genWhile(node *ast.While) error {
	startLabel := g.freshLabel()
	endLabel := g.freshLabel()

	if err := g.emitOp(tac.LABEL, startLabel); err != nil {
		return err
	}
	cond, err := g.genExpression(node.Cond)
	if err != nil {
		return err
	}
	if err := g.emitOp(tac.IFFALSE, cond, endLabel); err != nil {
		return err
	}
	if err := g.genStatements(node.Body); err != nil {
		return err
	}
	if err := g.emitOp(tac.GOTO, startLabel); err != nil {
		return err
	}
	return g.emitOp(tac.LABEL, endLabel)
}

func (g *Generator) genFor(node *ast.For) error {
	if node.Init != nil {
		if err := g.genStatement(node.Init); err != nil {
			return err
		}
	}

	startLabel := g.freshLabel()
	endLabel := g.freshLabel()

	if err := g.emitOp(tac.LABEL, startLabel); err != nil {
		return err
	}
	cond, err := g.genExpression(node.Cond)
	if err != nil {
		return err
	}
	if err := g.emitOp(tac.IFFALSE, cond, endLabel); err != nil {
		return err
	}
	if err := g.genStatements(node.Body); err != nil {
		return err
	}
	if node.Step != nil {
		if err := g.genStatement(node.Step); err != nil {
			return err
		}
	}
	if err := g.emitOp(tac.GOTO, startLabel); err != nil {
		return err
	}
	return g.emitOp(tac.LABEL, endLabel)
}

func (g *Generator) genFunctionDef(node *ast.FunctionDef) error {
	if err := g.emitRaw(""); err != nil {
		return err
	}
	if err := g.emitOp(tac.LABEL, funcLabel(node.Name)); err != nil {
		return err
	}

	for p := node.Params; p != nil; p = p.Next {
		if err := g.emitOp(tac.VAR, p.Name); err != nil {
			return err
		}
	}

	g.currentFunction = node.Name
	g.currentReturnType = node.RetType

	if err := g.genParamGets(node.Params); err != nil {
		return err
	}
	if err := g.genStatements(node.Body); err != nil {
		return err
	}

	g.currentFunction = ""
	g.currentReturnType = ast.Void
	return nil
}

// genParamGets emits PARAM_GET in reverse declaration order, implementing
// the LIFO argument stack, by recursing to the tail of the list first.
func (g *Generator) genParamGets(p *ast.Parameter) error {
	if p == nil {
		return nil
	}
	if err := g.genParamGets(p.Next); err != nil {
		return err
	}
	return g.emitOp(tac.PARAMGET, p.Name)
}

func (g *Generator) genPixel(node *ast.Pixel) error {
	x, err := g.genExpression(node.X)
	if err != nil {
		return err
	}
	y, err := g.genExpression(node.Y)
	if err != nil {
		return err
	}
	c, err := g.genExpression(node.Color)
	if err != nil {
		return err
	}
	return g.emitOp(tac.PIXEL, x, y, c)
}

func (g *Generator) genKey(node *ast.Key) error {
	if lit, ok := node.KeyCodeExpr.(*ast.IntLit); ok {
		code := lit.Value
		mapped := code
		if m, ok := keyRemap[code]; ok {
			mapped = m
		}
		return g.emitOp(tac.KEY, fmt.Sprintf("%d", mapped), node.DestVarName)
	}

	val, err := g.genExpression(node.KeyCodeExpr)
	if err != nil {
		return err
	}
	return g.emitOp(tac.KEY, val, node.DestVarName)
}

func (g *Generator) genPrint(node *ast.Print) error {
	value, err := g.genExpression(node.Expr)
	if err != nil {
		return err
	}
	return g.emitOp(tac.PRINT, value)
}

func (g *Generator) genReturn(node *ast.Return) error {
	if node.ValueOpt != nil {
		retVal, err := g.genExpression(node.ValueOpt)
		if err != nil {
			return err
		}
		if g.currentFunction != "" && g.currentReturnType != ast.Void {
			if err := g.emitOp(tac.ASSIGN, retVal, funcRetVar(g.currentFunction)); err != nil {
				return err
			}
		}
	}
	return g.emitOp(tac.RETURN)
}

// genExpression lowers expr and returns the name of a location — an
// identifier or a fresh temporary — holding its value.
func (g *Generator) genExpression(expr ast.Expression) (string, error) {
	switch node := expr.(type) {
	case *ast.IntLit:
		result, err := g.freshTemp()
		if err != nil {
			return "", err
		}
		return result, g.emitOp(tac.ASSIGN, fmt.Sprintf("%d", node.Value), result)

	case *ast.FloatLit:
		result, err := g.freshTemp()
		if err != nil {
			return "", err
		}
		return result, g.emitOp(tac.ASSIGN, fmt.Sprintf("%f", node.Value), result)

	case *ast.BoolLit:
		result, err := g.freshTemp()
		if err != nil {
			return "", err
		}
		v := 0
		if node.Value {
			v = 1
		}
		return result, g.emitOp(tac.ASSIGN, fmt.Sprintf("%d", v), result)

	case *ast.StringLit:
		result, err := g.freshTemp()
		if err != nil {
			return "", err
		}
		return result, g.emitOp(tac.ASSIGN, node.Value, result)

	case *ast.Identifier:
		return node.Name, nil

	case *ast.ArrayAccess:
		return "", &Error{node.Token, "array access is not supported by this code generator"}

	case *ast.BinOp:
		return g.genBinOp(node)

	case *ast.UnOp:
		return g.genUnOp(node)

	case *ast.Length:
		return "", &Error{node.Token, "length is not supported by this code generator"}

	case *ast.FunctionCall:
		return g.genFunctionCall(node)

	default:
		return "", &Error{token.Token{}, fmt.Sprintf("unsupported expression %T", expr)}
	}
}

var binOpOpcode = map[ast.BinOpKind]tac.Opcode{
	ast.Add: tac.ADD,
	ast.Sub: tac.SUB,
	ast.Mul: tac.MUL,
	ast.Div: tac.DIV,
	ast.Mod: tac.MOD,
	ast.Eq:  tac.EQ,
	ast.Ne:  tac.NEQ,
	ast.Lt:  tac.LT,
	ast.Gt:  tac.GT,
	ast.Le:  tac.LTE,
	ast.Ge:  tac.GTE,
	ast.And: tac.AND,
	ast.Or:  tac.OR,
}

func (g *Generator) genBinOp(node *ast.BinOp) (string, error) {
	left, err := g.genExpression(node.Lhs)
	if err != nil {
		return "", err
	}
	right, err := g.genExpression(node.Rhs)
	if err != nil {
		return "", err
	}
	result, err := g.freshTemp()
	if err != nil {
		return "", err
	}
	op, ok := binOpOpcode[node.Op]
	if !ok {
		return "", &Error{node.Token, fmt.Sprintf("unsupported binary operator %q", node.Op)}
	}
	return result, g.emitOp(op, left, right, result)
}

func (g *Generator) genUnOp(node *ast.UnOp) (string, error) {
	operand, err := g.genExpression(node.Operand)
	if err != nil {
		return "", err
	}
	result, err := g.freshTemp()
	if err != nil {
		return "", err
	}
	switch node.Op {
	case ast.Neg:
		return result, g.emitOp(tac.SUB, "0", operand, result)
	case ast.Not:
		return result, g.emitOp(tac.EQ, operand, "0", result)
	default:
		return "", &Error{node.Token, fmt.Sprintf("unsupported unary operator %q", node.Op)}
	}
}

func (g *Generator) genFunctionCall(node *ast.FunctionCall) (string, error) {
	for a := node.Args; a != nil; a = a.Next {
		argVal, err := g.genExpression(a.Expr)
		if err != nil {
			return "", err
		}
		if err := g.emitOp(tac.PARAM, argVal); err != nil {
			return "", err
		}
	}

	if err := g.emitOp(tac.GOSUB, funcLabel(node.Name)); err != nil {
		return "", err
	}

	sym, ok := g.global.Lookup(node.Name)
	if ok && sym.IsFunction && sym.ReturnType != ast.Void {
		result, err := g.freshTemp()
		if err != nil {
			return "", err
		}
		return result, g.emitOp(tac.ASSIGN, funcRetVar(node.Name), result)
	}
	return "", nil
}
