// Package semant implements the semantic analyzer: a single top-down walk
// of the AST that populates the symbol table, enforces the type rules of
// the source language, and resolves every name use.
//
// Analyze is fail-fast: the first error encountered anywhere in the walk is
// returned immediately, and the walk stops — it does not accumulate a list
// of diagnostics or attempt to recover and keep checking.
package semant

import (
	"fmt"

	"github.com/fis25/fisc/ast"
	"github.com/fis25/fisc/symtable"
)

// Analyze walks root, a StatementList, populating table with every
// declaration it finds and type-checking every expression. It returns the
// first error encountered, if any.
func Analyze(root *ast.StatementList, table *symtable.Table) error {
	return analyzeStatements(root, table)
}

// analyzeStatements walks a StatementList head-then-tail, one node after
// the next, to preserve source order.
func analyzeStatements(list *ast.StatementList, table *symtable.Table) error {
	for n := list; n != nil; n = n.Next {
		if n.Stmt == nil {
			continue
		}
		if err := analyzeStatement(n.Stmt, table); err != nil {
			return err
		}
	}
	return nil
}

func analyzeStatement(stmt ast.Statement, table *symtable.Table) error {
	switch node := stmt.(type) {
	case *ast.Decl:
		return analyzeDecl(node, table)
	case *ast.ArrayDecl:
		return analyzeArrayDecl(node, table)
	case *ast.Assign:
		return analyzeAssign(node, table)
	case *ast.ArrayAssign:
		return analyzeArrayAssign(node, table)
	case *ast.If:
		return analyzeIf(node, table)
	case *ast.While:
		return analyzeWhile(node, table)
	case *ast.For:
		return analyzeFor(node, table)
	case *ast.FunctionDef:
		return analyzeFunctionDef(node, table)
	case *ast.Pixel:
		if _, err := checkExpressionType(node.X, table); err != nil {
			return err
		}
		if _, err := checkExpressionType(node.Y, table); err != nil {
			return err
		}
		_, err := checkExpressionType(node.Color, table)
		return err
	case *ast.Key:
		_, err := checkExpressionType(node.KeyCodeExpr, table)
		return err
	case *ast.Input:
		return nil
	case *ast.Print:
		_, err := checkExpressionType(node.Expr, table)
		return err
	case *ast.Return:
		if node.ValueOpt == nil {
			return nil
		}
		_, err := checkExpressionType(node.ValueOpt, table)
		return err
	case *ast.FunctionCall:
		_, err := checkExpressionType(node, table)
		return err
	default:
		return nil
	}
}

func analyzeDecl(node *ast.Decl, table *symtable.Table) error {
	if _, err := table.AddSymbol(node.Name, node.Type); err != nil {
		return err
	}
	if node.InitOpt == nil {
		return nil
	}
	initType, err := checkExpressionType(node.InitOpt, table)
	if err != nil {
		return err
	}
	if !assignable(initType, node.Type) {
		return fmt.Errorf("type mismatch in initialization of '%s'", node.Name)
	}
	return nil
}

func analyzeArrayDecl(node *ast.ArrayDecl, table *symtable.Table) error {
	size := node.Elements.Len()
	_, err := table.AddArraySymbol(node.Name, node.ElemType, size)
	return err
}

func analyzeAssign(node *ast.Assign, table *symtable.Table) error {
	sym, ok := table.Lookup(node.Name)
	if !ok {
		return fmt.Errorf("Variable '%s' not declared", node.Name)
	}
	valueType, err := checkExpressionType(node.Expr, table)
	if err != nil {
		return err
	}
	if !assignable(valueType, sym.Type) {
		return fmt.Errorf("type mismatch in assignment to '%s'", node.Name)
	}
	return nil
}

func analyzeArrayAssign(node *ast.ArrayAssign, table *symtable.Table) error {
	if _, err := checkExpressionType(node.Access, table); err != nil {
		return err
	}
	_, err := checkExpressionType(node.Value, table)
	return err
}

func analyzeIf(node *ast.If, table *symtable.Table) error {
	condType, err := checkExpressionType(node.Cond, table)
	if err != nil {
		return err
	}
	if condType != ast.Bool {
		return fmt.Errorf("if condition must be bool")
	}
	if err := analyzeStatements(node.Then, table); err != nil {
		return err
	}
	return analyzeStatements(node.ElseOpt, table)
}

func analyzeWhile(node *ast.While, table *symtable.Table) error {
	condType, err := checkExpressionType(node.Cond, table)
	if err != nil {
		return err
	}
	if condType != ast.Bool {
		return fmt.Errorf("while condition must be bool")
	}
	return analyzeStatements(node.Body, table)
}

func analyzeFor(node *ast.For, table *symtable.Table) error {
	if node.Init != nil {
		if err := analyzeStatement(node.Init, table); err != nil {
			return err
		}
	}
	condType, err := checkExpressionType(node.Cond, table)
	if err != nil {
		return err
	}
	if condType != ast.Bool {
		return fmt.Errorf("for condition must be bool")
	}
	if node.Step != nil {
		if err := analyzeStatement(node.Step, table); err != nil {
			return err
		}
	}
	return analyzeStatements(node.Body, table)
}

func analyzeFunctionDef(node *ast.FunctionDef, table *symtable.Table) error {
	if _, err := table.AddFunctionSymbol(node.Name, node.RetType); err != nil {
		return err
	}

	funcScope := symtable.EnterScope(table)
	for p := node.Params; p != nil; p = p.Next {
		if _, err := funcScope.AddSymbol(p.Name, p.Type); err != nil {
			return err
		}
	}
	return analyzeStatements(node.Body, funcScope)
}

// checkExpressionType resolves and type-checks expr, returning its
// DataType. The resolved type is also stored on the node itself via
// SetDataType, so a later pass (code generation) can re-query it without
// re-walking the symbol table.
func checkExpressionType(expr ast.Expression, table *symtable.Table) (ast.DataType, error) {
	switch node := expr.(type) {
	case *ast.IntLit:
		return ast.Int, nil
	case *ast.FloatLit:
		return ast.Float, nil
	case *ast.BoolLit:
		return ast.Bool, nil
	case *ast.StringLit:
		return ast.String, nil

	case *ast.Identifier:
		sym, ok := table.Lookup(node.Name)
		if !ok {
			return ast.Void, fmt.Errorf("Variable '%s' not declared", node.Name)
		}
		node.SetDataType(sym.Type)
		return sym.Type, nil

	case *ast.ArrayAccess:
		sym, ok := table.Lookup(node.Name)
		if !ok {
			return ast.Void, fmt.Errorf("Variable '%s' not declared", node.Name)
		}
		if !sym.IsArray {
			return ast.Void, fmt.Errorf("'%s' is not an array", node.Name)
		}
		idxType, err := checkExpressionType(node.Index, table)
		if err != nil {
			return ast.Void, err
		}
		if idxType != ast.Int {
			return ast.Void, fmt.Errorf("Array index must be integer")
		}
		node.SetDataType(sym.Type)
		return sym.Type, nil

	case *ast.BinOp:
		return checkBinOp(node, table)

	case *ast.UnOp:
		operandType, err := checkExpressionType(node.Operand, table)
		if err != nil {
			return ast.Void, err
		}
		node.SetDataType(operandType)
		return operandType, nil

	case *ast.Length:
		if _, err := checkExpressionType(node.ArrayExpr, table); err != nil {
			return ast.Void, err
		}
		return ast.Int, nil

	case *ast.FunctionCall:
		sym, ok := table.Lookup(node.Name)
		if !ok {
			return ast.Void, fmt.Errorf("Variable '%s' not declared", node.Name)
		}
		for a := node.Args; a != nil; a = a.Next {
			if _, err := checkExpressionType(a.Expr, table); err != nil {
				return ast.Void, err
			}
		}
		node.SetDataType(sym.ReturnType)
		return sym.ReturnType, nil

	case *ast.ArrayDecl:
		// Self-typed at construction (always Array); still type-check the
		// initializer elements so undeclared names inside them are caught.
		for a := node.Elements; a != nil; a = a.Next {
			if _, err := checkExpressionType(a.Expr, table); err != nil {
				return ast.Void, err
			}
		}
		return ast.Array, nil

	default:
		return ast.Void, nil
	}
}

func checkBinOp(node *ast.BinOp, table *symtable.Table) (ast.DataType, error) {
	leftType, err := checkExpressionType(node.Lhs, table)
	if err != nil {
		return ast.Void, err
	}
	rightType, err := checkExpressionType(node.Rhs, table)
	if err != nil {
		return ast.Void, err
	}

	var result ast.DataType
	switch node.Op {
	case ast.Add, ast.Sub, ast.Mul, ast.Div, ast.Mod:
		if !numeric(leftType) || !numeric(rightType) {
			return ast.Void, fmt.Errorf("arithmetic operators require numeric operands")
		}
		if leftType == ast.Float || rightType == ast.Float {
			result = ast.Float
		} else {
			result = ast.Int
		}
	case ast.Eq, ast.Ne:
		if leftType != rightType && !(numeric(leftType) && numeric(rightType)) {
			return ast.Void, fmt.Errorf("equality comparison between incompatible types")
		}
		result = ast.Bool
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		if !numeric(leftType) || !numeric(rightType) {
			return ast.Void, fmt.Errorf("relational comparisons require numeric operands")
		}
		result = ast.Bool
	case ast.And, ast.Or:
		if leftType != ast.Bool || rightType != ast.Bool {
			return ast.Void, fmt.Errorf("logical operators require bool operands")
		}
		result = ast.Bool
	default:
		result = ast.Int
	}

	node.SetDataType(result)
	return result, nil
}

func numeric(t ast.DataType) bool {
	return t == ast.Int || t == ast.Float
}

// assignable reports whether a value of type src can be stored into a
// location of type dst: the types must match exactly, or src may be Int
// widening into a Float destination.
func assignable(src, dst ast.DataType) bool {
	return src == dst || (src == ast.Int && dst == ast.Float)
}
