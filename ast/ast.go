// Package ast defines the Abstract Syntax Tree (AST) for the FIS-25 source
// language.
//
// The AST represents the structure of a FIS-25 program after it has been
// parsed: a tagged tree of nodes, each carrying a resolved DataType (defaulted
// to Void at construction, and set either at construction time for self-typed
// nodes or by the semantic analyzer for everything else). The tree is built by
// an (out-of-scope) parser and consumed by the symbol table, the semantic
// analyzer, and the code generator.
//
// Key components:
//   - [Node]: the base interface for all AST nodes
//   - [Statement]: nodes that perform an action (declarations, control flow,
//     hardware primitives)
//   - [Expression]: nodes that produce a typed value
//   - [StatementList]: the right-leaning cons-list root of a program or block
package ast

import (
	"strings"

	"github.com/fis25/fisc/token"
)

// DataType is the closed set of types a FIS-25 value can carry.
type DataType string

const (
	Int    DataType = "Int"
	Float  DataType = "Float"
	Bool   DataType = "Bool"
	String DataType = "String"
	Array  DataType = "Array"
	Void   DataType = "Void"
)

// BinOpKind enumerates the binary operators of BinOp nodes.
type BinOpKind string

const (
	Add BinOpKind = "Add"
	Sub BinOpKind = "Sub"
	Mul BinOpKind = "Mul"
	Div BinOpKind = "Div"
	Mod BinOpKind = "Mod"
	Eq  BinOpKind = "Eq"
	Ne  BinOpKind = "Ne"
	Lt  BinOpKind = "Lt"
	Gt  BinOpKind = "Gt"
	Le  BinOpKind = "Le"
	Ge  BinOpKind = "Ge"
	And BinOpKind = "And"
	Or  BinOpKind = "Or"
)

// UnOpKind enumerates the unary operators of UnOp nodes.
type UnOpKind string

const (
	Neg UnOpKind = "Neg"
	Not UnOpKind = "Not"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	// TokenLiteral returns the literal value of the token that introduced
	// this node.
	TokenLiteral() string

	// String returns a debug representation of the node and its children.
	String() string
}

// Statement is implemented by nodes that perform an action rather than
// produce a value: declarations, assignments, control flow, function
// definitions, and the FIS-25 hardware primitives.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by nodes that produce a typed value.
type Expression interface {
	Node
	expressionNode()

	// GetDataType returns the node's resolved type. It is Void until set
	// either at construction (for self-typed nodes: literals, ArrayDecl,
	// Length) or by the semantic analyzer.
	GetDataType() DataType

	// SetDataType assigns the node's resolved type.
	SetDataType(DataType)
}

// typed is embedded by every Expression to carry its data_type attribute.
type typed struct {
	DataType DataType
}

func (t *typed) GetDataType() DataType {
	if t.DataType == "" {
		return Void
	}
	return t.DataType
}

func (t *typed) SetDataType(dt DataType)  { t.DataType = dt }

// ---------------------------------------------------------------------------
// Sequencing
// ---------------------------------------------------------------------------

// StatementList is a right-leaning cons-list of statements: Stmt holds this
// node's statement, Next holds the rest of the list (nil at the end). It must
// be traversed head-then-tail to preserve source order; it is never flattened
// into a vector so that the ownership and traversal contract of §3.2 holds
// exactly.
type StatementList struct {
	Token token.Token
	Stmt  Statement
	Next  *StatementList
}

func NewStatementList(tok token.Token, stmt Statement, next *StatementList) *StatementList {
	return &StatementList{Token: tok, Stmt: stmt, Next: next}
}

func (sl *StatementList) statementNode()       {}
func (sl *StatementList) TokenLiteral() string { return sl.Token.Literal }
func (sl *StatementList) String() string {
	var out strings.Builder
	for n := sl; n != nil; n = n.Next {
		if n.Stmt != nil {
			out.WriteString(n.Stmt.String())
		}
	}
	return out.String()
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

type IntLit struct {
	typed
	Token token.Token
	Value int32
}

func NewIntLit(tok token.Token, value int32) *IntLit {
	return &IntLit{typed: typed{DataType: Int}, Token: tok, Value: value}
}

func (il *IntLit) expressionNode()      {}
func (il *IntLit) TokenLiteral() string { return il.Token.Literal }
func (il *IntLit) String() string       { return il.Token.Literal }

type FloatLit struct {
	typed
	Token token.Token
	Value float32
}

func NewFloatLit(tok token.Token, value float32) *FloatLit {
	return &FloatLit{typed: typed{DataType: Float}, Token: tok, Value: value}
}

func (fl *FloatLit) expressionNode()      {}
func (fl *FloatLit) TokenLiteral() string { return fl.Token.Literal }
func (fl *FloatLit) String() string       { return fl.Token.Literal }

type BoolLit struct {
	typed
	Token token.Token
	Value bool
}

func NewBoolLit(tok token.Token, value bool) *BoolLit {
	return &BoolLit{typed: typed{DataType: Bool}, Token: tok, Value: value}
}

func (bl *BoolLit) expressionNode()      {}
func (bl *BoolLit) TokenLiteral() string { return bl.Token.Literal }
func (bl *BoolLit) String() string       { return bl.Token.Literal }

type StringLit struct {
	typed
	Token token.Token
	Value string
}

func NewStringLit(tok token.Token, value string) *StringLit {
	return &StringLit{typed: typed{DataType: String}, Token: tok, Value: value}
}

func (sl *StringLit) expressionNode()      {}
func (sl *StringLit) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLit) String() string       { return "\"" + sl.Value + "\"" }

// ---------------------------------------------------------------------------
// Name use
// ---------------------------------------------------------------------------

type Identifier struct {
	typed
	Token token.Token
	Name  string
}

func NewIdentifier(tok token.Token, name string) *Identifier {
	return &Identifier{Token: tok, Name: name}
}

func (id *Identifier) expressionNode()      {}
func (id *Identifier) TokenLiteral() string { return id.Token.Literal }
func (id *Identifier) String() string       { return id.Name }

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

type BinOp struct {
	typed
	Token token.Token
	Op    BinOpKind
	Lhs   Expression
	Rhs   Expression
}

func NewBinOp(tok token.Token, op BinOpKind, lhs, rhs Expression) *BinOp {
	return &BinOp{Token: tok, Op: op, Lhs: lhs, Rhs: rhs}
}

func (b *BinOp) expressionNode()      {}
func (b *BinOp) TokenLiteral() string { return b.Token.Literal }
func (b *BinOp) String() string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(b.Lhs.String())
	out.WriteString(" " + string(b.Op) + " ")
	out.WriteString(b.Rhs.String())
	out.WriteString(")")
	return out.String()
}

type UnOp struct {
	typed
	Token   token.Token
	Op      UnOpKind
	Operand Expression
}

func NewUnOp(tok token.Token, op UnOpKind, operand Expression) *UnOp {
	return &UnOp{Token: tok, Op: op, Operand: operand}
}

func (u *UnOp) expressionNode()      {}
func (u *UnOp) TokenLiteral() string { return u.Token.Literal }
func (u *UnOp) String() string {
	var out strings.Builder
	out.WriteString("(")
	out.WriteString(string(u.Op))
	out.WriteString(u.Operand.String())
	out.WriteString(")")
	return out.String()
}

// ---------------------------------------------------------------------------
// Declarations / assignments
// ---------------------------------------------------------------------------

// Decl declares a scalar variable, optionally with an initializer.
type Decl struct {
	Token   token.Token
	Type    DataType
	Name    string
	InitOpt Expression
}

func NewDecl(tok token.Token, typ DataType, name string, init Expression) *Decl {
	return &Decl{Token: tok, Type: typ, Name: name, InitOpt: init}
}

func (d *Decl) statementNode()       {}
func (d *Decl) TokenLiteral() string { return d.Token.Literal }
func (d *Decl) String() string {
	var out strings.Builder
	out.WriteString(string(d.Type) + " " + d.Name)
	if d.InitOpt != nil {
		out.WriteString(" = " + d.InitOpt.String())
	}
	out.WriteString(";")
	return out.String()
}

// Assign rebinds an already-declared scalar variable.
type Assign struct {
	Token token.Token
	Name  string
	Expr  Expression
}

func NewAssign(tok token.Token, name string, expr Expression) *Assign {
	return &Assign{Token: tok, Name: name, Expr: expr}
}

func (a *Assign) statementNode()       {}
func (a *Assign) TokenLiteral() string { return a.Token.Literal }
func (a *Assign) String() string {
	return a.Name + " = " + a.Expr.String() + ";"
}

// ArrayDecl declares a fixed-size array and initializes it from a literal
// element list. ArrayDecl is self-typed: its DataType is always Array.
type ArrayDecl struct {
	typed
	Token    token.Token
	ElemType DataType
	Name     string
	Elements *Argument
	Size     int
}

func NewArrayDecl(tok token.Token, elemType DataType, name string, elements *Argument) *ArrayDecl {
	return &ArrayDecl{
		typed:    typed{DataType: Array},
		Token:    tok,
		ElemType: elemType,
		Name:     name,
		Elements: elements,
		Size:     elements.Len(),
	}
}

func (ad *ArrayDecl) statementNode()       {}
func (ad *ArrayDecl) expressionNode()      {}
func (ad *ArrayDecl) TokenLiteral() string { return ad.Token.Literal }
func (ad *ArrayDecl) String() string {
	var out strings.Builder
	out.WriteString(string(ad.ElemType) + "[] " + ad.Name + " = {")
	elems := make([]string, 0, ad.Size)
	for a := ad.Elements; a != nil; a = a.Next {
		elems = append(elems, a.Expr.String())
	}
	out.WriteString(strings.Join(elems, ", "))
	out.WriteString("};")
	return out.String()
}

// ArrayAccess reads a single element of an array by index.
type ArrayAccess struct {
	typed
	Token token.Token
	Name  string
	Index Expression
}

func NewArrayAccess(tok token.Token, name string, index Expression) *ArrayAccess {
	return &ArrayAccess{Token: tok, Name: name, Index: index}
}

func (aa *ArrayAccess) expressionNode()      {}
func (aa *ArrayAccess) TokenLiteral() string { return aa.Token.Literal }
func (aa *ArrayAccess) String() string {
	return aa.Name + "[" + aa.Index.String() + "]"
}

// ArrayAssign stores a value into a single array element.
type ArrayAssign struct {
	Token  token.Token
	Access *ArrayAccess
	Value  Expression
}

func NewArrayAssign(tok token.Token, access *ArrayAccess, value Expression) *ArrayAssign {
	return &ArrayAssign{Token: tok, Access: access, Value: value}
}

func (aa *ArrayAssign) statementNode()       {}
func (aa *ArrayAssign) TokenLiteral() string { return aa.Token.Literal }
func (aa *ArrayAssign) String() string {
	return aa.Access.String() + " = " + aa.Value.String() + ";"
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

type If struct {
	Token     token.Token
	Cond      Expression
	Then      *StatementList
	ElseOpt   *StatementList
}

func NewIf(tok token.Token, cond Expression, then, elseOpt *StatementList) *If {
	return &If{Token: tok, Cond: cond, Then: then, ElseOpt: elseOpt}
}

func (i *If) statementNode()       {}
func (i *If) TokenLiteral() string { return i.Token.Literal }
func (i *If) String() string {
	var out strings.Builder
	out.WriteString("if (" + i.Cond.String() + ") {")
	if i.Then != nil {
		out.WriteString(i.Then.String())
	}
	out.WriteString("}")
	if i.ElseOpt != nil {
		out.WriteString(" else {" + i.ElseOpt.String() + "}")
	}
	return out.String()
}

type While struct {
	Token token.Token
	Cond  Expression
	Body  *StatementList
}

func NewWhile(tok token.Token, cond Expression, body *StatementList) *While {
	return &While{Token: tok, Cond: cond, Body: body}
}

func (w *While) statementNode()       {}
func (w *While) TokenLiteral() string { return w.Token.Literal }
func (w *While) String() string {
	var out strings.Builder
	out.WriteString("while (" + w.Cond.String() + ") {")
	if w.Body != nil {
		out.WriteString(w.Body.String())
	}
	out.WriteString("}")
	return out.String()
}

type For struct {
	Token token.Token
	Init  Statement
	Cond  Expression
	Step  Statement
	Body  *StatementList
}

func NewFor(tok token.Token, init Statement, cond Expression, step Statement, body *StatementList) *For {
	return &For{Token: tok, Init: init, Cond: cond, Step: step, Body: body}
}

func (f *For) statementNode()       {}
func (f *For) TokenLiteral() string { return f.Token.Literal }
func (f *For) String() string {
	var out strings.Builder
	out.WriteString("for (")
	if f.Init != nil {
		out.WriteString(f.Init.String())
	}
	out.WriteString(" " + f.Cond.String() + "; ")
	if f.Step != nil {
		out.WriteString(f.Step.String())
	}
	out.WriteString(") {")
	if f.Body != nil {
		out.WriteString(f.Body.String())
	}
	out.WriteString("}")
	return out.String()
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// Parameter is a cons-list node of a function's formal parameters, kept in
// declaration order. Next is nil at the end of the list.
type Parameter struct {
	Token token.Token
	Type  DataType
	Name  string
	Next  *Parameter
}

func NewParameter(tok token.Token, typ DataType, name string, next *Parameter) *Parameter {
	return &Parameter{Token: tok, Type: typ, Name: name, Next: next}
}

func (p *Parameter) TokenLiteral() string { return p.Token.Literal }
func (p *Parameter) String() string       { return string(p.Type) + " " + p.Name }

// Len returns the number of parameters in the list rooted at p (0 for nil).
func (p *Parameter) Len() int {
	n := 0
	for c := p; c != nil; c = c.Next {
		n++
	}
	return n
}

// Argument is a cons-list node of a function call's actual arguments (or an
// array literal's elements), kept in left-to-right order.
type Argument struct {
	Token token.Token
	Expr  Expression
	Next  *Argument
}

func NewArgument(tok token.Token, expr Expression, next *Argument) *Argument {
	return &Argument{Token: tok, Expr: expr, Next: next}
}

func (a *Argument) TokenLiteral() string { return a.Token.Literal }
func (a *Argument) String() string       { return a.Expr.String() }

// Len returns the number of arguments in the list rooted at a (0 for nil).
func (a *Argument) Len() int {
	n := 0
	for c := a; c != nil; c = c.Next {
		n++
	}
	return n
}

type FunctionDef struct {
	Token    token.Token
	Name     string
	Params   *Parameter
	RetType  DataType
	Body     *StatementList
}

func NewFunctionDef(tok token.Token, name string, params *Parameter, retType DataType, body *StatementList) *FunctionDef {
	return &FunctionDef{Token: tok, Name: name, Params: params, RetType: retType, Body: body}
}

func (fd *FunctionDef) statementNode()       {}
func (fd *FunctionDef) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDef) String() string {
	var out strings.Builder
	params := make([]string, 0, fd.Params.Len())
	for p := fd.Params; p != nil; p = p.Next {
		params = append(params, p.String())
	}
	out.WriteString("func " + fd.Name + "(" + strings.Join(params, ", ") + "): " + string(fd.RetType) + " {")
	if fd.Body != nil {
		out.WriteString(fd.Body.String())
	}
	out.WriteString("}")
	return out.String()
}

type FunctionCall struct {
	typed
	Token token.Token
	Name  string
	Args  *Argument
}

func NewFunctionCall(tok token.Token, name string, args *Argument) *FunctionCall {
	return &FunctionCall{Token: tok, Name: name, Args: args}
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) statementNode()       {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) String() string {
	var out strings.Builder
	args := make([]string, 0, fc.Args.Len())
	for a := fc.Args; a != nil; a = a.Next {
		args = append(args, a.String())
	}
	out.WriteString(fc.Name + "(" + strings.Join(args, ", ") + ")")
	return out.String()
}

type Return struct {
	Token     token.Token
	ValueOpt  Expression
}

func NewReturn(tok token.Token, value Expression) *Return {
	return &Return{Token: tok, ValueOpt: value}
}

func (r *Return) statementNode()       {}
func (r *Return) TokenLiteral() string { return r.Token.Literal }
func (r *Return) String() string {
	var out strings.Builder
	out.WriteString("return")
	if r.ValueOpt != nil {
		out.WriteString(" " + r.ValueOpt.String())
	}
	out.WriteString(";")
	return out.String()
}

// ---------------------------------------------------------------------------
// Hardware primitives (FIS-25)
// ---------------------------------------------------------------------------

type Pixel struct {
	Token token.Token
	X     Expression
	Y     Expression
	Color Expression
}

func NewPixel(tok token.Token, x, y, color Expression) *Pixel {
	return &Pixel{Token: tok, X: x, Y: y, Color: color}
}

func (p *Pixel) statementNode()       {}
func (p *Pixel) TokenLiteral() string { return p.Token.Literal }
func (p *Pixel) String() string {
	return "pixel(" + p.X.String() + ", " + p.Y.String() + ", " + p.Color.String() + ");"
}

type Key struct {
	Token       token.Token
	KeyCodeExpr Expression
	DestVarName string
}

func NewKey(tok token.Token, keyCodeExpr Expression, destVarName string) *Key {
	return &Key{Token: tok, KeyCodeExpr: keyCodeExpr, DestVarName: destVarName}
}

func (k *Key) statementNode()       {}
func (k *Key) TokenLiteral() string { return k.Token.Literal }
func (k *Key) String() string {
	return "key(" + k.KeyCodeExpr.String() + ", " + k.DestVarName + ");"
}

type Input struct {
	Token   token.Token
	VarName string
}

func NewInput(tok token.Token, varName string) *Input {
	return &Input{Token: tok, VarName: varName}
}

func (in *Input) statementNode()       {}
func (in *Input) TokenLiteral() string { return in.Token.Literal }
func (in *Input) String() string       { return "input(" + in.VarName + ");" }

type Print struct {
	Token token.Token
	Expr  Expression
}

func NewPrint(tok token.Token, expr Expression) *Print {
	return &Print{Token: tok, Expr: expr}
}

func (pr *Print) statementNode()       {}
func (pr *Print) TokenLiteral() string { return pr.Token.Literal }
func (pr *Print) String() string       { return "print(" + pr.Expr.String() + ");" }

// Length yields the element count of an array. Length is self-typed: its
// DataType is always Int.
type Length struct {
	typed
	Token      token.Token
	ArrayExpr  Expression
}

func NewLength(tok token.Token, arrayExpr Expression) *Length {
	return &Length{typed: typed{DataType: Int}, Token: tok, ArrayExpr: arrayExpr}
}

func (l *Length) expressionNode()      {}
func (l *Length) TokenLiteral() string { return l.Token.Literal }
func (l *Length) String() string       { return "length(" + l.ArrayExpr.String() + ")" }
