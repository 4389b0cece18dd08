// Package parser implements the syntactic analyzer for FIS-25 source.
//
// The parser takes a stream of tokens from the lexer and constructs the AST
// of package ast: a recursive-descent parser for statements, with Pratt
// parsing (precedence climbing) for expressions. Its own grammar choices
// are not part of the compiler core's tested contract — only the AST it
// hands to the symbol table, analyzer, and code generator is.
//
// The main entry point is [New], which creates a [Parser] from a
// [lexer.Lexer], and [Parser.ParseProgram], which parses a complete FIS-25
// source file and returns its top-level [ast.StatementList].
package parser

import (
	"fmt"
	"strconv"

	"github.com/fis25/fisc/ast"
	"github.com/fis25/fisc/lexer"
	"github.com/fis25/fisc/token"
)

const (
	_ int = iota

	Lowest
	Or          // ||
	And         // &&
	Equals      // == !=
	LessGreater // < > <= >=
	Sum         // + -
	Product     // * / %
	Prefix      // -x or !x
	Call        // f(x) or xs[i]
)

var precedences = map[token.Type]int{
	token.OR:       Or,
	token.AND:      And,
	token.EQ:       Equals,
	token.NOT_EQ:   Equals,
	token.LT:       LessGreater,
	token.LTE:      LessGreater,
	token.GT:       LessGreater,
	token.GTE:      LessGreater,
	token.PLUS:     Sum,
	token.MINUS:    Sum,
	token.SLASH:    Product,
	token.ASTERISK: Product,
	token.PERCENT:  Product,
	token.LPAREN:   Call,
	token.LBRACKET: Call,
}

var binOpKinds = map[token.Type]ast.BinOpKind{
	token.PLUS:     ast.Add,
	token.MINUS:    ast.Sub,
	token.ASTERISK: ast.Mul,
	token.SLASH:    ast.Div,
	token.PERCENT:  ast.Mod,
	token.EQ:       ast.Eq,
	token.NOT_EQ:   ast.Ne,
	token.LT:       ast.Lt,
	token.GT:       ast.Gt,
	token.LTE:      ast.Le,
	token.GTE:      ast.Ge,
	token.AND:      ast.And,
	token.OR:       ast.Or,
}

var typeKeywords = map[token.Type]ast.DataType{
	token.INT_TYPE:    ast.Int,
	token.FLOAT_TYPE:  ast.Float,
	token.BOOL_TYPE:   ast.Bool,
	token.STRING_TYPE: ast.String,
	token.VOID_TYPE:   ast.Void,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a recursive-descent, Pratt-expression parser over a token
// stream from a single [lexer.Lexer].
type Parser struct {
	l      *lexer.Lexer
	errors []string

	currentToken token.Token
	peekToken    token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser over l, primed with its first two tokens.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, errors: []string{}}

	p.prefixParseFns = make(map[token.Type]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntLit)
	p.registerPrefix(token.FLOAT, p.parseFloatLit)
	p.registerPrefix(token.STRING, p.parseStringLit)
	p.registerPrefix(token.TRUE, p.parseBoolLit)
	p.registerPrefix(token.FALSE, p.parseBoolLit)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LENGTH, p.parseLengthExpression)

	p.infixParseFns = make(map[token.Type]infixParseFn)
	for t := range binOpKinds {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.LBRACKET, p.parseIndexExpression)

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns the syntax errors accumulated while parsing.
func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) { p.prefixParseFns[t] = fn }
func (p *Parser) registerInfix(t token.Type, fn infixParseFn)   { p.infixParseFns[t] = fn }

func (p *Parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) currentTokenIs(t token.Type) bool { return p.currentToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool    { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: expected next token to be %s, got %s instead",
		p.peekToken.Line, t, p.peekToken.Type))
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: ", p.currentToken.Line)+fmt.Sprintf(format, args...))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return Lowest
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.currentToken.Type]; ok {
		return pr
	}
	return Lowest
}

// statementListBuilder accumulates statements into a StatementList in
// source order without repeated O(n) traversal.
type statementListBuilder struct {
	head, tail *ast.StatementList
}

func (b *statementListBuilder) add(tok token.Token, stmt ast.Statement) {
	node := ast.NewStatementList(tok, stmt, nil)
	if b.head == nil {
		b.head = node
		b.tail = node
		return
	}
	b.tail.Next = node
	b.tail = node
}

// ParseProgram parses a complete FIS-25 source file and returns its
// top-level statement list. Check [Parser.Errors] afterward.
func (p *Parser) ParseProgram() *ast.StatementList {
	var b statementListBuilder

	for !p.currentTokenIs(token.EOF) {
		tok := p.currentToken
		stmt := p.parseStatement()
		if stmt != nil {
			b.add(tok, stmt)
		}
		p.nextToken()
	}
	return b.head
}

// parseBlock parses statements up to a closing RBRACE and leaves
// currentToken on that RBRACE. currentToken must be positioned on the
// LBRACE on entry.
func (p *Parser) parseBlock() *ast.StatementList {
	var b statementListBuilder
	p.nextToken()

	for !p.currentTokenIs(token.RBRACE) && !p.currentTokenIs(token.EOF) {
		tok := p.currentToken
		stmt := p.parseStatement()
		if stmt != nil {
			b.add(tok, stmt)
		}
		p.nextToken()
	}
	return b.head
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case token.IsTypeKeyword(p.currentToken.Type) && p.currentToken.Type != token.VOID_TYPE:
		return p.parseDeclOrArrayDecl()
	case p.currentTokenIs(token.FUNC):
		return p.parseFunctionDef()
	case p.currentTokenIs(token.IDENT):
		return p.parseIdentStatement()
	case p.currentTokenIs(token.IF):
		return p.parseIf()
	case p.currentTokenIs(token.WHILE):
		return p.parseWhile()
	case p.currentTokenIs(token.FOR):
		return p.parseFor()
	case p.currentTokenIs(token.RETURN):
		return p.parseReturn()
	case p.currentTokenIs(token.PIXEL):
		return p.parsePixel()
	case p.currentTokenIs(token.KEY):
		return p.parseKey()
	case p.currentTokenIs(token.INPUT):
		return p.parseInput()
	case p.currentTokenIs(token.PRINT):
		return p.parsePrint()
	default:
		p.errorf("unexpected token %s at start of statement", p.currentToken.Type)
		return nil
	}
}

// parseDeclOrArrayDecl handles both `int x = 5;` and `int[] xs = {1, 2};`,
// distinguished by an optional `[]` suffix right after the type keyword.
func (p *Parser) parseDeclOrArrayDecl() ast.Statement {
	typeTok := p.currentToken
	typ := typeKeywords[p.currentToken.Type]

	isArray := false
	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		isArray = true
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.currentToken.Literal

	if isArray {
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		elements := p.parseArgumentList(token.RBRACE)
		if !p.currentTokenIs(token.RBRACE) {
			return nil
		}
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return ast.NewArrayDecl(typeTok, typ, name, elements)
	}

	var init ast.Expression
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		init = p.parseExpression(Lowest)
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ast.NewDecl(typeTok, typ, name, init)
}

// parseArgumentList parses a comma-separated expression list and leaves
// currentToken on the closing token end.
func (p *Parser) parseArgumentList(end token.Type) *ast.Argument {
	if p.peekTokenIs(end) {
		p.nextToken()
		return nil
	}

	p.nextToken()
	headTok := p.currentToken
	first := p.parseExpression(Lowest)
	head := ast.NewArgument(headTok, first, nil)
	tail := head

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		argTok := p.currentToken
		expr := p.parseExpression(Lowest)
		node := ast.NewArgument(argTok, expr, nil)
		tail.Next = node
		tail = node
	}

	if !p.expectPeek(end) {
		return head
	}
	return head
}

// parseIdentStatement disambiguates `x = e;`, `xs[i] = e;`, and `f(...);`,
// all of which start with an identifier.
func (p *Parser) parseIdentStatement() ast.Statement {
	nameTok := p.currentToken
	name := p.currentToken.Literal

	switch p.peekToken.Type {
	case token.ASSIGN:
		p.nextToken()
		p.nextToken()
		value := p.parseExpression(Lowest)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return ast.NewAssign(nameTok, name, value)

	case token.LBRACKET:
		p.nextToken()
		p.nextToken()
		index := p.parseExpression(Lowest)
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
		access := ast.NewArrayAccess(nameTok, name, index)
		if !p.expectPeek(token.ASSIGN) {
			return nil
		}
		p.nextToken()
		value := p.parseExpression(Lowest)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return ast.NewArrayAssign(nameTok, access, value)

	case token.LPAREN:
		p.nextToken()
		args := p.parseArgumentList(token.RPAREN)
		call := ast.NewFunctionCall(nameTok, name, args)
		if !p.expectPeek(token.SEMICOLON) {
			return nil
		}
		return call

	default:
		p.errorf("unexpected token %s after identifier %q", p.peekToken.Type, name)
		return nil
	}
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	then := p.parseBlock()

	var elseBlock *ast.StatementList
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		elseBlock = p.parseBlock()
	}
	return ast.NewIf(tok, cond, then, elseBlock)
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewWhile(tok, cond, body)
}

func (p *Parser) parseFor() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	var init ast.Statement
	if token.IsTypeKeyword(p.currentToken.Type) {
		init = p.parseDeclOrArrayDecl()
	} else {
		init = p.parseIdentStatement()
	}
	p.nextToken() // past init's terminating ';'

	cond := p.parseExpression(Lowest)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	p.nextToken() // past cond's ';'

	step := p.parseForStep()
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewFor(tok, init, cond, step, body)
}

// parseForStep parses the bare `i = i + 1` clause of a for-header (no
// trailing semicolon — the header's closing paren follows directly).
func (p *Parser) parseForStep() ast.Statement {
	nameTok := p.currentToken
	name := p.currentToken.Literal
	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(Lowest)
	return ast.NewAssign(nameTok, name, value)
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.currentToken
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return ast.NewReturn(tok, nil)
	}
	p.nextToken()
	value := p.parseExpression(Lowest)
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ast.NewReturn(tok, value)
}

func (p *Parser) parsePixel() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	x := p.parseExpression(Lowest)
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()
	y := p.parseExpression(Lowest)
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	p.nextToken()
	color := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ast.NewPixel(tok, x, y, color)
}

func (p *Parser) parseKey() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	keyCode := p.parseExpression(Lowest)
	if !p.expectPeek(token.COMMA) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	dest := p.currentToken.Literal
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ast.NewKey(tok, keyCode, dest)
}

func (p *Parser) parseInput() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.currentToken.Literal
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ast.NewInput(tok, name)
}

func (p *Parser) parsePrint() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	expr := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON) {
		return nil
	}
	return ast.NewPrint(tok, expr)
}

func (p *Parser) parseFunctionDef() ast.Statement {
	tok := p.currentToken
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	name := p.currentToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params := p.parseParameters()

	if !p.expectPeek(token.COLON) {
		return nil
	}
	if !token.IsTypeKeyword(p.peekToken.Type) {
		p.peekError(token.INT_TYPE)
		return nil
	}
	p.nextToken()
	retType := typeKeywords[p.currentToken.Type]

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	body := p.parseBlock()
	return ast.NewFunctionDef(tok, name, params, retType, body)
}

// parseParameters parses a `(int a, bool b)` parameter list. currentToken
// must be on the LPAREN on entry; it leaves currentToken on the RPAREN.
func (p *Parser) parseParameters() *ast.Parameter {
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return nil
	}

	p.nextToken()
	head := p.parseOneParameter()
	tail := head

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseOneParameter()
		tail.Next = next
		tail = next
	}

	if !p.expectPeek(token.RPAREN) {
		return head
	}
	return head
}

func (p *Parser) parseOneParameter() *ast.Parameter {
	tok := p.currentToken
	typ := typeKeywords[p.currentToken.Type]
	if !p.expectPeek(token.IDENT) {
		return ast.NewParameter(tok, typ, "", nil)
	}
	return ast.NewParameter(tok, typ, p.currentToken.Literal, nil)
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.currentToken.Type]
	if prefix == nil {
		p.errorf("no prefix parse function for %s found", p.currentToken.Type)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	return ast.NewIdentifier(p.currentToken, p.currentToken.Literal)
}

func (p *Parser) parseIntLit() ast.Expression {
	tok := p.currentToken
	value, err := strconv.ParseInt(tok.Literal, 10, 32)
	if err != nil {
		p.errorf("could not parse %q as an integer", tok.Literal)
		return nil
	}
	return ast.NewIntLit(tok, int32(value))
}

func (p *Parser) parseFloatLit() ast.Expression {
	tok := p.currentToken
	value, err := strconv.ParseFloat(tok.Literal, 32)
	if err != nil {
		p.errorf("could not parse %q as a float", tok.Literal)
		return nil
	}
	return ast.NewFloatLit(tok, float32(value))
}

func (p *Parser) parseStringLit() ast.Expression {
	return ast.NewStringLit(p.currentToken, p.currentToken.Literal)
}

func (p *Parser) parseBoolLit() ast.Expression {
	return ast.NewBoolLit(p.currentToken, p.currentTokenIs(token.TRUE))
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	tok := p.currentToken
	var op ast.UnOpKind
	if tok.Type == token.MINUS {
		op = ast.Neg
	} else {
		op = ast.Not
	}
	p.nextToken()
	operand := p.parseExpression(Prefix)
	return ast.NewUnOp(tok, op, operand)
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	op := binOpKinds[tok.Type]
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return ast.NewBinOp(tok, op, left, right)
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	expr := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseLengthExpression() ast.Expression {
	tok := p.currentToken
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	arrayExpr := p.parseExpression(Lowest)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return ast.NewLength(tok, arrayExpr)
}

// parseCallExpression is an infix handler: left must be an *ast.Identifier
// naming the callee.
func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf("cannot call a non-identifier expression")
		return nil
	}
	args := p.parseArgumentList(token.RPAREN)
	return ast.NewFunctionCall(tok, ident.Name, args)
}

// parseIndexExpression is an infix handler: left must be an
// *ast.Identifier naming the array.
func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	tok := p.currentToken
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.errorf("cannot index a non-identifier expression")
		return nil
	}
	p.nextToken()
	index := p.parseExpression(Lowest)
	if !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return ast.NewArrayAccess(tok, ident.Name, index)
}
