// Package symtable implements the scoped symbol table used by the semantic
// analyzer and the code generator.
//
// A Table is a fixed-size hash table of symbol-chain buckets plus a scope
// level and an optional parent pointer, the parent links forming a scope
// stack. Symbols hash to a bucket via DJB2; collisions chain within a
// bucket with the newest insertion at the head. Scopes created on function
// entry are retained for the duration of compilation — ExitScope returns
// the parent but never frees the exited scope — because the code generator
// re-queries function-scope tables after analysis (in particular for
// function return types during call lowering).
package symtable

import (
	"fmt"

	"github.com/fis25/fisc/ast"
)

// numBuckets is the fixed bucket count of every Table, matching the
// MAX_SYMBOLS of the reference implementation.
const numBuckets = 1000

// Symbol records a single declared name: its scalar or element type, and
// whether it is an array or a function. A Symbol is created exactly once,
// at its declaration, and never mutated thereafter except for Address.
type Symbol struct {
	Name       string
	Type       ast.DataType
	IsArray    bool
	ArraySize  int
	IsFunction bool
	ReturnType ast.DataType // meaningful only when IsFunction
	Address    int          // reserved, unused by the current generator

	next *Symbol
}

// Table is one scope's set of buckets, linked to its parent scope.
type Table struct {
	buckets    [numBuckets]*Symbol
	scopeLevel int
	parent     *Table
}

// hash computes the DJB2 hash of name: h=5381; h = h*33 + c for each byte.
func hash(name string) uint32 {
	var h uint32 = 5381
	for i := 0; i < len(name); i++ {
		h = (h << 5) + h + uint32(name[i])
	}
	return h
}

func bucketOf(name string) int {
	return int(hash(name) % numBuckets)
}

// NewTable creates an empty root table at scope level 0 with no parent.
func NewTable() *Table {
	return &Table{}
}

// EnterScope returns a new, empty child scope of curr.
func EnterScope(curr *Table) *Table {
	return &Table{scopeLevel: curr.scopeLevel + 1, parent: curr}
}

// ExitScope returns curr's parent. It does not free curr: exited scopes are
// retained so code generation can re-query them.
func ExitScope(curr *Table) *Table {
	return curr.parent
}

// ScopeLevel reports the nesting depth of t, 0 for the root table.
func (t *Table) ScopeLevel() int {
	return t.scopeLevel
}

// Parent returns t's enclosing scope, or nil at the root.
func (t *Table) Parent() *Table {
	return t.parent
}

// AddSymbol declares a new scalar symbol in t. It fails with a
// redeclaration error if name already exists in t's own bucket chain;
// parent scopes are not consulted, so shadowing across scopes is allowed.
func (t *Table) AddSymbol(name string, typ ast.DataType) (*Symbol, error) {
	if _, ok := t.LookupCurrentScope(name); ok {
		return nil, fmt.Errorf("Variable '%s' already declared in this scope", name)
	}

	idx := bucketOf(name)
	sym := &Symbol{Name: name, Type: typ, next: t.buckets[idx]}
	t.buckets[idx] = sym
	return sym, nil
}

// AddArraySymbol declares a new array symbol of the given element type and
// size, subject to the same redeclaration rule as AddSymbol.
func (t *Table) AddArraySymbol(name string, elemType ast.DataType, size int) (*Symbol, error) {
	sym, err := t.AddSymbol(name, elemType)
	if err != nil {
		return nil, err
	}
	sym.IsArray = true
	sym.ArraySize = size
	return sym, nil
}

// AddFunctionSymbol declares a new function symbol with the given return
// type, subject to the same redeclaration rule as AddSymbol.
func (t *Table) AddFunctionSymbol(name string, retType ast.DataType) (*Symbol, error) {
	sym, err := t.AddSymbol(name, retType)
	if err != nil {
		return nil, err
	}
	sym.IsFunction = true
	sym.ReturnType = retType
	return sym, nil
}

// LookupCurrentScope looks up name in t's own buckets only, not consulting
// any parent scope.
func (t *Table) LookupCurrentScope(name string) (*Symbol, bool) {
	for sym := t.buckets[bucketOf(name)]; sym != nil; sym = sym.next {
		if sym.Name == name {
			return sym, true
		}
	}
	return nil, false
}

// Lookup walks t and its chain of parents until name is found or the root
// is exhausted.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	for cur := t; cur != nil; cur = cur.parent {
		if sym, ok := cur.LookupCurrentScope(name); ok {
			return sym, true
		}
	}
	return nil, false
}

// Walk visits every symbol in t in bucket-major order: bucket 0 first, then
// its chain head-to-tail (newest insertion first), then bucket 1, and so
// on. This order is part of the code generator's preamble contract and must
// not be changed to keep TAC output byte-identical across runs.
func (t *Table) Walk(fn func(*Symbol)) {
	for _, head := range t.buckets {
		for sym := head; sym != nil; sym = sym.next {
			fn(sym)
		}
	}
}
