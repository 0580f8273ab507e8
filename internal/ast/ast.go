// Package ast defines the tree the parser hands to later stages. The tree
// is strictly owned: every node has exactly one parent, no back-references
// are stored, and nodes are not mutated once the parse returns.
package ast

import "github.com/amber-lang/amber-go/internal/diag"

// Node is anything with a position in the source.
//
type Node interface {
	Span() diag.Span
}

// Stmt is implemented by all statement nodes.
//
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression nodes.
//
type Expr interface {
	Node
	exprNode()
}

// Part is one piece of a text or command literal: either a raw run of
// characters or an interpolated expression.
//
type Part interface {
	Node
	partNode()
}

// Program is the root of one parsed source unit.
//
type Program struct {
	Loc   diag.Span
	Stmts []Stmt
}

func (n *Program) Span() diag.Span { return n.Loc }

// Block is an ordered sequence of statements. A single-line (':') block is
// a one-element sequence.
//
type Block struct {
	Loc   diag.Span
	Stmts []Stmt
}

func (n *Block) Span() diag.Span { return n.Loc }

// ImportItem is one name in a named-import list, with an optional alias.
//
type ImportItem struct {
	Name  string
	Alias string // empty = no alias
}

// Import is 'import * from "path"' or 'import { a, b as c } from "path"'.
// Star and Items are mutually exclusive.
//
type Import struct {
	Loc   diag.Span
	Pub   bool
	Star  bool
	Items []ImportItem
	Path  string
}

// FunctionDef is 'fun name(p1, p2) <block>'. Parameters are untyped names.
//
type FunctionDef struct {
	Loc    diag.Span
	Pub    bool
	Name   string
	Params []string
	Body   *Block
}

// Main is the 'main' entry block with an optional single parameter.
//
type Main struct {
	Loc  diag.Span
	Arg  string // empty = no parameter
	Body *Block
}

// VariableInit is 'let name = expr'.
//
type VariableInit struct {
	Loc   diag.Span
	Name  string
	Value Expr
}

// VariableSet is 'name = expr' or 'name[index] = expr'.
//
type VariableSet struct {
	Loc   diag.Span
	Name  string
	Index Expr // nil = no index
	Value Expr
}

// If is the single-form conditional: 'if cond <block> (else <block>)?'.
//
type If struct {
	Loc  diag.Span
	Cond Expr
	Then *Block
	Else *Block // nil = no else
}

// IfPair is one (condition, block) arm of an IfChain.
//
type IfPair struct {
	Cond Expr
	Body *Block
}

// IfChain is the braced multi-arm form: 'if { cond <block> ... else <block> }'.
// It always holds at least one pair and is a distinct node kind from If.
//
type IfChain struct {
	Loc   diag.Span
	Pairs []IfPair
	Else  *Block // nil = no else
}

// Loop is the infinite loop form.
//
type Loop struct {
	Loc  diag.Span
	Body *Block
}

// LoopArray is 'loop v in iterable <block>'.
//
type LoopArray struct {
	Loc  diag.Span
	Var  string
	Iter Expr
	Body *Block
}

// ExprStmt is an expression in statement position (commands, typically).
//
type ExprStmt struct {
	Loc diag.Span
	X   Expr
}

func (n *Import) Span() diag.Span       { return n.Loc }
func (n *FunctionDef) Span() diag.Span  { return n.Loc }
func (n *Main) Span() diag.Span         { return n.Loc }
func (n *VariableInit) Span() diag.Span { return n.Loc }
func (n *VariableSet) Span() diag.Span  { return n.Loc }
func (n *If) Span() diag.Span           { return n.Loc }
func (n *IfChain) Span() diag.Span      { return n.Loc }
func (n *Loop) Span() diag.Span         { return n.Loc }
func (n *LoopArray) Span() diag.Span    { return n.Loc }
func (n *ExprStmt) Span() diag.Span     { return n.Loc }

func (*Import) stmtNode()       {}
func (*FunctionDef) stmtNode()  {}
func (*Main) stmtNode()         {}
func (*VariableInit) stmtNode() {}
func (*VariableSet) stmtNode()  {}
func (*If) stmtNode()           {}
func (*IfChain) stmtNode()      {}
func (*Loop) stmtNode()         {}
func (*LoopArray) stmtNode()    {}
func (*ExprStmt) stmtNode()     {}

// Number is a numeric literal. Raw preserves the source lexeme.
//
type Number struct {
	Loc   diag.Span
	Raw   string
	Value float64
}

// Boolean is 'true' or 'false'.
//
type Boolean struct {
	Loc   diag.Span
	Value bool
}

// Null is the 'null' literal.
//
type Null struct {
	Loc diag.Span
}

// Text is a '"'-delimited literal: an ordered sequence of raw runs and
// interpolations.
//
type Text struct {
	Loc   diag.Span
	Parts []Part
}

// FailureKind says how a command failure is handled.
//
type FailureKind int

const (
	// FailurePropagate is the bare '?' form.
	FailurePropagate FailureKind = iota
	// FailureBlock is the 'failed <block>' form.
	FailureBlock
)

// FailureHandler attaches to a command; at most one per command.
//
type FailureHandler struct {
	Loc   diag.Span
	Kind  FailureKind
	Block *Block // set for FailureBlock only
}

func (n *FailureHandler) Span() diag.Span { return n.Loc }

// Command is a '$'-delimited shell command literal with optional
// 'silent'/'unsafe' modifiers and an optional failure handler.
//
type Command struct {
	Loc     diag.Span
	Silent  bool
	Unsafe  bool
	Parts   []Part
	Handler *FailureHandler // nil = no handler
}

// TypeName tags the element type of an empty list literal.
//
type TypeName int

const (
	TypeNone TypeName = iota
	TypeText
	TypeNum
	TypeBool
	TypeNull
)

func (t TypeName) String() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeNum:
		return "Num"
	case TypeBool:
		return "Bool"
	case TypeNull:
		return "Null"
	}
	return ""
}

// List is either a typed empty list ('[Num]') or a full list of element
// expressions. The two forms are mutually exclusive: use NewEmptyList /
// NewFullList, which keep a node from ever holding both.
//
type List struct {
	Loc      diag.Span
	ElemType TypeName // TypeNone for full lists
	Elems    []Expr   // nil for empty lists
}

// NewEmptyList creates the typed empty form.
//
func NewEmptyList(loc diag.Span, elemType TypeName) *List {
	return &List{Loc: loc, ElemType: elemType}
}

// NewFullList creates the element-sequence form.
//
func NewFullList(loc diag.Span, elems []Expr) *List {
	return &List{Loc: loc, Elems: elems}
}

// Empty reports whether the list is the typed empty form.
//
func (n *List) Empty() bool { return n.ElemType != TypeNone }

// VariableGet reads a variable, optionally indexed.
//
type VariableGet struct {
	Loc   diag.Span
	Name  string
	Index Expr // nil = no index
}

// FunctionCall calls a named function with ordered arguments.
//
type FunctionCall struct {
	Loc  diag.Span
	Name string
	Args []Expr
}

// BinaryOp is a binary operator application.
//
type BinaryOp struct {
	Loc   diag.Span
	Op    string
	Left  Expr
	Right Expr
}

// UnaryOp is a prefix operator application ('-' or 'not').
//
type UnaryOp struct {
	Loc diag.Span
	Op  string
	X   Expr
}

// Ternary is 'cond then a else b'.
//
type Ternary struct {
	Loc  diag.Span
	Cond Expr
	Then Expr
	Else Expr
}

// Range is 'start .. end' or 'start ..= end'. Paren marks a range the
// source parenthesized, which may then be an operand of another range.
//
type Range struct {
	Loc       diag.Span
	Start     Expr
	End       Expr
	Inclusive bool
	Paren     bool
}

func (n *Number) Span() diag.Span       { return n.Loc }
func (n *Boolean) Span() diag.Span      { return n.Loc }
func (n *Null) Span() diag.Span         { return n.Loc }
func (n *Text) Span() diag.Span         { return n.Loc }
func (n *Command) Span() diag.Span      { return n.Loc }
func (n *List) Span() diag.Span         { return n.Loc }
func (n *VariableGet) Span() diag.Span  { return n.Loc }
func (n *FunctionCall) Span() diag.Span { return n.Loc }
func (n *BinaryOp) Span() diag.Span     { return n.Loc }
func (n *UnaryOp) Span() diag.Span      { return n.Loc }
func (n *Ternary) Span() diag.Span      { return n.Loc }
func (n *Range) Span() diag.Span        { return n.Loc }

func (*Number) exprNode()       {}
func (*Boolean) exprNode()      {}
func (*Null) exprNode()         {}
func (*Text) exprNode()         {}
func (*Command) exprNode()      {}
func (*List) exprNode()         {}
func (*VariableGet) exprNode()  {}
func (*FunctionCall) exprNode() {}
func (*BinaryOp) exprNode()     {}
func (*UnaryOp) exprNode()      {}
func (*Ternary) exprNode()      {}
func (*Range) exprNode()        {}

// PartRunes is a raw run of characters in a text/command literal.
// Value holds the decoded characters (escapes resolved).
//
type PartRunes struct {
	Loc   diag.Span
	Value string
}

// PartExpr is an interpolated expression in a text/command literal.
//
type PartExpr struct {
	Loc diag.Span
	X   Expr
}

func (n *PartRunes) Span() diag.Span { return n.Loc }
func (n *PartExpr) Span() diag.Span  { return n.Loc }

func (*PartRunes) partNode() {}
func (*PartExpr) partNode()  {}
