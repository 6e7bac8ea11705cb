// Package ast defines the syntax tree produced by the parser. Nodes are
// plain data: resolution results live in side tables owned by the semantic
// analyzer, never in the tree itself.
package ast

import (
	"fmt"

	"github.com/northernsines/foobar/lexer"
)

// Pos is a source position.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d:%d", p.Line, p.Column)
}

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Pos
	aNode()
}

// Decl is a top-level or class-member declaration.
type Decl interface {
	Node
	aDecl()
}

// Stmt is a statement inside a block.
type Stmt interface {
	Node
	aStmt()
}

// Expr is an expression.
type Expr interface {
	Node
	aExpr()
}

type node struct {
	pos Pos
}

func (n *node) Pos() Pos { return n.pos }
func (*node) aNode()     {}

type decl struct{ node }

func (*decl) aDecl() {}

type stmt struct{ node }

func (*stmt) aStmt() {}

type expr struct{ node }

func (*expr) aExpr() {}

// NewPos builds a Pos from a token.
func NewPos(tok lexer.Token) Pos {
	return Pos{Line: tok.Line, Column: tok.Column}
}

// SetPos records the position a node was parsed at.
func (n *node) SetPos(p Pos) { n.pos = p }

// ---------------------------------------------------------------------------
// Declarations

// Program is the root node of a single parsed file.
type Program struct {
	File    string // path the program was parsed from, "" for tests
	Imports []*ImportDecl
	Decls   []Decl // classes, enums and free functions in source order
	node
}

// ImportDecl names one imported file, relative to the importing file.
type ImportDecl struct {
	Path string
	decl
}

// ClassDecl declares a class. Parents keeps the inherits order: the first
// parent wins member conflicts and is the target of the parent keyword.
type ClassDecl struct {
	Name    string
	Parents []string
	Fields  []*FieldDecl
	Methods []*MethodDecl
	decl
}

// EnumDecl declares an enumerated type with ordered value names.
type EnumDecl struct {
	Name   string
	Values []string
	decl
}

// MethodDecl declares a free function or a class method. A nil Return marks
// the two declared-without-a-type forms: Main and Initialize.
type MethodDecl struct {
	Name   string
	Public bool
	Return *TypeRef
	Params []*Param
	Body   *Block
	decl
}

// IsConstructor reports whether the method is a constructor declaration.
func (m *MethodDecl) IsConstructor() bool { return m.Name == "Initialize" }

// FieldDecl declares a class field with an optional initializer.
type FieldDecl struct {
	Name   string
	Public bool
	Type   *TypeRef
	Init   Expr
	decl
}

// Param is a typed method parameter.
type Param struct {
	Name string
	Type *TypeRef
	node
}

// TypeRef is an unresolved source-level type reference.
type TypeRef struct {
	Name  string
	Array bool
	node
}

func (t *TypeRef) String() string {
	if t.Array {
		return t.Name + "[]"
	}
	return t.Name
}

// ---------------------------------------------------------------------------
// Statements

// Block is a braced statement list.
type Block struct {
	Stmts []Stmt
	node
}

// VarDecl declares a local variable with an explicit type.
type VarDecl struct {
	Name string
	Type *TypeRef
	Init Expr // may be nil
	stmt
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	X Expr
	stmt
}

// ReturnStmt returns from the enclosing method, with an optional result.
type ReturnStmt struct {
	Result Expr // may be nil
	stmt
}

// ElseIf is one elseif arm of an if statement.
type ElseIf struct {
	Cond Expr
	Body *Block
	node
}

// IfStmt is an if statement with optional elseif arms and else block.
// The source form of the else branch is the literal "else()".
type IfStmt struct {
	Cond    Expr
	Then    *Block
	Elseifs []*ElseIf
	Else    *Block // may be nil
	stmt
}

// LoopStmt is the shared loop statement. Until false runs the body Cond
// times ("loop for"); Until true runs the body until Cond becomes true
// ("loop until").
type LoopStmt struct {
	Until bool
	Cond  Expr
	Body  *Block
	stmt
}

// ---------------------------------------------------------------------------
// Expressions

// LitKind discriminates Literal values.
type LitKind int

const (
	IntLit LitKind = iota
	FloatLit
	StringLit
	CharLit
	BoolLit
)

// Literal is a literal value. Value holds the unescaped source text.
type Literal struct {
	Kind  LitKind
	Value string
	expr
}

// Identifier names a variable, field or parameter.
type Identifier struct {
	Name string
	expr
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op   lexer.TokenType
	X, Y Expr
	expr
}

// NotExpr is the unary not(...) form.
type NotExpr struct {
	X Expr
	expr
}

// NegateExpr is unary minus on a non-literal operand.
type NegateExpr struct {
	X Expr
	expr
}

// IncDecExpr is a prefix or postfix ++/--.
type IncDecExpr struct {
	Op     lexer.TokenType
	X      Expr
	Prefix bool
	expr
}

// AssignExpr assigns Value to Target and yields the assigned value.
type AssignExpr struct {
	Target Expr
	Value  Expr
	expr
}

// MemberExpr accesses a field, enum value or built-in property.
type MemberExpr struct {
	X      Expr
	Member string
	expr
}

// CallExpr calls a free function (nil Recv) or a method on Recv.
type CallExpr struct {
	Recv   Expr // nil for free function calls
	Method string
	Args   []Expr
	expr
}

// IndexExpr is a single-element array access.
type IndexExpr struct {
	X     Expr
	Index Expr
	expr
}

// SliceExpr selects a sub-range of an array. Op is one of DOT_COMMA,
// COMMA_COMMA and DOT_DOT; a nil bound was omitted in the source and means
// "from the start" / "to the end".
type SliceExpr struct {
	X    Expr
	Low  Expr // may be nil
	High Expr // may be nil
	Op   lexer.TokenType
	expr
}

// NewExpr instantiates a class.
type NewExpr struct {
	Class string
	Args  []Expr
	expr
}

// LambdaExpr is a single-expression lambda. Parameter types are inferred by
// the semantic analyzer from the receiving array's element type.
type LambdaExpr struct {
	Params []string
	Body   Expr
	expr
}

// ArrayLit is an array literal.
type ArrayLit struct {
	Elems []Expr
	expr
}

// ThisClassRef is the thisclass keyword.
type ThisClassRef struct {
	expr
}

// ParentRef is the parent keyword. It resolves against the first listed
// parent of the class the enclosing method was declared in.
type ParentRef struct {
	expr
}

// IsaExpr tests class membership against the reflexive-transitive ancestor
// closure of the operand's static class.
type IsaExpr struct {
	X     Expr
	Class string
	expr
}
