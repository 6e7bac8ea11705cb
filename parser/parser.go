// Package parser turns a token stream into a syntax tree by recursive
// descent. Parsing is fail-fast: the first syntax error aborts the file.
package parser

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/northernsines/foobar/ast"
	"github.com/northernsines/foobar/lexer"
)

// SyntaxError reports a token that does not fit the grammar.
type SyntaxError struct {
	Expected string
	Found    lexer.Token
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: expected %s, found %s",
		e.Found.Line, e.Found.Column, e.Expected, e.Found)
}

type parser struct {
	toks []lexer.Token
	pos  int
}

// Parse consumes the tokens of one source file. file is recorded on the
// returned program for diagnostics and import resolution.
func Parse(file string, toks []lexer.Token) (prog *ast.Program, err error) {
	p := &parser{toks: toks}

	// The grammar productions bail out through panic; anything that is not
	// a *SyntaxError is a bug and keeps propagating.
	defer func() {
		if r := recover(); r != nil {
			se, ok := r.(*SyntaxError)
			if !ok {
				panic(r)
			}
			prog, err = nil, se
		}
	}()

	prog = p.parseProgram(file)
	return prog, nil
}

func (p *parser) cur() lexer.Token {
	return p.peek(0)
}

func (p *parser) peek(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *parser) at(tt lexer.TokenType) bool {
	return p.cur().Type == tt
}

func (p *parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) accept(tt lexer.TokenType) (lexer.Token, bool) {
	if p.at(tt) {
		return p.advance(), true
	}
	return lexer.Token{}, false
}

func (p *parser) expect(tt lexer.TokenType) lexer.Token {
	if p.at(tt) {
		return p.advance()
	}
	p.fail(fmt.Sprintf("'%s'", tt))
	return lexer.Token{} // unreachable
}

// fail aborts the parse at the current token.
func (p *parser) fail(expected string) {
	panic(&SyntaxError{Expected: expected, Found: p.cur()})
}

func (p *parser) failAt(expected string, found lexer.Token) {
	panic(&SyntaxError{Expected: expected, Found: found})
}

// ---------------------------------------------------------------------------
// Declarations

func (p *parser) parseProgram(file string) *ast.Program {
	prog := &ast.Program{File: file}
	prog.SetPos(ast.Pos{Line: 1, Column: 1})

	// Imports are only legal before the first declaration.
	for p.at(lexer.IMPORT) {
		prog.Imports = append(prog.Imports, p.parseImport())
	}

	for !p.at(lexer.EOF) {
		prog.Decls = append(prog.Decls, p.parseTopDecl())
	}

	log.WithFields(log.Fields{
		"file":         file,
		"imports":      len(prog.Imports),
		"declarations": len(prog.Decls),
	}).Debug("Parsed program")

	return prog
}

func (p *parser) parseImport() *ast.ImportDecl {
	tok := p.expect(lexer.IMPORT)
	path := p.expect(lexer.STRINGLIT)
	p.expect(lexer.SEMICOLON)

	imp := &ast.ImportDecl{Path: path.Lexeme}
	imp.SetPos(ast.NewPos(tok))
	return imp
}

func (p *parser) parseTopDecl() ast.Decl {
	switch p.cur().Type {
	case lexer.IMPORT:
		p.fail("a declaration (imports must precede all other declarations)")
	case lexer.CLASS:
		return p.parseClass()
	case lexer.ENUMERATED:
		return p.parseEnum()
	}
	return p.parseFreeFunction()
}

func (p *parser) parseClass() *ast.ClassDecl {
	tok := p.expect(lexer.CLASS)
	name := p.expect(lexer.IDENT)

	cls := &ast.ClassDecl{Name: name.Lexeme}
	cls.SetPos(ast.NewPos(tok))

	if _, ok := p.accept(lexer.INHERITS); ok {
		cls.Parents = append(cls.Parents, p.expect(lexer.IDENT).Lexeme)
		for {
			if _, ok := p.accept(lexer.COMMA); !ok {
				break
			}
			cls.Parents = append(cls.Parents, p.expect(lexer.IDENT).Lexeme)
		}
	}

	p.expect(lexer.LBRACE)
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		p.parseMember(cls)
	}
	p.expect(lexer.RBRACE)

	log.WithFields(log.Fields{
		"class":   cls.Name,
		"parents": cls.Parents,
		"fields":  len(cls.Fields),
		"methods": len(cls.Methods),
	}).Debug("Parsed class declaration")

	return cls
}

// parseMember parses one field, method or constructor into cls.
// Members default to private when no modifier is written.
func (p *parser) parseMember(cls *ast.ClassDecl) {
	public := false
	if _, ok := p.accept(lexer.PUBLIC); ok {
		public = true
	} else {
		p.accept(lexer.PRIVATE)
	}

	// A name directly followed by '(' is a constructor form: a method
	// declared without a return type. Only Initialize may use it; the
	// semantic analyzer enforces the name.
	if p.at(lexer.IDENT) && p.peek(1).Type == lexer.LPAREN {
		name := p.advance()
		cls.Methods = append(cls.Methods, p.parseMethodRest(name, nil, public))
		return
	}

	typ := p.parseTypeRef(true)
	name := p.expect(lexer.IDENT)

	if p.at(lexer.LPAREN) {
		cls.Methods = append(cls.Methods, p.parseMethodRest(name, typ, public))
		return
	}

	// Field declaration.
	if typ.Name == "void" {
		p.failAt("a field type", name)
	}
	field := &ast.FieldDecl{Name: name.Lexeme, Public: public, Type: typ}
	field.SetPos(typ.Pos())
	if _, ok := p.accept(lexer.ASSIGN); ok {
		field.Init = p.parseExpr()
	}
	p.expect(lexer.SEMICOLON)
	cls.Fields = append(cls.Fields, field)
}

func (p *parser) parseFreeFunction() *ast.MethodDecl {
	// Main is declared without a return type.
	if p.at(lexer.IDENT) && p.peek(1).Type == lexer.LPAREN {
		name := p.advance()
		return p.parseMethodRest(name, nil, true)
	}

	if !p.cur().IsType() {
		p.fail("a declaration")
	}
	typ := p.parseTypeRef(true)
	name := p.expect(lexer.IDENT)
	if !p.at(lexer.LPAREN) {
		p.fail("'(' (only classes, enums, functions and imports may appear at the top level)")
	}
	return p.parseMethodRest(name, typ, true)
}

func (p *parser) parseMethodRest(name lexer.Token, ret *ast.TypeRef, public bool) *ast.MethodDecl {
	m := &ast.MethodDecl{Name: name.Lexeme, Public: public, Return: ret}
	m.SetPos(ast.NewPos(name))
	m.Params = p.parseParams()
	m.Body = p.parseBlock()
	return m
}

func (p *parser) parseParams() []*ast.Param {
	p.expect(lexer.LPAREN)
	var params []*ast.Param
	for !p.at(lexer.RPAREN) {
		if len(params) > 0 {
			p.expect(lexer.COMMA)
		}
		typ := p.parseTypeRef(false)
		name := p.expect(lexer.IDENT)
		param := &ast.Param{Name: name.Lexeme, Type: typ}
		param.SetPos(typ.Pos())
		params = append(params, param)
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *parser) parseEnum() *ast.EnumDecl {
	tok := p.expect(lexer.ENUMERATED)
	name := p.expect(lexer.IDENT)

	enum := &ast.EnumDecl{Name: name.Lexeme}
	enum.SetPos(ast.NewPos(tok))

	p.expect(lexer.LBRACE)
	enum.Values = append(enum.Values, p.expect(lexer.IDENT).Lexeme)
	for {
		if _, ok := p.accept(lexer.COMMA); !ok {
			break
		}
		enum.Values = append(enum.Values, p.expect(lexer.IDENT).Lexeme)
	}
	p.expect(lexer.RBRACE)
	p.expect(lexer.SEMICOLON)
	return enum
}

// parseTypeRef parses a type name with an optional [] suffix.
func (p *parser) parseTypeRef(allowVoid bool) *ast.TypeRef {
	tok := p.cur()
	if !tok.IsType() {
		p.fail("a type")
	}
	p.advance()

	typ := &ast.TypeRef{Name: tok.Lexeme}
	typ.SetPos(ast.NewPos(tok))

	if p.at(lexer.LBRACKET) && p.peek(1).Type == lexer.RBRACKET {
		p.advance()
		p.advance()
		typ.Array = true
	}

	if typ.Name == "void" && (!allowVoid || typ.Array) {
		p.failAt("a type", tok)
	}
	return typ
}

// ---------------------------------------------------------------------------
// Statements

func (p *parser) parseBlock() *ast.Block {
	tok := p.expect(lexer.LBRACE)
	block := &ast.Block{}
	block.SetPos(ast.NewPos(tok))
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		block.Stmts = append(block.Stmts, p.parseStmt())
	}
	p.expect(lexer.RBRACE)
	return block
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.cur().Type {
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.IF:
		return p.parseIf()
	case lexer.LOOP:
		return p.parseLoop()
	case lexer.BOOLEAN, lexer.CHARACTER, lexer.INTEGER, lexer.LONGINTEGER,
		lexer.FLOAT, lexer.LONGFLOAT, lexer.STRING, lexer.VOID:
		return p.parseVarDecl()
	case lexer.IDENT:
		// A class-typed declaration is an identifier followed by another
		// identifier, optionally with an array suffix in between.
		if p.peek(1).Type == lexer.IDENT {
			return p.parseVarDecl()
		}
		if p.peek(1).Type == lexer.LBRACKET && p.peek(2).Type == lexer.RBRACKET &&
			p.peek(3).Type == lexer.IDENT {
			return p.parseVarDecl()
		}
	}
	return p.parseExprStmt()
}

func (p *parser) parseVarDecl() ast.Stmt {
	typ := p.parseTypeRef(false)
	name := p.expect(lexer.IDENT)

	decl := &ast.VarDecl{Name: name.Lexeme, Type: typ}
	decl.SetPos(typ.Pos())
	if _, ok := p.accept(lexer.ASSIGN); ok {
		decl.Init = p.parseExpr()
	}
	p.expect(lexer.SEMICOLON)
	return decl
}

func (p *parser) parseExprStmt() ast.Stmt {
	x := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	stmt := &ast.ExprStmt{X: x}
	stmt.SetPos(x.Pos())
	return stmt
}

func (p *parser) parseReturn() ast.Stmt {
	tok := p.expect(lexer.RETURN)
	ret := &ast.ReturnStmt{}
	ret.SetPos(ast.NewPos(tok))
	if !p.at(lexer.SEMICOLON) {
		ret.Result = p.parseExpr()
	}
	p.expect(lexer.SEMICOLON)
	return ret
}

func (p *parser) parseIf() ast.Stmt {
	tok := p.expect(lexer.IF)
	p.expect(lexer.LPAREN)
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)

	stmt := &ast.IfStmt{Cond: cond, Then: p.parseBlock()}
	stmt.SetPos(ast.NewPos(tok))

	for p.at(lexer.ELSEIF) {
		arm := p.advance()
		p.expect(lexer.LPAREN)
		elseCond := p.parseExpr()
		p.expect(lexer.RPAREN)
		elseif := &ast.ElseIf{Cond: elseCond, Body: p.parseBlock()}
		elseif.SetPos(ast.NewPos(arm))
		stmt.Elseifs = append(stmt.Elseifs, elseif)
	}

	// The else branch is spelled with literal empty parens: else() { ... }
	if _, ok := p.accept(lexer.ELSE); ok {
		p.expect(lexer.LPAREN)
		p.expect(lexer.RPAREN)
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *parser) parseLoop() ast.Stmt {
	tok := p.expect(lexer.LOOP)

	stmt := &ast.LoopStmt{}
	stmt.SetPos(ast.NewPos(tok))
	switch p.cur().Type {
	case lexer.FOR:
		p.advance()
	case lexer.UNTIL:
		p.advance()
		stmt.Until = true
	default:
		p.fail("'for' or 'until' after 'loop'")
	}

	p.expect(lexer.LPAREN)
	stmt.Cond = p.parseExpr()
	p.expect(lexer.RPAREN)
	stmt.Body = p.parseBlock()
	return stmt
}

// ---------------------------------------------------------------------------
// Expressions, lowest precedence first. The ladder, loosest binding at the
// top: = ; VV ; V ; & ; == > < >= <= isa ; + - ; * / % ; ^ ; unary ; postfix.

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func isAssignable(x ast.Expr) bool {
	switch x.(type) {
	case *ast.Identifier, *ast.MemberExpr, *ast.IndexExpr:
		return true
	}
	return false
}

func (p *parser) parseAssign() ast.Expr {
	left := p.parseXor()
	if !p.at(lexer.ASSIGN) {
		return left
	}
	eq := p.advance()
	if !isAssignable(left) {
		p.failAt("an assignable expression on the left of '='", eq)
	}
	// Right-associative: a = b = c assigns c to b, then to a.
	value := p.parseAssign()
	assign := &ast.AssignExpr{Target: left, Value: value}
	assign.SetPos(left.Pos())
	return assign
}

func (p *parser) parseXor() ast.Expr {
	left := p.parseOr()
	for p.at(lexer.XOR) {
		op := p.advance()
		right := p.parseOr()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(lexer.OR) {
		op := p.advance()
		right := p.parseAnd()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseComparison()
	for p.at(lexer.AND) {
		op := p.advance()
		right := p.parseComparison()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	for {
		switch p.cur().Type {
		case lexer.EQUALS, lexer.LESS, lexer.GREATER, lexer.LESS_EQ, lexer.GREATER_EQ:
			op := p.advance()
			right := p.parseAdditive()
			left = p.binary(op, left, right)
		case lexer.ISA:
			p.advance()
			cls := p.expect(lexer.IDENT)
			isa := &ast.IsaExpr{X: left, Class: cls.Lexeme}
			isa.SetPos(left.Pos())
			left = isa
		default:
			return left
		}
	}
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(lexer.PLUS) || p.at(lexer.MINUS) {
		op := p.advance()
		right := p.parseMultiplicative()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parsePower()
	for p.at(lexer.STAR) || p.at(lexer.SLASH) || p.at(lexer.PERCENT) {
		op := p.advance()
		right := p.parsePower()
		left = p.binary(op, left, right)
	}
	return left
}

func (p *parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if !p.at(lexer.CARET) {
		return left
	}
	op := p.advance()
	// Right-associative: 2 ^ 3 ^ 2 is 2 ^ (3 ^ 2).
	right := p.parsePower()
	return p.binary(op, left, right)
}

func (p *parser) binary(op lexer.Token, left, right ast.Expr) ast.Expr {
	e := &ast.BinaryExpr{Op: op.Type, X: left, Y: right}
	e.SetPos(left.Pos())
	return e
}

func (p *parser) parseUnary() ast.Expr {
	switch p.cur().Type {
	case lexer.NOT:
		tok := p.advance()
		// not always takes parenthesized operands: not(expr).
		if !p.at(lexer.LPAREN) {
			p.fail("'(' after 'not'")
		}
		p.advance()
		x := p.parseExpr()
		p.expect(lexer.RPAREN)
		not := &ast.NotExpr{X: x}
		not.SetPos(ast.NewPos(tok))
		return not

	case lexer.INCREMENT, lexer.DECREMENT:
		op := p.advance()
		x := p.parseUnary()
		if !isAssignable(x) {
			p.failAt("an assignable expression after '"+op.Lexeme+"'", op)
		}
		inc := &ast.IncDecExpr{Op: op.Type, X: x, Prefix: true}
		inc.SetPos(ast.NewPos(op))
		return inc

	case lexer.MINUS:
		tok := p.advance()
		x := p.parseUnary()
		// Fold the sign into numeric literals so -5 stays one token of
		// meaning; everything else becomes a negation node.
		if lit, ok := x.(*ast.Literal); ok &&
			(lit.Kind == ast.IntLit || lit.Kind == ast.FloatLit) &&
			!strings.HasPrefix(lit.Value, "-") {
			lit.Value = "-" + lit.Value
			lit.SetPos(ast.NewPos(tok))
			return lit
		}
		neg := &ast.NegateExpr{X: x}
		neg.SetPos(ast.NewPos(tok))
		return neg
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur().Type {
		case lexer.DOT:
			p.advance()
			member := p.expect(lexer.IDENT)
			if p.at(lexer.LPAREN) {
				call := &ast.CallExpr{Recv: x, Method: member.Lexeme, Args: p.parseCallArgs()}
				call.SetPos(x.Pos())
				x = call
			} else {
				access := &ast.MemberExpr{X: x, Member: member.Lexeme}
				access.SetPos(x.Pos())
				x = access
			}

		case lexer.LBRACKET:
			p.advance()
			x = p.parseIndexOrSlice(x)

		case lexer.INCREMENT, lexer.DECREMENT:
			op := p.cur()
			if !isAssignable(x) {
				p.failAt("an assignable expression before '"+op.Lexeme+"'", op)
			}
			p.advance()
			inc := &ast.IncDecExpr{Op: op.Type, X: x, Prefix: false}
			inc.SetPos(x.Pos())
			x = inc

		default:
			return x
		}
	}
}

func isSliceOp(tt lexer.TokenType) bool {
	return tt == lexer.DOT_COMMA || tt == lexer.COMMA_COMMA || tt == lexer.DOT_DOT
}

// parseIndexOrSlice parses the bracket suffix after '[' has been consumed.
// Forms: [i]  [a op b]  [op b]  [a op]  [op]  where op is ., or ,, or ..
func (p *parser) parseIndexOrSlice(x ast.Expr) ast.Expr {
	if isSliceOp(p.cur().Type) {
		op := p.advance()
		slice := &ast.SliceExpr{X: x, Op: op.Type}
		slice.SetPos(x.Pos())
		if !p.at(lexer.RBRACKET) {
			slice.High = p.parseExpr()
		}
		p.expect(lexer.RBRACKET)
		return slice
	}

	first := p.parseExpr()
	if isSliceOp(p.cur().Type) {
		op := p.advance()
		slice := &ast.SliceExpr{X: x, Low: first, Op: op.Type}
		slice.SetPos(x.Pos())
		if !p.at(lexer.RBRACKET) {
			slice.High = p.parseExpr()
		}
		p.expect(lexer.RBRACKET)
		return slice
	}

	p.expect(lexer.RBRACKET)
	idx := &ast.IndexExpr{X: x, Index: first}
	idx.SetPos(x.Pos())
	return idx
}

// parseCallArgs parses a parenthesized argument list. Lambdas are legal
// only here, never as standalone expressions.
func (p *parser) parseCallArgs() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) {
		if len(args) > 0 {
			p.expect(lexer.COMMA)
		}
		args = append(args, p.parseArg())
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *parser) parseArg() ast.Expr {
	// x -> expr
	if p.at(lexer.IDENT) && p.peek(1).Type == lexer.ARROW {
		return p.parseLambda()
	}
	// (a, b) -> expr: scan ahead for the arrow before committing.
	if p.at(lexer.LPAREN) && p.lambdaParamsAhead() {
		return p.parseLambda()
	}
	return p.parseExpr()
}

// lambdaParamsAhead reports whether the tokens from the current '(' form a
// lambda parameter list, i.e. (IDENT, IDENT, ...) ->
func (p *parser) lambdaParamsAhead() bool {
	i := 1
	for {
		if p.peek(i).Type != lexer.IDENT {
			return false
		}
		i++
		switch p.peek(i).Type {
		case lexer.COMMA:
			i++
		case lexer.RPAREN:
			return p.peek(i+1).Type == lexer.ARROW
		default:
			return false
		}
	}
}

func (p *parser) parseLambda() ast.Expr {
	tok := p.cur()
	lambda := &ast.LambdaExpr{}
	lambda.SetPos(ast.NewPos(tok))

	if p.at(lexer.IDENT) {
		lambda.Params = append(lambda.Params, p.advance().Lexeme)
	} else {
		p.expect(lexer.LPAREN)
		lambda.Params = append(lambda.Params, p.expect(lexer.IDENT).Lexeme)
		for {
			if _, ok := p.accept(lexer.COMMA); !ok {
				break
			}
			lambda.Params = append(lambda.Params, p.expect(lexer.IDENT).Lexeme)
		}
		p.expect(lexer.RPAREN)
	}

	p.expect(lexer.ARROW)
	// Lambda bodies are single expressions, never blocks.
	if p.at(lexer.LBRACE) {
		p.fail("an expression as the lambda body")
	}
	lambda.Body = p.parseExpr()
	return lambda
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.cur()
	switch tok.Type {
	case lexer.INTLIT:
		p.advance()
		return p.literal(tok, ast.IntLit)
	case lexer.FLOATLIT:
		p.advance()
		return p.literal(tok, ast.FloatLit)
	case lexer.STRINGLIT:
		p.advance()
		return p.literal(tok, ast.StringLit)
	case lexer.CHARLIT:
		p.advance()
		return p.literal(tok, ast.CharLit)
	case lexer.TRUE, lexer.FALSE:
		p.advance()
		return p.literal(tok, ast.BoolLit)

	case lexer.IDENT:
		p.advance()
		if p.at(lexer.LPAREN) {
			// Free function call.
			call := &ast.CallExpr{Method: tok.Lexeme, Args: p.parseCallArgs()}
			call.SetPos(ast.NewPos(tok))
			return call
		}
		id := &ast.Identifier{Name: tok.Lexeme}
		id.SetPos(ast.NewPos(tok))
		return id

	case lexer.THISCLASS:
		p.advance()
		ref := &ast.ThisClassRef{}
		ref.SetPos(ast.NewPos(tok))
		return ref

	case lexer.PARENT:
		p.advance()
		ref := &ast.ParentRef{}
		ref.SetPos(ast.NewPos(tok))
		return ref

	case lexer.NEW:
		p.advance()
		cls := p.expect(lexer.IDENT)
		n := &ast.NewExpr{Class: cls.Lexeme, Args: p.parseCallArgs()}
		n.SetPos(ast.NewPos(tok))
		return n

	case lexer.LPAREN:
		p.advance()
		x := p.parseExpr()
		p.expect(lexer.RPAREN)
		return x

	case lexer.LBRACKET:
		p.advance()
		lit := &ast.ArrayLit{}
		lit.SetPos(ast.NewPos(tok))
		for !p.at(lexer.RBRACKET) {
			if len(lit.Elems) > 0 {
				p.expect(lexer.COMMA)
			}
			lit.Elems = append(lit.Elems, p.parseExpr())
		}
		p.expect(lexer.RBRACKET)
		return lit
	}

	p.fail("an expression")
	return nil // unreachable
}

func (p *parser) literal(tok lexer.Token, kind ast.LitKind) ast.Expr {
	lit := &ast.Literal{Kind: kind, Value: tok.Lexeme}
	lit.SetPos(ast.NewPos(tok))
	return lit
}
