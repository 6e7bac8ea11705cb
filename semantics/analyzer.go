// Package semantics type-checks a merged program. Classes are flattened
// (every inherited member gets a concrete slot), inherited method bodies are
// re-checked against each inheriting class's layout, and everything the
// code generator needs — expression types, call targets, lambda signatures,
// isa results — is recorded in side tables keyed by (class, node).
package semantics

import (
	log "github.com/sirupsen/logrus"

	"github.com/northernsines/foobar/ast"
	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/resolver"
)

// IdentKind says what an identifier resolved to.
type IdentKind int

const (
	IdentLocal IdentKind = iota
	IdentParam
	IdentField
)

// IdentInfo is the resolution of one identifier occurrence.
type IdentInfo struct {
	Kind  IdentKind
	Field *FieldInfo // set for IdentField
}

// MemberKind says what a member access resolved to.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberEnumValue
	MemberLength
	MemberConst
)

// MemberInfo is the resolution of one member access.
type MemberInfo struct {
	Kind  MemberKind
	Field *FieldInfo
	Enum  *EnumSymbol
	Index int
	Const *BuiltinConst
}

// CallKind says what a call resolved to.
type CallKind int

const (
	CallFree   CallKind = iota // free function
	CallMethod                 // method on a class instance
	CallParent                 // parent.M()
	CallStatic                 // built-in static class method
	CallValue                  // built-in method on a primitive or enum value
	CallArray                  // array method (map, filter, sort, ...)
	CallLength                 // length() in call form
)

// CallInfo is the resolution of one call expression.
type CallInfo struct {
	Kind     CallKind
	Method   *MethodInfo    // CallFree, CallMethod, CallParent
	Class    string         // receiver's static class (CallMethod, CallParent)
	Builtin  *BuiltinMethod // CallStatic, CallValue
	RecvType *Type          // CallArray, CallValue, CallLength
}

// LambdaInfo is the inferred signature of a lambda argument.
type LambdaInfo struct {
	Params []*ParamInfo
	Return *Type
}

type nodeKey struct {
	class string
	node  ast.Node
}

// Program is the analyzed program handed to the code generator.
type Program struct {
	Classes    map[string]*FlattenedClass
	ClassOrder []string
	Enums      map[string]*EnumSymbol
	EnumOrder  []string
	Funcs      map[string]*MethodInfo
	FuncOrder  []string
	AST        *ast.Program

	types   map[nodeKey]*Type
	idents  map[nodeKey]*IdentInfo
	members map[nodeKey]*MemberInfo
	calls   map[nodeKey]*CallInfo
	lambdas map[nodeKey]*LambdaInfo
	isas    map[nodeKey]bool
}

// TypeOf returns the type an expression resolved to when checked against
// class (the empty string for free-function bodies).
func (p *Program) TypeOf(class string, n ast.Node) *Type {
	if t, ok := p.types[nodeKey{class, n}]; ok {
		return t
	}
	return Invalid
}

// IdentOf returns what an identifier resolved to in class context.
func (p *Program) IdentOf(class string, n *ast.Identifier) *IdentInfo {
	return p.idents[nodeKey{class, n}]
}

// MemberOf returns what a member access resolved to in class context.
func (p *Program) MemberOf(class string, n *ast.MemberExpr) *MemberInfo {
	return p.members[nodeKey{class, n}]
}

// CallOf returns what a call resolved to in class context.
func (p *Program) CallOf(class string, n *ast.CallExpr) *CallInfo {
	return p.calls[nodeKey{class, n}]
}

// LambdaOf returns the inferred signature of a lambda in class context.
func (p *Program) LambdaOf(class string, n *ast.LambdaExpr) *LambdaInfo {
	return p.lambdas[nodeKey{class, n}]
}

// IsaOf returns the constant an isa expression folded to in class context.
func (p *Program) IsaOf(class string, n *ast.IsaExpr) bool {
	return p.isas[nodeKey{class, n}]
}

// ---------------------------------------------------------------------------

// isStorage reports whether an expression names a place a value lives in,
// as opposed to a temporary.
func isStorage(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.MemberExpr:
		return true
	}
	return false
}

type varEntry struct {
	typ   *Type
	param bool
}

type scope struct {
	parent *scope
	vars   map[string]*varEntry
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, vars: make(map[string]*varEntry)}
}

func (s *scope) lookup(name string) *varEntry {
	for sc := s; sc != nil; sc = sc.parent {
		if e, ok := sc.vars[name]; ok {
			return e
		}
	}
	return nil
}

type analyzer struct {
	prog       *Program
	errs       ErrorList
	classDecls map[string]*ast.ClassDecl
	classOrder []string
	funcDecls  []*ast.MethodDecl
	inFlatten  map[string]bool
	flatChain  []string

	// current body context
	class    *FlattenedClass // nil in free functions and lambda bodies
	owner    string          // declaring class of the current body
	ret      *Type
	scopes   *scope
	inLambda bool
}

// Analyze type-checks the resolved unit and returns the analyzed program.
// Diagnostics accumulate: the returned error is the full list, not the
// first failure. Inheritance cycles abort before body checks since no
// layout exists to check against.
func Analyze(unit *resolver.Unit) (*Program, error) {
	a := &analyzer{
		prog: &Program{
			Classes: make(map[string]*FlattenedClass),
			Enums:   make(map[string]*EnumSymbol),
			Funcs:   make(map[string]*MethodInfo),
			AST:     unit.Program,
			types:   make(map[nodeKey]*Type),
			idents:  make(map[nodeKey]*IdentInfo),
			members: make(map[nodeKey]*MemberInfo),
			calls:   make(map[nodeKey]*CallInfo),
			lambdas: make(map[nodeKey]*LambdaInfo),
			isas:    make(map[nodeKey]bool),
		},
		classDecls: make(map[string]*ast.ClassDecl),
		inFlatten:  make(map[string]bool),
	}

	a.collectSymbols(unit.Program)
	a.resolveFunctions()
	a.flattenAll()

	for _, err := range a.errs {
		if _, cyclic := err.(*CircularInheritanceError); cyclic {
			return nil, a.errs.err()
		}
	}

	a.checkClasses()
	a.checkFreeFunctions()

	if err := a.errs.err(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"classes":   len(a.prog.ClassOrder),
		"enums":     len(a.prog.EnumOrder),
		"functions": len(a.prog.FuncOrder),
	}).Debug("Semantic analysis complete")

	return a.prog, nil
}

func (a *analyzer) className() string {
	if a.class != nil {
		return a.class.Name
	}
	return ""
}

func (a *analyzer) setType(n ast.Node, t *Type) {
	a.prog.types[nodeKey{a.className(), n}] = t
}

func (a *analyzer) typeOfNode(n ast.Node) *Type {
	return a.prog.TypeOf(a.className(), n)
}

// checkClasses validates field initializers and method bodies once per
// concrete class, so inherited bodies are checked against the layout they
// actually run with. Every ancestor's declared methods are covered, not
// just the flattened winners: an overridden parent method is still
// reachable through the parent keyword.
func (a *analyzer) checkClasses() {
	for _, name := range a.prog.ClassOrder {
		fc := a.prog.Classes[name]

		for _, f := range fc.Fields {
			if f.Init == nil {
				continue
			}
			a.class, a.owner, a.ret = fc, f.Owner, nil
			a.scopes = newScope(nil)
			t := a.checkExpr(f.Init)
			if !a.assignable(f.Type, t, f.Init) {
				a.errorf(TypeMismatch, f.Init.Pos(),
					"cannot initialize field %s (%s) with %s", f.Name, f.Type, t)
			}
		}

		for _, anc := range fc.Ancestors {
			for _, m := range a.prog.Classes[anc].Declared {
				a.checkBody(fc, m)
			}
		}
	}
	a.class = nil
}

func (a *analyzer) checkFreeFunctions() {
	for _, name := range a.prog.FuncOrder {
		a.checkBody(nil, a.prog.Funcs[name])
	}
}

func (a *analyzer) checkBody(fc *FlattenedClass, m *MethodInfo) {
	a.class = fc
	a.owner = m.Owner
	a.ret = m.Return
	a.scopes = newScope(nil)
	for _, p := range m.Params {
		a.scopes.vars[p.Name] = &varEntry{typ: p.Type, param: true}
	}
	// The body's statements share the parameter scope; nested blocks get
	// their own.
	for _, s := range m.Decl.Body.Stmts {
		a.checkStmt(s)
	}
}

// ---------------------------------------------------------------------------
// Statements

func (a *analyzer) checkBlock(b *ast.Block) {
	a.scopes = newScope(a.scopes)
	for _, s := range b.Stmts {
		a.checkStmt(s)
	}
	a.scopes = a.scopes.parent
}

func (a *analyzer) checkStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VarDecl:
		t := a.resolveType(st.Type)
		if st.Init != nil {
			it := a.checkExpr(st.Init)
			if !a.assignable(t, it, st.Init) {
				a.errorf(TypeMismatch, st.Pos(),
					"cannot assign %s to %s %s", it, t, st.Name)
			}
		}
		a.declare(st.Name, t, st.Pos())

	case *ast.ExprStmt:
		a.checkExpr(st.X)

	case *ast.ReturnStmt:
		a.checkReturn(st)

	case *ast.IfStmt:
		a.requireBoolean(st.Cond, "if condition")
		a.checkBlock(st.Then)
		for _, e := range st.Elseifs {
			a.requireBoolean(e.Cond, "elseif condition")
			a.checkBlock(e.Body)
		}
		if st.Else != nil {
			a.checkBlock(st.Else)
		}

	case *ast.LoopStmt:
		if st.Until {
			a.requireBoolean(st.Cond, "loop until condition")
		} else {
			t := a.checkExpr(st.Cond)
			if !t.IsInvalid() && t.Kind != KindInteger {
				a.errorf(TypeMismatch, st.Cond.Pos(),
					"loop for count must be integer, got %s", t)
			}
		}
		a.checkBlock(st.Body)
	}
}

func (a *analyzer) checkReturn(st *ast.ReturnStmt) {
	if a.ret == nil || a.ret.Kind == KindVoid {
		if st.Result != nil {
			t := a.checkExpr(st.Result)
			if !t.IsInvalid() {
				a.errorf(TypeMismatch, st.Pos(), "cannot return a value here")
			}
		}
		return
	}
	if st.Result == nil {
		a.errorf(TypeMismatch, st.Pos(), "return needs a %s value", a.ret)
		return
	}
	t := a.checkExpr(st.Result)
	if !a.assignable(a.ret, t, st.Result) {
		a.errorf(TypeMismatch, st.Pos(), "cannot return %s, want %s", t, a.ret)
	}
}

func (a *analyzer) requireBoolean(e ast.Expr, what string) {
	t := a.checkExpr(e)
	if !t.IsInvalid() && t.Kind != KindBoolean {
		a.errorf(TypeMismatch, e.Pos(), "%s must be boolean, got %s", what, t)
	}
}

func (a *analyzer) declare(name string, t *Type, pos ast.Pos) {
	if IsBuiltinClass(name) {
		a.errorf(DuplicateVariable, pos, "%s is a reserved built-in name", name)
		return
	}
	if _, dup := a.scopes.vars[name]; dup {
		a.errorf(DuplicateVariable, pos, "variable %s already declared in this scope", name)
		return
	}
	a.scopes.vars[name] = &varEntry{typ: t}
}

// ---------------------------------------------------------------------------
// Expressions

func (a *analyzer) checkExpr(e ast.Expr) *Type {
	t := a.exprType(e)
	a.setType(e, t)
	return t
}

func (a *analyzer) exprType(e ast.Expr) *Type {
	switch x := e.(type) {
	case *ast.Literal:
		switch x.Kind {
		case ast.IntLit:
			return Integer
		case ast.FloatLit:
			return Float
		case ast.StringLit:
			return String
		case ast.CharLit:
			return Character
		case ast.BoolLit:
			return Boolean
		}

	case *ast.Identifier:
		return a.checkIdentifier(x)

	case *ast.NegateExpr:
		t := a.checkExpr(x.X)
		if t.IsInvalid() {
			return Invalid
		}
		if !t.IsNumeric() {
			a.errorf(TypeMismatch, x.Pos(), "operator - needs a numeric operand, got %s", t)
			return Invalid
		}
		return t

	case *ast.NotExpr:
		t := a.checkExpr(x.X)
		if !t.IsInvalid() && t.Kind != KindBoolean {
			a.errorf(TypeMismatch, x.Pos(), "not(...) needs a boolean operand, got %s", t)
		}
		return Boolean

	case *ast.IncDecExpr:
		return a.checkIncDec(x)

	case *ast.BinaryExpr:
		return a.checkBinary(x)

	case *ast.AssignExpr:
		return a.checkAssign(x)

	case *ast.MemberExpr:
		return a.checkMember(x)

	case *ast.CallExpr:
		return a.checkCall(x)

	case *ast.IndexExpr:
		return a.checkIndex(x)

	case *ast.SliceExpr:
		return a.checkSlice(x)

	case *ast.NewExpr:
		return a.checkNew(x)

	case *ast.ArrayLit:
		return a.checkArrayLit(x)

	case *ast.IsaExpr:
		return a.checkIsa(x)

	case *ast.ThisClassRef:
		if a.class == nil {
			a.errorf(InvalidOperation, x.Pos(), "thisclass is only valid inside a class")
			return Invalid
		}
		return ClassOf(a.class.Name)

	case *ast.ParentRef:
		return a.parentType(x.Pos())

	case *ast.LambdaExpr:
		a.errorf(InvalidOperation, x.Pos(),
			"a lambda is only valid as an argument to map, filter or reduce")
		return Invalid
	}
	return Invalid
}

func (a *analyzer) checkIdentifier(x *ast.Identifier) *Type {
	if entry := a.scopes.lookup(x.Name); entry != nil {
		kind := IdentLocal
		if entry.param {
			kind = IdentParam
		}
		a.prog.idents[nodeKey{a.className(), x}] = &IdentInfo{Kind: kind}
		return entry.typ
	}

	if a.class != nil {
		if f := a.class.Field(x.Name); f != nil {
			a.checkFieldAccess(f, x.Pos())
			a.prog.idents[nodeKey{a.className(), x}] = &IdentInfo{Kind: IdentField, Field: f}
			return f.Type
		}
	}

	switch {
	case a.prog.Enums[x.Name] != nil:
		a.errorf(InvalidOperation, x.Pos(), "%s is an enumeration, not a value", x.Name)
	case a.classDecls[x.Name] != nil:
		a.errorf(InvalidOperation, x.Pos(), "%s is a class name, not a value", x.Name)
	case IsBuiltinClass(x.Name):
		a.errorf(InvalidOperation, x.Pos(), "%s is a built-in class, not a value", x.Name)
	case a.inLambda:
		a.errorf(UndefinedVariable, x.Pos(),
			"undefined variable %s: a lambda body sees only its own parameters", x.Name)
	default:
		a.errorf(UndefinedVariable, x.Pos(), "undefined variable %s", x.Name)
	}
	return Invalid
}

// checkFieldAccess enforces visibility: a private member is accessible only
// from bodies declared in the same class, subclasses included out.
func (a *analyzer) checkFieldAccess(f *FieldInfo, pos ast.Pos) {
	if f.Public || f.Owner == a.owner {
		return
	}
	a.errorf(PrivateAccessViolation, pos,
		"field %s of class %s is private", f.Name, f.Owner)
}

func (a *analyzer) checkMethodAccess(m *MethodInfo, pos ast.Pos) {
	if m.Public || m.Owner == a.owner {
		return
	}
	a.errorf(PrivateAccessViolation, pos,
		"method %s of class %s is private", m.Name, m.Owner)
}

func (a *analyzer) checkIncDec(x *ast.IncDecExpr) *Type {
	op := "++"
	if x.Op == lexer.DECREMENT {
		op = "--"
	}
	switch x.X.(type) {
	case *ast.Identifier, *ast.MemberExpr:
	default:
		a.errorf(InvalidOperation, x.Pos(), "%s needs an integer variable or field", op)
		return Invalid
	}
	t := a.checkExpr(x.X)
	if t.IsInvalid() {
		return Invalid
	}
	if !t.IsIntegral() {
		a.errorf(TypeMismatch, x.Pos(), "%s needs an integer operand, got %s", op, t)
		return Invalid
	}
	return t
}

func (a *analyzer) checkBinary(x *ast.BinaryExpr) *Type {
	lt := a.checkExpr(x.X)
	rt := a.checkExpr(x.Y)
	if lt.IsInvalid() || rt.IsInvalid() {
		return Invalid
	}

	mismatch := func(op string, allowed string) *Type {
		a.errorf(TypeMismatch, x.Pos(),
			"operator %s needs %s, got %s and %s", op, allowed, lt, rt)
		return Invalid
	}

	switch x.Op {
	case lexer.PLUS:
		switch {
		case lt.Kind == KindString && rt.Kind == KindString:
			return String
		case lt.Kind == KindArray && lt.Equals(rt):
			return lt
		case lt.IsNumeric() && lt.Equals(rt):
			return lt
		}
		return mismatch("+", "matching numeric, string or array operands")

	case lexer.MINUS, lexer.STAR, lexer.SLASH:
		if lt.IsNumeric() && lt.Equals(rt) {
			return lt
		}
		return mismatch(opLexeme(x.Op), "matching numeric operands")

	case lexer.PERCENT:
		if lt.IsIntegral() && lt.Equals(rt) {
			return lt
		}
		return mismatch("%", "matching integer operands")

	case lexer.CARET:
		if lt.IsNumeric() && lt.Equals(rt) {
			return lt
		}
		return mismatch("^", "matching numeric operands")

	case lexer.EQUALS:
		if lt.Equals(rt) && lt.IsEquatable() {
			return Boolean
		}
		return mismatch("==", "matching comparable operands")

	case lexer.LESS, lexer.GREATER, lexer.LESS_EQ, lexer.GREATER_EQ:
		if lt.Equals(rt) && lt.IsOrdered() {
			return Boolean
		}
		return mismatch(opLexeme(x.Op), "matching ordered operands")

	case lexer.AND, lexer.OR, lexer.XOR:
		if lt.Kind == KindBoolean && rt.Kind == KindBoolean {
			return Boolean
		}
		return mismatch(opLexeme(x.Op), "boolean operands")
	}
	return Invalid
}

func opLexeme(tt lexer.TokenType) string {
	return tt.String()
}

func (a *analyzer) checkAssign(x *ast.AssignExpr) *Type {
	tt := a.checkExpr(x.Target)

	// Reject targets that name something read-only.
	if m, ok := x.Target.(*ast.MemberExpr); ok {
		if info := a.prog.MemberOf(a.className(), m); info != nil && info.Kind != MemberField {
			a.errorf(InvalidOperation, x.Pos(), "cannot assign to %s", m.Member)
			return Invalid
		}
	}
	// Element writes go through the owning variable or field; there is no
	// storing into an array temporary.
	if idx, ok := x.Target.(*ast.IndexExpr); ok && !isStorage(idx.X) {
		a.errorf(InvalidOperation, x.Pos(),
			"cannot assign into a temporary array; store it in a variable first")
		return Invalid
	}

	vt := a.checkExpr(x.Value)
	if !a.assignable(tt, vt, x.Value) {
		a.errorf(TypeMismatch, x.Pos(), "cannot assign %s to %s", vt, tt)
	}
	return tt
}

func (a *analyzer) checkMember(x *ast.MemberExpr) *Type {
	key := nodeKey{a.className(), x}

	if id, ok := x.X.(*ast.Identifier); ok {
		if sym := a.prog.Enums[id.Name]; sym != nil {
			idx, ok := sym.Index[x.Member]
			if !ok {
				a.errorf(UndefinedVariable, x.Pos(),
					"enumeration %s has no value %s", sym.Name, x.Member)
				return Invalid
			}
			a.prog.members[key] = &MemberInfo{Kind: MemberEnumValue, Enum: sym, Index: idx}
			return EnumOf(sym.Name)
		}
		if bc := LookupBuiltinClass(id.Name); bc != nil {
			c, ok := bc.Consts[x.Member]
			if !ok {
				a.errorf(UndefinedVariable, x.Pos(),
					"%s has no member %s", bc.Name, x.Member)
				return Invalid
			}
			a.prog.members[key] = &MemberInfo{Kind: MemberConst, Const: c}
			return c.Type
		}
	}

	xt := a.checkExpr(x.X)
	if xt.IsInvalid() {
		return Invalid
	}

	if x.Member == "length" && (xt.Kind == KindArray || xt.Kind == KindString) {
		a.prog.members[key] = &MemberInfo{Kind: MemberLength}
		return Integer
	}

	if xt.Kind == KindClass {
		fc := a.prog.Classes[xt.Name]
		f := fc.Field(x.Member)
		if f == nil {
			if fc.Method(x.Member) != nil {
				a.errorf(UndefinedVariable, x.Pos(),
					"%s is a method of class %s; call it with ()", x.Member, xt.Name)
			} else {
				a.errorf(UndefinedVariable, x.Pos(),
					"class %s has no field %s", xt.Name, x.Member)
			}
			return Invalid
		}
		a.checkFieldAccess(f, x.Pos())
		a.prog.members[key] = &MemberInfo{Kind: MemberField, Field: f}
		return f.Type
	}

	a.errorf(TypeMismatch, x.Pos(), "type %s has no member %s", xt, x.Member)
	return Invalid
}

func (a *analyzer) checkIndex(x *ast.IndexExpr) *Type {
	xt := a.checkExpr(x.X)
	it := a.checkExpr(x.Index)
	if !it.IsInvalid() && it.Kind != KindInteger {
		a.errorf(TypeMismatch, x.Index.Pos(), "array index must be integer, got %s", it)
	}
	if xt.IsInvalid() {
		return Invalid
	}
	if xt.Kind != KindArray {
		a.errorf(TypeMismatch, x.Pos(), "only arrays can be indexed, got %s", xt)
		return Invalid
	}
	return xt.Elem
}

func (a *analyzer) checkSlice(x *ast.SliceExpr) *Type {
	xt := a.checkExpr(x.X)
	for _, bound := range []ast.Expr{x.Low, x.High} {
		if bound == nil {
			continue
		}
		bt := a.checkExpr(bound)
		if !bt.IsInvalid() && bt.Kind != KindInteger {
			a.errorf(TypeMismatch, bound.Pos(), "slice bound must be integer, got %s", bt)
		}
	}
	if xt.IsInvalid() {
		return Invalid
	}
	if xt.Kind != KindArray {
		a.errorf(TypeMismatch, x.Pos(), "only arrays can be sliced, got %s", xt)
		return Invalid
	}
	return xt
}

func (a *analyzer) checkNew(x *ast.NewExpr) *Type {
	fc := a.prog.Classes[x.Class]
	if fc == nil {
		switch {
		case IsBuiltinClass(x.Class):
			a.errorf(InvalidOperation, x.Pos(), "cannot instantiate built-in class %s", x.Class)
		case a.prog.Enums[x.Class] != nil:
			a.errorf(InvalidOperation, x.Pos(), "cannot instantiate enumeration %s", x.Class)
		default:
			a.errorf(UndefinedVariable, x.Pos(), "unknown class %s", x.Class)
		}
		return Invalid
	}

	ctor := fc.Constructor()
	if ctor == nil {
		if len(x.Args) != 0 {
			a.errorf(TypeMismatch, x.Pos(),
				"class %s declares no Initialize: new %s takes no arguments", x.Class, x.Class)
		}
		// Arguments would go unchecked otherwise.
		for _, arg := range x.Args {
			a.checkExpr(arg)
		}
		return ClassOf(x.Class)
	}

	a.checkArgs(ctor.Params, x.Args, "new "+x.Class, x.Pos())
	return ClassOf(x.Class)
}

func (a *analyzer) checkArrayLit(x *ast.ArrayLit) *Type {
	if len(x.Elems) == 0 {
		// Adopted from context by assignable; standalone it has no type.
		return ArrayOf(Invalid)
	}
	t0 := a.checkExpr(x.Elems[0])
	if t0.IsInvalid() {
		for _, el := range x.Elems[1:] {
			a.checkExpr(el)
		}
		return Invalid
	}
	for _, el := range x.Elems[1:] {
		et := a.checkExpr(el)
		if !a.assignable(t0, et, el) {
			a.errorf(TypeMismatch, el.Pos(),
				"array literal mixes %s and %s elements", t0, et)
		}
	}
	return ArrayOf(t0)
}

func (a *analyzer) checkIsa(x *ast.IsaExpr) *Type {
	xt := a.checkExpr(x.X)
	if xt.IsInvalid() {
		return Invalid
	}
	if xt.Kind != KindClass {
		a.errorf(TypeMismatch, x.Pos(), "isa needs a class instance, got %s", xt)
		return Invalid
	}
	if _, ok := a.classDecls[x.Class]; !ok {
		a.errorf(UndefinedVariable, x.Pos(), "unknown class %s", x.Class)
		return Invalid
	}
	// isa is decided by the static class: fold it now.
	result := a.prog.Classes[xt.Name].HasAncestor(x.Class)
	a.prog.isas[nodeKey{a.className(), x}] = result
	return Boolean
}

func (a *analyzer) parentType(pos ast.Pos) *Type {
	if a.owner == "" {
		a.errorf(InvalidOperation, pos, "parent is only valid inside a class")
		return Invalid
	}
	oc := a.prog.Classes[a.owner]
	if oc == nil || len(oc.Parents) == 0 {
		a.errorf(InvalidOperation, pos, "class %s has no parent", a.owner)
		return Invalid
	}
	p := oc.Parents[0]
	if a.prog.Classes[p] == nil {
		return Invalid
	}
	return ClassOf(p)
}

// ---------------------------------------------------------------------------
// Calls

func (a *analyzer) checkCall(x *ast.CallExpr) *Type {
	key := nodeKey{a.className(), x}

	if x.Recv == nil {
		f := a.prog.Funcs[x.Method]
		if f == nil {
			a.errorf(UndefinedMethod, x.Pos(), "undefined function %s", x.Method)
			for _, arg := range x.Args {
				a.checkExpr(arg)
			}
			return Invalid
		}
		a.checkArgs(f.Params, x.Args, x.Method, x.Pos())
		a.prog.calls[key] = &CallInfo{Kind: CallFree, Method: f}
		return f.Return
	}

	if id, ok := x.Recv.(*ast.Identifier); ok {
		if bc := LookupBuiltinClass(id.Name); bc != nil {
			return a.checkStaticCall(x, bc, key)
		}
		if a.prog.Enums[id.Name] != nil {
			a.errorf(InvalidOperation, x.Pos(), "enumeration %s has no methods", id.Name)
			return Invalid
		}
	}

	if _, ok := x.Recv.(*ast.ParentRef); ok {
		return a.checkParentCall(x, key)
	}

	rt := a.checkExpr(x.Recv)
	if rt.IsInvalid() {
		return Invalid
	}

	switch rt.Kind {
	case KindClass:
		fc := a.prog.Classes[rt.Name]
		m := fc.Method(x.Method)
		if m == nil {
			a.errorf(UndefinedMethod, x.Pos(),
				"class %s has no method %s", rt.Name, x.Method)
			return Invalid
		}
		if m.Name == "Initialize" {
			a.errorf(InvalidOperation, x.Pos(),
				"Initialize is only called through new %s(...)", rt.Name)
			return Invalid
		}
		a.checkMethodAccess(m, x.Pos())
		a.checkArgs(m.Params, x.Args, rt.Name+"."+x.Method, x.Pos())
		a.prog.calls[key] = &CallInfo{Kind: CallMethod, Method: m, Class: rt.Name}
		return m.Return

	case KindArray:
		return a.checkArrayMethod(x, rt, key)

	default:
		bm := lookupValueMethod(rt, x.Method)
		if bm == nil {
			a.errorf(UndefinedMethod, x.Pos(), "type %s has no method %s", rt, x.Method)
			return Invalid
		}
		if bm.Name == "length" && bm.Runtime == "" {
			if len(x.Args) != 0 {
				a.errorf(TypeMismatch, x.Pos(), "length takes no arguments")
			}
			a.prog.calls[key] = &CallInfo{Kind: CallLength, RecvType: rt}
			return Integer
		}
		a.checkBuiltinArgs(bm.Params, x.Args, x.Method, x.Pos())
		a.prog.calls[key] = &CallInfo{Kind: CallValue, Builtin: bm, RecvType: rt}
		return bm.Return
	}
}

func (a *analyzer) checkStaticCall(x *ast.CallExpr, bc *BuiltinClass, key nodeKey) *Type {
	m, ok := bc.Methods[x.Method]
	if !ok {
		a.errorf(UndefinedMethod, x.Pos(), "%s has no method %s", bc.Name, x.Method)
		return Invalid
	}

	if m.AnyArg {
		if len(x.Args) != 1 {
			a.errorf(TypeMismatch, x.Pos(),
				"%s.%s takes exactly one argument", bc.Name, m.Name)
			for _, arg := range x.Args {
				a.checkExpr(arg)
			}
			return m.Return
		}
		at := a.checkExpr(x.Args[0])
		if !at.IsInvalid() && !at.IsPrintable() {
			a.errorf(TypeMismatch, x.Args[0].Pos(),
				"%s.%s cannot print %s", bc.Name, m.Name, at)
		}
		a.prog.calls[key] = &CallInfo{Kind: CallStatic, Builtin: m, Class: bc.Name}
		return m.Return
	}

	a.checkBuiltinArgs(m.Params, x.Args, bc.Name+"."+m.Name, x.Pos())
	a.prog.calls[key] = &CallInfo{Kind: CallStatic, Builtin: m, Class: bc.Name}
	return m.Return
}

// checkParentCall resolves parent.M() against the first listed parent of
// the class the current body was declared in, not the concrete class.
func (a *analyzer) checkParentCall(x *ast.CallExpr, key nodeKey) *Type {
	pt := a.parentType(x.Pos())
	if pt.IsInvalid() {
		return Invalid
	}
	pfc := a.prog.Classes[pt.Name]
	m := pfc.Method(x.Method)
	if m == nil {
		a.errorf(UndefinedMethod, x.Pos(),
			"class %s has no method %s", pt.Name, x.Method)
		return Invalid
	}
	a.checkMethodAccess(m, x.Pos())
	a.checkArgs(m.Params, x.Args, "parent."+x.Method, x.Pos())
	a.prog.calls[key] = &CallInfo{Kind: CallParent, Method: m, Class: pt.Name}
	return m.Return
}

func (a *analyzer) checkArrayMethod(x *ast.CallExpr, at *Type, key nodeKey) *Type {
	elem := at.Elem
	info := &CallInfo{Kind: CallArray, RecvType: at}
	record := func(t *Type) *Type {
		a.prog.calls[key] = info
		return t
	}
	wantArgs := func(n int) bool {
		if len(x.Args) != n {
			a.errorf(TypeMismatch, x.Pos(),
				"%s takes %d argument(s), got %d", x.Method, n, len(x.Args))
			for _, arg := range x.Args {
				if _, lam := arg.(*ast.LambdaExpr); !lam {
					a.checkExpr(arg)
				}
			}
			return false
		}
		return true
	}

	switch x.Method {
	case "length":
		if !wantArgs(0) {
			return Integer
		}
		info.Kind = CallLength
		return record(Integer)

	case "map":
		if !wantArgs(1) {
			return at
		}
		a.checkLambdaArg(x.Args[0], []*Type{elem}, elem, "map")
		return record(at)

	case "filter":
		if !wantArgs(1) {
			return at
		}
		a.checkLambdaArg(x.Args[0], []*Type{elem}, Boolean, "filter")
		return record(at)

	case "reduce":
		if !wantArgs(2) {
			return Invalid
		}
		acc := a.checkExpr(x.Args[1])
		if acc.IsInvalid() {
			return Invalid
		}
		a.checkLambdaArg(x.Args[0], []*Type{acc, elem}, acc, "reduce")
		return record(acc)

	case "sort", "unique":
		if !wantArgs(0) {
			return at
		}
		if !elem.IsSortable() {
			a.errorf(InvalidOperation, x.Pos(),
				"%s is not available for %s arrays", x.Method, elem)
			return at
		}
		return record(at)

	case "find":
		if !wantArgs(1) {
			return Integer
		}
		ft := a.checkExpr(x.Args[0])
		if !a.assignable(elem, ft, x.Args[0]) {
			a.errorf(TypeMismatch, x.Args[0].Pos(),
				"find on %s needs a %s value, got %s", at, elem, ft)
		}
		return record(Integer)

	case "print":
		if !wantArgs(0) {
			return Void
		}
		if !elem.IsPrintable() {
			a.errorf(InvalidOperation, x.Pos(),
				"print is not available for %s arrays", elem)
		}
		return record(Void)

	case "append":
		if !wantArgs(1) {
			return Void
		}
		if !isStorage(x.Recv) {
			a.errorf(InvalidOperation, x.Pos(),
				"append needs an array variable or field, not a temporary")
		}
		vt := a.checkExpr(x.Args[0])
		if !a.assignable(elem, vt, x.Args[0]) {
			a.errorf(TypeMismatch, x.Args[0].Pos(),
				"append to %s needs a %s value, got %s", at, elem, vt)
		}
		return record(Void)
	}

	a.errorf(UndefinedMethod, x.Pos(), "arrays have no method %s", x.Method)
	return Invalid
}

// checkLambdaArg infers a lambda's parameter types from the receiving
// array: the one place the language infers anything. The body sees only the
// lambda's own parameters; enum values and free functions stay reachable,
// outer locals and fields do not.
func (a *analyzer) checkLambdaArg(arg ast.Expr, params []*Type, want *Type, what string) {
	lam, ok := arg.(*ast.LambdaExpr)
	if !ok {
		a.errorf(TypeMismatch, arg.Pos(), "%s needs a lambda argument", what)
		a.checkExpr(arg)
		return
	}
	if len(lam.Params) != len(params) {
		a.errorf(TypeMismatch, lam.Pos(),
			"%s lambda takes %d parameter(s), got %d", what, len(params), len(lam.Params))
		return
	}

	info := &LambdaInfo{Return: want}
	savedScopes, savedClass, savedOwner := a.scopes, a.class, a.owner
	savedLambda := a.inLambda
	a.scopes = newScope(nil)
	a.class, a.owner = nil, ""
	a.inLambda = true

	for i, name := range lam.Params {
		a.declare(name, params[i], lam.Pos())
		info.Params = append(info.Params, &ParamInfo{Name: name, Type: params[i]})
	}
	rt := a.checkExpr(lam.Body)

	a.scopes, a.class, a.owner = savedScopes, savedClass, savedOwner
	a.inLambda = savedLambda

	if !a.assignable(want, rt, lam.Body) {
		a.errorf(TypeMismatch, lam.Body.Pos(),
			"%s lambda must produce %s, got %s", what, want, rt)
	}
	// The key is the class whose body the lambda appears in.
	a.prog.lambdas[nodeKey{a.className(), lam}] = info
}

func (a *analyzer) checkArgs(params []*ParamInfo, args []ast.Expr, what string, pos ast.Pos) {
	if len(args) != len(params) {
		a.errorf(TypeMismatch, pos,
			"%s takes %d argument(s), got %d", what, len(params), len(args))
	}
	for i, arg := range args {
		at := a.checkExpr(arg)
		if i >= len(params) {
			continue
		}
		if !a.assignable(params[i].Type, at, arg) {
			a.errorf(TypeMismatch, arg.Pos(),
				"argument %d of %s: cannot use %s as %s", i+1, what, at, params[i].Type)
		}
	}
}

func (a *analyzer) checkBuiltinArgs(params []*Type, args []ast.Expr, what string, pos ast.Pos) {
	if len(args) != len(params) {
		a.errorf(TypeMismatch, pos,
			"%s takes %d argument(s), got %d", what, len(params), len(args))
	}
	for i, arg := range args {
		at := a.checkExpr(arg)
		if i >= len(params) {
			continue
		}
		if !a.assignable(params[i], at, arg) {
			a.errorf(TypeMismatch, arg.Pos(),
				"argument %d of %s: cannot use %s as %s", i+1, what, at, params[i])
		}
	}
}

// assignable implements the assignment rule: exact type equality plus
// three exceptions. Numeric literals adopt a wider target of the same
// literal form, array literals adopt element-wise, and class values
// widen to their ancestors. Adoption re-records the expression's type
// so code generation sees the adopted one.
func (a *analyzer) assignable(target, vt *Type, expr ast.Expr) bool {
	if target.IsInvalid() || vt.IsInvalid() {
		return true
	}
	if target.Equals(vt) {
		return true
	}

	switch lit := expr.(type) {
	case *ast.Literal:
		if lit.Kind == ast.IntLit && target.Kind == KindLongInteger {
			a.setType(expr, target)
			return true
		}
		if lit.Kind == ast.FloatLit && target.Kind == KindLongFloat {
			a.setType(expr, target)
			return true
		}

	case *ast.ArrayLit:
		if target.Kind != KindArray {
			break
		}
		if len(lit.Elems) == 0 {
			a.setType(expr, target)
			return true
		}
		for _, el := range lit.Elems {
			if !a.assignable(target.Elem, a.typeOfNode(el), el) {
				return false
			}
		}
		a.setType(expr, target)
		return true
	}

	if vt.Kind == KindClass && target.Kind == KindClass {
		return a.widens(vt.Name, target.Name)
	}
	return false
}

// widens reports whether a value of class from may be used where class to
// is expected. Only the first-parent chain qualifies: that is the chain
// whose flattened layout is a prefix of from's, so the value can be viewed
// as the ancestor without conversion. Other ancestors satisfy isa but not
// assignment.
func (a *analyzer) widens(from, to string) bool {
	for fc := a.prog.Classes[from]; fc != nil; {
		if fc.Name == to {
			return true
		}
		if len(fc.Parents) == 0 {
			return false
		}
		fc = a.prog.Classes[fc.Parents[0]]
	}
	return false
}
