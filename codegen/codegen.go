// Package codegen lowers an analyzed program to one C translation unit.
// Emission is deterministic: declarations are claimed and written in source
// order, derived runtime sections in sorted order, so the same program
// always produces the same bytes.
//
// Every class compiles to a flat struct holding its whole merged layout, and
// every flattened method is regenerated against the concrete class it lives
// in, so field offsets and parent dispatch are settled at compile time.
package codegen

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/northernsines/foobar/ast"
	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/semantics"
)

type classMethod struct {
	class  string
	method string
}

// specKey identifies one parent-call specialization: the body of
// owner.method regenerated against the concrete class's layout.
type specKey struct {
	class  string
	owner  string
	method string
}

type specJob struct {
	name   string
	class  string
	method *semantics.MethodInfo
}

type lambdaJob struct {
	name string
	lam  *ast.LambdaExpr
	info *semantics.LambdaInfo
}

// arrayInfo tracks one instantiated array runtime, keyed by element type.
type arrayInfo struct {
	name      string
	elem      *semantics.Type
	reduces   []reduceVar
	reduceIdx map[string]string
}

type generator struct {
	prog *semantics.Program
	top  *nameSet

	structName map[string]string
	ctorName   map[string]string
	methodName map[classMethod]string
	funcName   map[string]string
	fieldName  map[string]map[string]string
	enumName   map[string]string
	enumConst  map[string][]string
	enumNames  map[string]string
	enumToStr  map[string]string

	arrays       map[string]*arrayInfo
	usedBuiltins map[string]bool
	usedIntPow   bool
	usedLongPow  bool

	lambdaNames map[*ast.LambdaExpr]string
	lambdaQueue []*lambdaJob
	lambdaDefs  []string

	specNames map[specKey]string
	specQueue []*specJob
	specDefs  []string

	protos []string

	// state of the function being generated
	class     string
	fc        *semantics.FlattenedClass
	ret       *semantics.Type
	locals    *nameSet
	localName map[string]string
	loopN     int
}

// Generate lowers an analyzed program to C source.
func Generate(prog *semantics.Program) (string, error) {
	if prog == nil || prog.AST == nil {
		return "", fmt.Errorf("codegen: nothing to generate")
	}

	g := &generator{
		prog:         prog,
		top:          newNameSet(nil),
		structName:   make(map[string]string),
		ctorName:     make(map[string]string),
		methodName:   make(map[classMethod]string),
		funcName:     make(map[string]string),
		fieldName:    make(map[string]map[string]string),
		enumName:     make(map[string]string),
		enumConst:    make(map[string][]string),
		enumNames:    make(map[string]string),
		enumToStr:    make(map[string]string),
		arrays:       make(map[string]*arrayInfo),
		usedBuiltins: make(map[string]bool),
		lambdaNames:  make(map[*ast.LambdaExpr]string),
		specNames:    make(map[specKey]string),
	}
	g.claimTopLevel()

	var funcBodies []string
	for _, name := range prog.FuncOrder {
		m := prog.Funcs[name]
		funcBodies = append(funcBodies, g.functionDef(g.funcName[name], "", m, ""))
	}

	var classBodies []string
	for _, name := range prog.ClassOrder {
		fc := prog.Classes[name]
		classBodies = append(classBodies, g.ctorDef(fc))
		for _, m := range fc.Methods {
			classBodies = append(classBodies, g.methodDef(fc, m))
		}
	}

	g.drainQueues()

	src := g.assemble(funcBodies, classBodies)
	log.WithFields(log.Fields{
		"classes":   len(prog.ClassOrder),
		"functions": len(prog.FuncOrder),
		"enums":     len(prog.EnumOrder),
		"arrays":    len(g.arrays),
		"lambdas":   len(g.lambdaNames),
		"bytes":     len(src),
	}).Debug("generated C translation unit")
	return src, nil
}

// claimTopLevel hands out C names for every user declaration before any
// body is generated, walking the merged program in source order so renames
// never depend on what a body happens to use first.
func (g *generator) claimTopLevel() {
	for _, d := range g.prog.AST.Decls {
		switch d := d.(type) {
		case *ast.ClassDecl:
			fc := g.prog.Classes[d.Name]
			if fc == nil {
				continue
			}
			sn := g.top.claim(d.Name)
			g.structName[d.Name] = sn
			g.ctorName[d.Name] = g.top.claim(sn + "_new")
			for _, m := range fc.Methods {
				g.methodName[classMethod{d.Name, m.Name}] = g.top.claim(sn + "_" + m.Name)
			}
			fields := newNameSet(g.top)
			fm := make(map[string]string, len(fc.Fields))
			for _, f := range fc.Fields {
				fm[f.Name] = fields.claim(localBase(f.Name))
			}
			g.fieldName[d.Name] = fm

		case *ast.EnumDecl:
			es := g.prog.Enums[d.Name]
			if es == nil {
				continue
			}
			en := g.top.claim(d.Name)
			g.enumName[d.Name] = en
			consts := make([]string, len(es.Values))
			for i, v := range es.Values {
				consts[i] = g.top.claim(en + "_" + v)
			}
			g.enumConst[d.Name] = consts
			g.enumNames[d.Name] = g.top.claim(en + "_names")
			g.enumToStr[d.Name] = g.top.claim(en + "_to_string")

		case *ast.MethodDecl:
			if g.prog.Funcs[d.Name] == nil {
				continue
			}
			if d.Name == "Main" {
				g.funcName[d.Name] = g.top.claim("Main_internal")
			} else {
				g.funcName[d.Name] = g.top.claim(d.Name)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Types

func (g *generator) typeOf(e ast.Node) *semantics.Type {
	return g.prog.TypeOf(g.class, e)
}

func (g *generator) cType(t *semantics.Type) string {
	switch t.Kind {
	case semantics.KindVoid:
		return "void"
	case semantics.KindBoolean:
		return "bool"
	case semantics.KindCharacter:
		return "char"
	case semantics.KindInteger:
		return "int"
	case semantics.KindLongInteger:
		return "long long"
	case semantics.KindFloat:
		return "float"
	case semantics.KindLongFloat:
		return "double"
	case semantics.KindString:
		return "String"
	case semantics.KindEnum:
		return g.enumName[t.Name]
	case semantics.KindClass:
		return g.structName[t.Name] + "*"
	case semantics.KindArray:
		return g.arrayFor(t.Elem).name
	}
	return "int"
}

// typeKey names a type for mangling array runtimes. Class and enum keys use
// the claimed C name, which is already unique.
func (g *generator) typeKey(t *semantics.Type) string {
	switch t.Kind {
	case semantics.KindBoolean:
		return "boolean"
	case semantics.KindCharacter:
		return "character"
	case semantics.KindInteger:
		return "integer"
	case semantics.KindLongInteger:
		return "longinteger"
	case semantics.KindFloat:
		return "float"
	case semantics.KindLongFloat:
		return "longfloat"
	case semantics.KindString:
		return "string"
	case semantics.KindEnum:
		return g.enumName[t.Name]
	case semantics.KindClass:
		return g.structName[t.Name]
	case semantics.KindArray:
		return g.arrayFor(t.Elem).name
	}
	return "invalid"
}

func (g *generator) arrayFor(elem *semantics.Type) *arrayInfo {
	key := g.typeKey(elem)
	if info, ok := g.arrays[key]; ok {
		return info
	}
	info := &arrayInfo{
		name:      g.top.claim("Array_" + key),
		elem:      elem,
		reduceIdx: make(map[string]string),
	}
	g.arrays[key] = info
	return info
}

func (g *generator) reduceFn(elem, acc *semantics.Type) string {
	info := g.arrayFor(elem)
	ak := g.typeKey(acc)
	if fn, ok := info.reduceIdx[ak]; ok {
		return fn
	}
	fn := g.top.claim(info.name + "_reduce_" + ak)
	info.reduceIdx[ak] = fn
	info.reduces = append(info.reduces, reduceVar{fn: fn, ctype: g.cType(acc)})
	return fn
}

func (g *generator) zeroValue(t *semantics.Type) string {
	switch t.Kind {
	case semantics.KindBoolean:
		return "false"
	case semantics.KindCharacter:
		return `'\0'`
	case semantics.KindInteger:
		return "0"
	case semantics.KindLongInteger:
		return "0LL"
	case semantics.KindFloat:
		return "0.0f"
	case semantics.KindLongFloat:
		return "0.0"
	case semantics.KindString:
		return `String_new("", 0)`
	case semantics.KindEnum:
		if consts := g.enumConst[t.Name]; len(consts) > 0 {
			return consts[0]
		}
		return "0"
	case semantics.KindClass:
		return "NULL"
	case semantics.KindArray:
		return g.arrayFor(t.Elem).name + "_make(0)"
	}
	return "0"
}

func (g *generator) typeFromRef(ref *ast.TypeRef) *semantics.Type {
	var base *semantics.Type
	switch ref.Name {
	case "void":
		base = semantics.Void
	case "boolean":
		base = semantics.Boolean
	case "character":
		base = semantics.Character
	case "integer":
		base = semantics.Integer
	case "longinteger":
		base = semantics.LongInteger
	case "float":
		base = semantics.Float
	case "longfloat":
		base = semantics.LongFloat
	case "string":
		base = semantics.String
	default:
		if _, ok := g.prog.Classes[ref.Name]; ok {
			base = semantics.ClassOf(ref.Name)
		} else if _, ok := g.prog.Enums[ref.Name]; ok {
			base = semantics.EnumOf(ref.Name)
		} else {
			base = semantics.Invalid
		}
	}
	if ref.Array {
		return semantics.ArrayOf(base)
	}
	return base
}

// ---------------------------------------------------------------------------
// Functions

func (g *generator) enterFunction(class string) {
	g.class = class
	g.fc = g.prog.Classes[class]
	g.locals = newNameSet(g.top)
	g.localName = make(map[string]string)
	g.loopN = 0
}

func paramList(ps []string) string {
	if len(ps) == 0 {
		return "void"
	}
	return strings.Join(ps, ", ")
}

func (g *generator) functionDef(cname, recvStruct string, m *semantics.MethodInfo, class string) string {
	g.enterFunction(class)
	g.ret = m.Return

	params := make([]string, 0, len(m.Params)+1)
	if recvStruct != "" {
		params = append(params, recvStruct+"* self")
	}
	for _, p := range m.Params {
		cn := g.locals.claim(localBase(p.Name))
		g.localName[p.Name] = cn
		params = append(params, g.cType(p.Type)+" "+cn)
	}
	sig := fmt.Sprintf("%s %s(%s)", g.cType(m.Return), cname, paramList(params))
	g.protos = append(g.protos, sig+";")

	var b strings.Builder
	b.WriteString(sig + " {\n")
	g.block(&b, m.Decl.Body, "\t")
	b.WriteString("}\n")
	return b.String()
}

func (g *generator) methodDef(fc *semantics.FlattenedClass, m *semantics.MethodInfo) string {
	return g.functionDef(g.methodName[classMethod{fc.Name, m.Name}], g.structName[fc.Name], m, fc.Name)
}

// ctorDef emits Class_new: allocate, zero every slot, run field
// initializers in layout order, then hand off to Initialize if the class
// has one (its own or inherited).
func (g *generator) ctorDef(fc *semantics.FlattenedClass) string {
	g.enterFunction(fc.Name)
	g.ret = semantics.ClassOf(fc.Name)
	sn := g.structName[fc.Name]
	ctor := fc.Constructor()

	var params []string
	if ctor != nil {
		for _, p := range ctor.Params {
			cn := g.locals.claim(localBase(p.Name))
			g.localName[p.Name] = cn
			params = append(params, g.cType(p.Type)+" "+cn)
		}
	}
	sig := fmt.Sprintf("%s* %s(%s)", sn, g.ctorName[fc.Name], paramList(params))
	g.protos = append(g.protos, sig+";")

	var b strings.Builder
	b.WriteString(sig + " {\n")
	fmt.Fprintf(&b, "\t%s* self = malloc(sizeof(%s));\n", sn, sn)
	fm := g.fieldName[fc.Name]
	for _, f := range fc.Fields {
		fmt.Fprintf(&b, "\tself->%s = %s;\n", fm[f.Name], g.zeroValue(f.Type))
	}
	for _, f := range fc.Fields {
		if f.Init != nil {
			fmt.Fprintf(&b, "\tself->%s = %s;\n", fm[f.Name], g.val(f.Type, f.Init))
		}
	}
	if ctor != nil {
		fwd := make([]string, 0, len(ctor.Params)+1)
		fwd = append(fwd, "self")
		for _, p := range ctor.Params {
			fwd = append(fwd, g.localName[p.Name])
		}
		fmt.Fprintf(&b, "\t%s(%s);\n", g.methodName[classMethod{fc.Name, "Initialize"}], strings.Join(fwd, ", "))
	}
	b.WriteString("\treturn self;\n}\n")
	return b.String()
}

func (g *generator) lambdaDef(job *lambdaJob) string {
	g.enterFunction("")
	g.ret = semantics.Void

	var params []string
	if job.info != nil {
		g.ret = job.info.Return
		for _, p := range job.info.Params {
			cn := g.locals.claim(localBase(p.Name))
			g.localName[p.Name] = cn
			params = append(params, g.cType(p.Type)+" "+cn)
		}
	}
	sig := fmt.Sprintf("static %s %s(%s)", g.cType(g.ret), job.name, paramList(params))
	g.protos = append(g.protos, sig+";")

	var b strings.Builder
	b.WriteString(sig + " {\n")
	fmt.Fprintf(&b, "\treturn %s;\n", g.val(g.ret, job.lam.Body))
	b.WriteString("}\n")
	return b.String()
}

func (g *generator) drainQueues() {
	for len(g.specQueue) > 0 || len(g.lambdaQueue) > 0 {
		if len(g.specQueue) > 0 {
			job := g.specQueue[0]
			g.specQueue = g.specQueue[1:]
			g.specDefs = append(g.specDefs,
				g.functionDef(job.name, g.structName[job.class], job.method, job.class))
			continue
		}
		job := g.lambdaQueue[0]
		g.lambdaQueue = g.lambdaQueue[1:]
		g.lambdaDefs = append(g.lambdaDefs, g.lambdaDef(job))
	}
}

// ---------------------------------------------------------------------------
// Statements

func (g *generator) block(b *strings.Builder, blk *ast.Block, ind string) {
	saved := maps.Clone(g.localName)
	for _, s := range blk.Stmts {
		g.stmt(b, s, ind)
	}
	g.localName = saved
}

func (g *generator) stmt(b *strings.Builder, s ast.Stmt, ind string) {
	switch s := s.(type) {
	case *ast.VarDecl:
		t := g.typeFromRef(s.Type)
		cn := g.locals.claim(localBase(s.Name))
		g.localName[s.Name] = cn
		init := g.zeroValue(t)
		if s.Init != nil {
			init = g.val(t, s.Init)
		}
		fmt.Fprintf(b, "%s%s %s = %s;\n", ind, g.cType(t), cn, init)

	case *ast.ExprStmt:
		switch x := s.X.(type) {
		case *ast.AssignExpr:
			fmt.Fprintf(b, "%s%s;\n", ind, g.assign(x))
		case *ast.IncDecExpr:
			fmt.Fprintf(b, "%s%s;\n", ind, g.incDec(x))
		default:
			fmt.Fprintf(b, "%s%s;\n", ind, g.expr(s.X))
		}

	case *ast.ReturnStmt:
		if s.Result == nil {
			fmt.Fprintf(b, "%sreturn;\n", ind)
		} else {
			fmt.Fprintf(b, "%sreturn %s;\n", ind, g.val(g.ret, s.Result))
		}

	case *ast.IfStmt:
		fmt.Fprintf(b, "%sif (%s) {\n", ind, g.cond(s.Cond))
		g.block(b, s.Then, ind+"\t")
		for _, ei := range s.Elseifs {
			fmt.Fprintf(b, "%s} else if (%s) {\n", ind, g.cond(ei.Cond))
			g.block(b, ei.Body, ind+"\t")
		}
		if s.Else != nil {
			fmt.Fprintf(b, "%s} else {\n", ind)
			g.block(b, s.Else, ind+"\t")
		}
		fmt.Fprintf(b, "%s}\n", ind)

	case *ast.LoopStmt:
		if s.Until {
			fmt.Fprintf(b, "%swhile (!(%s)) {\n", ind, g.cond(s.Cond))
		} else {
			i := g.loopN
			g.loopN++
			fmt.Fprintf(b, "%sfor (int _i%d = 0, _n%d = %s; _i%d < _n%d; _i%d++) {\n",
				ind, i, i, g.cond(s.Cond), i, i, i)
		}
		g.block(b, s.Body, ind+"\t")
		fmt.Fprintf(b, "%s}\n", ind)
	}
}

// ---------------------------------------------------------------------------
// Expressions

func (g *generator) expr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Literal:
		return g.literal(e)
	case *ast.Identifier:
		return g.identifier(e)
	case *ast.BinaryExpr:
		return g.binary(e)
	case *ast.NotExpr:
		return "(!(" + g.expr(e.X) + "))"
	case *ast.NegateExpr:
		return "(-(" + g.expr(e.X) + "))"
	case *ast.IncDecExpr:
		return "(" + g.incDec(e) + ")"
	case *ast.AssignExpr:
		return "(" + g.assign(e) + ")"
	case *ast.MemberExpr:
		return g.member(e)
	case *ast.CallExpr:
		return g.call(e)
	case *ast.IndexExpr:
		at := g.typeOf(e.X)
		return fmt.Sprintf("%s_get(%s, %s)",
			g.arrayFor(at.Elem).name, g.expr(e.X), g.val(semantics.Integer, e.Index))
	case *ast.SliceExpr:
		return g.sliceExpr(e)
	case *ast.NewExpr:
		return g.newExpr(e)
	case *ast.ArrayLit:
		return g.arrayLit(e)
	case *ast.LambdaExpr:
		return g.lambdaRef(e)
	case *ast.ThisClassRef:
		return "self"
	case *ast.ParentRef:
		if t := g.typeOf(e); t.Kind == semantics.KindClass {
			return "((" + g.structName[t.Name] + "*)self)"
		}
		return "self"
	case *ast.IsaExpr:
		if g.prog.IsaOf(g.class, e) {
			return "true"
		}
		return "false"
	}
	return "0"
}

func (g *generator) literal(e *ast.Literal) string {
	switch e.Kind {
	case ast.IntLit:
		if g.typeOf(e).Kind == semantics.KindLongInteger {
			return e.Value + "LL"
		}
		return e.Value
	case ast.FloatLit:
		if g.typeOf(e).Kind == semantics.KindLongFloat {
			return e.Value
		}
		return e.Value + "f"
	case ast.StringLit:
		return fmt.Sprintf("String_new(\"%s\", %d)", cEscapeString(e.Value), len(e.Value))
	case ast.CharLit:
		var c byte
		if len(e.Value) > 0 {
			c = e.Value[0]
		}
		return "'" + cEscapeChar(c) + "'"
	}
	return e.Value
}

func (g *generator) identifier(e *ast.Identifier) string {
	if info := g.prog.IdentOf(g.class, e); info != nil && info.Kind == semantics.IdentField {
		return "self->" + g.fieldName[g.class][e.Name]
	}
	if cn, ok := g.localName[e.Name]; ok {
		return cn
	}
	return e.Name
}

func (g *generator) member(e *ast.MemberExpr) string {
	info := g.prog.MemberOf(g.class, e)
	if info == nil {
		return "(" + g.expr(e.X) + ")." + e.Member
	}
	switch info.Kind {
	case semantics.MemberEnumValue:
		return g.enumConst[info.Enum.Name][info.Index]
	case semantics.MemberConst:
		g.markBuiltin(info.Const.CExpr)
		return info.Const.CExpr
	case semantics.MemberLength:
		return "(" + g.expr(e.X) + ").length"
	default:
		cls := g.typeOf(e.X).Name
		return "(" + g.expr(e.X) + ")->" + g.fieldName[cls][e.Member]
	}
}

func binop(x, op, y string) string {
	return "(" + x + " " + op + " " + y + ")"
}

func (g *generator) binary(e *ast.BinaryExpr) string {
	x := g.expr(e.X)
	y := g.expr(e.Y)
	xt := g.typeOf(e.X)
	switch e.Op {
	case lexer.PLUS:
		switch xt.Kind {
		case semantics.KindString:
			return fmt.Sprintf("String_concat(%s, %s)", x, y)
		case semantics.KindArray:
			return fmt.Sprintf("%s_concat(%s, %s)", g.arrayFor(xt.Elem).name, x, y)
		}
		return binop(x, "+", y)
	case lexer.MINUS:
		return binop(x, "-", y)
	case lexer.STAR:
		return binop(x, "*", y)
	case lexer.SLASH:
		return binop(x, "/", y)
	case lexer.PERCENT:
		return binop(x, "%", y)
	case lexer.CARET:
		return g.power(xt, x, y)
	case lexer.EQUALS:
		if xt.Kind == semantics.KindString {
			return fmt.Sprintf("String_equals(%s, %s)", x, y)
		}
		return binop(x, "==", y)
	case lexer.LESS, lexer.GREATER, lexer.LESS_EQ, lexer.GREATER_EQ:
		op := cmpOp(e.Op)
		if xt.Kind == semantics.KindString {
			return fmt.Sprintf("(String_compare(%s, %s) %s 0)", x, y, op)
		}
		return binop(x, op, y)
	case lexer.AND:
		return binop(x, "&&", y)
	case lexer.OR:
		return binop(x, "||", y)
	case lexer.XOR:
		return binop(x, "!=", y)
	}
	return binop(x, "==", y)
}

func cmpOp(op lexer.TokenType) string {
	switch op {
	case lexer.LESS:
		return "<"
	case lexer.GREATER:
		return ">"
	case lexer.LESS_EQ:
		return "<="
	}
	return ">="
}

func (g *generator) power(t *semantics.Type, x, y string) string {
	switch t.Kind {
	case semantics.KindInteger:
		g.usedIntPow = true
		return fmt.Sprintf("int_pow(%s, %s)", x, y)
	case semantics.KindLongInteger:
		g.usedLongPow = true
		return fmt.Sprintf("long_pow(%s, %s)", x, y)
	case semantics.KindLongFloat:
		return fmt.Sprintf("pow(%s, %s)", x, y)
	}
	return fmt.Sprintf("powf(%s, %s)", x, y)
}

func (g *generator) incDec(e *ast.IncDecExpr) string {
	op := "++"
	if e.Op == lexer.DECREMENT {
		op = "--"
	}
	x := g.expr(e.X)
	if e.Prefix {
		return op + x
	}
	return x + op
}

func (g *generator) assign(e *ast.AssignExpr) string {
	if idx, ok := e.Target.(*ast.IndexExpr); ok {
		at := g.typeOf(idx.X)
		return fmt.Sprintf("%s_set(&%s, %s, %s)",
			g.arrayFor(at.Elem).name, g.expr(idx.X),
			g.val(semantics.Integer, idx.Index), g.val(at.Elem, e.Value))
	}
	return g.expr(e.Target) + " = " + g.val(g.typeOf(e.Target), e.Value)
}

func (g *generator) sliceExpr(e *ast.SliceExpr) string {
	at := g.typeOf(e.X)
	lo, hi := "0", "INT_MAX"
	loAdj, hiAdj := 0, 0
	if e.Low != nil {
		lo = g.val(semantics.Integer, e.Low)
		if e.Op == lexer.COMMA_COMMA {
			loAdj = 1
		}
	}
	if e.High != nil {
		hi = g.val(semantics.Integer, e.High)
		if e.Op == lexer.DOT_DOT {
			hiAdj = 1
		}
	}
	return fmt.Sprintf("%s_slice(%s, %s, %s, %d, %d)",
		g.arrayFor(at.Elem).name, g.expr(e.X), lo, hi, loAdj, hiAdj)
}

func (g *generator) newExpr(e *ast.NewExpr) string {
	fc := g.prog.Classes[e.Class]
	args := make([]string, len(e.Args))
	if ctor := fc.Constructor(); ctor != nil {
		for i, a := range e.Args {
			if i < len(ctor.Params) {
				args[i] = g.val(ctor.Params[i].Type, a)
			} else {
				args[i] = g.expr(a)
			}
		}
	}
	return g.ctorName[e.Class] + "(" + strings.Join(args, ", ") + ")"
}

func (g *generator) arrayLit(e *ast.ArrayLit) string {
	at := g.typeOf(e)
	info := g.arrayFor(at.Elem)
	if len(e.Elems) == 0 {
		return info.name + "_make(0)"
	}
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = g.val(at.Elem, el)
	}
	return fmt.Sprintf("%s_lit(%d, (%s[]){%s})",
		info.name, len(e.Elems), g.cType(at.Elem), strings.Join(parts, ", "))
}

func (g *generator) lambdaRef(lam *ast.LambdaExpr) string {
	if n, ok := g.lambdaNames[lam]; ok {
		return n
	}
	info := g.prog.LambdaOf(g.class, lam)
	n := g.top.claim(fmt.Sprintf("lambda_%d", len(g.lambdaNames)))
	g.lambdaNames[lam] = n
	g.lambdaQueue = append(g.lambdaQueue, &lambdaJob{name: n, lam: lam, info: info})
	return n
}

// ---------------------------------------------------------------------------
// Calls

func (g *generator) call(e *ast.CallExpr) string {
	info := g.prog.CallOf(g.class, e)
	if info == nil {
		return e.Method + "()"
	}
	switch info.Kind {
	case semantics.CallFree:
		return g.funcName[info.Method.Name] + "(" + strings.Join(g.argList(e.Args, info.Method.Params), ", ") + ")"

	case semantics.CallMethod:
		name := g.methodName[classMethod{info.Class, e.Method}]
		args := append([]string{g.expr(e.Recv)}, g.argList(e.Args, info.Method.Params)...)
		return name + "(" + strings.Join(args, ", ") + ")"

	case semantics.CallParent:
		name := g.specName(g.class, info.Method)
		args := append([]string{"self"}, g.argList(e.Args, info.Method.Params)...)
		return name + "(" + strings.Join(args, ", ") + ")"

	case semantics.CallStatic:
		return g.staticCall(e, info)

	case semantics.CallValue:
		return g.valueCall(e, info)

	case semantics.CallArray:
		return g.arrayCall(e, info)

	case semantics.CallLength:
		return "(" + g.expr(e.Recv) + ").length"
	}
	return e.Method + "()"
}

// specName memoizes a parent-call target: the parent's method body compiled
// against the concrete class so the chain keeps dispatching on one layout.
func (g *generator) specName(class string, m *semantics.MethodInfo) string {
	key := specKey{class, m.Owner, m.Name}
	if n, ok := g.specNames[key]; ok {
		return n
	}
	n := g.top.claim(class + "__" + m.Owner + "_" + m.Name)
	g.specNames[key] = n
	g.specQueue = append(g.specQueue, &specJob{name: n, class: class, method: m})
	return n
}

func (g *generator) staticCall(e *ast.CallExpr, info *semantics.CallInfo) string {
	b := info.Builtin
	if b.AnyArg {
		g.usedBuiltins["CONSOLE"] = true
		return g.printCall(e.Args[0])
	}
	g.markBuiltin(b.Runtime)
	return b.Runtime + "(" + strings.Join(g.argListBuiltin(e.Args, b.Params), ", ") + ")"
}

func (g *generator) printCall(arg ast.Expr) string {
	x := g.val(nil, arg)
	switch t := g.typeOf(arg); t.Kind {
	case semantics.KindLongInteger:
		return "CONSOLE_print_long(" + x + ")"
	case semantics.KindFloat:
		return "CONSOLE_print_float(" + x + ")"
	case semantics.KindLongFloat:
		return "CONSOLE_print_longfloat(" + x + ")"
	case semantics.KindBoolean:
		return "CONSOLE_print_boolean(" + x + ")"
	case semantics.KindCharacter:
		return "CONSOLE_print_character(" + x + ")"
	case semantics.KindString:
		return "CONSOLE_print_string(" + x + ")"
	case semantics.KindEnum:
		return "CONSOLE_print_cstr(" + g.enumNames[t.Name] + "[" + x + "])"
	}
	return "CONSOLE_print_integer(" + x + ")"
}

func (g *generator) valueCall(e *ast.CallExpr, info *semantics.CallInfo) string {
	b := info.Builtin
	recv := g.expr(e.Recv)
	if b.Runtime == "enum_to_string" {
		return g.enumToStr[info.RecvType.Name] + "(" + recv + ")"
	}
	args := append([]string{recv}, g.argListBuiltin(e.Args, b.Params)...)
	return b.Runtime + "(" + strings.Join(args, ", ") + ")"
}

func (g *generator) arrayCall(e *ast.CallExpr, info *semantics.CallInfo) string {
	elem := info.RecvType.Elem
	an := g.arrayFor(elem).name
	recv := g.expr(e.Recv)
	switch e.Method {
	case "map", "filter":
		fn := g.expr(e.Args[0])
		return fmt.Sprintf("%s_%s(%s, %s)", an, e.Method, recv, fn)
	case "reduce":
		acc := g.typeOf(e)
		fn := g.reduceFn(elem, acc)
		return fmt.Sprintf("%s(%s, %s, %s)", fn, recv, g.expr(e.Args[0]), g.val(acc, e.Args[1]))
	case "find":
		return fmt.Sprintf("%s_find(%s, %s)", an, recv, g.val(elem, e.Args[0]))
	case "append":
		return fmt.Sprintf("%s_append(&%s, %s)", an, recv, g.val(elem, e.Args[0]))
	}
	return fmt.Sprintf("%s_%s(%s)", an, e.Method, recv)
}

// ---------------------------------------------------------------------------
// Helpers

// val renders an expression for an r-value position, adding the pointer
// cast when a subclass flows into its first-parent chain and trimming the
// parenthesis the emitters wrap composites in.
func (g *generator) val(want *semantics.Type, e ast.Expr) string {
	s := g.expr(e)
	if want != nil && want.Kind == semantics.KindClass {
		if vt := g.typeOf(e); vt.Kind == semantics.KindClass && vt.Name != want.Name {
			return "((" + g.structName[want.Name] + "*)" + s + ")"
		}
	}
	return unparen(s)
}

func (g *generator) cond(e ast.Expr) string {
	return unparen(g.expr(e))
}

func (g *generator) argList(args []ast.Expr, params []*semantics.ParamInfo) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if i < len(params) {
			out[i] = g.val(params[i].Type, a)
		} else {
			out[i] = g.expr(a)
		}
	}
	return out
}

func (g *generator) argListBuiltin(args []ast.Expr, params []*semantics.Type) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if i < len(params) {
			out[i] = g.val(params[i], a)
		} else {
			out[i] = g.expr(a)
		}
	}
	return out
}

// markBuiltin records which built-in class section the translation unit
// needs, keyed by the runtime prefix (CONSOLE, MATH, ...).
func (g *generator) markBuiltin(runtime string) {
	i := strings.IndexByte(runtime, '_')
	if i <= 0 {
		return
	}
	section := runtime[:i]
	g.usedBuiltins[section] = true
	if section == "STRING" {
		// STRING_join takes a string array.
		g.arrayFor(semantics.String)
	}
}

// unparen strips one redundant outer parenthesis pair, leaving anything
// whose first paren closes before the end (or that quotes parens) alone.
func unparen(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	inStr, inChar := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inStr:
			if c == '\\' {
				i++
			} else if c == '"' {
				inStr = false
			}
		case inChar:
			if c == '\\' {
				i++
			} else if c == '\'' {
				inChar = false
			}
		case c == '"':
			inStr = true
		case c == '\'':
			inChar = true
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return s[1 : len(s)-1]
}

// ---------------------------------------------------------------------------
// Assembly

func (g *generator) assemble(funcBodies, classBodies []string) string {
	var w strings.Builder
	writePrelude(&w, g.usedBuiltins["DATETIME"])
	writeStringCore(&w)
	writePowerHelpers(&w, g.usedIntPow, g.usedLongPow)

	for _, name := range g.prog.EnumOrder {
		es := g.prog.Enums[name]
		writeEnumSection(&w, g.enumName[name], g.enumConst[name], es.Values,
			g.enumNames[name], g.enumToStr[name])
	}

	if len(g.prog.ClassOrder) > 0 {
		for _, name := range g.prog.ClassOrder {
			sn := g.structName[name]
			fmt.Fprintf(&w, "typedef struct %s %s;\n", sn, sn)
		}
		w.WriteString("\n")
	}

	keys := maps.Keys(g.arrays)
	slices.Sort(keys)
	for _, k := range keys {
		writeArrayTypedef(&w, g.traitFor(g.arrays[k]))
	}
	for _, k := range keys {
		writeArraySection(&w, g.traitFor(g.arrays[k]), g.arrays[k].reduces)
	}

	if g.usedBuiltins["CONSOLE"] {
		writeConsoleSection(&w)
	}
	if g.usedBuiltins["MATH"] {
		writeMathSection(&w)
	}
	if g.usedBuiltins["STRING"] {
		writeStringClassSection(&w, g.arrays["string"].name)
	}
	if g.usedBuiltins["RANDOM"] {
		writeRandomSection(&w)
	}
	if g.usedBuiltins["FILECLS"] {
		writeFileSection(&w)
	}
	if g.usedBuiltins["DATETIME"] {
		writeDatetimeSection(&w)
	}

	for _, name := range g.prog.ClassOrder {
		g.writeStruct(&w, g.prog.Classes[name])
	}

	for _, p := range g.protos {
		w.WriteString(p + "\n")
	}
	if len(g.protos) > 0 {
		w.WriteString("\n")
	}

	for _, d := range g.lambdaDefs {
		w.WriteString(d + "\n")
	}
	for _, d := range funcBodies {
		w.WriteString(d + "\n")
	}
	for _, d := range classBodies {
		w.WriteString(d + "\n")
	}
	for _, d := range g.specDefs {
		w.WriteString(d + "\n")
	}

	w.WriteString("int main(void) {\n\treturn " + g.funcName["Main"] + "() ? 0 : 1;\n}\n")
	return w.String()
}

func (g *generator) writeStruct(w *strings.Builder, fc *semantics.FlattenedClass) {
	fmt.Fprintf(w, "struct %s {\n", g.structName[fc.Name])
	if len(fc.Fields) == 0 {
		w.WriteString("\tchar _empty;\n")
	}
	fm := g.fieldName[fc.Name]
	for _, f := range fc.Fields {
		fmt.Fprintf(w, "\t%s %s;\n", g.cType(f.Type), fm[f.Name])
	}
	w.WriteString("};\n\n")
}

func (g *generator) traitFor(info *arrayInfo) elemTrait {
	tr := elemTrait{name: info.name, ctype: g.cType(info.elem)}
	eq := func(a, b string) string { return a + " == " + b }
	less := func(a, b string) string { return a + " < " + b }
	pf := func(format string) func(string) string {
		return func(v string) string { return fmt.Sprintf(`printf("%s", %s)`, format, v) }
	}
	switch info.elem.Kind {
	case semantics.KindString:
		tr.eq = func(a, b string) string { return "String_equals(" + a + ", " + b + ")" }
		tr.less = func(a, b string) string { return "String_compare(" + a + ", " + b + ") < 0" }
		tr.print = func(v string) string {
			return fmt.Sprintf(`printf("%%.*s", %s.length, %s.data)`, v, v)
		}
	case semantics.KindBoolean:
		tr.eq = eq
		tr.print = func(v string) string {
			return fmt.Sprintf(`printf("%%s", %s ? "true" : "false")`, v)
		}
	case semantics.KindCharacter:
		tr.eq, tr.less, tr.print = eq, less, pf("%c")
	case semantics.KindInteger:
		tr.eq, tr.less, tr.print = eq, less, pf("%d")
	case semantics.KindLongInteger:
		tr.eq, tr.less, tr.print = eq, less, pf("%lld")
	case semantics.KindFloat:
		tr.eq, tr.less, tr.print = eq, less, pf("%g")
	case semantics.KindLongFloat:
		tr.eq, tr.less, tr.print = eq, less, pf("%g")
	case semantics.KindEnum:
		tr.eq = eq
		names := g.enumNames[info.elem.Name]
		tr.print = func(v string) string {
			return fmt.Sprintf(`printf("%%s", %s[%s])`, names, v)
		}
	default:
		tr.eq = eq
	}
	return tr
}
