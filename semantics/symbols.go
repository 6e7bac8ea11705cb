package semantics

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/northernsines/foobar/ast"
)

// EnumSymbol is a declared enumerated type.
type EnumSymbol struct {
	Name   string
	Values []string
	Index  map[string]int
	Decl   *ast.EnumDecl
}

// ParamInfo is a resolved method parameter.
type ParamInfo struct {
	Name string
	Type *Type
}

// MethodInfo is a resolved method or free function. Owner is the class the
// body was declared in ("" for free functions); flattening copies entries
// without changing Owner, so inherited bodies always know where they came
// from.
type MethodInfo struct {
	Name   string
	Public bool
	Owner  string
	Params []*ParamInfo
	Return *Type
	Decl   *ast.MethodDecl
}

// FieldInfo is one storage slot of a flattened class layout.
type FieldInfo struct {
	Name   string
	Public bool
	Owner  string
	Type   *Type
	Init   ast.Expr
}

// FlattenedClass is a class with its whole inheritance graph merged in.
// Fields keeps layout order: the first parent's layout is a prefix, further
// parents and own members follow. Merging is name-keyed and the leftmost
// definition wins between parents; the class's own members override.
type FlattenedClass struct {
	Name      string
	Parents   []string
	Fields    []*FieldInfo
	Methods   []*MethodInfo
	Declared  []*MethodInfo // methods declared in this class itself
	Ancestors []string      // reflexive-transitive closure, self first
	Decl      *ast.ClassDecl

	fieldIdx    map[string]int
	methodIdx   map[string]int
	ancestorSet map[string]bool
}

func newFlattenedClass(decl *ast.ClassDecl) *FlattenedClass {
	fc := &FlattenedClass{
		Name:        decl.Name,
		Parents:     decl.Parents,
		Decl:        decl,
		fieldIdx:    make(map[string]int),
		methodIdx:   make(map[string]int),
		ancestorSet: make(map[string]bool),
	}
	fc.addAncestor(decl.Name)
	return fc
}

// Field looks a slot up by name.
func (fc *FlattenedClass) Field(name string) *FieldInfo {
	if i, ok := fc.fieldIdx[name]; ok {
		return fc.Fields[i]
	}
	return nil
}

// Method looks a flattened method up by name.
func (fc *FlattenedClass) Method(name string) *MethodInfo {
	if i, ok := fc.methodIdx[name]; ok {
		return fc.Methods[i]
	}
	return nil
}

// Constructor returns the flattened Initialize, if any.
func (fc *FlattenedClass) Constructor() *MethodInfo {
	return fc.Method("Initialize")
}

// HasAncestor reports reflexive-transitive membership: every class is its
// own ancestor.
func (fc *FlattenedClass) HasAncestor(name string) bool {
	return fc.ancestorSet[name]
}

func (fc *FlattenedClass) addAncestor(name string) {
	if !fc.ancestorSet[name] {
		fc.ancestorSet[name] = true
		fc.Ancestors = append(fc.Ancestors, name)
	}
}

func (fc *FlattenedClass) addField(f *FieldInfo) {
	fc.fieldIdx[f.Name] = len(fc.Fields)
	fc.Fields = append(fc.Fields, f)
}

func (fc *FlattenedClass) addMethod(m *MethodInfo) {
	fc.methodIdx[m.Name] = len(fc.Methods)
	fc.Methods = append(fc.Methods, m)
}

// ---------------------------------------------------------------------------
// Symbol collection

// collectSymbols indexes every top-level declaration of the merged program.
// Name resolution for types only needs the name sets, so this runs before
// flattening and body checks.
func (a *analyzer) collectSymbols(prog *ast.Program) {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.ClassDecl:
			if IsBuiltinClass(d.Name) {
				a.errorf(InvalidOperation, d.Pos(),
					"cannot declare class %s: the name belongs to a built-in class", d.Name)
				continue
			}
			a.classDecls[d.Name] = d
			a.classOrder = append(a.classOrder, d.Name)

		case *ast.EnumDecl:
			if IsBuiltinClass(d.Name) {
				a.errorf(InvalidOperation, d.Pos(),
					"cannot declare enumeration %s: the name belongs to a built-in class", d.Name)
				continue
			}
			sym := &EnumSymbol{Name: d.Name, Decl: d, Index: make(map[string]int)}
			for _, v := range d.Values {
				if _, dup := sym.Index[v]; dup {
					a.errorf(DuplicateVariable, d.Pos(),
						"duplicate value %s in enumeration %s", v, d.Name)
					continue
				}
				sym.Index[v] = len(sym.Values)
				sym.Values = append(sym.Values, v)
			}
			a.prog.Enums[d.Name] = sym
			a.prog.EnumOrder = append(a.prog.EnumOrder, d.Name)

		case *ast.MethodDecl:
			if IsBuiltinClass(d.Name) {
				a.errorf(InvalidOperation, d.Pos(),
					"cannot declare function %s: the name belongs to a built-in class", d.Name)
				continue
			}
			a.funcDecls = append(a.funcDecls, d)
		}
	}
}

// resolveFunctions builds MethodInfos for free functions once all type
// names are known. Main's implicit return type is boolean.
func (a *analyzer) resolveFunctions() {
	for _, d := range a.funcDecls {
		info := &MethodInfo{Name: d.Name, Public: true, Decl: d}
		info.Params = a.resolveParams(d)

		switch {
		case d.Return != nil:
			info.Return = a.resolveType(d.Return)
		case d.Name == "Main":
			info.Return = Boolean
			if len(d.Params) != 0 {
				a.errorf(InvalidOperation, d.Pos(), "Main takes no parameters")
			}
		default:
			a.errorf(InvalidOperation, d.Pos(),
				"function %s needs a return type: only Main may omit it", d.Name)
			info.Return = Invalid
		}

		a.prog.Funcs[d.Name] = info
		a.prog.FuncOrder = append(a.prog.FuncOrder, d.Name)
	}

	if _, ok := a.prog.Funcs["Main"]; !ok {
		a.errorf(MissingEntryPoint, ast.Pos{},
			"missing entry point: the entry file declares no Main")
	}
}

func (a *analyzer) resolveParams(d *ast.MethodDecl) []*ParamInfo {
	params := make([]*ParamInfo, 0, len(d.Params))
	seen := make(map[string]bool)
	for _, p := range d.Params {
		if seen[p.Name] {
			a.errorf(DuplicateVariable, p.Pos(),
				"duplicate parameter %s in %s", p.Name, d.Name)
		}
		seen[p.Name] = true
		params = append(params, &ParamInfo{Name: p.Name, Type: a.resolveType(p.Type)})
	}
	return params
}

// resolveType maps a source type reference onto the type model.
func (a *analyzer) resolveType(ref *ast.TypeRef) *Type {
	var base *Type
	switch ref.Name {
	case "void":
		base = Void
	case "boolean":
		base = Boolean
	case "character":
		base = Character
	case "integer":
		base = Integer
	case "longinteger":
		base = LongInteger
	case "float":
		base = Float
	case "longfloat":
		base = LongFloat
	case "string":
		base = String
	default:
		if _, ok := a.classDecls[ref.Name]; ok {
			base = ClassOf(ref.Name)
		} else if _, ok := a.prog.Enums[ref.Name]; ok {
			base = EnumOf(ref.Name)
		} else {
			a.errorf(UndefinedVariable, ref.Pos(), "unknown type %s", ref.Name)
			return Invalid
		}
	}
	if ref.Array {
		return ArrayOf(base)
	}
	return base
}

// ---------------------------------------------------------------------------
// Flattening

// flattenAll builds every class layout in declaration order. The walk is
// topological over the inheritance graph; a back-edge is a cycle.
func (a *analyzer) flattenAll() {
	for _, name := range a.classOrder {
		a.flattenClass(name)
	}
	a.prog.ClassOrder = a.classOrder
}

func (a *analyzer) flattenClass(name string) *FlattenedClass {
	if fc, ok := a.prog.Classes[name]; ok {
		return fc
	}
	if a.inFlatten[name] {
		a.cycleError(name)
		// Unblock the walk with an empty layout; analysis aborts before
		// body checks when a cycle was recorded.
		return newFlattenedClass(a.classDecls[name])
	}

	decl := a.classDecls[name]
	a.inFlatten[name] = true
	a.flatChain = append(a.flatChain, name)
	defer func() {
		a.flatChain = a.flatChain[:len(a.flatChain)-1]
		a.inFlatten[name] = false
	}()

	fc := newFlattenedClass(decl)

	// Parents merge left to right; the first definition of a name wins.
	for _, pname := range decl.Parents {
		if pname == name {
			a.cycleError(name)
			continue
		}
		if _, ok := a.classDecls[pname]; !ok {
			a.errorf(UndefinedVariable, decl.Pos(),
				"class %s inherits unknown class %s", name, pname)
			continue
		}
		parent := a.flattenClass(pname)

		for _, f := range parent.Fields {
			if i, ok := fc.fieldIdx[f.Name]; ok {
				if !fc.Fields[i].Type.Equals(f.Type) {
					a.errorf(TypeMismatch, decl.Pos(),
						"class %s inherits field %s with conflicting types %s and %s",
						name, f.Name, fc.Fields[i].Type, f.Type)
				}
				continue
			}
			fc.addField(f)
		}
		for _, m := range parent.Methods {
			if _, ok := fc.methodIdx[m.Name]; ok {
				continue
			}
			fc.addMethod(m)
		}
		for _, anc := range parent.Ancestors {
			fc.addAncestor(anc)
		}
	}

	// Own members override inherited ones but keep the inherited slot
	// position, so a first parent's layout stays a prefix of the child's.
	ownFields := make(map[string]bool)
	for _, fd := range decl.Fields {
		if ownFields[fd.Name] {
			a.errorf(DuplicateVariable, fd.Pos(),
				"field %s already declared in class %s", fd.Name, name)
			continue
		}
		ownFields[fd.Name] = true

		info := &FieldInfo{
			Name:   fd.Name,
			Public: fd.Public,
			Owner:  name,
			Type:   a.resolveType(fd.Type),
			Init:   fd.Init,
		}
		if i, ok := fc.fieldIdx[fd.Name]; ok {
			if !fc.Fields[i].Type.Equals(info.Type) {
				a.errorf(TypeMismatch, fd.Pos(),
					"field %s redeclared as %s, inherited as %s",
					fd.Name, info.Type, fc.Fields[i].Type)
			}
			fc.Fields[i] = info
			continue
		}
		fc.addField(info)
	}

	ownMethods := make(map[string]bool)
	for _, md := range decl.Methods {
		if ownMethods[md.Name] {
			a.errorf(DuplicateMethodName, md.Pos(),
				"duplicate method name %s in class %s", md.Name, name)
			continue
		}
		ownMethods[md.Name] = true

		info := a.methodInfo(name, md)
		fc.Declared = append(fc.Declared, info)
		if i, ok := fc.methodIdx[md.Name]; ok {
			fc.Methods[i] = info
			continue
		}
		fc.addMethod(info)
	}

	log.WithFields(log.Fields{
		"class":   name,
		"fields":  len(fc.Fields),
		"methods": len(fc.Methods),
	}).Debug("Flattened class")

	a.prog.Classes[name] = fc
	return fc
}

func (a *analyzer) methodInfo(owner string, md *ast.MethodDecl) *MethodInfo {
	info := &MethodInfo{
		Name:   md.Name,
		Public: md.Public,
		Owner:  owner,
		Decl:   md,
		Params: a.resolveParams(md),
	}
	switch {
	case md.Return == nil && md.IsConstructor():
		info.Return = Void
	case md.Return == nil:
		a.errorf(InvalidOperation, md.Pos(),
			"method %s in class %s needs a return type: only Initialize may omit it",
			md.Name, owner)
		info.Return = Invalid
	case md.IsConstructor():
		a.errorf(InvalidOperation, md.Pos(),
			"Initialize in class %s may not declare a return type", owner)
		info.Return = Void
	default:
		info.Return = a.resolveType(md.Return)
	}
	return info
}

func (a *analyzer) cycleError(name string) {
	start := 0
	for i, c := range a.flatChain {
		if c == name {
			start = i
			break
		}
	}
	chain := append([]string{}, a.flatChain[start:]...)
	chain = append(chain, name)
	a.errs = append(a.errs, &CircularInheritanceError{Chain: chain})
}

func (a *analyzer) errorf(kind ErrorKind, pos ast.Pos, format string, args ...any) {
	a.errs = append(a.errs, &SemanticError{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)})
}
