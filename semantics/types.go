package semantics

// Kind discriminates the language's types.
type Kind int

const (
	KindInvalid Kind = iota // error recovery: never reported twice
	KindVoid
	KindBoolean
	KindCharacter
	KindInteger
	KindLongInteger
	KindFloat
	KindLongFloat
	KindString
	KindArray
	KindClass
	KindEnum
)

// Type is a resolved language type. Primitives are the package-level
// singletons; arrays, classes and enums are built on demand and compared
// structurally.
type Type struct {
	Kind Kind
	Name string // class or enum name
	Elem *Type  // array element type
}

var (
	Invalid     = &Type{Kind: KindInvalid}
	Void        = &Type{Kind: KindVoid}
	Boolean     = &Type{Kind: KindBoolean}
	Character   = &Type{Kind: KindCharacter}
	Integer     = &Type{Kind: KindInteger}
	LongInteger = &Type{Kind: KindLongInteger}
	Float       = &Type{Kind: KindFloat}
	LongFloat   = &Type{Kind: KindLongFloat}
	String      = &Type{Kind: KindString}
)

// ArrayOf returns the array type over elem.
func ArrayOf(elem *Type) *Type {
	return &Type{Kind: KindArray, Elem: elem}
}

// ClassOf returns the type of instances of the named class.
func ClassOf(name string) *Type {
	return &Type{Kind: KindClass, Name: name}
}

// EnumOf returns the named enumerated type.
func EnumOf(name string) *Type {
	return &Type{Kind: KindEnum, Name: name}
}

func (t *Type) String() string {
	switch t.Kind {
	case KindInvalid:
		return "<invalid>"
	case KindVoid:
		return "void"
	case KindBoolean:
		return "boolean"
	case KindCharacter:
		return "character"
	case KindInteger:
		return "integer"
	case KindLongInteger:
		return "longinteger"
	case KindFloat:
		return "float"
	case KindLongFloat:
		return "longfloat"
	case KindString:
		return "string"
	case KindArray:
		return t.Elem.String() + "[]"
	case KindClass, KindEnum:
		return t.Name
	}
	return "<unknown>"
}

// Equals is exact structural equality, the language's assignment rule.
func (t *Type) Equals(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindClass, KindEnum:
		return t.Name == o.Name
	case KindArray:
		return t.Elem.Equals(o.Elem)
	}
	return true
}

// IsNumeric reports whether arithmetic applies to t.
func (t *Type) IsNumeric() bool {
	switch t.Kind {
	case KindInteger, KindLongInteger, KindFloat, KindLongFloat:
		return true
	}
	return false
}

// IsIntegral reports whether t is a whole-number type.
func (t *Type) IsIntegral() bool {
	return t.Kind == KindInteger || t.Kind == KindLongInteger
}

// IsFloating reports whether t is a floating-point type.
func (t *Type) IsFloating() bool {
	return t.Kind == KindFloat || t.Kind == KindLongFloat
}

// IsOrdered reports whether < > <= >= apply to t.
func (t *Type) IsOrdered() bool {
	return t.IsNumeric() || t.Kind == KindCharacter || t.Kind == KindString
}

// IsEquatable reports whether == applies to t.
func (t *Type) IsEquatable() bool {
	switch t.Kind {
	case KindBoolean, KindCharacter, KindInteger, KindLongInteger,
		KindFloat, KindLongFloat, KindString, KindEnum, KindClass:
		return true
	}
	return false
}

// IsPrintable reports whether the console and array print routines accept t.
func (t *Type) IsPrintable() bool {
	switch t.Kind {
	case KindBoolean, KindCharacter, KindInteger, KindLongInteger,
		KindFloat, KindLongFloat, KindString, KindEnum:
		return true
	}
	return false
}

// IsSortable reports whether sort, unique and the ordering comparisons are
// available for arrays with element type t.
func (t *Type) IsSortable() bool {
	return t.IsNumeric() || t.Kind == KindCharacter || t.Kind == KindString
}

// IsInvalid reports whether t is the error-recovery type; diagnostics are
// suppressed on invalid operands so one mistake is reported once.
func (t *Type) IsInvalid() bool {
	return t.Kind == KindInvalid
}
