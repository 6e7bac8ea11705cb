package semantics

// BuiltinMethod is one callable entry of a built-in static class or a value
// method on a primitive type. Runtime names the generated C routine; the
// code generator emits a routine only when a program calls it.
type BuiltinMethod struct {
	Name    string
	Params  []*Type
	Return  *Type
	Runtime string
	// AnyArg marks CONSOLE.Print: one argument of any printable type,
	// dispatched to a per-type routine by the code generator.
	AnyArg bool
}

// BuiltinConst is a readable constant member such as MATH.PI. CExpr is the
// macro the code generator references.
type BuiltinConst struct {
	Name  string
	Type  *Type
	CExpr string
}

// BuiltinClass is a static class: callable through its name, never
// instantiated, never inherited from.
type BuiltinClass struct {
	Name    string
	Methods map[string]*BuiltinMethod
	Consts  map[string]*BuiltinConst
}

var builtinClasses = buildBuiltinClasses()

// IsBuiltinClass reports whether name is reserved by a built-in class.
func IsBuiltinClass(name string) bool {
	_, ok := builtinClasses[name]
	return ok
}

// LookupBuiltinClass returns the registry entry for a built-in class name.
func LookupBuiltinClass(name string) *BuiltinClass {
	return builtinClasses[name]
}

func buildBuiltinClasses() map[string]*BuiltinClass {
	classes := make(map[string]*BuiltinClass)

	add := func(class, name, runtime string, ret *Type, params ...*Type) *BuiltinMethod {
		c := classes[class]
		if c == nil {
			c = &BuiltinClass{
				Name:    class,
				Methods: make(map[string]*BuiltinMethod),
				Consts:  make(map[string]*BuiltinConst),
			}
			classes[class] = c
		}
		m := &BuiltinMethod{Name: name, Runtime: runtime, Return: ret, Params: params}
		c.Methods[name] = m
		return m
	}
	addConst := func(class, name string, t *Type, cexpr string) {
		classes[class].Consts[name] = &BuiltinConst{Name: name, Type: t, CExpr: cexpr}
	}

	add("CONSOLE", "Print", "", Void).AnyArg = true
	add("CONSOLE", "PrintInteger", "CONSOLE_print_integer", Void, Integer)
	add("CONSOLE", "PrintFloat", "CONSOLE_print_float", Void, Float)
	add("CONSOLE", "PrintBoolean", "CONSOLE_print_boolean", Void, Boolean)
	add("CONSOLE", "Scan", "CONSOLE_scan", String)
	add("CONSOLE", "ScanInteger", "CONSOLE_scan_integer", Integer)
	add("CONSOLE", "ScanFloat", "CONSOLE_scan_float", Float)
	add("CONSOLE", "ScanBoolean", "CONSOLE_scan_boolean", Boolean)
	add("CONSOLE", "Clear", "CONSOLE_clear", Void)

	add("MATH", "Min", "MATH_min", Float, Float, Float)
	add("MATH", "Max", "MATH_max", Float, Float, Float)
	add("MATH", "Absolute", "MATH_absolute", Float, Float)
	add("MATH", "SquareRoot", "MATH_square_root", Float, Float)
	add("MATH", "Power", "MATH_power", Float, Float, Float)
	add("MATH", "Floor", "MATH_floor", Float, Float)
	add("MATH", "Ceil", "MATH_ceil", Float, Float)
	add("MATH", "Round", "MATH_round", Float, Float)
	add("MATH", "Sine", "MATH_sine", Float, Float)
	add("MATH", "Cosine", "MATH_cosine", Float, Float)
	add("MATH", "Tangent", "MATH_tangent", Float, Float)
	add("MATH", "Random", "MATH_random", Float)
	add("MATH", "Clamp", "MATH_clamp", Float, Float, Float, Float)
	addConst("MATH", "PI", Float, "MATH_PI")
	addConst("MATH", "E", Float, "MATH_E")

	add("STRING", "Join", "STRING_join", String, ArrayOf(String), String)
	add("STRING", "Contains", "STRING_contains", Boolean, String, String)
	add("STRING", "StartsWith", "STRING_starts_with", Boolean, String, String)
	add("STRING", "EndsWith", "STRING_ends_with", Boolean, String, String)
	add("STRING", "Length", "STRING_length", Integer, String)

	add("RANDOM", "Integer", "RANDOM_integer", Integer, Integer, Integer)
	add("RANDOM", "Float", "RANDOM_float", Float)
	add("RANDOM", "Boolean", "RANDOM_boolean", Boolean)
	add("RANDOM", "Character", "RANDOM_character", Character)
	add("RANDOM", "Seed", "RANDOM_seed", Void, Integer)

	// FILE collides with stdio's FILE in the generated C; its routines are
	// prefixed FILECLS there.
	add("FILE", "Read", "FILECLS_read", String, String)
	add("FILE", "Write", "FILECLS_write", Boolean, String, String)
	add("FILE", "Append", "FILECLS_append", Boolean, String, String)
	add("FILE", "Exists", "FILECLS_exists", Boolean, String)
	add("FILE", "Delete", "FILECLS_delete", Boolean, String)

	add("DATETIME", "Now", "DATETIME_now", String)
	add("DATETIME", "Year", "DATETIME_year", Integer)
	add("DATETIME", "Month", "DATETIME_month", Integer)
	add("DATETIME", "Day", "DATETIME_day", Integer)
	add("DATETIME", "Hour", "DATETIME_hour", Integer)
	add("DATETIME", "Minute", "DATETIME_minute", Integer)
	add("DATETIME", "Second", "DATETIME_second", Integer)

	return classes
}

// valueMethods maps primitive receiver kinds to their instance methods.
// Array methods are generic over the element type and resolved in the
// analyzer instead; enum toString is synthesized per enum.
var valueMethods = buildValueMethods()

func buildValueMethods() map[Kind]map[string]*BuiltinMethod {
	table := make(map[Kind]map[string]*BuiltinMethod)
	add := func(kind Kind, name, runtime string, ret *Type, params ...*Type) {
		kt := table[kind]
		if kt == nil {
			kt = make(map[string]*BuiltinMethod)
			table[kind] = kt
		}
		kt[name] = &BuiltinMethod{Name: name, Runtime: runtime, Return: ret, Params: params}
	}

	add(KindString, "length", "", Integer) // lowered to the length field
	add(KindString, "substring", "String_substring", String, Integer, Integer)
	add(KindString, "toUpper", "String_to_upper", String)
	add(KindString, "toLower", "String_to_lower", String)
	add(KindString, "replace", "String_replace", String, String, String)
	add(KindString, "trim", "String_trim", String)
	add(KindString, "toInteger", "String_to_integer", Integer)
	add(KindString, "toFloat", "String_to_float", Float)

	add(KindInteger, "toString", "int_to_string", String)
	add(KindInteger, "toFloat", "int_to_float", Float)
	add(KindLongInteger, "toString", "long_to_string", String)
	add(KindFloat, "toString", "float_to_string", String)
	add(KindFloat, "toInteger", "float_to_int", Integer)
	add(KindLongFloat, "toString", "longfloat_to_string", String)
	add(KindCharacter, "toString", "char_to_string", String)
	add(KindBoolean, "toString", "bool_to_string", String)

	return table
}

// lookupValueMethod resolves an instance method on a primitive receiver.
func lookupValueMethod(recv *Type, name string) *BuiltinMethod {
	if recv.Kind == KindEnum && name == "toString" {
		// The routine is generated per enum from its name table.
		return &BuiltinMethod{Name: "toString", Runtime: "enum_to_string", Return: String}
	}
	kt := valueMethods[recv.Kind]
	if kt == nil {
		return nil
	}
	return kt[name]
}
