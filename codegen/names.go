package codegen

import (
	"fmt"
	"strings"
)

// cReserved holds every identifier a generated symbol may never use: C
// keywords, names the fixed runtime sections define, and pieces of the C
// standard library the runtime calls.
var cReserved = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true,
	"else": true, "enum": true, "extern": true, "float": true, "for": true,
	"goto": true, "if": true, "inline": true, "int": true, "long": true,
	"register": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "struct": true,
	"switch": true, "typedef": true, "union": true, "unsigned": true,
	"void": true, "volatile": true, "while": true,
	"_Bool": true, "_Complex": true, "_Imaginary": true,

	"bool": true, "true": true, "false": true, "NULL": true,
	"main": true, "self": true, "String": true,

	"printf": true, "fprintf": true, "sprintf": true, "snprintf": true,
	"scanf": true, "fgets": true, "fopen": true, "fclose": true,
	"fread": true, "fwrite": true, "remove": true,
	"stdin": true, "stdout": true, "stderr": true,
	"malloc": true, "realloc": true, "calloc": true, "free": true,
	"memcpy": true, "memmove": true, "memset": true,
	"strlen": true, "strcmp": true, "strncmp": true, "strcpy": true,
	"strtol": true, "strtod": true, "strtof": true, "strtoll": true,
	"exit": true, "abort": true, "abs": true, "labs": true,
	"pow": true, "powf": true, "sqrt": true, "sqrtf": true,
	"fabs": true, "fabsf": true, "floor": true, "floorf": true,
	"ceil": true, "ceilf": true, "round": true, "roundf": true,
	"sin": true, "sinf": true, "cos": true, "cosf": true,
	"tan": true, "tanf": true,
	"rand": true, "srand": true, "time": true, "localtime": true,
	"toupper": true, "tolower": true, "isspace": true,
	"memcmp": true, "fseek": true, "ftell": true, "strftime": true,
	"FILE": true, "SEEK_SET": true, "SEEK_END": true, "RAND_MAX": true,
	"INT_MAX": true, "size_t": true, "time_t": true,
	"int_pow": true, "long_pow": true,

	"String_new": true, "String_from_cstr": true, "String_concat": true,
	"String_equals": true, "String_compare": true, "String_substring": true,
	"String_to_upper": true, "String_to_lower": true, "String_replace": true,
	"String_trim": true, "String_to_integer": true, "String_to_float": true,
	"int_to_string": true, "long_to_string": true, "float_to_string": true,
	"longfloat_to_string": true, "char_to_string": true,
	"bool_to_string": true, "int_to_float": true, "float_to_int": true,

	"CONSOLE_print_string": true, "CONSOLE_print_cstr": true,
	"CONSOLE_print_integer": true, "CONSOLE_print_long": true,
	"CONSOLE_print_float": true, "CONSOLE_print_longfloat": true,
	"CONSOLE_print_boolean": true, "CONSOLE_print_character": true,
	"CONSOLE_scan": true, "CONSOLE_scan_integer": true,
	"CONSOLE_scan_float": true, "CONSOLE_scan_boolean": true,
	"CONSOLE_clear": true,

	"MATH_PI": true, "MATH_E": true, "MATH_min": true, "MATH_max": true,
	"MATH_absolute": true, "MATH_square_root": true, "MATH_power": true,
	"MATH_floor": true, "MATH_ceil": true, "MATH_round": true,
	"MATH_sine": true, "MATH_cosine": true, "MATH_tangent": true,
	"MATH_random": true, "MATH_clamp": true,

	"STRING_join": true, "STRING_contains": true,
	"STRING_starts_with": true, "STRING_ends_with": true,
	"STRING_length": true,

	"RANDOM_integer": true, "RANDOM_float": true, "RANDOM_boolean": true,
	"RANDOM_character": true, "RANDOM_seed": true,

	"FILECLS_read": true, "FILECLS_write": true, "FILECLS_append": true,
	"FILECLS_exists": true, "FILECLS_delete": true,

	"DATETIME_local": true, "DATETIME_now": true, "DATETIME_year": true,
	"DATETIME_month": true, "DATETIME_day": true, "DATETIME_hour": true,
	"DATETIME_minute": true, "DATETIME_second": true,
}

// nameSet hands out C identifiers, renaming collisions with a numeric
// suffix. A child set sees its parent's names as taken, so locals never
// shadow a top-level symbol.
type nameSet struct {
	parent *nameSet
	taken  map[string]bool
}

func newNameSet(parent *nameSet) *nameSet {
	return &nameSet{parent: parent, taken: make(map[string]bool)}
}

func (s *nameSet) has(name string) bool {
	for set := s; set != nil; set = set.parent {
		if set.taken[name] {
			return true
		}
	}
	return cReserved[name]
}

func (s *nameSet) claim(base string) string {
	name := base
	for i := 1; s.has(name); i++ {
		name = fmt.Sprintf("%s%d", base, i)
	}
	s.taken[name] = true
	return name
}

// localBase defuses local and field names that would collide with the
// runtime's generated name families before the usual claim loop runs.
func localBase(name string) string {
	if strings.HasPrefix(name, "Array_") || strings.HasPrefix(name, "lambda_") {
		return "v_" + name
	}
	return name
}

func cEscapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 {
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}

func cEscapeChar(c byte) string {
	switch c {
	case '\'':
		return `\'`
	case '\\':
		return `\\`
	case '\n':
		return `\n`
	case '\t':
		return `\t`
	case '\r':
		return `\r`
	case 0:
		return `\0`
	}
	if c < 0x20 {
		return fmt.Sprintf(`\%03o`, c)
	}
	return string(c)
}
