package lexer

import (
	"errors"
	"reflect"
	"testing"
)

// tok is the shape the tests compare: type and lexeme, positions ignored.
type tok struct {
	Type   TokenType
	Lexeme string
}

func scan(t *testing.T, src string) []tok {
	t.Helper()
	toks, err := New(src).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", src, err)
	}
	out := make([]tok, 0, len(toks))
	for _, tk := range toks {
		out = append(out, tok{tk.Type, tk.Lexeme})
	}
	return out
}

func TestSliceOperators(t *testing.T) {
	tests := []struct {
		src      string
		expected []tok
	}{
		{"arr[2.,6]", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {INTLIT, "2"}, {DOT_COMMA, ".,"},
			{INTLIT, "6"}, {RBRACKET, "]"}, {EOF, ""},
		}},
		{"arr[2,,6]", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {INTLIT, "2"}, {COMMA_COMMA, ",,"},
			{INTLIT, "6"}, {RBRACKET, "]"}, {EOF, ""},
		}},
		{"arr[2..6]", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {INTLIT, "2"}, {DOT_DOT, ".."},
			{INTLIT, "6"}, {RBRACKET, "]"}, {EOF, ""},
		}},
		// An omitted bound leaves the slice operator adjacent to the bracket.
		{"arr[.,6]", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {DOT_COMMA, ".,"},
			{INTLIT, "6"}, {RBRACKET, "]"}, {EOF, ""},
		}},
		{"arr[2..]", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {INTLIT, "2"}, {DOT_DOT, ".."},
			{RBRACKET, "]"}, {EOF, ""},
		}},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		if !reflect.DeepEqual(actual, tt.expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, tt.expected)
		}
	}
}

func TestNumbersAndDots(t *testing.T) {
	tests := []struct {
		src      string
		expected []tok
	}{
		{"1.5", []tok{{FLOATLIT, "1.5"}, {EOF, ""}}},
		{"42", []tok{{INTLIT, "42"}, {EOF, ""}}},
		// A dot followed by another dot or a comma belongs to a slice
		// operator, not to the number.
		{"2..5", []tok{{INTLIT, "2"}, {DOT_DOT, ".."}, {INTLIT, "5"}, {EOF, ""}}},
		{"2.,5", []tok{{INTLIT, "2"}, {DOT_COMMA, ".,"}, {INTLIT, "5"}, {EOF, ""}}},
		{"3.14.toString()", []tok{
			{FLOATLIT, "3.14"}, {DOT, "."}, {IDENT, "toString"},
			{LPAREN, "("}, {RPAREN, ")"}, {EOF, ""},
		}},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		if !reflect.DeepEqual(actual, tt.expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, tt.expected)
		}
	}
}

func TestNegativeLiterals(t *testing.T) {
	tests := []struct {
		src      string
		expected []tok
	}{
		// Minus after an operand is subtraction.
		{"x - 15", []tok{{IDENT, "x"}, {MINUS, "-"}, {INTLIT, "15"}, {EOF, ""}}},
		{"x-15", []tok{{IDENT, "x"}, {MINUS, "-"}, {INTLIT, "15"}, {EOF, ""}}},
		{"(a) - 5", []tok{
			{LPAREN, "("}, {IDENT, "a"}, {RPAREN, ")"},
			{MINUS, "-"}, {INTLIT, "5"}, {EOF, ""},
		}},
		// Minus anywhere else glues onto the following number.
		{"x = -15;", []tok{
			{IDENT, "x"}, {ASSIGN, "="}, {INTLIT, "-15"}, {SEMICOLON, ";"}, {EOF, ""},
		}},
		{"arr[-1]", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {INTLIT, "-1"}, {RBRACKET, "]"}, {EOF, ""},
		}},
		{"return -3.5;", []tok{
			{RETURN, "return"}, {FLOATLIT, "-3.5"}, {SEMICOLON, ";"}, {EOF, ""},
		}},
		{"f(-2, 3)", []tok{
			{IDENT, "f"}, {LPAREN, "("}, {INTLIT, "-2"}, {COMMA, ","},
			{INTLIT, "3"}, {RPAREN, ")"}, {EOF, ""},
		}},
		// Subtracting an indexed element keeps the minus binary.
		{"arr[0] - 1", []tok{
			{IDENT, "arr"}, {LBRACKET, "["}, {INTLIT, "0"}, {RBRACKET, "]"},
			{MINUS, "-"}, {INTLIT, "1"}, {EOF, ""},
		}},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		if !reflect.DeepEqual(actual, tt.expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, tt.expected)
		}
	}
}

func TestLogicalOperatorWords(t *testing.T) {
	tests := []struct {
		src      string
		expected []tok
	}{
		{"a V b", []tok{{IDENT, "a"}, {OR, "V"}, {IDENT, "b"}, {EOF, ""}}},
		{"a VV b", []tok{{IDENT, "a"}, {XOR, "VV"}, {IDENT, "b"}, {EOF, ""}}},
		{"a & b", []tok{{IDENT, "a"}, {AND, "&"}, {IDENT, "b"}, {EOF, ""}}},
		// V only acts as an operator when it stands alone.
		{"Value", []tok{{IDENT, "Value"}, {EOF, ""}}},
		{"VVery", []tok{{IDENT, "VVery"}, {EOF, ""}}},
		{"V1", []tok{{IDENT, "V1"}, {EOF, ""}}},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		if !reflect.DeepEqual(actual, tt.expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, tt.expected)
		}
	}
}

func TestKeywords(t *testing.T) {
	src := "class public private static inherits enumerated import new return if else elseif loop for until thisclass parent isa not true false void"
	expected := []tok{
		{CLASS, "class"}, {PUBLIC, "public"}, {PRIVATE, "private"}, {STATIC, "static"},
		{INHERITS, "inherits"}, {ENUMERATED, "enumerated"}, {IMPORT, "import"},
		{NEW, "new"}, {RETURN, "return"}, {IF, "if"}, {ELSE, "else"},
		{ELSEIF, "elseif"}, {LOOP, "loop"}, {FOR, "for"}, {UNTIL, "until"},
		{THISCLASS, "thisclass"}, {PARENT, "parent"}, {ISA, "isa"}, {NOT, "not"},
		{TRUE, "true"}, {FALSE, "false"}, {VOID, "void"}, {EOF, ""},
	}
	actual := scan(t, src)
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Actual: %v did not meet expected: %v", actual, expected)
	}
}

func TestTypeKeywords(t *testing.T) {
	src := "boolean character integer longinteger float longfloat string"
	expected := []tok{
		{BOOLEAN, "boolean"}, {CHARACTER, "character"}, {INTEGER, "integer"},
		{LONGINTEGER, "longinteger"}, {FLOAT, "float"}, {LONGFLOAT, "longfloat"},
		{STRING, "string"}, {EOF, ""},
	}
	actual := scan(t, src)
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Actual: %v did not meet expected: %v", actual, expected)
	}
}

func TestOperators(t *testing.T) {
	src := "= == < > <= >= + - * / % ^ ++ -- ->"
	expected := []tok{
		{ASSIGN, "="}, {EQUALS, "=="}, {LESS, "<"}, {GREATER, ">"},
		{LESS_EQ, "<="}, {GREATER_EQ, ">="}, {PLUS, "+"}, {MINUS, "-"},
		{STAR, "*"}, {SLASH, "/"}, {PERCENT, "%"}, {CARET, "^"},
		{INCREMENT, "++"}, {DECREMENT, "--"}, {ARROW, "->"}, {EOF, ""},
	}
	actual := scan(t, src)
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Actual: %v did not meet expected: %v", actual, expected)
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{`"hello"`, "hello"},
		{`"line\nnext"`, "line\nnext"},
		{`"tab\there"`, "tab\there"},
		{`"quote\"inside"`, `quote"inside`},
		{`"back\\slash"`, `back\slash`},
		{`""`, ""},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		expected := []tok{{STRINGLIT, tt.expected}, {EOF, ""}}
		if !reflect.DeepEqual(actual, expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, expected)
		}
	}
}

func TestCharacterLiterals(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{`'a'`, "a"},
		{`'\n'`, "\n"},
		{`'\''`, "'"},
		{`'\\'`, `\`},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		expected := []tok{{CHARLIT, tt.expected}, {EOF, ""}}
		if !reflect.DeepEqual(actual, expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, expected)
		}
	}
}

func TestComments(t *testing.T) {
	tests := []struct {
		src      string
		expected []tok
	}{
		{"// comment\nx", []tok{{IDENT, "x"}, {EOF, ""}}},
		{"x // trailing", []tok{{IDENT, "x"}, {EOF, ""}}},
		{"/* block */ x", []tok{{IDENT, "x"}, {EOF, ""}}},
		{"a /* across\nlines */ b", []tok{{IDENT, "a"}, {IDENT, "b"}, {EOF, ""}}},
		{"/* outer /* not nested */ x", []tok{{IDENT, "x"}, {EOF, ""}}},
	}

	for _, tt := range tests {
		actual := scan(t, tt.src)
		if !reflect.DeepEqual(actual, tt.expected) {
			t.Errorf("%q: Actual: %v did not meet expected: %v", tt.src, actual, tt.expected)
		}
	}
}

func TestUnterminatedComment(t *testing.T) {
	_, err := New("x\n/* never closed").Tokenize()
	if !errors.Is(err, ErrUnterminatedComment) {
		t.Fatalf("expected ErrUnterminatedComment, got %v", err)
	}

	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Line != 2 {
		t.Errorf("Actual: line %d did not meet expected: line 2", lexErr.Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	for _, src := range []string{`"no closing`, "\"crosses\nlines\""} {
		_, err := New(src).Tokenize()
		if !errors.Is(err, ErrUnterminatedString) {
			t.Errorf("%q: expected ErrUnterminatedString, got %v", src, err)
		}
	}
}

func TestInvalidEscape(t *testing.T) {
	_, err := New(`"bad \q escape"`).Tokenize()
	if !errors.Is(err, ErrInvalidEscape) {
		t.Fatalf("expected ErrInvalidEscape, got %v", err)
	}
}

func TestPositions(t *testing.T) {
	toks, err := New("class A {\n  integer x;\n}").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize returned error: %v", err)
	}

	// class(1:1) A(1:7) {(1:9) integer(2:3) x(2:11) ;(2:12) }(3:1)
	expected := []struct {
		tt   TokenType
		line int
		col  int
	}{
		{CLASS, 1, 1}, {IDENT, 1, 7}, {LBRACE, 1, 9},
		{INTEGER, 2, 3}, {IDENT, 2, 11}, {SEMICOLON, 2, 12},
		{RBRACE, 3, 1}, {EOF, 3, 2},
	}

	if len(toks) != len(expected) {
		t.Fatalf("Actual: %d tokens did not meet expected: %d", len(toks), len(expected))
	}
	for i, e := range expected {
		if toks[i].Type != e.tt || toks[i].Line != e.line || toks[i].Column != e.col {
			t.Errorf("token %d: Actual: %v at %d:%d did not meet expected: %v at %d:%d",
				i, toks[i].Type, toks[i].Line, toks[i].Column, e.tt, e.line, e.col)
		}
	}
}

func TestFullDeclaration(t *testing.T) {
	src := `class POINT {
    private float x = 0.0;
    public Initialize(float px) { x = px; }
}`
	expected := []tok{
		{CLASS, "class"}, {IDENT, "POINT"}, {LBRACE, "{"},
		{PRIVATE, "private"}, {FLOAT, "float"}, {IDENT, "x"}, {ASSIGN, "="},
		{FLOATLIT, "0.0"}, {SEMICOLON, ";"},
		{PUBLIC, "public"}, {IDENT, "Initialize"},
		{LPAREN, "("}, {FLOAT, "float"}, {IDENT, "px"}, {RPAREN, ")"},
		{LBRACE, "{"}, {IDENT, "x"}, {ASSIGN, "="}, {IDENT, "px"},
		{SEMICOLON, ";"}, {RBRACE, "}"},
		{RBRACE, "}"}, {EOF, ""},
	}
	actual := scan(t, src)
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("Actual: %v did not meet expected: %v", actual, expected)
	}
}
