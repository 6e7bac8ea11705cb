package lexer

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENT     // variable / class / method name
	INTLIT    // decimal integer literal, possibly negative
	FLOATLIT  // decimal floating-point literal, possibly negative
	STRINGLIT // string literal "..."
	CHARLIT   // character literal '...'

	// Declaration keywords
	CLASS
	PUBLIC
	PRIVATE
	STATIC
	INHERITS
	ENUMERATED
	IMPORT
	NEW

	// Statement keywords
	RETURN
	IF
	ELSE
	ELSEIF
	LOOP
	FOR
	UNTIL

	// Expression keywords
	THISCLASS
	PARENT
	ISA
	NOT
	TRUE
	FALSE

	// Type keywords
	BOOLEAN
	CHARACTER
	INTEGER
	LONGINTEGER
	FLOAT
	LONGFLOAT
	STRING
	VOID

	// Paired delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	DOT       // . (member access)
	COMMA     // ,
	SEMICOLON // ;

	// Slice operators, named after their lexemes. They are lexed anywhere
	// they appear; the parser rejects them outside index brackets.
	DOT_COMMA   // ., inclusive start, exclusive end
	COMMA_COMMA // ,, exclusive start, exclusive end
	DOT_DOT     // .. inclusive start, inclusive end

	// Operators
	ASSIGN     // =
	PLUS       // +
	MINUS      // -
	STAR       // *
	SLASH      // /
	PERCENT    // %
	CARET      // ^ (power)
	EQUALS     // ==
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
	AND        // & (logical and)
	OR         // V (logical or)
	XOR        // VV (logical xor)
	INCREMENT  // ++
	DECREMENT  // --
	ARROW      // -> (lambda)
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:         "EOF",
	IDENT:       "IDENT",
	INTLIT:      "INTLIT",
	FLOATLIT:    "FLOATLIT",
	STRINGLIT:   "STRINGLIT",
	CHARLIT:     "CHARLIT",
	CLASS:       "class",
	PUBLIC:      "public",
	PRIVATE:     "private",
	STATIC:      "static",
	INHERITS:    "inherits",
	ENUMERATED:  "enumerated",
	IMPORT:      "import",
	NEW:         "new",
	RETURN:      "return",
	IF:          "if",
	ELSE:        "else",
	ELSEIF:      "elseif",
	LOOP:        "loop",
	FOR:         "for",
	UNTIL:       "until",
	THISCLASS:   "thisclass",
	PARENT:      "parent",
	ISA:         "isa",
	NOT:         "not",
	TRUE:        "true",
	FALSE:       "false",
	BOOLEAN:     "boolean",
	CHARACTER:   "character",
	INTEGER:     "integer",
	LONGINTEGER: "longinteger",
	FLOAT:       "float",
	LONGFLOAT:   "longfloat",
	STRING:      "string",
	VOID:        "void",
	LBRACE:      "{",
	RBRACE:      "}",
	LPAREN:      "(",
	RPAREN:      ")",
	LBRACKET:    "[",
	RBRACKET:    "]",
	DOT:         ".",
	COMMA:       ",",
	SEMICOLON:   ";",
	DOT_COMMA:   ".,",
	COMMA_COMMA: ",,",
	DOT_DOT:     "..",
	ASSIGN:      "=",
	PLUS:        "+",
	MINUS:       "-",
	STAR:        "*",
	SLASH:       "/",
	PERCENT:     "%",
	CARET:       "^",
	EQUALS:      "==",
	LESS:        "<",
	GREATER:     ">",
	LESS_EQ:     "<=",
	GREATER_EQ:  ">=",
	AND:         "&",
	OR:          "V",
	XOR:         "VV",
	INCREMENT:   "++",
	DECREMENT:   "--",
	ARROW:       "->",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && tokenNames[t] != "" {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"class":       CLASS,
	"public":      PUBLIC,
	"private":     PRIVATE,
	"static":      STATIC,
	"inherits":    INHERITS,
	"enumerated":  ENUMERATED,
	"import":      IMPORT,
	"new":         NEW,
	"return":      RETURN,
	"if":          IF,
	"else":        ELSE,
	"elseif":      ELSEIF,
	"loop":        LOOP,
	"for":         FOR,
	"until":       UNTIL,
	"thisclass":   THISCLASS,
	"parent":      PARENT,
	"isa":         ISA,
	"not":         NOT,
	"true":        TRUE,
	"false":       FALSE,
	"boolean":     BOOLEAN,
	"character":   CHARACTER,
	"integer":     INTEGER,
	"longinteger": LONGINTEGER,
	"float":       FLOAT,
	"longfloat":   LONGFLOAT,
	"string":      STRING,
	"void":        VOID,
}

// Token is a single lexical unit, produced once and consumed linearly.
type Token struct {
	Type   TokenType
	Lexeme string
	Line   int // 1-based source line
	Column int // 1-based source column
}

func (t Token) String() string {
	switch t.Type {
	case IDENT, INTLIT, FLOATLIT, STRINGLIT, CHARLIT:
		return fmt.Sprintf("%s(%q)", t.Type, t.Lexeme)
	}
	return t.Type.String()
}

// IsType reports whether the token starts a type reference.
func (t Token) IsType() bool {
	switch t.Type {
	case BOOLEAN, CHARACTER, INTEGER, LONGINTEGER, FLOAT, LONGFLOAT, STRING, VOID, IDENT:
		return true
	}
	return false
}

// endsOperand reports whether a token can be the final token of an operand.
// It decides whether a following "-digit" sequence is a negative literal or
// the binary minus operator.
func (t Token) endsOperand() bool {
	switch t.Type {
	case IDENT, INTLIT, FLOATLIT, STRINGLIT, CHARLIT, RPAREN, RBRACKET, TRUE, FALSE:
		return true
	}
	return false
}
