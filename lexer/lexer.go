package lexer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Sentinel scanning errors. Callers match with errors.Is; the position is
// carried by the wrapping LexError.
var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrInvalidEscape       = errors.New("invalid escape sequence")
	ErrInvalidCharacter    = errors.New("character literal must contain exactly one character")
	ErrUnexpectedCharacter = errors.New("unexpected character")
)

// LexError decorates a scanning error with the position it occurred at.
type LexError struct {
	Line   int
	Column int
	Err    error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d:%d: %v", e.Line, e.Column, e.Err)
}

func (e *LexError) Unwrap() error { return e.Err }

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
	col  int // current 1-based source column
}

func New(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// Tokenize scans the entire input and returns the token stream, terminated
// by an EOF token. The first scanning failure aborts the scan.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		l.skipWhitespace()
		if l.pos >= len(l.src) {
			toks = append(toks, Token{Type: EOF, Line: l.line, Column: l.col})
			return toks, nil
		}

		r := l.peek()
		line, col := l.line, l.col

		switch {
		case r == '/' && l.peekAt(1) == '/':
			l.skipLineComment()
			continue
		case r == '/' && l.peekAt(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return nil, err
			}
			continue
		case unicode.IsLetter(r) || r == '_':
			toks = append(toks, l.scanWord())
			continue
		case unicode.IsDigit(r):
			toks = append(toks, l.scanNumber(false))
			continue
		case r == '"':
			tok, err := l.scanString()
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			continue
		case r == '\'':
			tok, err := l.scanCharacter()
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			continue
		}

		// A minus directly followed by a digit opens a negative numeric
		// literal, unless the previous token could end an operand, in which
		// case it has to be the binary minus in an expression like "x-1".
		if r == '-' && unicode.IsDigit(l.peekAt(1)) {
			if len(toks) == 0 || !toks[len(toks)-1].endsOperand() {
				toks = append(toks, l.scanNumber(true))
				continue
			}
		}

		tok, err := l.scanOperator()
		if err != nil {
			return nil, err
		}
		tok.Line, tok.Column = line, col
		toks = append(toks, tok)
	}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	return l.peekAt(0)
}

// peekAt returns the rune n positions ahead of the current position.
func (l *Lexer) peekAt(n int) rune {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.src) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipLineComment discards everything up to but not including end-of-line.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// skipBlockComment discards everything up to and including the closing "*/".
func (l *Lexer) skipBlockComment() error {
	line, col := l.line, l.col
	l.advance() // /
	l.advance() // *
	for l.pos < len(l.src) {
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			return nil
		}
		l.advance()
	}
	return &LexError{Line: line, Column: col, Err: ErrUnterminatedComment}
}

// isIdentRune reports whether r may appear inside an identifier.
func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// scanWord collects an identifier or keyword. The single letter V and the
// pair VV are the OR and XOR operators, but only when they are not the
// prefix of a longer identifier such as "Value".
func (l *Lexer) scanWord() Token {
	line, col := l.line, l.col

	if l.peek() == 'V' {
		if l.peekAt(1) == 'V' && !isIdentRune(l.peekAt(2)) {
			l.advance()
			l.advance()
			return Token{Type: XOR, Lexeme: "VV", Line: line, Column: col}
		}
		if !isIdentRune(l.peekAt(1)) {
			l.advance()
			return Token{Type: OR, Lexeme: "V", Line: line, Column: col}
		}
	}

	start := l.pos
	for l.pos < len(l.src) && isIdentRune(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENT
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line, Column: col}
}

// scanNumber collects an integer or float literal. A dot is part of the
// number only once, and never when it opens a slice operator, so "2.,6"
// scans as INTLIT(2) DOT_COMMA INTLIT(6).
func (l *Lexer) scanNumber(negative bool) Token {
	line, col := l.line, l.col
	var sb strings.Builder
	if negative {
		sb.WriteRune(l.advance()) // -
	}
	hasDot := false
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '.' {
			next := l.peekAt(1)
			if next == '.' || next == ',' {
				break
			}
			if hasDot {
				break
			}
			hasDot = true
		} else if !unicode.IsDigit(r) {
			break
		}
		sb.WriteRune(l.advance())
	}
	tt := INTLIT
	if hasDot {
		tt = FLOATLIT
	}
	return Token{Type: tt, Lexeme: sb.String(), Line: line, Column: col}
}

// unescape maps the escape character c to its value. The escape set is
// fixed: \n \t \\ \" \'.
func unescape(c rune) (rune, bool) {
	switch c {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case '\'':
		return '\'', true
	}
	return 0, false
}

// scanString collects a double-quoted string literal. The stored lexeme is
// the unescaped string value without the quotes.
func (l *Lexer) scanString() (Token, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return Token{}, &LexError{Line: line, Column: col, Err: ErrUnterminatedString}
		}
		r := l.advance()
		if r == '"' {
			return Token{Type: STRINGLIT, Lexeme: sb.String(), Line: line, Column: col}, nil
		}
		if r == '\\' {
			if l.pos >= len(l.src) {
				return Token{}, &LexError{Line: line, Column: col, Err: ErrUnterminatedString}
			}
			esc, ok := unescape(l.advance())
			if !ok {
				return Token{}, &LexError{Line: l.line, Column: l.col, Err: ErrInvalidEscape}
			}
			sb.WriteRune(esc)
			continue
		}
		sb.WriteRune(r)
	}
}

// scanCharacter collects a single-quoted character literal.
func (l *Lexer) scanCharacter() (Token, error) {
	line, col := l.line, l.col
	l.advance() // opening quote
	if l.pos >= len(l.src) {
		return Token{}, &LexError{Line: line, Column: col, Err: ErrUnterminatedString}
	}
	r := l.advance()
	if r == '\'' {
		return Token{}, &LexError{Line: line, Column: col, Err: ErrInvalidCharacter}
	}
	if r == '\\' {
		if l.pos >= len(l.src) {
			return Token{}, &LexError{Line: line, Column: col, Err: ErrUnterminatedString}
		}
		esc, ok := unescape(l.advance())
		if !ok {
			return Token{}, &LexError{Line: l.line, Column: l.col, Err: ErrInvalidEscape}
		}
		r = esc
	}
	if l.pos >= len(l.src) || l.peek() != '\'' {
		return Token{}, &LexError{Line: line, Column: col, Err: ErrUnterminatedString}
	}
	l.advance() // closing quote
	return Token{Type: CHARLIT, Lexeme: string(r), Line: line, Column: col}, nil
}

// scanOperator collects operator and punctuation tokens. Comments, words,
// numbers and quoted literals have already been handled by the caller.
func (l *Lexer) scanOperator() (Token, error) {
	r := l.advance()
	switch r {
	case '{':
		return Token{Type: LBRACE, Lexeme: "{"}, nil
	case '}':
		return Token{Type: RBRACE, Lexeme: "}"}, nil
	case '(':
		return Token{Type: LPAREN, Lexeme: "("}, nil
	case ')':
		return Token{Type: RPAREN, Lexeme: ")"}, nil
	case '[':
		return Token{Type: LBRACKET, Lexeme: "["}, nil
	case ']':
		return Token{Type: RBRACKET, Lexeme: "]"}, nil
	case ';':
		return Token{Type: SEMICOLON, Lexeme: ";"}, nil
	case '.':
		if l.peek() == ',' {
			l.advance()
			return Token{Type: DOT_COMMA, Lexeme: ".,"}, nil
		}
		if l.peek() == '.' {
			l.advance()
			return Token{Type: DOT_DOT, Lexeme: ".."}, nil
		}
		return Token{Type: DOT, Lexeme: "."}, nil
	case ',':
		if l.peek() == ',' {
			l.advance()
			return Token{Type: COMMA_COMMA, Lexeme: ",,"}, nil
		}
		return Token{Type: COMMA, Lexeme: ","}, nil
	case '-':
		if l.peek() == '>' {
			l.advance()
			return Token{Type: ARROW, Lexeme: "->"}, nil
		}
		if l.peek() == '-' {
			l.advance()
			return Token{Type: DECREMENT, Lexeme: "--"}, nil
		}
		return Token{Type: MINUS, Lexeme: "-"}, nil
	case '+':
		if l.peek() == '+' {
			l.advance()
			return Token{Type: INCREMENT, Lexeme: "++"}, nil
		}
		return Token{Type: PLUS, Lexeme: "+"}, nil
	case '=':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: EQUALS, Lexeme: "=="}, nil
		}
		return Token{Type: ASSIGN, Lexeme: "="}, nil
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: LESS_EQ, Lexeme: "<="}, nil
		}
		return Token{Type: LESS, Lexeme: "<"}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: GREATER_EQ, Lexeme: ">="}, nil
		}
		return Token{Type: GREATER, Lexeme: ">"}, nil
	case '*':
		return Token{Type: STAR, Lexeme: "*"}, nil
	case '/':
		return Token{Type: SLASH, Lexeme: "/"}, nil
	case '%':
		return Token{Type: PERCENT, Lexeme: "%"}, nil
	case '^':
		return Token{Type: CARET, Lexeme: "^"}, nil
	case '&':
		return Token{Type: AND, Lexeme: "&"}, nil
	}
	return Token{}, &LexError{
		Line:   l.line,
		Column: l.col - 1,
		Err:    fmt.Errorf("%w %q", ErrUnexpectedCharacter, r),
	}
}
