package semantics

import (
	"fmt"
	"strings"

	"github.com/northernsines/foobar/ast"
)

// ErrorKind classifies semantic errors.
type ErrorKind int

const (
	UndefinedVariable ErrorKind = iota
	UndefinedMethod
	TypeMismatch
	PrivateAccessViolation
	DuplicateMethodName
	DuplicateVariable
	InvalidOperation
	MissingEntryPoint
)

var errorKindNames = [...]string{
	UndefinedVariable:      "UndefinedVariable",
	UndefinedMethod:        "UndefinedMethod",
	TypeMismatch:           "TypeMismatch",
	PrivateAccessViolation: "PrivateAccessViolation",
	DuplicateMethodName:    "DuplicateMethodName",
	DuplicateVariable:      "DuplicateVariable",
	InvalidOperation:       "InvalidOperation",
	MissingEntryPoint:      "MissingEntryPoint",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// SemanticError is one diagnostic produced during analysis.
type SemanticError struct {
	Kind ErrorKind
	Pos  ast.Pos
	Msg  string
}

func (e *SemanticError) Error() string {
	if e.Pos.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// CircularInheritanceError reports an inheritance cycle. Chain holds the
// class names in walk order, the first repeated at the end.
type CircularInheritanceError struct {
	Chain []string
}

func (e *CircularInheritanceError) Error() string {
	return "circular inheritance: " + strings.Join(e.Chain, " -> ")
}

// ErrorList accumulates every diagnostic of an analysis run; the analyzer
// never stops at the first problem.
type ErrorList []error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// err returns the list as an error, nil when empty.
func (l ErrorList) err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
