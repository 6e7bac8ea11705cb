// Package resolver loads the transitive import closure of an entry file and
// merges it into a single program. Resolution is a barrier stage: semantic
// analysis only ever sees an acyclic, duplicate-free, fully merged unit.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/northernsines/foobar/ast"
	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/parser"
)

// Extension is appended to import paths written without one.
const Extension = ".foob"

// Unit is the output of import resolution: every reachable file in
// dependency order (entry last) and the merged program. Imports holds the
// resolved graph edges, importer to imported, in source order.
type Unit struct {
	Files   []string // absolute paths, dependencies before importers
	Program *ast.Program
	Imports map[string][]string
}

// CircularImportError reports an import cycle. Cycle holds the files in
// discovery order; the first file is repeated at the end to close the loop.
type CircularImportError struct {
	Cycle []string
}

func (e *CircularImportError) Error() string {
	return "circular import: " + strings.Join(e.Cycle, " -> ")
}

// DuplicateSymbolError reports a top-level name defined in two places.
type DuplicateSymbolError struct {
	Symbol     string
	FirstFile  string
	SecondFile string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("duplicate symbol %s: defined in %s and %s",
		e.Symbol, e.FirstFile, e.SecondFile)
}

type resolver struct {
	stack   []string // DFS stack of absolute paths
	onStack map[string]bool
	parsed  map[string]*ast.Program
	order   []string // post-order: dependencies first
	edges   map[string][]string
}

// Resolve walks the imports of the already-parsed entry file depth-first,
// parsing each imported file exactly once.
func Resolve(entryPath string, entry *ast.Program) (*Unit, error) {
	abs, err := filepath.Abs(entryPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", entryPath, err)
	}

	r := &resolver{
		onStack: make(map[string]bool),
		parsed:  make(map[string]*ast.Program),
		edges:   make(map[string][]string),
	}
	if err := r.visit(abs, entry); err != nil {
		return nil, err
	}
	return r.merge(abs)
}

func (r *resolver) visit(path string, prog *ast.Program) error {
	r.onStack[path] = true
	r.stack = append(r.stack, path)

	for _, imp := range prog.Imports {
		target, err := r.resolvePath(path, imp.Path)
		if err != nil {
			return err
		}
		r.edges[path] = append(r.edges[path], target)

		if r.onStack[target] {
			return r.cycleError(target)
		}
		if _, done := r.parsed[target]; done {
			continue
		}

		imported, err := loadFile(target)
		if err != nil {
			return fmt.Errorf("%s: importing %q: %w", path, imp.Path, err)
		}
		log.WithFields(log.Fields{
			"from":   path,
			"import": target,
		}).Debug("Resolved import")

		if err := r.visit(target, imported); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	r.onStack[path] = false
	r.parsed[path] = prog
	r.order = append(r.order, path)
	return nil
}

// resolvePath canonicalizes an import path relative to the importing file's
// directory, appending the source extension when none is written.
func (r *resolver) resolvePath(importer, path string) (string, error) {
	if filepath.Ext(path) == "" {
		path += Extension
	}
	target := filepath.Join(filepath.Dir(importer), filepath.FromSlash(path))
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("%s: importing %q: %w", importer, path, err)
	}
	return abs, nil
}

func (r *resolver) cycleError(target string) error {
	start := 0
	for i, p := range r.stack {
		if p == target {
			start = i
			break
		}
	}
	cycle := append([]string{}, r.stack[start:]...)
	cycle = append(cycle, target)
	return &CircularImportError{Cycle: cycle}
}

func loadFile(path string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.New(string(src)).Tokenize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog, err := parser.Parse(path, toks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// merge concatenates declarations dependency-first and rejects duplicate
// top-level names. Main is exempt: only the entry file's Main survives,
// imported ones are dropped.
func (r *resolver) merge(entry string) (*Unit, error) {
	merged := &ast.Program{File: entry}
	definedIn := make(map[string]string)

	for _, path := range r.order {
		prog := r.parsed[path]
		for _, decl := range prog.Decls {
			name := declName(decl)

			if name == "Main" {
				if path != entry {
					continue
				}
				merged.Decls = append(merged.Decls, decl)
				continue
			}

			if first, dup := definedIn[name]; dup {
				return nil, &DuplicateSymbolError{
					Symbol:     name,
					FirstFile:  first,
					SecondFile: path,
				}
			}
			definedIn[name] = path
			merged.Decls = append(merged.Decls, decl)
		}
	}

	return &Unit{Files: r.order, Program: merged, Imports: r.edges}, nil
}

func declName(decl ast.Decl) string {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		return d.Name
	case *ast.EnumDecl:
		return d.Name
	case *ast.MethodDecl:
		return d.Name
	case *ast.ImportDecl:
		return ""
	}
	return ""
}
