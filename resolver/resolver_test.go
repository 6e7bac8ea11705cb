package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/northernsines/foobar/ast"
	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/parser"
)

func write(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func resolve(t *testing.T, entryPath string) (*Unit, error) {
	t.Helper()
	src, err := os.ReadFile(entryPath)
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	toks, err := lexer.New(string(src)).Tokenize()
	if err != nil {
		t.Fatalf("lex entry: %v", err)
	}
	prog, err := parser.Parse(entryPath, toks)
	if err != nil {
		t.Fatalf("parse entry: %v", err)
	}
	return Resolve(entryPath, prog)
}

func baseNames(files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = filepath.Base(f)
	}
	return out
}

func TestDependencyOrder(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "helper.foob", `integer Three() { return 3; }`)
	write(t, dir, "util.foob", `import "helper";
integer Double(integer x) { return x * 2; }`)
	entry := write(t, dir, "main.foob", `import "util";
Main() { return Double(Three()) == 6; }`)

	unit, err := resolve(t, entry)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	expected := []string{"helper.foob", "util.foob", "main.foob"}
	actual := baseNames(unit.Files)
	if len(actual) != len(expected) {
		t.Fatalf("Actual: %v did not meet expected: %v", actual, expected)
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("file %d: Actual: %v did not meet expected: %v", i, actual[i], expected[i])
		}
	}

	// Declarations merge dependencies-first: Three, Double, Main.
	names := make([]string, 0, len(unit.Program.Decls))
	for _, d := range unit.Program.Decls {
		names = append(names, d.(*ast.MethodDecl).Name)
	}
	want := []string{"Three", "Double", "Main"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("decl %d: Actual: %v did not meet expected: %v", i, names[i], want[i])
		}
	}
}

func TestDiamondImportsOnce(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "shared.foob", `integer One() { return 1; }`)
	write(t, dir, "a.foob", `import "shared";
integer A() { return One(); }`)
	write(t, dir, "b.foob", `import "shared";
integer B() { return One(); }`)
	entry := write(t, dir, "main.foob", `import "a";
import "b";
Main() { return A() + B() == 2; }`)

	unit, err := resolve(t, entry)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	expected := []string{"shared.foob", "a.foob", "b.foob", "main.foob"}
	actual := baseNames(unit.Files)
	if strings.Join(actual, ",") != strings.Join(expected, ",") {
		t.Errorf("Actual: %v did not meet expected: %v", actual, expected)
	}
}

func TestRelativeSubdirectoryImports(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "util.foob", `integer Half(integer x) { return x / 2; }`)
	write(t, dir, filepath.Join("shapes", "circle.foob"), `import "../util";
class CIRCLE {
    public integer HalfId(integer x) { return Half(x); }
}`)
	entry := write(t, dir, "main.foob", `import "shapes/circle";
Main() { return true; }`)

	unit, err := resolve(t, entry)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	expected := []string{"util.foob", "circle.foob", "main.foob"}
	actual := baseNames(unit.Files)
	if strings.Join(actual, ",") != strings.Join(expected, ",") {
		t.Errorf("Actual: %v did not meet expected: %v", actual, expected)
	}
}

func TestCircularImport(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "util.foob", `import "helper";
integer U() { return 1; }`)
	write(t, dir, "helper.foob", `import "main";
integer H() { return 2; }`)
	entry := write(t, dir, "main.foob", `import "util";
Main() { return true; }`)

	_, err := resolve(t, entry)
	var circ *CircularImportError
	if !errors.As(err, &circ) {
		t.Fatalf("expected CircularImportError, got %v", err)
	}

	expected := []string{"main.foob", "util.foob", "helper.foob", "main.foob"}
	actual := baseNames(circ.Cycle)
	if strings.Join(actual, ",") != strings.Join(expected, ",") {
		t.Errorf("Actual cycle: %v did not meet expected: %v", actual, expected)
	}
	if !strings.Contains(circ.Error(), "circular import") {
		t.Errorf("unexpected message: %v", circ.Error())
	}
}

func TestSelfImport(t *testing.T) {
	dir := t.TempDir()
	entry := write(t, dir, "main.foob", `import "main";
Main() { return true; }`)

	_, err := resolve(t, entry)
	var circ *CircularImportError
	if !errors.As(err, &circ) {
		t.Fatalf("expected CircularImportError, got %v", err)
	}
	if len(circ.Cycle) != 2 {
		t.Errorf("Actual cycle length: %d did not meet expected: 2", len(circ.Cycle))
	}
}

func TestDuplicateSymbol(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.foob", `class CALCULATOR {
    public integer Add(integer x, integer y) { return x + y; }
}`)
	write(t, dir, "b.foob", `class CALCULATOR {
    public integer Mul(integer x, integer y) { return x * y; }
}`)
	entry := write(t, dir, "main.foob", `import "a";
import "b";
Main() { return true; }`)

	_, err := resolve(t, entry)
	var dup *DuplicateSymbolError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSymbolError, got %v", err)
	}
	if dup.Symbol != "CALCULATOR" {
		t.Errorf("Actual: %v did not meet expected: CALCULATOR", dup.Symbol)
	}
	if filepath.Base(dup.FirstFile) != "a.foob" || filepath.Base(dup.SecondFile) != "b.foob" {
		t.Errorf("wrong files: %v and %v", dup.FirstFile, dup.SecondFile)
	}
	for _, f := range []string{"a.foob", "b.foob"} {
		if !strings.Contains(dup.Error(), f) {
			t.Errorf("message %q does not name %s", dup.Error(), f)
		}
	}
}

func TestDuplicateSymbolSameFile(t *testing.T) {
	dir := t.TempDir()
	entry := write(t, dir, "main.foob", `integer F() { return 1; }
integer F() { return 2; }
Main() { return true; }`)

	_, err := resolve(t, entry)
	var dup *DuplicateSymbolError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateSymbolError, got %v", err)
	}
	if dup.FirstFile != dup.SecondFile {
		t.Errorf("expected both positions in one file, got %v and %v", dup.FirstFile, dup.SecondFile)
	}
}

func TestEntryMainShadowsImported(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "lib.foob", `Main() { return false; }
integer Seven() { return 7; }`)
	entry := write(t, dir, "main.foob", `import "lib";
Main() { return true; }`)

	unit, err := resolve(t, entry)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	mains := 0
	for _, d := range unit.Program.Decls {
		m, ok := d.(*ast.MethodDecl)
		if !ok || m.Name != "Main" {
			continue
		}
		mains++
		// The surviving Main must be the entry file's: it returns true.
		ret := m.Body.Stmts[0].(*ast.ReturnStmt)
		if lit, ok := ret.Result.(*ast.Literal); !ok || lit.Value != "true" {
			t.Errorf("imported Main was kept instead of the entry's")
		}
	}
	if mains != 1 {
		t.Errorf("Actual: %d Main declarations did not meet expected: 1", mains)
	}
}

func TestImplicitExtension(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "util.foob", `integer U() { return 1; }`)
	entry := write(t, dir, "main.foob", `import "util";
Main() { return true; }`)

	if _, err := resolve(t, entry); err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	// An explicit extension is honored as written.
	entry2 := write(t, dir, "main2.foob", `import "util.foob";
Main() { return true; }`)
	if _, err := resolve(t, entry2); err != nil {
		t.Fatalf("Resolve with explicit extension returned error: %v", err)
	}
}

func TestImportGraphEdges(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "shared.foob", `integer One() { return 1; }`)
	write(t, dir, "a.foob", `import "shared";
integer A() { return One(); }`)
	entry := write(t, dir, "main.foob", `import "a";
import "shared";
Main() { return true; }`)

	unit, err := resolve(t, entry)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}

	edges := make(map[string]string)
	for importer, targets := range unit.Imports {
		edges[filepath.Base(importer)] = strings.Join(baseNames(targets), ",")
	}
	if edges["main.foob"] != "a.foob,shared.foob" {
		t.Errorf("main edges: Actual: %v did not meet expected: a.foob,shared.foob", edges["main.foob"])
	}
	if edges["a.foob"] != "shared.foob" {
		t.Errorf("a edges: Actual: %v did not meet expected: shared.foob", edges["a.foob"])
	}
	if edges["shared.foob"] != "" {
		t.Errorf("shared edges: Actual: %v did not meet expected: none", edges["shared.foob"])
	}
}

func TestMissingImport(t *testing.T) {
	dir := t.TempDir()
	entry := write(t, dir, "main.foob", `import "nope";
Main() { return true; }`)

	_, err := resolve(t, entry)
	if err == nil {
		t.Fatal("expected an error for a missing import")
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("message %q does not name the missing import", err.Error())
	}
}
