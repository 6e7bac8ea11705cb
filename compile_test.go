package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/northernsines/foobar/codegen"
	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/parser"
	"github.com/northernsines/foobar/resolver"
	"github.com/northernsines/foobar/semantics"
)

func TestDefaultOutput(t *testing.T) {
	cases := []struct {
		entry    string
		expected string
	}{
		{"prog.foob", "prog"},
		{filepath.Join("dir", "app.foob"), filepath.Join("dir", "app")},
		{"noext", "noext.out"},
	}
	for _, c := range cases {
		if actual := defaultOutput(c.entry); actual != c.expected {
			t.Errorf("%s: Expected: %v, Actual: %v", c.entry, c.expected, actual)
		}
	}
}

func TestWriteImportGraph(t *testing.T) {
	unit := &resolver.Unit{
		Files: []string{"util.foob", "main.foob"},
		Imports: map[string][]string{
			"main.foob": {"util.foob"},
		},
	}
	path := filepath.Join(t.TempDir(), "imports.dot")
	if err := writeImportGraph(unit, path); err != nil {
		t.Fatalf("writeImportGraph returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read graph: %v", err)
	}
	expected := "digraph \"imports\" {\n" +
		"  \"util.foob\"\n" +
		"  \"main.foob\"\n" +
		"  \"main.foob\" -> {\"util.foob\"}\n" +
		"}\n"
	if string(data) != expected {
		t.Errorf("Expected:\n%s\nActual:\n%s", expected, data)
	}
}

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCompilePipelineProducesC(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "vec.foob", `class VEC {
    public float x;
    public float y;
    public Initialize(float vx, float vy) { x = vx; y = vy; }
    public float Dot(VEC other) { return x * other.x + y * other.y; }
}`)
	writeSource(t, dir, "util.foob", `import "vec";
float Diag(VEC v) { return MATH.SquareRoot(v.Dot(v)); }`)
	entry := writeSource(t, dir, "main.foob", `import "util";
Main() {
    VEC v = new VEC(3.0, 4.0);
    return Diag(v) == 5.0;
}`)

	src, err := os.ReadFile(entry)
	require.NoError(t, err)
	toks, err := lexer.New(string(src)).Tokenize()
	require.NoError(t, err)
	prog, err := parser.Parse(entry, toks)
	require.NoError(t, err)
	unit, err := resolver.Resolve(entry, prog)
	require.NoError(t, err)

	files := make([]string, len(unit.Files))
	for i, f := range unit.Files {
		files[i] = filepath.Base(f)
	}
	require.Equal(t, []string{"vec.foob", "util.foob", "main.foob"}, files)

	analyzed, err := semantics.Analyze(unit)
	require.NoError(t, err)
	cSource, err := codegen.Generate(analyzed)
	require.NoError(t, err)

	require.Contains(t, cSource, "VEC* VEC_new(float vx, float vy)")
	require.Contains(t, cSource, "float VEC_Dot(VEC* self, VEC* other)")
	require.Contains(t, cSource, "float Diag(VEC* v)")
	require.Contains(t, cSource, "MATH_square_root(VEC_Dot(v, v))")
	require.Contains(t, cSource, "int main(void)")

	again, err := codegen.Generate(analyzed)
	require.NoError(t, err)
	require.Equal(t, cSource, again)
}
