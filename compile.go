package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"github.com/northernsines/foobar/codegen"
	"github.com/northernsines/foobar/dot"
	"github.com/northernsines/foobar/lexer"
	"github.com/northernsines/foobar/parser"
	"github.com/northernsines/foobar/resolver"
	"github.com/northernsines/foobar/semantics"
)

// stageNames are printed in verbose mode as each pipeline stage completes.
var stageNames = [...]string{
	"Lexical analysis",
	"Parsing",
	"Import resolution",
	"Semantic analysis",
	"Code generation",
}

// CompileCmd represents the compile command
type CompileCmd struct {
	EntryFile string `arg:"" help:"Entry source file"`
	Output    string `help:"Output binary path; defaults to the entry file without its extension" short:"o"`
	KeepC     bool   `help:"Keep the intermediate C file next to the output binary" name:"keep-c"`
	Graph     string `help:"Write the import graph to this file in Graphviz dot syntax" name:"graph"`
}

// Run executes the compile command
func (cmd *CompileCmd) Run(ctx *Context) error {
	output := cmd.Output
	if output == "" {
		output = defaultOutput(cmd.EntryFile)
	}

	src, err := os.ReadFile(cmd.EntryFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cmd.EntryFile, err)
	}

	toks, err := lexer.New(string(src)).Tokenize()
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.EntryFile, err)
	}
	cmd.stage(ctx, 1)

	prog, err := parser.Parse(cmd.EntryFile, toks)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.EntryFile, err)
	}
	cmd.stage(ctx, 2)

	unit, err := resolver.Resolve(cmd.EntryFile, prog)
	if err != nil {
		return err
	}
	cmd.stage(ctx, 3)
	if ctx.Verbose {
		for _, file := range unit.Files {
			fmt.Printf("  %s\n", relPath(file))
		}
	}

	if cmd.Graph != "" {
		if err := writeImportGraph(unit, cmd.Graph); err != nil {
			return fmt.Errorf("writing import graph: %w", err)
		}
	}

	analyzed, err := semantics.Analyze(unit)
	if err != nil {
		return err
	}
	cmd.stage(ctx, 4)

	cSource, err := codegen.Generate(analyzed)
	if err != nil {
		return err
	}
	cmd.stage(ctx, 5)

	keepC := cmd.KeepC || ctx.Config.KeepC
	if err := buildBinary(ctx.Config, cSource, output, keepC); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"entry":  cmd.EntryFile,
		"output": output,
		"files":  len(unit.Files),
	}).Debug("Build finished")

	if ctx.Verbose {
		color.Green("Compiled %s -> %s", cmd.EntryFile, output)
	}

	return nil
}

// stage reports the n-th pipeline stage as done.
func (cmd *CompileCmd) stage(ctx *Context, n int) {
	if !ctx.Verbose {
		return
	}
	color.Cyan("[%d/%d] %s", n, len(stageNames), stageNames[n-1])
}

// defaultOutput strips the source extension; an extensionless entry gains
// .out so the binary never replaces its own source.
func defaultOutput(entry string) string {
	out := strings.TrimSuffix(entry, filepath.Ext(entry))
	if out == entry {
		out += ".out"
	}
	return out
}

// relPath shortens path for display when it sits under the working
// directory.
func relPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

// writeImportGraph renders the resolved dependency graph in the same order
// compilation sees: dependencies first, the entry file last.
func writeImportGraph(unit *resolver.Unit, path string) error {
	g := dot.New("imports")
	for _, file := range unit.Files {
		g.AddNode(relPath(file))
	}
	for _, from := range unit.Files {
		for _, to := range unit.Imports[from] {
			g.AddEdge(relPath(from), relPath(to))
		}
	}
	return g.WriteFile(path)
}
