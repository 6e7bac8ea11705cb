package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// Context carries what every command needs: the merged configuration and
// the global flags.
type Context struct {
	Config  *Config
	Verbose bool
}

// CLI represents the command-line interface
var CLI struct {
	Config  string     `help:"Configuration file path" default:"foobar.yaml"`
	Verbose bool       `help:"Print each pipeline stage as it completes" short:"v"`
	Compile CompileCmd `cmd:"" help:"Compile a FOOBAR program to a native binary"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// VersionCmd represents the version command
type VersionCmd struct{}

// Run executes the version command
func (cmd *VersionCmd) Run() error {
	fmt.Println("foobar v0.1.0")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI)

	config, err := LoadConfig(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ConfigureLogging(config.LogLevel)

	appCtx := &Context{Config: config, Verbose: CLI.Verbose}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
