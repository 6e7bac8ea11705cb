package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ToolchainError carries the system compiler's diagnostics verbatim.
type ToolchainError struct {
	Compiler string
	Stderr   string
}

func (e *ToolchainError) Error() string {
	return fmt.Sprintf("%s failed:\n%s", e.Compiler, strings.TrimRight(e.Stderr, "\n"))
}

// buildBinary writes the generated C source and hands it to the system
// compiler. The intermediate file lands next to the output binary and
// survives only when keepC is set; otherwise it gets a unique throwaway
// name so concurrent builds of the same program cannot trample each other.
func buildBinary(cfg *Config, cSource, outputPath string, keepC bool) error {
	cPath := outputPath + ".c"
	if !keepC {
		cPath = fmt.Sprintf("%s.%s.c", outputPath, uuid.NewString())
	}

	if err := os.WriteFile(cPath, []byte(cSource), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cPath, err)
	}
	if !keepC {
		defer os.Remove(cPath)
	}

	args := append([]string{cPath, "-o", outputPath}, cfg.Flags...)
	cmd := exec.Command(cfg.Compiler, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	log.WithFields(log.Fields{
		"compiler": cfg.Compiler,
		"args":     args,
	}).Debug("Invoking system compiler")

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return &ToolchainError{Compiler: cfg.Compiler, Stderr: stderr.String()}
		}
		return fmt.Errorf("running %s: %w", cfg.Compiler, err)
	}

	return nil
}
