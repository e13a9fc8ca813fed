// Command annotcheck validates an annotation export file: it decodes the
// block wire format, replays the blocks through the default validation
// rules, and prints a per-channel summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"annotcore/internal/core"
	"annotcore/internal/infra/persistence/memory"
	"annotcore/pkg/interval"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and
// exits the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("annotcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		input  string
		strict bool
	)
	fs.StringVar(&input, "input", "", "path to annotation export JSON")
	fs.BoolVar(&strict, "strict", false, "reject unrecognized spatial tags")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(input, strict, stdout); err != nil {
		if _, writeErr := fmt.Fprintf(stderr, "Annotation validation failed: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}
	if _, writeErr := fmt.Fprintln(stdout, "Annotation validation passed."); writeErr != nil {
		return 1
	}
	return 0
}

// validatePath rejects empty, absolute, and path-traversing inputs so the
// command only reads files under the working tree.
func validatePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path")
	}
	if filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute paths not allowed: %s", p)
	}
	clean := filepath.Clean(p)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", p)
	}
	return clean, nil
}

// run decodes the export file, replays it through a fresh in-memory store
// with the default rules installed, and writes the summary. Blocking rule
// violations fail the run; warnings are reported in the summary.
func run(input string, strict bool, stdout io.Writer) error {
	safePath, err := validatePath(input)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(safePath) // #nosec G304: path validated by validatePath
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	engine := core.NewDefaultRulesEngine()
	svc := core.NewService(memory.NewStore(engine), engine)
	blocks, res, err := svc.ImportBlocks(context.Background(), data, interval.DecodeOptions{Strict: strict})
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return fmt.Errorf("export contains no blocks")
	}

	for _, block := range blocks {
		if _, err := fmt.Fprintf(stdout, "video %d: %d channel(s)\n", block.VideoID, len(block.Channels)); err != nil {
			return err
		}
		for _, ch := range block.Channels {
			suffix := ""
			if strings.HasPrefix(ch.Name, interval.HiddenChannelPrefix) {
				suffix = " (hidden)"
			}
			if _, err := fmt.Fprintf(stdout, "  %s: %d interval(s)%s\n", ch.Name, ch.Set.Len(), suffix); err != nil {
				return err
			}
		}
	}
	for _, v := range res.Violations {
		if _, err := fmt.Fprintf(stdout, "warning: %s: %s\n", v.Rule, v.Message); err != nil {
			return err
		}
	}
	return nil
}
