// Package cross wraps the cross-compilation tool that produces the ARM
// binary. The tool is treated as opaque: fixed command line, exit code only.
package cross

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inky-deploy/internal/execx"
)

// Builder invokes the cross tool for a fixed target triple.
type Builder struct {
	Tool      string
	Target    string
	TargetDir string
	Binary    string
	DryRun    bool

	runner execx.Runner
}

// NewBuilder creates a builder for the given tool, triple and output layout.
func NewBuilder(tool, target, targetDir, binary string, dryRun bool) *Builder {
	return &Builder{
		Tool:      tool,
		Target:    target,
		TargetDir: targetDir,
		Binary:    binary,
		DryRun:    dryRun,
		runner:    execx.System{},
	}
}

// NewBuilderWithRunner is like NewBuilder but runs commands through the
// given runner. Used by tests.
func NewBuilderWithRunner(tool, target, targetDir, binary string, dryRun bool, runner execx.Runner) *Builder {
	b := NewBuilder(tool, target, targetDir, binary, dryRun)
	b.runner = runner
	return b
}

// Build runs `<tool> build --target <triple>`, adding `--release` when
// release is set. Build output goes to the terminal.
func (b *Builder) Build(release bool) error {
	args := []string{"build", "--target", b.Target}
	if release {
		args = append(args, "--release")
	}
	if b.DryRun {
		fmt.Printf("[dry-run] %s %s\n", b.Tool, strings.Join(args, " "))
		return nil
	}
	if err := b.runner.Run(b.Tool, args...); err != nil {
		return fmt.Errorf("%s build: %w", b.Tool, err)
	}
	return nil
}

// Clean removes the local build output directory tree.
func (b *Builder) Clean() error {
	if b.DryRun {
		fmt.Printf("[dry-run] rm -rf %s\n", b.TargetDir)
		return nil
	}
	if err := os.RemoveAll(b.TargetDir); err != nil {
		return fmt.Errorf("removing %s: %w", b.TargetDir, err)
	}
	return nil
}

// ArtifactPath returns the path of the built binary for the given mode.
func (b *Builder) ArtifactPath(release bool) string {
	mode := "debug"
	if release {
		mode = "release"
	}
	return filepath.Join(b.TargetDir, b.Target, mode, b.Binary)
}
