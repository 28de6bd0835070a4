package toolchain

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dreamio-app/dreamio-release/internal/logger"
)

// Config is the immutable build configuration for one compile invocation.
// It is set once per run and never mutated mid-build; the flags reproduce
// the size-reduced, panic-aborting release profile the updater ships with.
type Config struct {
	// Cargo is the build tool executable, overridable for tests.
	Cargo string
	// Toolchain is the compiler channel (nightly is required for the std rebuild).
	Toolchain string
	// Target is the platform triple to cross-compile for.
	Target string
	// Binary is the produced executable's filename, including extension.
	Binary string
	// WorkDir is the crate root the build runs in. Empty means current directory.
	WorkDir string
}

var (
	errTargetRequired = errors.New("build target must be provided")
	errBinaryRequired = errors.New("binary name must be provided")
)

// Builder compiles the updater executable.
type Builder struct {
	cfg Config
}

// NewBuilder validates the configuration and returns a Builder.
func NewBuilder(cfg Config) (*Builder, error) {
	if strings.TrimSpace(cfg.Target) == "" {
		return nil, errTargetRequired
	}

	if strings.TrimSpace(cfg.Binary) == "" {
		return nil, errBinaryRequired
	}

	if cfg.Cargo == "" {
		cfg.Cargo = "cargo"
	}

	if cfg.Toolchain == "" {
		cfg.Toolchain = "nightly"
	}

	return &Builder{cfg: cfg}, nil
}

// Args returns the full build-tool argument list for this configuration.
func (b *Builder) Args() []string {
	return []string{
		"+" + b.cfg.Toolchain,
		"build",
		"--release",
		"--target", b.cfg.Target,
		"-Z", "build-std=std,panic_abort",
		"-Z", "build-std-features=panic_immediate_abort",
	}
}

// Flags returns the compiler flag string exported through the environment:
// debug locations stripped, size-first optimization, aborting panics.
func (b *Builder) Flags() string {
	return "-Zlocation-detail=none -C panic=abort -C opt-level=z -C strip=symbols"
}

// OutputPath is the deterministic location of the built executable.
func (b *Builder) OutputPath() string {
	return filepath.Join(b.cfg.WorkDir, "target", b.cfg.Target, "release", b.cfg.Binary)
}

// Build runs the compile and returns the path of the produced executable.
// A missing toolchain, an unavailable target or a compile error is fatal:
// the error propagates and the pipeline publishes nothing.
func (b *Builder) Build(ctx context.Context) (string, error) {
	logger.InfoKV(ctx, "Building updater executable",
		"toolchain", b.cfg.Toolchain,
		"target", b.cfg.Target)

	cmd := exec.CommandContext(ctx, b.cfg.Cargo, b.Args()...)
	cmd.Dir = b.cfg.WorkDir
	cmd.Env = append(os.Environ(), "RUSTFLAGS="+b.Flags())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("compile %s for %s: %w", b.cfg.Binary, b.cfg.Target, err)
	}

	outputPath := b.OutputPath()
	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("built executable not found at %s: %w", outputPath, err)
	}

	logger.InfoKV(ctx, "Build finished", "output", outputPath)

	return outputPath, nil
}
