//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

// Default target when running `stave` with no arguments.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
}

const (
	binaryName = "h5index"
	mainPkg    = "./cmd/h5index"
	binDir     = "bin"
)

// The HDF5 bindings need cgo and the system libhdf5.
var cgoEnv = map[string]string{"CGO_ENABLED": "1"}

// All runs lint and tests, then builds.
func All() error {
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Build compiles the h5index binary.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating bin directory: %w", err)
	}
	output := filepath.Join(binDir, binaryName)
	return sh.RunWithV(cgoEnv, "go", "build", "-ldflags", buildLdflags(), "-o", output, mainPkg)
}

// Install installs h5index into GOBIN.
func Install() error {
	return sh.RunWithV(cgoEnv, "go", "install", "-ldflags", buildLdflags(), mainPkg)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	return sh.RunWithV(cgoEnv, "go", "test", "-race", "-cover", "./...")
}

// TestPure runs the tests of packages that do not touch libhdf5.
func TestPure() error {
	pkgs := []string{
		"./pkg/h5index/normalize/...",
		"./pkg/h5index/manifest/...",
		"./pkg/h5index/logging/...",
		"./pkg/h5index/config/...",
	}
	return sh.RunV("go", append([]string{"test", "-cover"}, pkgs...)...)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if st.Verbose() {
		fmt.Printf("Removing %s/\n", binDir)
	}
	return sh.Rm(binDir + "/")
}

// Fmt formats all Go code.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("running gofmt: %w", err)
	}
	return sh.Run("goimports", "-w", ".")
}

// Tidy runs go mod tidy.
func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version := "dev"
	commit := "unknown"
	date := time.Now().Format(time.RFC3339)

	if v, err := sh.Output("git", "describe", "--tags", "--always"); err == nil && v != "" {
		version = strings.TrimSpace(v)
	}
	if c, err := sh.Output("git", "rev-parse", "--short", "HEAD"); err == nil && c != "" {
		commit = strings.TrimSpace(c)
	}

	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s", version, commit, date)
}
