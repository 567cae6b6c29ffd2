//go:build mage

// Package main contains Mage build targets for bulletin-fetcher developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "bulletin-fetcher"
	cmdPkg  = "./cmd/bulletin-fetcher"
	outDir  = "Pdfstore"
)

// Default runs when mage is invoked without a target.
var Default = Build

// Init creates the Pdfstore directory the fetcher writes into.
func Init() error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", outDir, err)
	}
	fmt.Println("  ", outDir)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Fetch builds the binary and downloads every bulletin into Pdfstore/.
func Fetch() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName))
}

// Clean removes the built binary.
func Clean() error {
	return sh.Rm(binDir)
}
