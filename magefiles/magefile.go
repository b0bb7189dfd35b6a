//go:build mage

// Package main provides build targets for unitforge using Mage.
//
// Usage:
//
//	mage build     Compile the unitforge binary to bin/
//	mage test      Run all tests
//	mage race      Run all tests with the race detector
//	mage cover     Run tests and write coverage.out
//	mage lint      Run golangci-lint
//	mage units     List the built-in units with the freshly built binary
//	mage clean     Remove build artifacts
//	mage install   Install unitforge to GOPATH/bin
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo        = "go"
	binLint      = "golangci-lint"
	binaryName   = "unitforge"
	binaryDir    = "bin"
	cmdDir       = "./cmd/unitforge"
	coverProfile = "coverage.out"
)

// Build compiles the unitforge binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector. Sessions sharing one registry
// are exercised concurrently by the interp tests.
func Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover runs all tests with coverage and prints the per-function summary.
func Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Units builds the binary and lists the built-in units and relations. The
// listing uses throwaway config and data directories.
func Units() error {
	mg.Deps(Build)
	tmp, err := os.MkdirTemp("", "unitforge-units")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	bin := filepath.Join(binaryDir, binaryName)
	dirs := []string{"--config-dir", filepath.Join(tmp, "config"), "--data-dir", filepath.Join(tmp, "data")}
	if err := sh.RunV(bin, append(dirs, "units")...); err != nil {
		return err
	}
	fmt.Println()
	return sh.RunV(bin, append(dirs, "units", "--relations")...)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	if err := os.Remove(coverProfile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
