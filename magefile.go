//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "paperpush"

var Default = Build

// Build compiles the paperpush binary into the repository root.
func Build() error {
	return sh.RunV("go", "build", "-o", binary, "./cmd/paperpush")
}

// Test runs all package tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install builds and installs paperpush into GOPATH/bin.
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/paperpush")
}

// Clean removes the built binary.
func Clean() error {
	return os.RemoveAll(binary)
}
