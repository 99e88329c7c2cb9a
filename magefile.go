//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "ankismart"

// Default target when running plain "mage"
var Default = Build

// Build compiles the ankismart binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/ankismart")
}

// Install installs ankismart into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/ankismart")
}

// Test runs all package tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes the binary
func Clean() error {
	return os.RemoveAll(binary)
}
