// Package main provides the entry point for the metastat metadata inspector.
package main

import (
	"os"
	"path/filepath"

	"metastat/internal/cli"
)

func main() {
	os.Exit(cli.Run(filepath.Base(os.Args[0]), os.Args[1:], os.Stdout, os.Stderr))
}
