//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Harvest builds the CLI and harvests one case URL into the working directory.
func Harvest(url string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "harvest", url)
}

// Serve builds the CLI and starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}
