// Package main provides the driftwatch CLI application.
// driftwatch watches relational schemas for unauthorized drift and
// cross-checks them against application routes and forms.
package main

import (
	"os"
)

var (
	// Version is set by build flags
	Version = "dev"
)

func main() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
