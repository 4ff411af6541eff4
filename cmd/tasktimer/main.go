// Package main is the entrypoint for the tasktimer API server and admin CLI.
package main

import "tasktimer/backend/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
