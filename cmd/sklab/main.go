package main

import (
	"os"

	"github.com/8ddieHu0314/skill-lab/internal/cli"
)

// Build metadata, injected through -ldflags. The defaults are what a
// plain `go build` produces.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version, cli.Commit, cli.Date = version, commit, date
	os.Exit(run())
}

func run() int {
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}
