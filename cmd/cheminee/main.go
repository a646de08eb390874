// Command cheminee is the chemical structure search engine's entry point:
// a single binary exposing every standardize/convert/index/search
// operation both as CLI subcommands and, via "cheminee serve", as an
// HTTP API.
package main

import (
	"os"

	"github.com/cheminee/search-engine/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	os.Exit(cli.Execute())
}
