// Command hrai is the entry point for the HR candidate search engine.
// It provides a CLI (via Cobra) for one-shot searches and an HTTP server
// exposing the search API.
package main

import (
	"fmt"
	"os"

	"github.com/54b3r/hrai-go/cmd/hrai/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
