// Command forge is the CLI front end over the forge-engine packages: it
// wires parse/merge/simulate/render/schema/analyze subcommands over the core
// parser, merge engine, flow simulator, renderer adapters, and analyzer.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/forgekit/forge-engine/cmd/forge/cmd"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var exitErr *cmd.ExitCodeError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}
