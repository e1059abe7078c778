// Command calc drives the calculator from the shell: key scripts run offline,
// prompts go to the configured AI solver.
package main

import (
	"context"
	"fmt"
	"os"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	root := newRootCmd(defaultDeps())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
