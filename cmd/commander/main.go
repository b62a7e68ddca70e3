// Command commander runs the coding agent against a sandboxed mission
// directory, either once from the terminal or as an MCP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(osBackends).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
