// Command catalogctl runs catalog and reconciliation chores against the
// configured store without the HTTP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(openRuntime).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
