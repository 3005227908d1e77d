// Command avisos is a terminal client for the alert feed. It reads a roster
// snapshot from JSON and keeps dismissals and toggles in a local state file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
