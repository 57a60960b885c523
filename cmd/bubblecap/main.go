// Command bubblecap draws listed companies as a zoomable market-cap bubble
// chart in the terminal, serves the dataset over HTTP and exports static
// snapshots.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
