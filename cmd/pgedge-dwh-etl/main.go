// Package main is the entry point for pgedge-dwh-etl.
package main

import (
	"fmt"
	"os"

	"github.com/pgEdge/pgedge-dwh-etl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
