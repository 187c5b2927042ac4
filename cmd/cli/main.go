// Package main - CLI entry point
package main

import (
	"fmt"
	"os"

	"vdi-cost/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
