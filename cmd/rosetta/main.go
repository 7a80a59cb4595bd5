// Rosetta - ROSINA mass spectrum cleaning tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/rosetta/cmd/rosetta/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
