// Matchbook CLI: log and review match play results from the command line
//
// Usage:
//
//	matchbook login --server http://localhost:8080 --email player@example.com
//	matchbook match add --course Erinvale --opponent Sam --result Win --score "3 & 2"
//	matchbook match list --period "This Year"
//	matchbook stats --year 2024
//	matchbook chart --out performance.svg
package main

import (
	"fmt"
	"os"

	"github.com/matchbook/matchbook/cmd/matchbook/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
