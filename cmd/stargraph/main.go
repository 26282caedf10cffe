package main

import (
	"os"

	"github.com/agenthands/stargraph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
