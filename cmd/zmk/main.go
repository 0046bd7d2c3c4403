package main

import (
	"os"

	"github.com/zmk-tools/zmk-cli/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
