package main

import (
	"os"

	"github.com/tmarcon/chargesim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
