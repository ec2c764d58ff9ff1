package main

import (
	"os"

	"github.com/volreg/volreg/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
