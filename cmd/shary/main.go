package main

import (
	"os"

	"shary/cmd/shary/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
