package main

import (
	"os"

	"lessons/cmd/lessons/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
