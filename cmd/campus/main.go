package main

import (
	"os"

	"github.com/mmcdole/campus/cmd/campus/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
