package main

import (
	"fmt"
	"os"

	"github.com/itchan-dev/nanashi/backend/cmd/nanashictl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
