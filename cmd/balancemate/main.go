package main

import (
	"os"

	"github.com/balance-mate/balancemate/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
