package main

import (
	"os"

	"expensetracker/cmd/expenses/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
