// Package main provides the entry point for turbine.
package main

import (
	"os"

	"github.com/yndnr/turbine-go/internal/cli/command"
)

func main() {
	os.Exit(command.Execute(os.Args))
}
