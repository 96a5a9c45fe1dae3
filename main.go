// ./main.go
package main

import (
	"github.com/SAIKIRANREDDY98/JH/cmd"
)

// main is the entry point for the jh CLI application.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
