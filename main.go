// ./main.go
package main

import (
	"github.com/xkilldash9x/nova-bridge/cmd"
)

// main is the entry point for the nova-bridge CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// All parsing, configuration and execution happens there.
	cmd.Execute()
}
