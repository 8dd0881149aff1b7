// The main package for the awards-crawler executable.
package main

import (
	"github.com/JakeFAU/awards-crawler/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
