// The main package for the shopcrawl executable.
package main

import (
	"github.com/shopcrawl/shopcrawl/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
