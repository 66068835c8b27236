// Command prism manages Commander deck collections and tells players which stripes
// to paint on each card sleeve.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newCLI().rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}
