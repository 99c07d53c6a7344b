package main

import (
	"fmt"
	"os"
)

// Dependency injection composition root
func main() {
	a := newApp(os.Stdin, os.Stdout, os.Stderr)

	err := newRootCommand(a).Execute()
	if closeErr := a.close(); err == nil {
		err = closeErr
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
