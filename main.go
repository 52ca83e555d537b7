package main

import (
	"fmt"
	"os"

	"github.com/hsb3/github_inventory/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the github_inventory command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
