// Command scheme is the REPL and batch-file front end for the
// evaluation core: a thin hashicorp/cli command tree around pkg/reader,
// pkg/eval and pkg/builtins.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
)

const version = "0.1.0"

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	if installCompletion() {
		return 0
	}

	c := cli.NewCLI("scheme", version)
	c.Args = args
	c.Commands = map[string]cli.CommandFactory{
		"repl": func() (cli.Command, error) { return &ReplCommand{}, nil },
		"run":  func() (cli.Command, error) { return &RunCommand{}, nil },
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitStatus
}
