package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gitrdm/schemecore/internal/config"
)

// RunCommand loads and evaluates one or more files in sequence, without
// entering an interactive loop.
type RunCommand struct{}

func (c *RunCommand) Help() string {
	return "Usage: scheme run [-config FILE] [-log-level LEVEL] FILE..."
}

func (c *RunCommand) Synopsis() string {
	return "Evaluate one or more Scheme files"
}

func (c *RunCommand) Run(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to an HCL configuration file")
	logLevel := fs.String("log-level", "", "log level (trace, debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, c.Help())
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	s, err := newSession(cfg, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	all := append([]string{}, cfg.Preload...)
	all = append(all, files...)
	if err := s.preload(all); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
