package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gitrdm/schemecore/internal/config"
	"github.com/gitrdm/schemecore/pkg/reader"
	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// ReplCommand drops into an interactive read-eval-print loop, collecting
// garbage after every top-level form.
type ReplCommand struct {
	debugHeap bool
}

func (c *ReplCommand) Help() string {
	return "Usage: scheme repl [-config FILE] [-log-level LEVEL] [-preload FILE...]"
}

func (c *ReplCommand) Synopsis() string {
	return "Start an interactive read-eval-print loop"
}

func (c *ReplCommand) Run(args []string) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to an HCL configuration file")
	logLevel := fs.String("log-level", "", "log level (trace, debug, info, warn, error)")
	debugHeap := fs.Bool("debug-heap", false, "dump the live value slab after every collection")
	var preload stringList
	fs.Var(&preload, "preload", "file to load before entering the loop (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	c.debugHeap = *debugHeap

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

	files := append([]string{}, cfg.Preload...)
	files = append(files, []string(preload)...)
	if err := s.preload(files); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	return c.loop(s)
}

func (c *ReplCommand) loop(s *session) int {
	in := bufio.NewScanner(os.Stdin)
	var buf strings.Builder

	prompt := func() {
		if buf.Len() == 0 {
			fmt.Print("scheme> ")
		} else {
			fmt.Print("...... ")
		}
	}

	prompt()
	for in.Scan() {
		buf.WriteString(in.Text())
		buf.WriteString("\n")

		balanced, err := reader.CheckBalance(buf.String())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			buf.Reset()
			prompt()
			continue
		}
		if !balanced {
			prompt()
			continue
		}

		src := buf.String()
		buf.Reset()
		c.evalChunk(s, src)
		prompt()
	}
	fmt.Println()
	return 0
}

func (c *ReplCommand) evalChunk(s *session, src string) {
	forms, err := reader.ParseAll(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, form := range forms {
		v, err := s.Eval.EvalTop(form, s.Global)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			if schemeerr.IsFatal(err) {
				os.Exit(1)
			}
		} else {
			fmt.Println(s.Heap.Print(v))
			v.Release()
		}
		s.Heap.Collect()
		if c.debugHeap {
			fmt.Fprintln(os.Stderr, s.Heap.DebugDump())
		}
	}
}

// stringList implements flag.Value so -preload can be repeated.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
