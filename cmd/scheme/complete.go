package main

import (
	"github.com/posener/complete"

	"github.com/gitrdm/schemecore/pkg/builtins"
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/heap"
)

// installCompletion wires a posener/complete predictor for the `repl`
// and `run` subcommands: file paths for -config, -preload and run's
// arguments, level names for -log-level, and the builtin procedure
// names (not names a preload file defines) as extra candidates for
// -preload. It returns true if complete.Complete() handled the
// invocation (a completion request, not a real run).
func installCompletion() bool {
	names := globalNames()

	cmp := complete.New("scheme", complete.Command{
		Sub: complete.Commands{
			"repl": complete.Command{
				Flags: complete.Flags{
					"-config":    complete.PredictFiles("*.hcl"),
					"-log-level": complete.PredictSet("trace", "debug", "info", "warn", "error"),
					"-preload":   complete.PredictOr(complete.PredictFiles("*.scm"), complete.PredictSet(names...)),
				},
			},
			"run": complete.Command{
				Args: complete.PredictFiles("*.scm"),
				Flags: complete.Flags{
					"-config":    complete.PredictFiles("*.hcl"),
					"-log-level": complete.PredictSet("trace", "debug", "info", "warn", "error"),
				},
			},
		},
	})
	return cmp.Complete()
}

// globalNames builds a throwaway heap and global environment purely to
// read off the builtin table's bound names for shell completion.
func globalNames() []string {
	h := heap.New(heap.Options{})
	g, err := env.NewGlobal(h, builtins.Specs())
	if err != nil {
		return nil
	}
	return g.Names()
}
