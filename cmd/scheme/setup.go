package main

import (
	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/gitrdm/schemecore/internal/config"
	"github.com/gitrdm/schemecore/pkg/builtins"
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/eval"
	"github.com/gitrdm/schemecore/pkg/heap"
)

// session bundles the three collaborators every command needs: a heap,
// the global environment seeded with the builtin table, and an
// evaluator over both.
type session struct {
	Heap   *heap.Heap
	Global *env.Environment
	Eval   *eval.Evaluator
}

func newSession(cfg *config.Config, logLevel string) (*session, error) {
	level := hclog.Info
	if logLevel != "" {
		level = hclog.LevelFromString(logLevel)
	} else if cfg.LogLevel != "" {
		level = hclog.LevelFromString(cfg.LogLevel)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "scheme",
		Level: level,
	})

	h := heap.New(heap.Options{
		ValueCapacity: cfg.HeapCapacity,
		EnvCapacity:   cfg.EnvCapacity,
		Logger:        logger,
	})

	global, err := env.NewGlobal(h, builtins.Specs())
	if err != nil {
		return nil, err
	}

	return &session{
		Heap:   h,
		Global: global,
		Eval:   eval.New(h, global, logger),
	}, nil
}

// preload loads each file in order, continuing past a failed file so a
// single bad preload doesn't hide errors in the rest of the list — every
// failure is collected into one aggregated error.
func (s *session) preload(paths []string) error {
	var errs *multierror.Error
	for _, p := range paths {
		if err := s.Eval.LoadFile(p, s.Global); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}
