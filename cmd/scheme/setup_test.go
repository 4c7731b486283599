package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/internal/config"
)

func TestStringListAccumulates(t *testing.T) {
	var sl stringList
	require.NoError(t, sl.Set("a.scm"))
	require.NoError(t, sl.Set("b.scm"))
	require.Equal(t, []string{"a.scm", "b.scm"}, []string(sl))
	require.Equal(t, "a.scm,b.scm", sl.String())
}

func TestNewSessionBuildsWorkingEvaluator(t *testing.T) {
	s, err := newSession(&config.Config{}, "warn")
	require.NoError(t, err)
	require.NotNil(t, s.Heap)
	require.NotNil(t, s.Global)
	require.NotNil(t, s.Eval)
}

func TestPreloadAggregatesFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.scm")
	require.NoError(t, os.WriteFile(good, []byte("(define x 1)"), 0o644))

	s, err := newSession(&config.Config{}, "warn")
	require.NoError(t, err)

	err = s.preload([]string{good, filepath.Join(dir, "missing.scm")})
	require.Error(t, err, "a missing file must surface as an aggregated error")

	v, ok := s.Global.Lookup("x")
	require.True(t, ok, "the good file's bindings survive a later failure")
	v.Release()
}
