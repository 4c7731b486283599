package reader_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/schemecore/pkg/ast"
	"github.com/gitrdm/schemecore/pkg/reader"
)

func TestParseAllBasicForms(t *testing.T) {
	forms, err := reader.ParseAll(`(+ 1 2) "hi" 'sym #t 3.5`)
	require.NoError(t, err)
	require.Len(t, forms, 5)
	require.Equal(t, ast.Pair, forms[0].Kind())
	require.Equal(t, ast.Str, forms[1].Kind())
	require.Equal(t, ast.Quote, forms[2].Kind())
	require.Equal(t, ast.Bool, forms[3].Kind())
	require.Equal(t, ast.Float, forms[4].Kind())
}

func TestParseDottedPair(t *testing.T) {
	forms, err := reader.ParseAll("(1 . 2)")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	pair := forms[0]
	require.Equal(t, ast.Pair, pair.Kind())
	require.Equal(t, int64(1), pair.Head().IntValue())
	require.Equal(t, int64(2), pair.Cdr().IntValue())
}

func TestIntegerOverflowIsReadError(t *testing.T) {
	_, err := reader.ParseAll("99999999999999999999999999")
	require.Error(t, err)
}

func TestUnterminatedListIsError(t *testing.T) {
	_, err := reader.ParseAll("(+ 1 2")
	require.Error(t, err)
}

func TestCheckBalance(t *testing.T) {
	balanced, err := reader.CheckBalance("(+ 1 2)")
	require.NoError(t, err)
	require.True(t, balanced)

	balanced, err = reader.CheckBalance("(+ 1 (* 2 3)")
	require.NoError(t, err)
	require.False(t, balanced, "an open paren means keep reading, not an error")

	_, err = reader.CheckBalance("(+ 1 2))")
	require.Error(t, err, "a stray close paren is a real error")
}

func TestCheckBalanceAggregatesMultipleStrayCloses(t *testing.T) {
	_, err := reader.CheckBalance("))")
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 errors occurred", "go-multierror's default format lists the count")
}

func TestCheckBalanceIgnoresParensInStringsAndComments(t *testing.T) {
	balanced, err := reader.CheckBalance(`(display ")") ; a comment with a ) in it`)
	require.NoError(t, err)
	require.True(t, balanced)
}
