package builtins

import "github.com/gitrdm/schemecore/pkg/schemeerr"

func typeErrNotPair(proc string) error {
	return schemeerr.New(schemeerr.Type, "%s: expected a pair", proc)
}

func typeErrNotProperList(proc string) error {
	return schemeerr.New(schemeerr.Type, "%s: expected a proper list", proc)
}

func typeErrNotNumber(proc string) error {
	return schemeerr.New(schemeerr.Type, "%s: expected a number", proc)
}
