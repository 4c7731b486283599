// Package builtins implements the required subroutine table: the `+`,
// `car`, `display` and similar procedures the global environment is
// seeded with. Each is a heap.BuiltinFunc, registered
// through an env.BuiltinSpec so pkg/env never needs to know the set.
package builtins

import (
	"github.com/gitrdm/schemecore/pkg/env"
	"github.com/gitrdm/schemecore/pkg/heap"
)

type entry struct {
	name     string
	fn       heap.BuiltinFunc
	variadic bool
	required int
}

// Specs returns the full required builtin table as env.BuiltinSpecs,
// ready to pass to env.NewGlobal.
func Specs() []env.BuiltinSpec {
	entries := []entry{
		{"number?", builtinNumberP, false, 1},
		{"+", builtinAdd, true, 0},
		{"-", builtinSub, true, 1},
		{"*", builtinMul, true, 0},
		{"/", builtinDiv, true, 1},
		{"=", builtinNumEq, true, 1},
		{"<", builtinLt, true, 1},
		{"<=", builtinLe, true, 1},
		{">", builtinGt, true, 1},
		{">=", builtinGe, true, 1},
		{"boolean?", builtinBooleanP, false, 1},
		{"not", builtinNot, false, 1},
		{"null?", builtinNullP, false, 1},
		{"pair?", builtinPairP, false, 1},
		{"list?", builtinListP, false, 1},
		{"car", builtinCar, false, 1},
		{"cdr", builtinCdr, false, 1},
		{"cons", builtinCons, false, 2},
		{"list", builtinList, true, 0},
		{"length", builtinLength, false, 1},
		{"memq", builtinMemq, false, 2},
		{"last", builtinLast, false, 1},
		{"append", builtinAppend, true, 0},
		{"set-car!", builtinSetCar, false, 2},
		{"set-cdr!", builtinSetCdr, false, 2},
		{"symbol?", builtinSymbolP, false, 1},
		{"procedure?", builtinProcedureP, false, 1},
		{"string?", builtinStringP, false, 1},
		{"string-append", builtinStringAppend, true, 0},
		{"symbol->string", builtinSymbolToString, false, 1},
		{"string->symbol", builtinStringToSymbol, false, 1},
		{"string->number", builtinStringToNumber, false, 1},
		{"number->string", builtinNumberToString, false, 1},
		{"eq?", builtinEq, false, 2},
		{"neq?", builtinNeq, false, 2},
		{"equal?", builtinEqual, false, 2},
		{"display", builtinDisplay, false, 1},
	}
	specs := make([]env.BuiltinSpec, len(entries))
	for i, e := range entries {
		specs[i] = env.BuiltinSpec{Name: e.name, Fn: e.fn, Variadic: e.variadic, Required: e.required}
	}
	return specs
}
