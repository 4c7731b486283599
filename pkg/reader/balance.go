package reader

import (
	"github.com/hashicorp/go-multierror"

	"github.com/gitrdm/schemecore/pkg/schemeerr"
)

// CheckBalance scans src the way the REPL does between keystrokes: it
// decides whether every paren and string literal is closed, so the REPL
// knows whether to read another line before handing the buffer to
// ParseAll. A stray closing paren is a real error — and a pasted
// multi-line block can contain more than one, so every occurrence is
// collected via go-multierror rather than just the first. An
// unterminated paren or string is not an error at this stage; it just
// means the input is incomplete.
func CheckBalance(src string) (balanced bool, err error) {
	depth := 0
	inString := false
	inComment := false
	escaped := false
	var errs *multierror.Error

	for _, r := range src {
		if inComment {
			if r == '\n' {
				inComment = false
			}
			continue
		}
		if inString {
			if escaped {
				escaped = false
				continue
			}
			switch r {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}
		switch r {
		case ';':
			inComment = true
		case '"':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				errs = multierror.Append(errs, schemeerr.New(schemeerr.Read, "unexpected close paren"))
				depth = 0
			}
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return false, err
	}
	return depth == 0 && !inString, nil
}
