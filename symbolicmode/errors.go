package symbolicmode

import (
	"errors"
	"fmt"
)

// ErrInvalid is matched by all errors returned for malformed expressions.
var ErrInvalid = errors.New("invalid symbolic mode")

// InvalidError describes why a symbolic mode expression was rejected.
type InvalidError struct {
	Expr    string // Full expression.
	Clause  string // Offending comma-separated clause, if known.
	Segment string // Offending operator segment within Clause, if known.
	Reason  string
}

func (e *InvalidError) Error() string {
	s := fmt.Sprintf("%v %q: %s", ErrInvalid, e.Expr, e.Reason)
	if e.Segment != "" {
		s += fmt.Sprintf(" (in %q of clause %q)", e.Segment, e.Clause)
	} else if e.Clause != "" && e.Clause != e.Expr {
		s += fmt.Sprintf(" (in clause %q)", e.Clause)
	}
	return s
}

func (e *InvalidError) Is(target error) bool {
	return target == ErrInvalid
}
