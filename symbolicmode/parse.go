package symbolicmode

import (
	"strings"
)

// Expr is a parsed symbolic mode expression. It is immutable and can be
// applied concurrently.
type Expr struct {
	text    string
	clauses []clause
}

type clause struct {
	text string

	// Bits touched by the clause's classes, zero when no class letter was
	// given. Zero selects all bits, but masked by the umask.
	who      Mode
	segments []segment
}

type segment struct {
	text string
	op   byte // '=', '+' or '-'.

	// For literal permissions, the bits of all classes the letters stand for.
	// For a copy, the rwx bits of the source class.
	value Mode
	copy  bool
	condX bool // 'X' was present.
}

// Parse parses a comma-separated list of clauses like "u=rwx,g+s,o-w,a=u".
func Parse(expr string) (*Expr, error) {
	if expr == "" {
		return nil, &InvalidError{Expr: expr, Reason: "empty expression"}
	}
	e := &Expr{text: expr}
	for _, t := range strings.Split(expr, ",") {
		c, err := parseClause(t)
		if err != nil {
			err.Expr = expr
			return nil, err
		}
		e.clauses = append(e.clauses, c)
	}
	return e, nil
}

// String returns the expression as it was parsed.
func (e *Expr) String() string {
	return e.text
}

func parseClause(s string) (clause, *InvalidError) {
	c := clause{text: s}
	xerr := func(seg, reason string) *InvalidError {
		return &InvalidError{Clause: s, Segment: seg, Reason: reason}
	}
	if s == "" {
		return c, xerr("", "empty clause")
	}

	i := 0
classes:
	for ; i < len(s); i++ {
		switch s[i] {
		case 'u', 'g', 'o', 'a':
			c.who |= classBits(s[i])
		case '=', '+', '-':
			break classes
		default:
			return c, xerr("", "invalid class "+quoteChar(s[i]))
		}
	}
	if i == len(s) {
		return c, xerr("", "missing operator")
	}
	if i == 0 && s[0] != '=' {
		// GNU chmod accepts this and complains afterwards if the umask got in
		// the way. We reject it before changing anything.
		return c, xerr("", "operator "+quoteChar(s[0])+" requires a class")
	}

	for i < len(s) {
		end := i + 1
		for end < len(s) && !isOp(s[end]) {
			end++
		}
		seg, err := parseSegment(s[i:end])
		if err != nil {
			err.Clause = s
			return c, err
		}
		c.segments = append(c.segments, seg)
		i = end
	}
	return c, nil
}

func parseSegment(s string) (segment, *InvalidError) {
	seg := segment{text: s, op: s[0]}
	perms := s[1:]
	xerr := func(reason string) *InvalidError {
		return &InvalidError{Segment: s, Reason: reason}
	}

	if strings.ContainsAny(perms, "ugo") {
		if len(perms) != 1 {
			return seg, xerr("copy from class must be the only permission")
		}
		seg.copy = true
		seg.value = classBits(perms[0]) & PermBits
		return seg, nil
	}

	for i := 0; i < len(perms); i++ {
		switch perms[i] {
		case 'r':
			seg.value |= readAll
		case 'w':
			seg.value |= writeAll
		case 'x':
			seg.value |= execAll
		case 'X':
			seg.condX = true
		case 's':
			seg.value |= SetUID | SetGID
		case 't':
			seg.value |= Sticky
		default:
			return seg, xerr("invalid permission " + quoteChar(perms[i]))
		}
	}
	return seg, nil
}

func isOp(c byte) bool {
	return c == '=' || c == '+' || c == '-'
}

func quoteChar(c byte) string {
	return "'" + string(rune(c)) + "'"
}
