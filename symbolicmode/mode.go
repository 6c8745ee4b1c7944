// Package symbolicmode computes file modes from chmod-style symbolic mode
// expressions like "u=rwx,g+s,o-w", following the semantics of GNU chmod.
//
// Expressions are parsed once with Parse and can be applied to any number of
// starting modes with Expr.Apply. Compute does both in one call. Numeric modes
// ("755") are not handled, callers can use strconv.ParseUint for those.
package symbolicmode

import (
	"strings"
)

// Mode holds the 12 permission bits of a file: setuid, setgid, sticky and the
// read/write/execute bits for owner, group and other. It is the raw st_mode
// permission layout, not an os.FileMode.
type Mode uint32

const (
	SetUID Mode = 0o4000
	SetGID Mode = 0o2000
	Sticky Mode = 0o1000

	UserRWX  Mode = 0o700
	GroupRWX Mode = 0o070
	OtherRWX Mode = 0o007

	// ModeBits are all bits a Mode can hold. Other bits are ignored on input
	// and never set on output.
	ModeBits Mode = 0o7777

	// PermBits are the owner/group/other bits, the only bits a umask applies to.
	PermBits Mode = 0o777

	readAll  Mode = 0o444
	writeAll Mode = 0o222
	execAll  Mode = 0o111
)

// String returns the mode in the notation of ls -l, without file type, e.g.
// "rwsr-xr-T".
func (m Mode) String() string {
	b := []byte("rwxrwxrwx")
	for i := range b {
		if m&(1<<(8-i)) == 0 {
			b[i] = '-'
		}
	}
	special := func(bit Mode, i int, c byte) {
		if m&bit == 0 {
			return
		}
		if b[i] == 'x' {
			b[i] = c
		} else {
			b[i] = c - 'a' + 'A'
		}
	}
	special(SetUID, 2, 's')
	special(SetGID, 5, 's')
	special(Sticky, 8, 't')
	return string(b)
}

// Format returns a symbolic expression that sets exactly mode m when applied
// to a regular file, e.g. "u=rwx,g=rx,o=r" for 0o754 and "u=rws,g=,o=t" for
// 0o5600.
//
// For directories, GNU chmod keeps setuid and setgid on "=" unless they are
// mentioned, so Format(m) only reproduces m on a directory that has neither.
func Format(m Mode) string {
	class := func(letter string, shift uint, special Mode, c string) string {
		s := letter + "="
		bits := (m >> shift) & 0o7
		if bits&0o4 != 0 {
			s += "r"
		}
		if bits&0o2 != 0 {
			s += "w"
		}
		if bits&0o1 != 0 {
			s += "x"
		}
		if m&special != 0 {
			s += c
		}
		return s
	}
	return strings.Join([]string{
		class("u", 6, SetUID, "s"),
		class("g", 3, SetGID, "s"),
		class("o", 0, Sticky, "t"),
	}, ",")
}
