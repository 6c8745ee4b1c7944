package main

import (
	"golang.org/x/sys/unix"

	"github.com/mjl-/symchmod/symbolicmode"
)

// fileMode returns the permission bits of p, including setuid, setgid and
// sticky, as stored by the kernel.
func fileMode(p string) (symbolicmode.Mode, error) {
	var st unix.Stat_t
	if err := unix.Stat(p, &st); err != nil {
		return 0, err
	}
	return symbolicmode.Mode(st.Mode) & symbolicmode.ModeBits, nil
}

// setFileMode sets the raw permission bits of p. Unlike os.Chmod, bits like
// 0o4000 are passed to the kernel as is.
func setFileMode(p string, m symbolicmode.Mode) error {
	return unix.Chmod(p, uint32(m&symbolicmode.ModeBits))
}
