package symbolicmode

// Compute parses expr and applies it to mode. The umask is only used by
// clauses without class letters, like "=rw". On error, no mode is returned.
func Compute(expr string, mode Mode, isDir bool, umask Mode) (Mode, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return e.Apply(mode, isDir, umask), nil
}

// ComputeProcessUmask is like Compute, but with the umask of the process, as
// chmod itself does. See ProcessUmask for its limitations.
func ComputeProcessUmask(expr string, mode Mode, isDir bool) (Mode, error) {
	e, err := Parse(expr)
	if err != nil {
		return 0, err
	}
	return e.Apply(mode, isDir, ProcessUmask()), nil
}
