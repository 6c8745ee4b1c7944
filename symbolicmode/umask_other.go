//go:build !unix

package symbolicmode

// ProcessUmask returns 0o022, there is no process umask on this platform.
func ProcessUmask() Mode {
	return 0o022
}
