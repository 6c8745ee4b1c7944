//go:build unix

package symbolicmode

import (
	"sync"

	"golang.org/x/sys/unix"
)

var umaskLock sync.Mutex

// ProcessUmask returns the umask of the process.
//
// The umask can only be read by setting a new one, so it is briefly set to 0
// and then restored. Calls through this package are serialized, but a
// concurrent umask change or file creation elsewhere in the process can race
// with it. Pass an explicit umask to Compute if that matters.
func ProcessUmask() Mode {
	umaskLock.Lock()
	defer umaskLock.Unlock()

	old := unix.Umask(0)
	unix.Umask(old)
	return Mode(old) & PermBits
}
