//go:build linux

package security

import (
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sys/unix"
)

var (
	mu     sync.Mutex
	locked = false
)

// LockPrivileges sets no_new_privs for the calling process. Calling it
// again is a no-op.
func LockPrivileges() error {
	mu.Lock()
	defer mu.Unlock()

	if locked {
		return nil
	}

	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil {
		return fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", err)
	}

	locked = true
	slog.Debug("no_new_privs set")
	return nil
}

// Locked reports whether the kernel has no_new_privs set for the process,
// whoever set it.
func Locked() (bool, error) {
	v, err := unix.PrctlRetInt(unix.PR_GET_NO_NEW_PRIVS, 0, 0, 0, 0)
	if err != nil {
		return false, fmt.Errorf("prctl(PR_GET_NO_NEW_PRIVS): %w", err)
	}
	return v == 1, nil
}
