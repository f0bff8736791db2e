//go:build !linux

package security

// LockPrivileges always fails on non-Linux systems.
func LockPrivileges() error {
	return ErrNotSupported
}

// Locked always fails on non-Linux systems; there is no bit to report.
func Locked() (bool, error) {
	return false, ErrNotSupported
}
