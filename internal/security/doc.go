// Package security locks the launcher out of regaining privileges.
//
// On Linux, LockPrivileges sets the no_new_privs bit with prctl(2):
//
//   - execve(2) no longer honours setuid/setgid bits or file capabilities,
//     so a runner started after the identity drop cannot climb back to root
//     through a setuid binary such as sudo or su.
//   - The bit is inherited across fork, clone and execve and can never be
//     cleared again.
//
// The launcher sets the bit after the identity drop and before exec, and
// only for runners that ask for it in their config.
//
// On other platforms LockPrivileges and Locked return ErrNotSupported.
package security

import "errors"

// ErrNotSupported is returned where no_new_privs does not exist.
var ErrNotSupported = errors.New("no_new_privs is not supported on this platform")
