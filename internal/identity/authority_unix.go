//go:build unix

package identity

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// OSAuthority changes the identity of the whole process.
//
// On Linux the Go runtime applies Setuid, Setgid and Setgroups from the
// syscall package to every thread. unix.Setuid and unix.Setgid delegate to
// those; unix.Setgroups does not, so syscall.Setgroups is used directly.
type OSAuthority struct{}

func (OSAuthority) SetUser(uid uint32) error {
	return unix.Setuid(int(uid))
}

func (OSAuthority) SetGroup(gid uint32) error {
	return unix.Setgid(int(gid))
}

func (OSAuthority) ClearSupplementaryGroups() error {
	return syscall.Setgroups([]int{})
}

func (OSAuthority) Current() (State, error) {
	groups, err := unix.Getgroups()
	if err != nil {
		return State{}, err
	}
	return State{
		UID:    uint32(unix.Geteuid()),
		GID:    uint32(unix.Getegid()),
		Groups: len(groups),
	}, nil
}
