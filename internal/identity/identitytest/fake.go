// Package identitytest provides an in-memory identity.Authority for tests.
package identitytest

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/taskrunners/launcher/internal/identity"
)

// Fake models the kernel rules that matter for identity transitions: only
// an effective uid of 0 may switch to another user or group, or touch the
// supplementary groups.
type Fake struct {
	mu    sync.Mutex
	state identity.State
	calls []string

	// Fail makes a call return the given error without changing state.
	// Keys are call names ("setuid", "setgid", "setgroups", "current") or
	// single invocations such as "setuid(1000)".
	Fail map[string]error

	// WrongGID, when non-nil, makes setgid report success while leaving
	// the effective gid at this value.
	WrongGID *uint32
}

// New returns a Fake starting from the given state.
func New(start identity.State) *Fake {
	return &Fake{state: start, Fail: map[string]error{}}
}

// Root returns a Fake that starts as root with supplementary groups.
func Root() *Fake {
	return New(identity.State{UID: 0, GID: 0, Groups: 3})
}

func (f *Fake) record(call string) error {
	f.calls = append(f.calls, call)
	return f.Fail[call]
}

func (f *Fake) SetUser(uid uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(fmt.Sprintf("setuid(%d)", uid)); err != nil {
		return err
	}
	if err := f.Fail["setuid"]; err != nil {
		return err
	}
	if f.state.UID != 0 && f.state.UID != uid {
		return syscall.EPERM
	}
	f.state.UID = uid
	return nil
}

func (f *Fake) SetGroup(gid uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record(fmt.Sprintf("setgid(%d)", gid)); err != nil {
		return err
	}
	if err := f.Fail["setgid"]; err != nil {
		return err
	}
	if f.state.UID != 0 && f.state.GID != gid {
		return syscall.EPERM
	}
	if f.WrongGID != nil {
		f.state.GID = *f.WrongGID
		return nil
	}
	f.state.GID = gid
	return nil
}

func (f *Fake) ClearSupplementaryGroups() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.record("setgroups(0)"); err != nil {
		return err
	}
	if err := f.Fail["setgroups"]; err != nil {
		return err
	}
	if f.state.UID != 0 {
		return syscall.EPERM
	}
	f.state.Groups = 0
	return nil
}

func (f *Fake) Current() (identity.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.Fail["current"]; err != nil {
		return identity.State{}, err
	}
	return f.state, nil
}

// State returns the current fake identity.
func (f *Fake) State() identity.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Calls returns the identity-changing calls made so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := make([]string, len(f.calls))
	copy(calls, f.calls)
	return calls
}
