// Package identity changes the user and group identity of the running
// process.
//
// The order of the underlying calls matters. Once a process gives up root
// as its user identity it can no longer change its group identity, so when
// starting from root the group and the supplementary groups are changed
// before the user. The Engine always returns the OS error of the first call
// that fails; nothing is retried.
package identity

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrIdentityMismatch is returned in strict mode when the identity read
	// back after a transition differs from the requested one.
	ErrIdentityMismatch = errors.New("identity transition did not take effect")

	// ErrUnsupported is returned by OSAuthority on platforms without
	// POSIX identity calls.
	ErrUnsupported = errors.New("identity changes are not supported on this platform")
)

// Identity is a numeric user and group pair.
type Identity struct {
	UID uint32
	GID uint32
}

// Privileged is the root identity the launcher expects to be able to assume.
var Privileged = Identity{UID: 0, GID: 0}

func (i Identity) String() string {
	return fmt.Sprintf("%d:%d", i.UID, i.GID)
}

// State is the effective identity of the process as reported by the OS.
type State struct {
	UID uint32
	GID uint32
	// Groups is the number of supplementary groups.
	Groups int
}

func (s State) String() string {
	return fmt.Sprintf("uid=%d gid=%d groups=%d", s.UID, s.GID, s.Groups)
}

// Authority performs the raw identity calls. Every call reports its own
// failure and callers must check each one.
type Authority interface {
	SetUser(uid uint32) error
	SetGroup(gid uint32) error
	ClearSupplementaryGroups() error
	Current() (State, error)
}

// Engine runs identity transitions against an Authority.
type Engine struct {
	authority Authority
	strict    bool
}

// NewEngine returns an Engine. With strict set, every transition is
// verified by reading the resulting identity back.
func NewEngine(authority Authority, strict bool) *Engine {
	return &Engine{authority: authority, strict: strict}
}

// Strict reports whether transitions are verified.
func (e *Engine) Strict() bool {
	return e.strict
}

// Assume changes the effective user and group to target and clears the
// supplementary groups.
func (e *Engine) Assume(target Identity) error {
	current, err := e.authority.Current()
	if err != nil {
		return fmt.Errorf("reading current identity: %w", err)
	}

	if current.UID == 0 {
		if err := e.setGroup(target.GID); err != nil {
			return err
		}
		if err := e.clearGroups(); err != nil {
			return err
		}
		if err := e.setUser(target.UID); err != nil {
			return err
		}
	} else {
		if err := e.setUser(target.UID); err != nil {
			return err
		}
		if err := e.setGroup(target.GID); err != nil {
			return err
		}
		// Clearing needs CAP_SETGID, which an unprivileged process only
		// lacks when there is nothing left to clear.
		after, err := e.authority.Current()
		if err != nil {
			return fmt.Errorf("reading current identity: %w", err)
		}
		if after.Groups != 0 {
			if err := e.clearGroups(); err != nil {
				return err
			}
		}
	}

	if e.strict {
		return e.verify(target)
	}
	return nil
}

// Elevate assumes the privileged identity as a self-check that the
// launcher was started with enough rights. Outside strict mode a failure is
// only reported, since the following Drop is fully checked anyway.
func (e *Engine) Elevate(privileged Identity) error {
	err := e.Assume(privileged)
	if err == nil {
		slog.Debug("Escalated to privileged identity", "identity", privileged)
		return nil
	}
	if e.strict {
		return fmt.Errorf("escalating to %s: %w", privileged, err)
	}
	slog.Warn("Could not escalate to privileged identity, continuing", "identity", privileged, "error", err)
	return nil
}

// Drop assumes the target identity. Any failure is returned regardless of
// mode: continuing after a failed drop could run the action with
// unintended privileges.
func (e *Engine) Drop(target Identity) error {
	if err := e.Assume(target); err != nil {
		return fmt.Errorf("dropping to %s: %w", target, err)
	}
	slog.Debug("Dropped to target identity", "identity", target)
	return nil
}

func (e *Engine) setUser(uid uint32) error {
	if err := e.authority.SetUser(uid); err != nil {
		return fmt.Errorf("setuid(%d): %w", uid, err)
	}
	return nil
}

func (e *Engine) setGroup(gid uint32) error {
	if err := e.authority.SetGroup(gid); err != nil {
		return fmt.Errorf("setgid(%d): %w", gid, err)
	}
	return nil
}

func (e *Engine) clearGroups() error {
	if err := e.authority.ClearSupplementaryGroups(); err != nil {
		return fmt.Errorf("setgroups(0): %w", err)
	}
	return nil
}

func (e *Engine) verify(target Identity) error {
	got, err := e.authority.Current()
	if err != nil {
		return fmt.Errorf("verifying identity: %w", err)
	}
	switch {
	case got.UID != target.UID:
		return fmt.Errorf("%w: expected user ID %d, instead got %d", ErrIdentityMismatch, target.UID, got.UID)
	case got.GID != target.GID:
		return fmt.Errorf("%w: expected group ID %d, instead got %d", ErrIdentityMismatch, target.GID, got.GID)
	case got.Groups != 0:
		return fmt.Errorf("%w: expected 0 supplementary groups, instead got %d", ErrIdentityMismatch, got.Groups)
	}
	return nil
}
