//go:build !unix

package identity

// OSAuthority fails every call on platforms without POSIX identities.
type OSAuthority struct{}

func (OSAuthority) SetUser(uint32) error { return ErrUnsupported }

func (OSAuthority) SetGroup(uint32) error { return ErrUnsupported }

func (OSAuthority) ClearSupplementaryGroups() error { return ErrUnsupported }

func (OSAuthority) Current() (State, error) { return State{}, ErrUnsupported }
