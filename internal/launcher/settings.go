package launcher

import (
	"fmt"

	"github.com/taskrunners/launcher/internal/identity"
)

// Mode selects where the config lives and how strictly identity
// transitions are checked.
type Mode string

const (
	// ModeDevelopment reads ./config.json and tolerates a failed
	// escalation, so the launcher can be tried without root.
	ModeDevelopment Mode = "development"
	// ModeSecure reads the system config and verifies every transition.
	ModeSecure Mode = "secure"
)

const (
	DevelopmentConfigPath = "./config.json"
	SecureConfigPath      = "/etc/n8n-task-runners.json"
)

// Settings are fixed for the lifetime of the process.
type Settings struct {
	Mode       Mode
	ConfigPath string

	// StrictIdentityVerification reads the identity back after each
	// transition and fails on any difference.
	StrictIdentityVerification bool

	// Privileged is the identity assumed before dropping to a runner's.
	Privileged identity.Identity
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeDevelopment, ModeSecure:
		return m, nil
	}
	return "", fmt.Errorf("unknown launcher mode %q", s)
}

// SettingsFor returns the settings of a mode.
func SettingsFor(mode Mode) (Settings, error) {
	switch mode {
	case ModeDevelopment:
		return Settings{
			Mode:       mode,
			ConfigPath: DevelopmentConfigPath,
			Privileged: identity.Privileged,
		}, nil
	case ModeSecure:
		return Settings{
			Mode:                       mode,
			ConfigPath:                 SecureConfigPath,
			StrictIdentityVerification: true,
			Privileged:                 identity.Privileged,
		}, nil
	}
	return Settings{}, fmt.Errorf("unknown launcher mode %q", mode)
}
