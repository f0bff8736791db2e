package launcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskrunners/launcher/internal/identity"
)

func TestSettingsFor(t *testing.T) {
	t.Parallel()

	dev, err := SettingsFor(ModeDevelopment)
	require.NoError(t, err)
	require.Equal(t, Settings{
		Mode:       ModeDevelopment,
		ConfigPath: "./config.json",
		Privileged: identity.Identity{UID: 0, GID: 0},
	}, dev)

	secure, err := SettingsFor(ModeSecure)
	require.NoError(t, err)
	require.Equal(t, "/etc/n8n-task-runners.json", secure.ConfigPath)
	require.True(t, secure.StrictIdentityVerification)

	_, err = SettingsFor(Mode("lenient"))
	require.Error(t, err)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("secure")
	require.NoError(t, err)
	require.Equal(t, ModeSecure, m)

	m, err = ParseMode("development")
	require.NoError(t, err)
	require.Equal(t, ModeDevelopment, m)

	_, err = ParseMode("Secure")
	require.ErrorContains(t, err, `unknown launcher mode "Secure"`)
}
