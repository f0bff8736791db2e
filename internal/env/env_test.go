package env

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		environ []string
		allowed []string
		want    []string
	}{
		{
			name:    "baseline only",
			environ: []string{"PATH=/usr/bin", "HOME=/root", "LANG=C.UTF-8", "SECRET=x"},
			want:    []string{"LANG=C.UTF-8", "PATH=/usr/bin"},
		},
		{
			name:    "allowed extras",
			environ: []string{"NODE_OPTIONS=--max-old-space-size=512", "TERM=xterm", "AWS_SECRET_ACCESS_KEY=y"},
			allowed: []string{"NODE_OPTIONS"},
			want:    []string{"NODE_OPTIONS=--max-old-space-size=512", "TERM=xterm"},
		},
		{
			name:    "allowed but absent",
			environ: []string{"TZ=UTC"},
			allowed: []string{"GENERIC_TIMEZONE"},
			want:    []string{"TZ=UTC"},
		},
		{
			name:    "empty environment",
			allowed: []string{"PATH"},
			want:    []string{},
		},
		{
			name:    "empty value kept",
			environ: []string{"TERM="},
			want:    []string{"TERM="},
		},
		{
			name:    "malformed entries dropped",
			environ: []string{"PATH", "=C:=C:\\", "LANG=en_US"},
			allowed: []string{""},
			want:    []string{"LANG=en_US"},
		},
		{
			name:    "last duplicate wins",
			environ: []string{"PATH=/first", "PATH=/second"},
			want:    []string{"PATH=/second"},
		},
		{
			name:    "names are case sensitive",
			environ: []string{"path=/tmp", "Path=/tmp"},
			want:    []string{},
		},
		{
			name:    "prefix is not a match",
			environ: []string{"PATHEXT=.EXE", "LANGUAGE=en"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Filter(tt.environ, tt.allowed))
		})
	}
}

func TestFilterNeverForwardsOutsideAllowlist(t *testing.T) {
	t.Parallel()

	environ := []string{
		"PATH=/bin", "LANG=C", "TZ=UTC", "TERM=dumb",
		"HOME=/root", "USER=root", "LD_PRELOAD=/tmp/evil.so",
		"N8N_RUNNERS_AUTH_TOKEN=secret", "NODE_OPTIONS=--inspect",
	}
	allowed := []string{"NODE_OPTIONS", "NOT_SET"}

	got := Filter(environ, allowed)
	eligible := append(append([]string{}, Baseline...), allowed...)
	for _, name := range Keys(got) {
		require.Contains(t, eligible, name)
	}
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if slices.Contains(eligible, name) {
			require.Contains(t, got, kv)
		} else {
			require.NotContains(t, got, kv)
		}
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	environ := []string{"TZ=UTC", "PATH=/bin"}
	_ = Filter(environ, nil)
	require.Equal(t, []string{"TZ=UTC", "PATH=/bin"}, environ)
}

func TestKeys(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"LANG", "PATH", "TOKEN"},
		Keys([]string{"LANG=C", "PATH=/a=b", "TOKEN="}),
	)
	require.Empty(t, Keys(nil))
}
