// Package env builds the environment handed to a task runner.
package env

import (
	"slices"
	"sort"
	"strings"
)

// Baseline lists the variables every runner may receive.
var Baseline = []string{"LANG", "PATH", "TZ", "TERM"}

// Filter returns the entries of environ whose name is in Baseline or
// allowed, as NAME=VALUE pairs sorted by name. Anything else is dropped.
// When a name appears more than once the last value wins, matching how
// getenv resolves duplicates in os/exec.
func Filter(environ []string, allowed []string) []string {
	values := make(map[string]string)
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		if !slices.Contains(Baseline, name) && !slices.Contains(allowed, name) {
			continue
		}
		values[name] = value
	}

	filtered := make([]string, 0, len(values))
	for name, value := range values {
		filtered = append(filtered, name+"="+value)
	}
	sort.Strings(filtered)
	return filtered
}

// Keys returns the names of env entries, for logging without values.
func Keys(env []string) []string {
	keys := make([]string, len(env))
	for i, kv := range env {
		keys[i], _, _ = strings.Cut(kv, "=")
	}
	return keys
}
