// Package config loads the launcher's task runner configuration file.
//
// The file is trusted input: it is read exactly once, before any identity
// change, and is never written back.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	// ErrUnknownRunnerType is returned by Find when no task runner matches.
	ErrUnknownRunnerType = errors.New("unknown runner type")

	// ErrNoTaskRunners is returned when the file declares no task runners.
	ErrNoTaskRunners = errors.New("found no task runner configs inside launcher config")
)

// TaskRunner describes one runnable command and the identity it runs as.
type TaskRunner struct {
	// Type of task runner, e.g. "javascript". Used as the lookup key.
	RunnerType string `json:"runner-type" jsonschema:"description=Name used to select this runner on the command line,example=javascript"`

	// Directory to change into before executing the command.
	WorkDir string `json:"workdir" jsonschema:"description=Working directory of the runner process"`

	// Executable to run. It is passed to execve as is, so relative paths
	// resolve against WorkDir and there is no PATH search.
	Command string `json:"command" jsonschema:"description=Path of the executable to run"`

	// Arguments following the command in the argument vector.
	Args []string `json:"args" jsonschema:"description=Arguments passed after the command"`

	// Env vars, beyond the baseline, allowed to reach the runner.
	AllowedEnv []string `json:"allowed-env" jsonschema:"description=Names of additional environment variables passed to the runner"`

	UID uint32 `json:"uid" jsonschema:"description=User ID the runner runs as"`
	GID uint32 `json:"gid" jsonschema:"description=Group ID the runner runs as"`

	// Set no_new_privs before exec so the runner cannot regain privileges
	// through setuid binaries.
	NoNewPrivileges bool `json:"no-new-privileges,omitempty" jsonschema:"description=Prevent the runner from gaining privileges through setuid or file capabilities"`
}

// LauncherConfig is the root of the launcher configuration file.
type LauncherConfig struct {
	TaskRunners []TaskRunner `json:"task-runners" jsonschema:"description=Task runner profiles,minItems=1"`

	// Optional rotated log file. Only the trusted config may set this
	// because the launcher opens it with elevated rights.
	LogFile string `json:"log-file,omitempty" jsonschema:"description=Path of a rotated JSON log file"`
}

// Load reads and parses the config file at path.
func Load(path string) (*LauncherConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file at %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a config document. Unknown fields are rejected so that a
// misspelt key such as "allowed_env" cannot silently widen or narrow a
// runner's environment.
func Parse(data []byte) (*LauncherConfig, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg LauncherConfig
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after config document")
	}

	if len(cfg.TaskRunners) == 0 {
		return nil, ErrNoTaskRunners
	}
	return &cfg, nil
}

// Find returns the first task runner whose type equals runnerType.
func (c *LauncherConfig) Find(runnerType string) (TaskRunner, error) {
	for _, r := range c.TaskRunners {
		if r.RunnerType == runnerType {
			return r, nil
		}
	}
	return TaskRunner{}, fmt.Errorf("%w: %s", ErrUnknownRunnerType, runnerType)
}
