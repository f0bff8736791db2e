// Package launcher runs one launcher invocation: load the config, resolve
// the runner, escalate, drop to the runner's identity, then either exec the
// runner or signal it.
//
// An invocation only moves forward. The first error ends it and no action
// is attempted under an identity other than the runner's.
package launcher

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"syscall"

	"mvdan.cc/sh/v3/syntax"

	"github.com/taskrunners/launcher/internal/config"
	"github.com/taskrunners/launcher/internal/env"
	"github.com/taskrunners/launcher/internal/identity"
	"github.com/taskrunners/launcher/internal/security"
)

// ErrInvalidPID is returned for kill requests whose pid is not a positive
// 32-bit integer. kill(2) treats 0 and negative pids as process groups or as
// every process the caller may signal, and truncates wider values to pid_t.
var ErrInvalidPID = errors.New("pid must be a positive 32-bit integer")

// Action is what the launcher does once it runs as the runner's identity.
type Action int

const (
	ActionLaunch Action = iota
	ActionKill
)

func (a Action) String() string {
	switch a {
	case ActionLaunch:
		return "launch"
	case ActionKill:
		return "kill"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Request is one invocation of the launcher.
type Request struct {
	Action     Action
	RunnerType string
	// PID of the runner to signal, for ActionKill.
	PID int
}

// Process performs the OS actions of an invocation.
type Process interface {
	Chdir(dir string) error
	// Exec replaces the current process image and only returns on failure.
	Exec(argv0 string, argv []string, envv []string) error
	Signal(pid int, sig syscall.Signal) error
}

// Options for creating a new Launcher. Nil fields use the real OS.
type Options struct {
	Settings  Settings
	Authority identity.Authority
	Process   Process
	// Environ returns the environment to filter, os.Environ by default.
	Environ func() []string
	// LockPrivileges sets no_new_privs, security.LockPrivileges by default.
	LockPrivileges func() error
	// OnConfigLoaded is called once the config is parsed, before the
	// runner is resolved and while the process still has its original
	// rights. An error ends the invocation.
	OnConfigLoaded func(*config.LauncherConfig) error
}

// Launcher runs invocations.
type Launcher struct {
	settings       Settings
	engine         *identity.Engine
	process        Process
	environ        func() []string
	lockPrivileges func() error
	onConfigLoaded func(*config.LauncherConfig) error
}

// New creates a Launcher.
func New(opts *Options) *Launcher {
	if opts == nil {
		opts = &Options{}
	}

	authority := opts.Authority
	if authority == nil {
		authority = identity.OSAuthority{}
	}

	process := opts.Process
	if process == nil {
		process = osProcess{}
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}

	lockPrivileges := opts.LockPrivileges
	if lockPrivileges == nil {
		lockPrivileges = security.LockPrivileges
	}

	return &Launcher{
		settings:       opts.Settings,
		engine:         identity.NewEngine(authority, opts.Settings.StrictIdentityVerification),
		process:        process,
		environ:        environ,
		lockPrivileges: lockPrivileges,
		onConfigLoaded: opts.OnConfigLoaded,
	}
}

// Run executes req. A successful launch never returns because the process
// becomes the runner; any returned error is a *StageError.
func (l *Launcher) Run(req Request) error {
	logger := slog.With("action", req.Action.String(), "runner_type", req.RunnerType)
	stage := StageStart
	fail := func(err error) error {
		logger.Debug("Invocation failed", "stage", stage.String(), "error", err)
		return &StageError{Stage: stage, Err: err}
	}

	logger.Debug("Got runner type", "mode", l.settings.Mode)

	if req.Action == ActionKill && (req.PID <= 0 || req.PID > math.MaxInt32) {
		return fail(fmt.Errorf("%w, got %d", ErrInvalidPID, req.PID))
	}

	cfg, err := config.Load(l.settings.ConfigPath)
	if err != nil {
		return fail(err)
	}
	stage = StageConfigLoaded
	if n := len(cfg.TaskRunners); n == 1 {
		logger.Debug("Loaded config file with a single runner config")
	} else {
		logger.Debug("Loaded config file", "runner_configs", n)
	}
	if l.onConfigLoaded != nil {
		if err := l.onConfigLoaded(cfg); err != nil {
			return fail(err)
		}
		// The hook may have installed a new default logger.
		logger = slog.With("action", req.Action.String(), "runner_type", req.RunnerType)
	}

	runner, err := cfg.Find(req.RunnerType)
	if err != nil {
		return fail(err)
	}
	stage = StageProfileResolved
	logger.Debug("Found runner config")

	logger.Debug("Attempting to escalate", "identity", l.settings.Privileged)
	if err := l.engine.Elevate(l.settings.Privileged); err != nil {
		return fail(err)
	}
	stage = StageElevated

	target := identity.Identity{UID: runner.UID, GID: runner.GID}
	logger.Debug("Setting uid and gid", "uid", target.UID, "gid", target.GID)
	if err := l.engine.Drop(target); err != nil {
		return fail(err)
	}
	stage = StageDropped

	switch req.Action {
	case ActionLaunch:
		logger.Debug("Launching runner")
		err = l.launch(runner)
	case ActionKill:
		logger.Debug("Killing runner", "pid", req.PID)
		err = l.kill(req.PID)
	default:
		err = fmt.Errorf("unknown action %s", req.Action)
	}
	if err != nil {
		return fail(err)
	}
	logger.Debug("Invocation finished", "stage", StageActed.String())
	return nil
}

// launch runs after the drop. On success it does not return.
func (l *Launcher) launch(runner config.TaskRunner) error {
	if err := l.process.Chdir(runner.WorkDir); err != nil {
		return fmt.Errorf("failed to chdir into configured directory (%s): %w", runner.WorkDir, err)
	}
	slog.Debug("Changed into working directory", "workdir", runner.WorkDir)

	if runner.NoNewPrivileges {
		if err := l.lockPrivileges(); err != nil {
			return fmt.Errorf("failed to set no_new_privs: %w", err)
		}
	}

	argv := append([]string{runner.Command}, runner.Args...)
	envv := env.Filter(l.environ(), runner.AllowedEnv)
	slog.Debug("Executing runner",
		"command", commandLine(argv),
		"env", env.Keys(envv),
	)

	if err := l.process.Exec(runner.Command, argv, envv); err != nil {
		return fmt.Errorf("failed to execute task runner: %w", err)
	}
	// Only a fake Process gets here.
	return nil
}

// kill runs after the drop, so the kernel only lets it signal processes
// owned by the runner's identity.
func (l *Launcher) kill(pid int) error {
	if err := l.process.Signal(pid, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to kill task runner (pid %d): %w", pid, err)
	}
	slog.Debug("Runner killed successfully", "pid", pid)
	return nil
}

// commandLine renders argv as a shell command for logs.
func commandLine(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", arg)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " ")
}
