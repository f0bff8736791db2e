//go:build unix

package launcher

import (
	"syscall"

	"golang.org/x/sys/unix"
)

type osProcess struct{}

func (osProcess) Chdir(dir string) error {
	return unix.Chdir(dir)
}

// Exec replaces the process image. It only returns on failure.
func (osProcess) Exec(argv0 string, argv []string, envv []string) error {
	return unix.Exec(argv0, argv, envv)
}

func (osProcess) Signal(pid int, sig syscall.Signal) error {
	return unix.Kill(pid, sig)
}
