//go:build !unix

package launcher

import (
	"errors"
	"syscall"
)

var errUnsupported = errors.New("process actions are not supported on this platform")

type osProcess struct{}

func (osProcess) Chdir(string) error { return errUnsupported }

func (osProcess) Exec(string, []string, []string) error { return errUnsupported }

func (osProcess) Signal(int, syscall.Signal) error { return errUnsupported }
