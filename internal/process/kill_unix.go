//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// KillTree sends SIGKILL to the process group led by pid.
// The browser is started in its own group so its renderer and GPU
// helpers go down with it.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
