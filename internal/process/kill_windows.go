//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillTree terminates pid and its children with taskkill /F /T.
func KillTree(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
