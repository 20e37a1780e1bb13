//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the group led by pid, taking Chrome's
// renderer and GPU helpers down with the browser. Errors are ignored: the
// launcher kills the main process afterwards anyway.
func KillProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
