// Package procutil configures external processes so they run without a
// console window of their own.
package procutil

import "os/exec"

// Hide detaches cmd from any console window. It must be called before the
// command starts. On platforms without console windows it is a no-op.
func Hide(cmd *exec.Cmd) {
	if cmd == nil {
		return
	}
	hide(cmd)
}
