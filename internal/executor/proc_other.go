//go:build !unix

package executor

import (
	"os/exec"
	"time"
)

const killGrace = 2 * time.Second

// isolateProcess only bounds the pipe wait; process groups are unix-only.
func isolateProcess(cmd *exec.Cmd) {
	cmd.WaitDelay = killGrace
}
