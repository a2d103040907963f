//go:build unix

package executor

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
	"time"
)

// killGrace bounds how long Wait keeps the pipes open once the bot has been
// killed, in case something outside its process group still holds them.
const killGrace = 2 * time.Second

// isolateProcess puts the bot in its own process group so a timeout kills
// every child it spawned, not just the interpreter.
func isolateProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	cmd.WaitDelay = killGrace
}
