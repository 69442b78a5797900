// Command amicheck evaluates the AMI_EBS_ENCRYPTED rule against an AWS
// account from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	root, a := newRootCmd()
	err := a.execute(ctx, root)
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps a command error to a process exit status. Failed
// enforcement and failed diagnostics exit without further output; their
// details were already rendered.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errNonCompliant):
		return 2
	case errors.Is(err, errUnhealthy):
		return 1
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
}
