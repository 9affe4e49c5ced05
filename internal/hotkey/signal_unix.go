//go:build unix

package hotkey

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// lookupSignal resolves names such as "SIGUSR1" or "usr2".
func lookupSignal(name string) (os.Signal, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if !strings.HasPrefix(n, "SIG") {
		n = "SIG" + n
	}
	sig := unix.SignalNum(n)
	if sig == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, name)
	}
	switch sig {
	case unix.SIGKILL, unix.SIGSTOP, unix.SIGINT, unix.SIGTERM:
		return nil, fmt.Errorf("%w: %s is reserved", ErrUnknownSignal, n)
	}
	return sig, nil
}
