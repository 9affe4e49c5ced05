//go:build !unix

package hotkey

import "os"

func lookupSignal(string) (os.Signal, error) {
	return nil, ErrUnsupported
}
