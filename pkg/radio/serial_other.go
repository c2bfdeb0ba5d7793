//go:build !linux

package radio

import (
	"fmt"
	"io"
	"runtime"
)

// OpenSerial is only implemented on Linux
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	return nil, fmt.Errorf("%w on %s", ErrSerialUnsupported, runtime.GOOS)
}
