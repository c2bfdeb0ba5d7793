package radio

import "errors"

var (
	ErrUnsupportedBaud   = errors.New("unsupported baud rate")
	ErrSerialUnsupported = errors.New("serial ports not supported")
)
