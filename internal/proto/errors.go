package proto

import (
	"errors"
	"fmt"
)

// ErrProtocol matches every *ProtocolError via errors.Is.
var ErrProtocol = errors.New("protocol error")

// ProtocolError reports a malformed payload: bad string marker, truncated
// primitive, invalid UTF-8 or an out-of-range enum byte.
type ProtocolError struct {
	Op  string
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s: %s", e.Op, e.Msg)
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

func protocolError(op, format string, args ...any) *ProtocolError {
	return &ProtocolError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
