package socket

import (
	"errors"
	"fmt"

	"github.com/psp-go/psp-net/platform"
)

var (
	// ErrClosed is returned by any operation on a socket whose descriptor
	// was already released, including sockets consumed by a failed
	// transition.
	ErrClosed = errors.New("use of closed socket")

	// ErrNotBound is returned when an operation requires a bound socket.
	ErrNotBound = errors.New("socket is not bound")

	// ErrNotConnected is returned when an operation requires a connected
	// socket.
	ErrNotConnected = errors.New("socket is not connected")

	// ErrAlreadyBound is returned when binding a socket twice.
	ErrAlreadyBound = errors.New("socket is already bound")

	// ErrAlreadyConnected is returned when a bound-state operation is
	// invoked after the socket transitioned to connected.
	ErrAlreadyConnected = errors.New("socket is already connected")

	// ErrUnsupportedAddressFamily is returned for IPv6 input. The check
	// happens before any syscall.
	ErrUnsupportedAddressFamily = platform.ErrUnsupportedAddressFamily
)

type (
	// TLSError is an error from a TLS socket. It distinguishes failures of
	// the TLS protocol layer from failures of the underlying transport
	// socket, preserving the original error in either case, so callers can
	// decide between retrying the handshake and re-dialing.
	TLSError struct {
		err       error
		transport bool
	}
)

func newTLSError(err error) *TLSError {
	if _, ok := platform.IsErrno(err); ok {
		return &TLSError{err: err, transport: true}
	}
	if errors.Is(err, ErrClosed) || errors.Is(err, ErrNotConnected) || errors.Is(err, ErrAlreadyConnected) {
		return &TLSError{err: err, transport: true}
	}
	return &TLSError{err: err}
}

func (e *TLSError) Error() string {
	if e.transport {
		return fmt.Sprintf("socket error: %v", e.err)
	}
	return fmt.Sprintf("tls error: %v", e.err)
}

func (e *TLSError) Unwrap() error {
	return e.err
}

// IsTLS tells whether the failure happened in the TLS protocol layer.
func (e *TLSError) IsTLS() bool {
	return !e.transport
}

// IsSocket tells whether the failure happened in the transport socket
// below the TLS session.
func (e *TLSError) IsSocket() bool {
	return e.transport
}
