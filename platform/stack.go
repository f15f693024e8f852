// Package platform abstracts the network stack of the target device behind
// a small syscall-shaped interface. The core socket types only ever talk to
// the platform through a Stack, which keeps them testable against fakes and
// portable across devices that expose the same primitive operations.
package platform

import (
	"errors"
	"net/netip"
)

type (
	// Stack is the set of primitive socket operations the core requires
	// from its environment. Every method maps to exactly one platform
	// syscall and returns either success or a platform error (usually an
	// *Errno). Implementations are not required to be safe for concurrent
	// use of the same descriptor.
	Stack interface {
		// Socket allocates a descriptor of the given type.
		Socket(typ SocketType) (int, error)

		// Bind binds the descriptor to a local IPv4 address and port.
		Bind(fd int, addr netip.AddrPort) error

		// Connect connects the descriptor to a remote IPv4 address and port.
		Connect(fd int, addr netip.AddrPort) error

		// Send sends bytes on a connected descriptor and returns how many
		// were accepted by the stack, which may be fewer than len(b).
		Send(fd int, b []byte, flags int) (int, error)

		// Recv receives up to len(b) bytes from a connected descriptor.
		// Zero with a nil error means the peer closed its write side.
		Recv(fd int, b []byte, flags int) (int, error)

		// SendTo sends bytes to an explicit peer address.
		SendTo(fd int, b []byte, flags int, to netip.AddrPort) (int, error)

		// RecvFrom receives bytes along with the peer address they came from.
		RecvFrom(fd int, b []byte, flags int) (int, netip.AddrPort, error)

		// Close releases the descriptor.
		Close(fd int) error
	}

	// SocketType selects the kind of descriptor allocated by Stack.Socket.
	SocketType int
)

const (
	// Stream is a connection-oriented byte stream descriptor (TCP).
	Stream SocketType = iota

	// Datagram is a connectionless message descriptor (UDP).
	Datagram
)

// ErrUnsupportedAddressFamily is returned whenever a non-IPv4 address reaches
// an operation. The platform has no IPv6 support, so the family is rejected
// up front and no syscall is ever attempted with it.
var ErrUnsupportedAddressFamily = errors.New("unsupported address family")

func (t SocketType) String() string {
	switch t {
	case Stream:
		return "stream"
	case Datagram:
		return "datagram"
	default:
		return "unknown"
	}
}
