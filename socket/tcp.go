package socket

import (
	"fmt"
	"net/netip"

	"github.com/psp-go/psp-net/platform"

	"github.com/sirupsen/logrus"
)

type (
	// TCP is a stream socket over the platform stack. It starts unbound
	// and becomes connected through Connect or Open; there is no way back.
	// Writes go through the outbound buffer and are drained by Flush;
	// reads go straight into the caller's buffer.
	//
	// The descriptor is released exactly once, by Close, no matter how
	// the socket was consumed before that.
	TCP struct {
		fd        *netfd
		state     socketState
		buffer    Buffer
		sendFlags SendFlags
		recvFlags RecvFlags
		remote    netip.AddrPort
	}
)

// NewTCP allocates a platform stream socket in the unbound state.
func NewTCP(stack platform.Stack) (*TCP, error) {
	raw, err := stack.Socket(platform.Stream)
	if err != nil {
		return nil, fmt.Errorf("error creating stream socket: %w", err)
	}
	return &TCP{
		fd:     newFD(stack, raw),
		state:  stateUnbound,
		buffer: NewBuffer(),
	}, nil
}

// OpenTCP creates a stream socket and connects it in one call.
func OpenTCP(stack platform.Stack, options Options) (*TCP, error) {
	s, err := NewTCP(stack)
	if err != nil {
		return nil, fmt.Errorf("could not create socket: %w", err)
	}
	return s.Open(options)
}

// Connect connects the socket to remote. On failure the socket is
// consumed: the descriptor is released and every further operation
// returns ErrClosed. IPv6 input fails with ErrUnsupportedAddressFamily
// before any syscall.
func (s *TCP) Connect(remote netip.AddrPort) error {
	if err := s.fd.guard(); err != nil {
		return err
	}
	if s.state != stateUnbound {
		return ErrAlreadyConnected
	}
	if err := checkIPv4(remote); err != nil {
		return err
	}
	if err := s.fd.stack.Connect(s.fd.raw, remote); err != nil {
		s.consume()
		return fmt.Errorf("error connecting stream socket: %w", err)
	}
	s.state = stateConnected
	s.remote = remote
	s.logger().Debug("tcp socket connected")
	return nil
}

// Open implements the Opener capability: Connect driven by options,
// returning the connected socket.
func (s *TCP) Open(options Options) (*TCP, error) {
	if err := s.Connect(options.Remote); err != nil {
		return nil, fmt.Errorf("could not connect: %w", err)
	}
	return s, nil
}

// Read performs a single recv into b. Zero bytes with a nil error means
// the remote closed its write side.
func (s *TCP) Read(b []byte) (int, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, err
	}
	n, err := s.fd.stack.Recv(s.fd.raw, b, s.recvFlags.value())
	if err != nil {
		return 0, fmt.Errorf("error receiving on stream socket: %w", err)
	}
	bytesReceived.WithLabelValues(protoTCP).Add(float64(n))
	return n, nil
}

// Write appends b to the outbound buffer and attempts exactly one send of
// the buffer's current contents, returning how many bytes the platform
// accepted. Unsent bytes stay buffered for the next Write or Flush.
func (s *TCP) Write(b []byte) (int, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, err
	}
	s.buffer.Append(b)
	return s.send()
}

// Flush sends until the outbound buffer is empty. An empty buffer returns
// immediately without a syscall.
func (s *TCP) Flush() error {
	if err := s.ensureConnected(); err != nil {
		return err
	}
	for !s.buffer.IsEmpty() {
		if _, err := s.send(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the descriptor. Safe to call more than once.
func (s *TCP) Close() error {
	s.state = stateClosed
	return s.fd.close()
}

// FD returns the platform descriptor number.
func (s *TCP) FD() int {
	return s.fd.raw
}

// RemoteAddr returns the connected remote address, or the zero value if
// the socket never connected.
func (s *TCP) RemoteAddr() netip.AddrPort {
	return s.remote
}

// Connected tells whether the socket is in the connected state.
func (s *TCP) Connected() bool {
	return s.state == stateConnected
}

// SendFlags returns the flags applied to every send.
func (s *TCP) SendFlags() SendFlags { return s.sendFlags }

// SetSendFlags sets the flags applied to every send.
func (s *TCP) SetSendFlags(f SendFlags) { s.sendFlags = f }

// RecvFlags returns the flags applied to every recv.
func (s *TCP) RecvFlags() RecvFlags { return s.recvFlags }

// SetRecvFlags sets the flags applied to every recv.
func (s *TCP) SetRecvFlags(f RecvFlags) { s.recvFlags = f }

func (s *TCP) ensureConnected() error {
	if err := s.fd.guard(); err != nil {
		return err
	}
	if s.state != stateConnected {
		return ErrNotConnected
	}
	return nil
}

func (s *TCP) send() (int, error) {
	pending := s.buffer.Len()
	n, err := s.fd.stack.Send(s.fd.raw, s.buffer.Bytes(), s.sendFlags.value())
	if err != nil {
		return 0, fmt.Errorf("error sending on socket: %w", err)
	}
	if n < pending {
		partialSends.WithLabelValues(protoTCP).Inc()
	}
	s.buffer.ConsumePrefix(n)
	bytesSent.WithLabelValues(protoTCP).Add(float64(n))
	return n, nil
}

func (s *TCP) consume() {
	s.state = stateClosed
	_ = s.fd.close()
}

func (s *TCP) logger() logrus.FieldLogger {
	return logrus.WithFields(logrus.Fields{
		"proto":       protoTCP,
		"fd":          s.fd.raw,
		"remote_addr": s.remote.String(),
	})
}
