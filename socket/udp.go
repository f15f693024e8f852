package socket

import (
	"fmt"
	"net/netip"

	"github.com/psp-go/psp-net/platform"

	"github.com/sirupsen/logrus"
)

type (
	// UDP is a datagram socket over the platform stack. Its lifecycle is
	// linear: unbound, then bound, then connected. While bound it supports
	// connectionless I/O through RecvFrom and SendTo, either of which
	// implicitly transitions it to connected, carrying forward the peer
	// address involved. Once connected it behaves like TCP's buffered
	// write and direct read.
	//
	// Invoking an operation in the wrong state always fails with the
	// dedicated named error and never reaches a syscall.
	UDP struct {
		fd        *netfd
		state     socketState
		buffer    Buffer
		sendFlags SendFlags
		recvFlags RecvFlags
		bound     netip.AddrPort
		remote    netip.AddrPort
	}
)

// NewUDP allocates a platform datagram socket in the unbound state.
func NewUDP(stack platform.Stack) (*UDP, error) {
	raw, err := stack.Socket(platform.Datagram)
	if err != nil {
		return nil, fmt.Errorf("error creating datagram socket: %w", err)
	}
	return &UDP{
		fd:     newFD(stack, raw),
		state:  stateUnbound,
		buffer: NewBuffer(),
	}, nil
}

// OpenUDP creates a datagram socket, binds it to the wildcard address and
// connects it in one call.
func OpenUDP(stack platform.Stack, options Options) (*UDP, error) {
	s, err := NewUDP(stack)
	if err != nil {
		return nil, fmt.Errorf("could not create socket: %w", err)
	}
	return s.Open(options)
}

// Bind binds the socket to addr, or to the wildcard 0.0.0.0:0 when addr
// is the zero value. On failure the socket is consumed.
func (s *UDP) Bind(addr netip.AddrPort) error {
	if err := s.fd.guard(); err != nil {
		return err
	}
	switch s.state {
	case stateBound:
		return ErrAlreadyBound
	case stateConnected:
		return ErrAlreadyConnected
	case stateUnbound:
	default:
		return ErrClosed
	}
	if !addr.IsValid() {
		addr = wildcardAddr
	}
	if err := checkIPv4(addr); err != nil {
		return err
	}
	if err := s.fd.stack.Bind(s.fd.raw, addr); err != nil {
		s.consume()
		return fmt.Errorf("error binding datagram socket: %w", err)
	}
	s.state = stateBound
	s.bound = addr
	s.logger().Debug("udp socket bound")
	return nil
}

// Connect connects a bound socket to addr. On failure the socket is
// consumed. IPv6 input fails with ErrUnsupportedAddressFamily before any
// syscall.
func (s *UDP) Connect(addr netip.AddrPort) error {
	if err := s.fd.guard(); err != nil {
		return err
	}
	switch s.state {
	case stateUnbound:
		return ErrNotBound
	case stateConnected:
		return ErrAlreadyConnected
	case stateBound:
	default:
		return ErrClosed
	}
	if err := checkIPv4(addr); err != nil {
		return err
	}
	if err := s.fd.stack.Connect(s.fd.raw, addr); err != nil {
		s.consume()
		return fmt.Errorf("error connecting datagram socket: %w", err)
	}
	s.state = stateConnected
	s.remote = addr
	s.logger().Debug("udp socket connected")
	return nil
}

// Open implements the Opener capability: Bind to the wildcard address,
// then Connect to the remote in options, surfacing the first failure.
func (s *UDP) Open(options Options) (*UDP, error) {
	if err := s.Bind(netip.AddrPort{}); err != nil {
		return nil, fmt.Errorf("could not bind: %w", err)
	}
	if err := s.Connect(options.Remote); err != nil {
		return nil, fmt.Errorf("could not connect: %w", err)
	}
	return s, nil
}

// RecvFrom receives one datagram on a bound socket, returning the peer
// address it came from. The socket implicitly transitions to connected,
// carrying forward the observed peer.
func (s *UDP) RecvFrom(b []byte) (int, netip.AddrPort, error) {
	if err := s.ensureBound(); err != nil {
		return 0, netip.AddrPort{}, err
	}
	n, peer, err := s.fd.stack.RecvFrom(s.fd.raw, b, s.recvFlags.value())
	if err != nil {
		return 0, netip.AddrPort{}, fmt.Errorf("error receiving on datagram socket: %w", err)
	}
	bytesReceived.WithLabelValues(protoUDP).Add(float64(n))
	s.state = stateConnected
	s.remote = peer
	return n, peer, nil
}

// SendTo buffers b and sends it to an explicit destination from a bound
// socket. The socket implicitly transitions to connected towards dest,
// keeping whatever the platform did not accept in the outbound buffer.
func (s *UDP) SendTo(b []byte, dest netip.AddrPort) (int, error) {
	if err := s.ensureBound(); err != nil {
		return 0, err
	}
	if err := checkIPv4(dest); err != nil {
		return 0, err
	}
	s.buffer.Append(b)
	n, err := s.fd.stack.SendTo(s.fd.raw, s.buffer.Bytes(), s.sendFlags.value(), dest)
	if err != nil {
		return 0, fmt.Errorf("error sending on datagram socket: %w", err)
	}
	if n < s.buffer.Len() {
		partialSends.WithLabelValues(protoUDP).Inc()
	}
	s.buffer.ConsumePrefix(n)
	bytesSent.WithLabelValues(protoUDP).Add(float64(n))
	s.state = stateConnected
	s.remote = dest
	return n, nil
}

// Read performs a single recv into b on a connected socket.
func (s *UDP) Read(b []byte) (int, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, err
	}
	n, err := s.fd.stack.Recv(s.fd.raw, b, s.recvFlags.value())
	if err != nil {
		return 0, fmt.Errorf("error receiving on datagram socket: %w", err)
	}
	bytesReceived.WithLabelValues(protoUDP).Add(float64(n))
	return n, nil
}

// Write appends b to the outbound buffer and attempts exactly one send,
// returning how many bytes the platform accepted.
func (s *UDP) Write(b []byte) (int, error) {
	if err := s.ensureConnected(); err != nil {
		return 0, err
	}
	s.buffer.Append(b)
	return s.send()
}

// Flush sends until the outbound buffer is empty.
func (s *UDP) Flush() error {
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
func (s *UDP) Close() error {
	s.state = stateClosed
	return s.fd.close()
}

// Remote preserves the historical accessor: after Bind it holds the local
// bound address, and Connect overwrites it with the true remote. New code
// should prefer LocalAddr and RemoteAddr.
func (s *UDP) Remote() netip.AddrPort {
	if s.state == stateConnected {
		return s.remote
	}
	return s.bound
}

// LocalAddr returns the address the socket was bound to, or the zero
// value if it was never bound.
func (s *UDP) LocalAddr() netip.AddrPort {
	return s.bound
}

// RemoteAddr returns the connected peer address, or the zero value if the
// socket never connected.
func (s *UDP) RemoteAddr() netip.AddrPort {
	return s.remote
}

// FD returns the platform descriptor number.
func (s *UDP) FD() int {
	return s.fd.raw
}

// Bound tells whether the socket is in the bound state.
func (s *UDP) Bound() bool {
	return s.state == stateBound
}

// Connected tells whether the socket is in the connected state.
func (s *UDP) Connected() bool {
	return s.state == stateConnected
}

// SendFlags returns the flags applied to every send.
func (s *UDP) SendFlags() SendFlags { return s.sendFlags }

// SetSendFlags sets the flags applied to every send.
func (s *UDP) SetSendFlags(f SendFlags) { s.sendFlags = f }

// RecvFlags returns the flags applied to every recv.
func (s *UDP) RecvFlags() RecvFlags { return s.recvFlags }

// SetRecvFlags sets the flags applied to every recv.
func (s *UDP) SetRecvFlags(f RecvFlags) { s.recvFlags = f }

func (s *UDP) ensureBound() error {
	if err := s.fd.guard(); err != nil {
		return err
	}
	switch s.state {
	case stateUnbound:
		return ErrNotBound
	case stateConnected:
		return ErrAlreadyConnected
	case stateBound:
		return nil
	default:
		return ErrClosed
	}
}

func (s *UDP) ensureConnected() error {
	if err := s.fd.guard(); err != nil {
		return err
	}
	if s.state != stateConnected {
		return ErrNotConnected
	}
	return nil
}

func (s *UDP) send() (int, error) {
	pending := s.buffer.Len()
	n, err := s.fd.stack.Send(s.fd.raw, s.buffer.Bytes(), s.sendFlags.value())
	if err != nil {
		return 0, fmt.Errorf("error sending on datagram socket: %w", err)
	}
	if n < pending {
		partialSends.WithLabelValues(protoUDP).Inc()
	}
	s.buffer.ConsumePrefix(n)
	bytesSent.WithLabelValues(protoUDP).Add(float64(n))
	return n, nil
}

func (s *UDP) consume() {
	s.state = stateClosed
	_ = s.fd.close()
}

func (s *UDP) logger() logrus.FieldLogger {
	return logrus.WithFields(logrus.Fields{
		"proto":       protoUDP,
		"fd":          s.fd.raw,
		"local_addr":  s.bound.String(),
		"remote_addr": s.remote.String(),
	})
}
