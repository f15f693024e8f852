//go:build unix

package platform

import (
	"errors"
	"net/netip"

	"golang.org/x/sys/unix"
)

type (
	// HostStack implements Stack on top of the host kernel via raw
	// socket syscalls. It is the production Stack on devices running a
	// Unix-like kernel and doubles as the integration-test stack.
	HostStack struct{}
)

var _ Stack = HostStack{}

// NewHostStack returns the host kernel Stack.
func NewHostStack() HostStack {
	return HostStack{}
}

func (HostStack) Socket(typ SocketType) (int, error) {
	sockType := unix.SOCK_STREAM
	if typ == Datagram {
		sockType = unix.SOCK_DGRAM
	}
	fd, err := unix.Socket(unix.AF_INET, sockType, 0)
	if err != nil {
		return -1, wrapUnix("failed to create socket", err)
	}
	return fd, nil
}

func (HostStack) Bind(fd int, addr netip.AddrPort) error {
	sa, err := sockaddrInet4(addr)
	if err != nil {
		return err
	}
	if err := unix.Bind(fd, sa); err != nil {
		return wrapUnix("failed to bind socket", err)
	}
	return nil
}

func (HostStack) Connect(fd int, addr netip.AddrPort) error {
	sa, err := sockaddrInet4(addr)
	if err != nil {
		return err
	}
	if err := unix.Connect(fd, sa); err != nil {
		return wrapUnix("failed to connect socket", err)
	}
	return nil
}

func (HostStack) Send(fd int, b []byte, flags int) (int, error) {
	if err := unix.Send(fd, b, flags); err != nil {
		return 0, wrapUnix("failed to send", err)
	}
	return len(b), nil
}

func (HostStack) Recv(fd int, b []byte, flags int) (int, error) {
	n, _, err := unix.Recvfrom(fd, b, flags)
	if err != nil {
		return 0, wrapUnix("failed to recv", err)
	}
	return n, nil
}

func (HostStack) SendTo(fd int, b []byte, flags int, to netip.AddrPort) (int, error) {
	sa, err := sockaddrInet4(to)
	if err != nil {
		return 0, err
	}
	if err := unix.Sendto(fd, b, flags, sa); err != nil {
		return 0, wrapUnix("failed to sendto", err)
	}
	return len(b), nil
}

func (HostStack) RecvFrom(fd int, b []byte, flags int) (int, netip.AddrPort, error) {
	n, from, err := unix.Recvfrom(fd, b, flags)
	if err != nil {
		return 0, netip.AddrPort{}, wrapUnix("failed to recvfrom", err)
	}
	var peer netip.AddrPort
	if inet4, ok := from.(*unix.SockaddrInet4); ok {
		peer = netip.AddrPortFrom(netip.AddrFrom4(inet4.Addr), uint16(inet4.Port))
	}
	return n, peer, nil
}

func (HostStack) Close(fd int) error {
	if err := unix.Close(fd); err != nil {
		return wrapUnix("failed to close socket", err)
	}
	return nil
}

func sockaddrInet4(addr netip.AddrPort) (*unix.SockaddrInet4, error) {
	ip := addr.Addr()
	if ip.Is4In6() {
		ip = ip.Unmap()
	}
	if !ip.Is4() {
		return nil, ErrUnsupportedAddressFamily
	}
	return &unix.SockaddrInet4{
		Port: int(addr.Port()),
		Addr: ip.As4(),
	}, nil
}

func wrapUnix(desc string, err error) error {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return WrapErrno(int(errno), desc, err)
	}
	return WrapErrno(-1, desc, err)
}
