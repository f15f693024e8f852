package socket_test

import (
	"net/netip"
	"testing"

	"github.com/psp-go/psp-net/platform"
	"github.com/psp-go/psp-net/socket"
	"github.com/psp-go/psp-net/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	localAddr = netip.MustParseAddrPort("10.0.0.2:9000")
	peerAddr  = netip.MustParseAddrPort("10.0.0.3:9000")
)

func TestUDPBindDefaultsToWildcard(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Bind(netip.AddrPort{}))
	assert.True(t, s.Bound())
	wildcard := netip.MustParseAddrPort("0.0.0.0:0")
	assert.Equal(t, wildcard, stack.BoundTo(s.FD()))
	assert.Equal(t, wildcard, s.LocalAddr())

	assert.ErrorIs(t, s.Bind(localAddr), socket.ErrAlreadyBound)
}

func TestUDPOpenBindsAndConnects(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.OpenUDP(stack, socket.NewOptions(peerAddr))
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, s.Connected())
	assert.Equal(t, peerAddr, s.RemoteAddr())
	assert.Equal(t, peerAddr, stack.ConnectedTo(s.FD()))
}

func TestUDPWrongStateErrors(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()
	syscallsAfterCreate := stack.Syscalls()

	// unbound: nothing but Bind is allowed
	assert.ErrorIs(t, s.Connect(peerAddr), socket.ErrNotBound)
	_, _, err = s.RecvFrom(make([]byte, 4))
	assert.ErrorIs(t, err, socket.ErrNotBound)
	_, err = s.SendTo([]byte("ping"), peerAddr)
	assert.ErrorIs(t, err, socket.ErrNotBound)
	_, err = s.Write([]byte("ping"))
	assert.ErrorIs(t, err, socket.ErrNotConnected)
	_, err = s.Read(make([]byte, 4))
	assert.ErrorIs(t, err, socket.ErrNotConnected)
	assert.Equal(t, syscallsAfterCreate, stack.Syscalls())
	assert.Zero(t, stack.Connects())

	// bound: connected-only I/O still refused
	require.NoError(t, s.Bind(localAddr))
	_, err = s.Write([]byte("ping"))
	assert.ErrorIs(t, err, socket.ErrNotConnected)

	// connected: bound-only operations refused
	require.NoError(t, s.Connect(peerAddr))
	assert.ErrorIs(t, s.Connect(peerAddr), socket.ErrAlreadyConnected)
	assert.ErrorIs(t, s.Bind(localAddr), socket.ErrAlreadyConnected)
	_, _, err = s.RecvFrom(make([]byte, 4))
	assert.ErrorIs(t, err, socket.ErrAlreadyConnected)
	_, err = s.SendTo([]byte("ping"), peerAddr)
	assert.ErrorIs(t, err, socket.ErrAlreadyConnected)
}

func TestUDPRecvFromTransitionsToConnected(t *testing.T) {
	stack := test.NewFakeStack()
	stack.QueueRecvFrom([]byte("ping"), peerAddr)
	stack.QueueRecv([]byte("pong"))

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bind(localAddr))

	b := make([]byte, 16)
	n, peer, err := s.RecvFrom(b)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(b[:n]))
	assert.Equal(t, peerAddr, peer)
	assert.True(t, s.Connected())
	assert.Equal(t, peerAddr, s.RemoteAddr())

	// connected-mode reads now work against the carried peer
	n, err = s.Read(b)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(b[:n]))
}

func TestUDPSendToTransitionsToConnected(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bind(localAddr))

	n, err := s.SendTo([]byte("ping"), peerAddr)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	require.Equal(t, [][]byte{[]byte("ping")}, stack.Sent())
	assert.True(t, s.Connected())
	assert.Equal(t, peerAddr, s.RemoteAddr())
}

func TestUDPRemoteAccessorFollowsTheLifecycle(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Bind(localAddr))
	assert.Equal(t, localAddr, s.Remote())

	require.NoError(t, s.Connect(peerAddr))
	assert.Equal(t, peerAddr, s.Remote())
	assert.Equal(t, localAddr, s.LocalAddr())
	assert.Equal(t, peerAddr, s.RemoteAddr())
}

func TestUDPRejectsIPv6BeforeAnySyscall(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()

	v6 := netip.MustParseAddrPort("[2001:db8::1]:53")
	syscallsAfterCreate := stack.Syscalls()
	assert.ErrorIs(t, s.Bind(v6), socket.ErrUnsupportedAddressFamily)
	assert.Equal(t, syscallsAfterCreate, stack.Syscalls())

	require.NoError(t, s.Bind(localAddr))
	assert.ErrorIs(t, s.Connect(v6), socket.ErrUnsupportedAddressFamily)
	_, err = s.SendTo([]byte("ping"), v6)
	assert.ErrorIs(t, err, socket.ErrUnsupportedAddressFamily)
}

func TestUDPFlagsReachEverySyscall(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bind(localAddr))

	s.SetSendFlags(socket.SendEOR)
	s.SetRecvFlags(socket.RecvPeek)

	stack.QueueRecvFrom([]byte("ping"), peerAddr)
	_, _, err = s.RecvFrom(make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, int(socket.RecvPeek), stack.LastRecvFlags())

	_, err = s.Write([]byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, int(socket.SendEOR), stack.LastSendFlags())

	stack.QueueRecv([]byte("ping"))
	_, err = s.Read(make([]byte, 16))
	require.NoError(t, err)
	assert.Equal(t, int(socket.RecvPeek), stack.LastRecvFlags())
}

func TestUDPSendToCarriesFlags(t *testing.T) {
	stack := test.NewFakeStack()

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bind(localAddr))

	s.SetSendFlags(socket.SendOOB)
	_, err = s.SendTo([]byte("ping"), peerAddr)
	require.NoError(t, err)
	assert.Equal(t, int(socket.SendOOB), stack.LastSendFlags())
}

func TestUDPFailedBindConsumesSocket(t *testing.T) {
	stack := test.NewFakeStack()
	stack.FailBind(platform.NewErrno(98))

	s, err := socket.NewUDP(stack)
	require.NoError(t, err)

	err = s.Bind(localAddr)
	require.Error(t, err)
	code, ok := platform.IsErrno(err)
	require.True(t, ok)
	assert.Equal(t, 98, code)

	assert.Equal(t, 1, stack.CloseCount(s.FD()))
	assert.ErrorIs(t, s.Bind(localAddr), socket.ErrClosed)

	require.NoError(t, s.Close())
	assert.Equal(t, 1, stack.CloseCount(s.FD()))
}

func TestUDPPartialSendKeepsRemainderBuffered(t *testing.T) {
	stack := test.NewFakeStack()
	stack.SetSendLimit(5)

	s, err := socket.OpenUDP(stack, socket.NewOptions(peerAddr))
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Write([]byte("pingpong"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, s.Flush())
	var got []byte
	for _, chunk := range stack.Sent() {
		got = append(got, chunk...)
	}
	assert.Equal(t, "pingpong", string(got))
}
