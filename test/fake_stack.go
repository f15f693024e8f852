// Package test provides fakes and payload builders shared by the test
// suites of the other packages.
package test

import (
	"net/netip"
	"sync"

	"github.com/psp-go/psp-net/platform"
)

type (
	// FakeStack is an in-memory platform.Stack. Tests script what Recv
	// returns, bound how many bytes Send accepts, inject failures, and
	// afterwards assert on recorded syscalls, payloads and close counts.
	FakeStack struct {
		mu     sync.Mutex
		nextFD int

		syscalls int
		connects int
		closes   map[int]int

		bound     map[int]netip.AddrPort
		connected map[int]netip.AddrPort

		recvQueue []recvElem
		sent      [][]byte
		sentTo    []netip.AddrPort

		lastSendFlags int
		lastRecvFlags int

		sendLimit  int
		socketErr  error
		bindErr    error
		connectErr error
		sendErr    error
		recvErr    error
	}

	recvElem struct {
		payload []byte
		peer    netip.AddrPort
	}
)

var _ platform.Stack = (*FakeStack)(nil)

// NewFakeStack returns an empty fake stack.
func NewFakeStack() *FakeStack {
	return &FakeStack{
		closes:    make(map[int]int),
		bound:     make(map[int]netip.AddrPort),
		connected: make(map[int]netip.AddrPort),
	}
}

// QueueRecv schedules b to be returned by the next Recv or RecvFrom call.
func (f *FakeStack) QueueRecv(b []byte) {
	f.QueueRecvFrom(b, netip.AddrPort{})
}

// QueueRecvFrom schedules b to be returned along with the given peer.
func (f *FakeStack) QueueRecvFrom(b []byte, peer netip.AddrPort) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recvQueue = append(f.recvQueue, recvElem{payload: append([]byte(nil), b...), peer: peer})
}

// SetSendLimit bounds how many bytes each Send accepts, to exercise
// partial-send handling. Zero means accept everything.
func (f *FakeStack) SetSendLimit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendLimit = n
}

// FailSocket makes Socket fail with err.
func (f *FakeStack) FailSocket(err error) { f.mu.Lock(); f.socketErr = err; f.mu.Unlock() }

// FailBind makes Bind fail with err.
func (f *FakeStack) FailBind(err error) { f.mu.Lock(); f.bindErr = err; f.mu.Unlock() }

// FailConnect makes Connect fail with err.
func (f *FakeStack) FailConnect(err error) { f.mu.Lock(); f.connectErr = err; f.mu.Unlock() }

// FailSend makes Send and SendTo fail with err.
func (f *FakeStack) FailSend(err error) { f.mu.Lock(); f.sendErr = err; f.mu.Unlock() }

// FailRecv makes Recv and RecvFrom fail with err.
func (f *FakeStack) FailRecv(err error) { f.mu.Lock(); f.recvErr = err; f.mu.Unlock() }

// Syscalls returns how many Stack calls were made, Close included.
func (f *FakeStack) Syscalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syscalls
}

// Connects returns how many Connect calls were made.
func (f *FakeStack) Connects() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// CloseCount returns how many times fd was closed.
func (f *FakeStack) CloseCount(fd int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes[fd]
}

// Sent returns every payload accepted by Send and SendTo, in order.
func (f *FakeStack) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

// LastSendFlags returns the flags of the most recent Send or SendTo.
func (f *FakeStack) LastSendFlags() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSendFlags
}

// LastRecvFlags returns the flags of the most recent Recv or RecvFrom.
func (f *FakeStack) LastRecvFlags() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastRecvFlags
}

// ConnectedTo returns the address fd was connected to.
func (f *FakeStack) ConnectedTo(fd int) netip.AddrPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected[fd]
}

// BoundTo returns the address fd was bound to.
func (f *FakeStack) BoundTo(fd int) netip.AddrPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bound[fd]
}

func (f *FakeStack) Socket(platform.SocketType) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	if f.socketErr != nil {
		return -1, f.socketErr
	}
	fd := f.nextFD
	f.nextFD++
	return fd, nil
}

func (f *FakeStack) Bind(fd int, addr netip.AddrPort) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	if f.bindErr != nil {
		return f.bindErr
	}
	f.bound[fd] = addr
	return nil
}

func (f *FakeStack) Connect(fd int, addr netip.AddrPort) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	f.connects++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected[fd] = addr
	return nil
}

func (f *FakeStack) Send(fd int, b []byte, flags int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	f.lastSendFlags = flags
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	n := len(b)
	if f.sendLimit > 0 && n > f.sendLimit {
		n = f.sendLimit
	}
	f.sent = append(f.sent, append([]byte(nil), b[:n]...))
	return n, nil
}

func (f *FakeStack) Recv(fd int, b []byte, flags int) (int, error) {
	n, _, err := f.pop(b, flags)
	return n, err
}

func (f *FakeStack) SendTo(fd int, b []byte, flags int, to netip.AddrPort) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	f.lastSendFlags = flags
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	n := len(b)
	if f.sendLimit > 0 && n > f.sendLimit {
		n = f.sendLimit
	}
	f.sent = append(f.sent, append([]byte(nil), b[:n]...))
	f.sentTo = append(f.sentTo, to)
	return n, nil
}

func (f *FakeStack) RecvFrom(fd int, b []byte, flags int) (int, netip.AddrPort, error) {
	return f.pop(b, flags)
}

func (f *FakeStack) Close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	f.closes[fd]++
	return nil
}

func (f *FakeStack) pop(b []byte, flags int) (int, netip.AddrPort, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syscalls++
	f.lastRecvFlags = flags
	if f.recvErr != nil {
		return 0, netip.AddrPort{}, f.recvErr
	}
	// an empty queue plays the peer closing its write side
	if len(f.recvQueue) == 0 {
		return 0, netip.AddrPort{}, nil
	}
	var elem recvElem
	elem, f.recvQueue = f.recvQueue[0], f.recvQueue[1:]
	return copy(b, elem.payload), elem.peer, nil
}
