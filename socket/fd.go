package socket

import (
	"sync"
	"sync/atomic"

	"github.com/psp-go/psp-net/platform"
)

type (
	// netfd owns one platform descriptor. Typed socket values produced by
	// state transitions all share the same *netfd, so the descriptor is
	// released exactly once no matter how many wrappers were produced from
	// it, and any wrapper that outlives the release fails with ErrClosed
	// instead of touching the platform.
	netfd struct {
		stack  platform.Stack
		raw    int
		closed atomic.Bool

		closeOnce sync.Once
		closeErr  error
	}
)

func newFD(stack platform.Stack, raw int) *netfd {
	return &netfd{stack: stack, raw: raw}
}

func (f *netfd) guard() error {
	if f.closed.Load() {
		return ErrClosed
	}
	return nil
}

func (f *netfd) close() error {
	f.closeOnce.Do(func() {
		f.closed.Store(true)
		f.closeErr = f.stack.Close(f.raw)
	})
	return f.closeErr
}
