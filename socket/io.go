package socket

type (
	// Reader reads bytes from a socket into a caller-supplied buffer.
	// A zero count with a nil error means the peer closed its write side.
	Reader interface {
		Read(b []byte) (int, error)
	}

	// Writer appends bytes to a socket's outbound buffer and drains it.
	Writer interface {
		Write(b []byte) (int, error)
		Flush() error
	}

	// Opener is the state transition that takes a freshly constructed
	// socket to its terminal ready state in one call, driven by options.
	// A failed Open consumes the socket: retrying requires constructing a
	// fresh one.
	Opener[O any, R any] interface {
		Open(options O) (R, error)
	}

	// EasySocket is the simplified socket surface: construct, Open, then
	// Read/Write/Flush. Closing happens on release via Close.
	EasySocket[O any, R any] interface {
		Reader
		Writer
		Opener[O, R]
	}
)

var (
	_ EasySocket[Options, *TCP]    = (*TCP)(nil)
	_ EasySocket[Options, *UDP]    = (*UDP)(nil)
	_ EasySocket[TLSOptions, *TLS] = (*TLS)(nil)
)
