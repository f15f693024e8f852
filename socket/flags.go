package socket

type (
	// SendFlags is a bitset applied to every send syscall made through a
	// socket instance. Mutations after the socket connects take effect on
	// the next send.
	SendFlags uint32

	// RecvFlags is a bitset applied to every recv syscall made through a
	// socket instance.
	RecvFlags uint32
)

const (
	// SendOOB sends out-of-band data.
	SendOOB SendFlags = 0x1

	// SendEOR marks the end of a record.
	SendEOR SendFlags = 0x8
)

const (
	// RecvOOB processes out-of-band data.
	RecvOOB RecvFlags = 0x1

	// RecvPeek looks at the incoming message without consuming it.
	RecvPeek RecvFlags = 0x2

	// RecvWaitAll blocks until the full request is satisfied.
	RecvWaitAll RecvFlags = 0x40
)

func (f SendFlags) value() int {
	return int(f)
}

func (f RecvFlags) value() int {
	return int(f)
}
