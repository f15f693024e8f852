package socket

type (
	// Buffer accumulates outbound bytes for a socket. Implementations are
	// pluggable so callers with special allocation needs can bring their
	// own; the sockets in this package only rely on this contract.
	Buffer interface {
		// Append copies b onto the end of the buffer. It always succeeds,
		// bounded only by available memory.
		Append(b []byte)

		// ConsumePrefix removes the first n bytes. If n >= Len() the
		// buffer is cleared. It never fails, clamping silently.
		ConsumePrefix(n int)

		// Bytes returns the buffered bytes. The slice is only valid until
		// the next mutation.
		Bytes() []byte

		// Len returns the number of buffered bytes.
		Len() int

		// IsEmpty tells whether the buffer holds no bytes.
		IsEmpty() bool
	}

	bytesBuffer struct {
		b []byte
	}
)

// NewBuffer returns the default growable Buffer.
func NewBuffer() Buffer {
	return &bytesBuffer{}
}

func (p *bytesBuffer) Append(b []byte) {
	p.b = append(p.b, b...)
}

func (p *bytesBuffer) ConsumePrefix(n int) {
	if n <= 0 {
		return
	}
	if n >= len(p.b) {
		p.b = p.b[:0]
		return
	}
	p.b = p.b[:copy(p.b, p.b[n:])]
}

func (p *bytesBuffer) Bytes() []byte {
	return p.b
}

func (p *bytesBuffer) Len() int {
	return len(p.b)
}

func (p *bytesBuffer) IsEmpty() bool {
	return len(p.b) == 0
}
