package socket

import (
	"crypto/tls"
	"crypto/x509"
	"io"
	"math/rand"
	"net"
	"strings"
	"time"

	pkgio "github.com/psp-go/psp-net/pkg/io"
)

type (
	// TLS wraps a connected TCP socket with a TLS session. It starts
	// not-ready and becomes ready only through a successful handshake in
	// Open. The wrapped TCP socket is owned exclusively by the session
	// from NewTLS on: callers must not touch it again, and Close releases
	// both the session and the socket.
	TLS struct {
		state   socketState
		inner   *TCP
		session *tls.Conn
	}

	// tcpNetConn adapts a connected TCP socket to the net.Conn surface the
	// TLS record layer reads and writes through. Record writes are drained
	// fully so a record is never left half-buffered. The platform has no
	// deadline support, so the deadline setters are accepted and ignored.
	tcpNetConn struct {
		s *TCP
	}
)

var textStripper = strings.NewReplacer("\r", "", "\x00", "")

// NewTLS wraps a connected TCP socket in a not-ready TLS socket. No
// network I/O happens until Open.
func NewTLS(inner *TCP) (*TLS, error) {
	if err := inner.ensureConnected(); err != nil {
		return nil, err
	}
	return &TLS{
		state: stateNotReady,
		inner: inner,
	}, nil
}

// NewRecordBuffer returns a buffer sized for one full TLS record. ReadText
// uses one internally; callers reading binary data can allocate their own.
func NewRecordBuffer() []byte {
	return make([]byte, RecordBufferSize)
}

// Open performs the TLS handshake against the wrapped socket. The
// pseudo-random generator is seeded from options.Seed, or from the
// current tick when the seed is zero. Certificate verification is skipped
// by platform policy. On failure the socket is consumed: the descriptor
// is released and no ready value exists.
func (s *TLS) Open(options TLSOptions) (*TLS, error) {
	if err := s.inner.fd.guard(); err != nil {
		return nil, newTLSError(err)
	}
	switch s.state {
	case stateNotReady:
	case stateReady:
		return nil, newTLSError(ErrAlreadyConnected)
	default:
		return nil, newTLSError(ErrClosed)
	}

	seed := options.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	suites := []uint16{tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256}
	if options.EnableRSASignatures {
		suites = append(suites, tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256)
	}

	cfg := &tls.Config{
		Rand:       rand.New(rand.NewSource(int64(seed))),
		ServerName: options.ServerName,
		// the platform TLS policy skips certificate verification
		InsecureSkipVerify:          true,
		MinVersion:                  tls.VersionTLS12,
		MaxVersion:                  tls.VersionTLS12,
		CipherSuites:                suites,
		DynamicRecordSizingDisabled: options.ResetMaxFragmentLength,
	}
	if options.Certificate != nil {
		cfg.Certificates = []tls.Certificate{*options.Certificate}
	}
	if len(options.CA) > 0 {
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(options.CA)
		cfg.RootCAs = pool
	}

	session := tls.Client(tcpNetConn{s.inner}, cfg)
	if err := session.Handshake(); err != nil {
		s.consume()
		return nil, newTLSError(err)
	}

	s.session = session
	s.state = stateReady
	s.inner.logger().WithField("server_name", options.ServerName).Debug("tls handshake complete")
	return s, nil
}

// Read reads decrypted application data from the session. The record
// layer performs as many underlying socket operations as it needs to
// assemble records.
func (s *TLS) Read(b []byte) (int, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	n, err := s.session.Read(b)
	bytesReceived.WithLabelValues(protoTLS).Add(float64(n))
	if err != nil {
		return n, newTLSError(err)
	}
	return n, nil
}

// Write encrypts b into one or more records and sends them.
func (s *TLS) Write(b []byte) (int, error) {
	if err := s.ensureReady(); err != nil {
		return 0, err
	}
	n, err := s.session.Write(b)
	bytesSent.WithLabelValues(protoTLS).Add(float64(n))
	if err != nil {
		return n, newTLSError(err)
	}
	return n, nil
}

// Flush drains whatever the wrapped socket still buffers. Record writes
// are drained as they happen, so this normally returns immediately.
func (s *TLS) Flush() error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if err := s.inner.Flush(); err != nil {
		return newTLSError(err)
	}
	return nil
}

// ReadText reads into a record-sized scratch buffer and returns the data
// as text, lossily decoded with carriage returns and NUL bytes stripped.
// This suits line-text protocol clients; it is not binary-safe.
func (s *TLS) ReadText() (string, error) {
	buf := NewRecordBuffer()
	n, err := s.Read(buf)
	if err != nil {
		return "", err
	}
	text := strings.ToValidUTF8(string(buf[:n]), "�")
	return textStripper.Replace(text), nil
}

// Close shuts the session down and releases the wrapped socket. The
// descriptor is still closed exactly once.
func (s *TLS) Close() error {
	state := s.state
	s.state = stateClosed
	if state == stateReady && s.session != nil {
		return pkgio.Close(s.session, s.inner)
	}
	return s.inner.Close()
}

// Ready tells whether the handshake completed.
func (s *TLS) Ready() bool {
	return s.state == stateReady
}

func (s *TLS) ensureReady() error {
	if err := s.inner.fd.guard(); err != nil {
		return newTLSError(err)
	}
	if s.state != stateReady {
		return newTLSError(ErrNotConnected)
	}
	return nil
}

func (s *TLS) consume() {
	s.state = stateClosed
	_ = s.inner.Close()
}

func (c tcpNetConn) Read(b []byte) (int, error) {
	n, err := c.s.Read(b)
	// the record layer expects io.EOF for a closed peer, not a zero read
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}

func (c tcpNetConn) Write(b []byte) (int, error) {
	if _, err := c.s.Write(b); err != nil {
		return 0, err
	}
	if err := c.s.Flush(); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (c tcpNetConn) Close() error {
	return c.s.Close()
}

func (c tcpNetConn) LocalAddr() net.Addr {
	return &net.TCPAddr{}
}

func (c tcpNetConn) RemoteAddr() net.Addr {
	remote := c.s.RemoteAddr()
	if !remote.IsValid() {
		return &net.TCPAddr{}
	}
	return net.TCPAddrFromAddrPort(remote)
}

func (c tcpNetConn) SetDeadline(time.Time) error      { return nil }
func (c tcpNetConn) SetReadDeadline(time.Time) error  { return nil }
func (c tcpNetConn) SetWriteDeadline(time.Time) error { return nil }

var _ net.Conn = tcpNetConn{}
