package socket

import (
	"crypto/tls"
	"net/netip"
)

type (
	// Options configures the one-call Open path of TCP and UDP sockets.
	Options struct {
		// Remote is the IPv4 address and port to connect to.
		Remote netip.AddrPort
	}

	// TLSOptions configures the TLS handshake performed by (*TLS).Open.
	TLSOptions struct {
		// Seed seeds the session's pseudo-random generator. Zero means
		// "seed from the current tick", giving organic randomness in
		// production while a fixed value gives reproducible handshakes in
		// tests.
		Seed uint64

		// ServerName is sent in the SNI extension.
		ServerName string

		// Certificate is the optional client certificate.
		Certificate *tls.Certificate

		// CA is an optional PEM bundle of trusted roots. It is recorded in
		// the session configuration even though the platform policy skips
		// certificate verification.
		CA []byte

		// EnableRSASignatures keeps the RSA key-exchange suite available.
		EnableRSASignatures bool

		// ResetMaxFragmentLength disables the session's dynamic record
		// sizing so records are always full-length.
		ResetMaxFragmentLength bool
	}
)

// NewOptions returns Options connecting to remote.
func NewOptions(remote netip.AddrPort) Options {
	return Options{Remote: remote}
}

// NewTLSOptions returns TLSOptions with the defaults: RSA signatures
// enabled, max fragment length untouched, no certificates.
func NewTLSOptions(seed uint64, serverName string) TLSOptions {
	return TLSOptions{
		Seed:                seed,
		ServerName:          serverName,
		EnableRSASignatures: true,
	}
}
