package socket

import "net/netip"

const (
	// RecordBufferSize is the size in bytes of the TLS session's record
	// buffers and of the scratch buffer used by (*TLS).ReadText.
	RecordBufferSize = 16_384

	protoTCP = "tcp"
	protoUDP = "udp"
	protoTLS = "tls"
)

// wildcardAddr is the default bind address 0.0.0.0:0.
var wildcardAddr = netip.AddrPortFrom(netip.AddrFrom4([4]byte{0, 0, 0, 0}), 0)

// checkIPv4 rejects anything other than a plain IPv4 address before a
// syscall is attempted with it.
func checkIPv4(addr netip.AddrPort) error {
	if !addr.Addr().Unmap().Is4() {
		return ErrUnsupportedAddressFamily
	}
	return nil
}
