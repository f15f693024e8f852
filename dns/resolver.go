// Package dns implements one-shot A-record resolution on top of the UDP
// socket. One resolver owns one socket, connected lazily to a fixed server
// and reused across queries. There is no retry, no cache and no TTL
// tracking.
package dns

import (
	"fmt"
	"net/netip"

	"github.com/psp-go/psp-net/platform"
	"github.com/psp-go/psp-net/socket"

	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/idna"
)

type (
	// HostnameResolver resolves a hostname to an IPv4 address.
	HostnameResolver interface {
		ResolveHostname(hostname string) (netip.Addr, error)
	}

	// AddrResolver resolves an IPv4 address back to a hostname.
	AddrResolver interface {
		ResolveAddr(addr netip.Addr) (string, error)
	}

	// FullResolver composes forward and reverse resolution.
	FullResolver interface {
		HostnameResolver
		AddrResolver
	}

	// Resolver performs synchronous DNS exchanges over one UDP socket.
	Resolver struct {
		sock   *socket.UDP
		server netip.AddrPort
		txid   func() uint16
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

const (
	// Port is the standard DNS server port.
	Port = 53

	// DefaultTransactionID is the transaction id stamped on every query
	// unless WithTransactionID overrides it. A fixed id is a response
	// spoofing risk; it is kept as the default for wire compatibility and
	// should be randomized by callers who can afford the behavior change.
	DefaultTransactionID uint16 = 0x42

	// maxResponseSize bounds how many response bytes one exchange reads.
	maxResponseSize = 1024
)

const promSubsystemDNS = "dns"

var (
	// DefaultServer is Google's public resolver.
	DefaultServer = netip.AddrPortFrom(netip.AddrFrom4([4]byte{8, 8, 8, 8}), Port)

	queries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "psp_net",
		Subsystem: promSubsystemDNS,
		Name:      "queries",
		Help:      "Total number of DNS queries sent.",
	})
	queryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "psp_net",
		Subsystem: promSubsystemDNS,
		Name:      "query_failures",
		Help:      "Total number of DNS queries that did not produce an address.",
	})
)

var _ FullResolver = (*Resolver)(nil)

// WithTransactionID makes the resolver stamp each query with the id
// returned by f, e.g. a per-query random id.
func WithTransactionID(f func() uint16) Option {
	return func(r *Resolver) {
		r.txid = f
	}
}

// NewResolver creates a resolver that queries server. The internal UDP
// socket is created and bound now and connected lazily on the first
// Resolve call.
func NewResolver(stack platform.Stack, server netip.AddrPort, opts ...Option) (*Resolver, error) {
	sock, err := socket.NewUDP(stack)
	if err != nil {
		return nil, fmt.Errorf("error creating resolver socket: %w", err)
	}
	if err := sock.Bind(netip.AddrPort{}); err != nil {
		return nil, fmt.Errorf("error binding resolver socket: %w", err)
	}
	r := &Resolver{
		sock:   sock,
		server: server,
		txid:   func() uint16 { return DefaultTransactionID },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// NewDefaultResolver creates a resolver that queries DefaultServer.
func NewDefaultResolver(stack platform.Stack) (*Resolver, error) {
	return NewResolver(stack, DefaultServer)
}

// Resolve performs one A-record query for host and returns the address
// from the first answer. Multiple answers are not ranked; the first one
// wins.
func (r *Resolver) Resolve(host string) (netip.Addr, error) {
	if !r.sock.Connected() {
		if err := r.sock.Connect(r.server); err != nil {
			return netip.Addr{}, fmt.Errorf("error connecting to resolver: %w", err)
		}
	}

	name, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error normalizing hostname: %w", err)
	}

	query := new(dns.Msg)
	query.SetQuestion(dns.Fqdn(name), dns.TypeA)
	query.Id = r.txid()
	wire, err := query.Pack()
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error serializing query: %w", err)
	}

	queries.Inc()
	addr, err := r.exchange(wire)
	if err != nil {
		queryFailures.Inc()
		return netip.Addr{}, err
	}

	r.logger(host).WithField("address", addr.String()).Debug("hostname resolved")
	return addr, nil
}

func (r *Resolver) exchange(wire []byte) (netip.Addr, error) {
	n, err := r.sock.Write(wire)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error sending query: %w", err)
	}
	if n != len(wire) {
		// the unsent suffix must not leak into the next query
		_ = r.sock.Flush()
		return netip.Addr{}, fmt.Errorf("short query write: %d of %d bytes", n, len(wire))
	}

	buf := make([]byte, maxResponseSize)
	n, err = r.sock.Read(buf)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("error receiving response: %w", err)
	}
	if n == 0 {
		return netip.Addr{}, ErrNoData
	}

	resp := new(dns.Msg)
	if err := resp.Unpack(buf[:n]); err != nil {
		return netip.Addr{}, fmt.Errorf("error parsing response: %w", err)
	}
	if len(resp.Answer) == 0 {
		return netip.Addr{}, ErrNoAnswers
	}

	a, ok := resp.Answer[0].(*dns.A)
	if !ok {
		return netip.Addr{}, ErrBadAddressData
	}
	ip4 := a.A.To4()
	if ip4 == nil {
		return netip.Addr{}, ErrBadAddressData
	}
	return netip.AddrFrom4([4]byte(ip4)), nil
}

// ResolveHostname implements HostnameResolver.
func (r *Resolver) ResolveHostname(hostname string) (netip.Addr, error) {
	return r.Resolve(hostname)
}

// ResolveAddr implements AddrResolver. Reverse resolution is out of
// scope: the question can be built (see newPTRQuestion) but the exchange
// is not performed.
func (r *Resolver) ResolveAddr(netip.Addr) (string, error) {
	return "", ErrNotImplemented
}

// Close releases the resolver's socket.
func (r *Resolver) Close() error {
	return r.sock.Close()
}

// newPTRQuestion builds the reverse-lookup question for addr. Kept for
// the day reverse resolution gets implemented; ResolveAddr does not use it.
func newPTRQuestion(addr netip.Addr) (dns.Question, error) {
	arpa, err := dns.ReverseAddr(addr.String())
	if err != nil {
		return dns.Question{}, fmt.Errorf("error building reverse name: %w", err)
	}
	return dns.Question{Name: arpa, Qtype: dns.TypePTR, Qclass: dns.ClassINET}, nil
}

func (r *Resolver) logger(host string) logrus.FieldLogger {
	return logrus.WithFields(logrus.Fields{
		"server":   r.server.String(),
		"hostname": host,
	})
}
