package dns_test

import (
	"fmt"
	"net"
	"net/netip"
	"testing"

	"github.com/psp-go/psp-net/dns"
	"github.com/psp-go/psp-net/test"

	petname "github.com/dustinkirkland/golang-petname"
	mdns "github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolverAddr = netip.MustParseAddrPort("10.0.0.53:53")

func TestResolve(t *testing.T) {
	stack := test.NewFakeStack()
	stack.QueueRecv(test.DNSResponseA(dns.DefaultTransactionID, "example.com", net.IPv4(93, 184, 216, 34)))

	r, err := dns.NewResolver(stack, resolverAddr)
	require.NoError(t, err)
	defer r.Close()

	addr, err := r.Resolve("example.com")
	require.NoError(t, err)
	assert.Equal(t, netip.AddrFrom4([4]byte{93, 184, 216, 34}), addr)
	assert.Equal(t, resolverAddr, stack.ConnectedTo(0))
}

func TestResolveReusesTheConnection(t *testing.T) {
	stack := test.NewFakeStack()

	r, err := dns.NewResolver(stack, resolverAddr)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 3; i++ {
		host := fmt.Sprintf("%s.example.com", petname.Generate(2, "-"))
		stack.QueueRecv(test.DNSResponseA(dns.DefaultTransactionID, host, net.IPv4(192, 0, 2, byte(i+1))))

		addr, err := r.Resolve(host)
		require.NoError(t, err)
		assert.Equal(t, netip.AddrFrom4([4]byte{192, 0, 2, byte(i + 1)}), addr)
	}
	assert.Equal(t, 1, stack.Connects())
}

func TestResolveErrors(t *testing.T) {
	testCases := []struct {
		name     string
		response []byte
		expected error
	}{
		{
			name:     "empty response",
			response: nil,
			expected: dns.ErrNoData,
		},
		{
			name:     "response without answers",
			response: test.DNSResponseEmpty(dns.DefaultTransactionID, "example.com"),
			expected: dns.ErrNoAnswers,
		},
		{
			name:     "answer with sixteen address bytes",
			response: test.DNSResponseAAAA(dns.DefaultTransactionID, "example.com", net.ParseIP("2001:db8::1")),
			expected: dns.ErrBadAddressData,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stack := test.NewFakeStack()
			if tc.response != nil {
				stack.QueueRecv(tc.response)
			}

			r, err := dns.NewResolver(stack, resolverAddr)
			require.NoError(t, err)
			defer r.Close()

			_, err = r.Resolve("example.com")
			assert.ErrorIs(t, err, tc.expected)
		})
	}
}

func TestResolveShortWriteDoesNotPoisonTheNextQuery(t *testing.T) {
	stack := test.NewFakeStack()
	stack.SetSendLimit(5)

	r, err := dns.NewResolver(stack, resolverAddr)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Resolve("example.com")
	require.ErrorContains(t, err, "short query write")

	stack.SetSendLimit(0)
	stack.QueueRecv(test.DNSResponseA(dns.DefaultTransactionID, "example.org", net.IPv4(192, 0, 2, 9)))
	addr, err := r.Resolve("example.org")
	require.NoError(t, err)
	assert.Equal(t, netip.AddrFrom4([4]byte{192, 0, 2, 9}), addr)

	// the retry's wire frame is a complete query, free of stale bytes
	sent := stack.Sent()
	require.NotEmpty(t, sent)
	query := new(mdns.Msg)
	require.NoError(t, query.Unpack(sent[len(sent)-1]))
	require.Len(t, query.Question, 1)
	assert.Equal(t, "example.org.", query.Question[0].Name)
}

func TestResolveNormalizesHostnames(t *testing.T) {
	stack := test.NewFakeStack()
	stack.QueueRecv(test.DNSResponseA(dns.DefaultTransactionID, "xn--bcher-kva.example", net.IPv4(192, 0, 2, 7)))

	r, err := dns.NewResolver(stack, resolverAddr)
	require.NoError(t, err)
	defer r.Close()

	addr, err := r.Resolve("bücher.example")
	require.NoError(t, err)
	assert.Equal(t, netip.AddrFrom4([4]byte{192, 0, 2, 7}), addr)
}

func TestResolveWithRandomTransactionID(t *testing.T) {
	stack := test.NewFakeStack()
	stack.QueueRecv(test.DNSResponseA(0x1234, "example.com", net.IPv4(192, 0, 2, 1)))

	r, err := dns.NewResolver(stack, resolverAddr,
		dns.WithTransactionID(func() uint16 { return 0x1234 }))
	require.NoError(t, err)
	defer r.Close()

	addr, err := r.Resolve("example.com")
	require.NoError(t, err)
	assert.Equal(t, netip.AddrFrom4([4]byte{192, 0, 2, 1}), addr)
}

func TestResolveAddrIsNotImplemented(t *testing.T) {
	r, err := dns.NewResolver(test.NewFakeStack(), resolverAddr)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.ResolveAddr(netip.AddrFrom4([4]byte{192, 0, 2, 1}))
	assert.ErrorIs(t, err, dns.ErrNotImplemented)
}
