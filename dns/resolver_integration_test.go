//go:build unix

package dns_test

import (
	"net"
	"testing"

	pspdns "github.com/psp-go/psp-net/dns"
	"github.com/psp-go/psp-net/platform"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAgainstRealServer(t *testing.T) {
	pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			m := new(dns.Msg)
			m.SetReply(req)
			m.Answer = append(m.Answer, &dns.A{
				Hdr: dns.RR_Header{
					Name:   req.Question[0].Name,
					Rrtype: dns.TypeA,
					Class:  dns.ClassINET,
					Ttl:    300,
				},
				A: net.IPv4(93, 184, 216, 34).To4(),
			})
			_ = w.WriteMsg(m)
		}),
	}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	r, err := pspdns.NewResolver(platform.NewHostStack(),
		pc.LocalAddr().(*net.UDPAddr).AddrPort())
	require.NoError(t, err)
	defer r.Close()

	addr, err := r.ResolveHostname("example.com")
	require.NoError(t, err)
	assert.Equal(t, "93.184.216.34", addr.String())
}
