package test

import (
	"net"

	"github.com/google/gopacket"
	gplayers "github.com/google/gopacket/layers"
)

// DNSResponseA builds the wire bytes of a DNS response carrying a single
// A answer for name. Building with gopacket while the resolver parses
// with its own codec keeps the fixtures independent of the code under
// test.
func DNSResponseA(id uint16, name string, ip net.IP) []byte {
	msg := dnsResponse(id, name, gplayers.DNSTypeA)
	msg.ANCount = 1
	msg.Answers = []gplayers.DNSResourceRecord{{
		Name:  []byte(name),
		Type:  gplayers.DNSTypeA,
		Class: gplayers.DNSClassIN,
		TTL:   300,
		IP:    ip.To4(),
	}}
	return serializeDNS(msg)
}

// DNSResponseAAAA builds a response whose first answer carries 16 bytes
// of address data instead of the 4 an A record has.
func DNSResponseAAAA(id uint16, name string, ip net.IP) []byte {
	msg := dnsResponse(id, name, gplayers.DNSTypeAAAA)
	msg.ANCount = 1
	msg.Answers = []gplayers.DNSResourceRecord{{
		Name:  []byte(name),
		Type:  gplayers.DNSTypeAAAA,
		Class: gplayers.DNSClassIN,
		TTL:   300,
		IP:    ip.To16(),
	}}
	return serializeDNS(msg)
}

// DNSResponseEmpty builds a response carrying zero answers.
func DNSResponseEmpty(id uint16, name string) []byte {
	return serializeDNS(dnsResponse(id, name, gplayers.DNSTypeA))
}

func dnsResponse(id uint16, name string, qtype gplayers.DNSType) *gplayers.DNS {
	return &gplayers.DNS{
		ID:           id,
		QR:           true,
		RD:           true,
		RA:           true,
		OpCode:       gplayers.DNSOpCodeQuery,
		ResponseCode: gplayers.DNSResponseCodeNoErr,
		QDCount:      1,
		Questions: []gplayers.DNSQuestion{{
			Name:  []byte(name),
			Type:  qtype,
			Class: gplayers.DNSClassIN,
		}},
	}
}

func serializeDNS(msg *gplayers.DNS) []byte {
	buf := gopacket.NewSerializeBuffer()
	if err := msg.SerializeTo(buf, gopacket.SerializeOptions{FixLengths: true}); err != nil {
		panic(err)
	}
	return append([]byte(nil), buf.Bytes()...)
}
