package myip_test

import (
	"net"
	"testing"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/handler/generator/myip"
	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func runMyIPTest(t *testing.T, remoteIP net.IP, qtype uint16, expected dns.RR) {
	rr, rcode, err := myip.New(nil).HandleQuestion(&handler.Request{
		Question: &dns.Question{
			Name:   "MyIP.example.com.",
			Qtype:  qtype,
			Qclass: dns.ClassINET,
		},
		RemoteIP: remoteIP,
		Count:    1,
	})
	assert.NoError(t, err)
	assert.Equal(t, dns.RcodeSuccess, rcode)
	assert.ElementsMatch(t, []dns.RR{expected}, rr)
}

func TestIPv4Client(t *testing.T) {
	runMyIPTest(t, net.IPv4(192, 0, 2, 7), dns.TypeA, util.FillHeader(&dns.A{
		A: net.IPv4(192, 0, 2, 7).To4(),
	}, "MyIP.example.com.", dns.TypeA, 60))

	// The record type follows the client, not the question
	runMyIPTest(t, net.IPv4(192, 0, 2, 7), dns.TypeAAAA, util.FillHeader(&dns.A{
		A: net.IPv4(192, 0, 2, 7).To4(),
	}, "MyIP.example.com.", dns.TypeA, 60))
}

func TestIPv6Client(t *testing.T) {
	runMyIPTest(t, net.ParseIP("2001:db8::42"), dns.TypeAAAA, util.FillHeader(&dns.AAAA{
		AAAA: net.ParseIP("2001:db8::42"),
	}, "MyIP.example.com.", dns.TypeAAAA, 60))
}

func TestUnknownClientIP(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	rr, rcode, err := myip.New(zap.New(core)).HandleQuestion(&handler.Request{
		Question: &dns.Question{
			Name:   "myip.example.com.",
			Qtype:  dns.TypeA,
			Qclass: dns.ClassINET,
		},
		RemoteIP: util.ExtractIP(&net.UnixAddr{Name: "/tmp/dns.sock", Net: "unix"}),
		Count:    1,
	})
	assert.NoError(t, err)
	assert.Equal(t, dns.RcodeSuccess, rcode)
	assert.ElementsMatch(t, []dns.RR{util.FillHeader(&dns.A{
		A: net.IPv4zero.To4(),
	}, "myip.example.com.", dns.TypeA, 60)}, rr)

	entries := logs.FilterMessage("No client IP for transport, answering 0.0.0.0").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "myip.example.com.", entries[0].ContextMap()["name"])
}
