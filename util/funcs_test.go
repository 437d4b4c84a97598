package util_test

import (
	"net"
	"testing"

	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
)

func TestExtractIP(t *testing.T) {
	assert.Equal(t, net.IPv4(10, 1, 2, 3), util.ExtractIP(&net.UDPAddr{IP: net.IPv4(10, 1, 2, 3), Port: 53}))
	assert.Equal(t, net.ParseIP("2001:db8::1"), util.ExtractIP(&net.TCPAddr{IP: net.ParseIP("2001:db8::1"), Port: 53}))
	assert.Equal(t, net.IPv4(192, 0, 2, 1), util.ExtractIP(&net.IPAddr{IP: net.IPv4(192, 0, 2, 1)}))
	assert.Nil(t, util.ExtractIP(&net.UnixAddr{Name: "/tmp/sock", Net: "unix"}))
}

func TestNewTXT(t *testing.T) {
	rr := util.NewTXT("Counter.Example.com.", "42")

	txt, ok := rr.(*dns.TXT)
	assert.True(t, ok)
	assert.Equal(t, []string{"42"}, txt.Txt)
	assert.Equal(t, "Counter.Example.com.", txt.Hdr.Name)
	assert.Equal(t, dns.TypeTXT, txt.Hdr.Rrtype)
	assert.Equal(t, uint16(dns.ClassINET), txt.Hdr.Class)
	assert.Equal(t, uint32(60), txt.Hdr.Ttl)
}

func TestApplyEDNS0Reply(t *testing.T) {
	query := &dns.Msg{}
	query.SetQuestion("example.com.", dns.TypeA)

	reply := &dns.Msg{}
	reply.SetReply(query)
	assert.Nil(t, util.ApplyEDNS0Reply(query, reply, util.DefaultUDPSize))
	assert.Nil(t, reply.IsEdns0())

	query.SetEdns0(4096, true)
	reply = &dns.Msg{}
	reply.SetReply(query)
	opt := util.ApplyEDNS0Reply(query, reply, 4000)
	assert.NotNil(t, opt)
	assert.NotNil(t, reply.IsEdns0())
	assert.Equal(t, uint16(4000), reply.IsEdns0().UDPSize())
	assert.True(t, reply.IsEdns0().Do())
}

func TestApplyEDNS0ReplyClearsExtendedRcode(t *testing.T) {
	query := &dns.Msg{}
	query.SetQuestion("example.com.", dns.TypeA)

	reply := &dns.Msg{}
	reply.SetRcode(query, dns.RcodeBadCookie)
	util.ApplyEDNS0Reply(query, reply, util.DefaultUDPSize)
	assert.Equal(t, dns.RcodeServerFailure, reply.Rcode)
}
