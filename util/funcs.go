package util

import (
	"net"

	"github.com/miekg/dns"
)

// ExtractIP returns the IP of addr, or nil for address types without one.
func ExtractIP(addr net.Addr) net.IP {
	switch convAddr := addr.(type) {
	case *net.TCPAddr:
		return convAddr.IP
	case *net.UDPAddr:
		return convAddr.IP
	case *net.IPAddr:
		return convAddr.IP
	default:
		return nil
	}
}

func FillHeader(rr dns.RR, name string, rtype uint16, ttl uint32) dns.RR {
	hdr := rr.Header()
	hdr.Ttl = ttl
	hdr.Class = dns.ClassINET
	hdr.Rrtype = rtype
	hdr.Name = name
	hdr.Rdlength = 0
	return rr
}

// FillSynthHeader fills the header of a synthesized answer for the given owner name.
func FillSynthHeader(rr dns.RR, name string, rtype uint16) dns.RR {
	return FillHeader(rr, name, rtype, SynthTTL)
}

// NewTXT returns a synthesized TXT record with the given strings.
func NewTXT(name string, txt ...string) dns.RR {
	return FillSynthHeader(&dns.TXT{
		Txt: txt,
	}, name, dns.TypeTXT)
}
