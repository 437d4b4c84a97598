package util

import (
	"github.com/miekg/dns"
)

func SetEDNS0(msg *dns.Msg, udpSize uint16, dnssecOk bool) *dns.OPT {
	edns0 := &dns.OPT{
		Hdr: dns.RR_Header{
			Name:   ".",
			Rrtype: dns.TypeOPT,
		},
	}
	edns0.SetUDPSize(udpSize)
	edns0.SetDo(dnssecOk)

	msg.Extra = append(msg.Extra, edns0)
	return edns0
}

// ApplyEDNS0Reply adds an OPT record to the reply if the query carried one.
func ApplyEDNS0Reply(query *dns.Msg, reply *dns.Msg, udpSize uint16) *dns.OPT {
	queryEdns0 := query.IsEdns0()
	if queryEdns0 == nil {
		if reply.Rcode > 0xF {
			// Unset extended RCODE if client doesn't speak EDNS0
			reply.Rcode = dns.RcodeServerFailure
		}
		return nil
	}

	return SetEDNS0(reply, udpSize, queryEdns0.Do())
}
