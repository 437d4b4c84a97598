package handler

import (
	"net"

	"github.com/miekg/dns"
)

// Request is what a Generator gets to answer a single question.
type Request struct {
	Question *dns.Question
	RemoteIP net.IP
	// Count is the request counter value after this request was counted.
	Count uint64
}

type Generator interface {
	GetName() string
	// HandleQuestion returns the answer records and rcode for the request.
	// A non-nil error turns into SERVFAIL.
	HandleQuestion(req *Request) (answer []dns.RR, rcode int, err error)
}

type Loadable interface {
	Refresh() error
	Start() error
	Stop() error
}
