package apex

import (
	"github.com/Doridian/synthDNS/handler"
	"github.com/miekg/dns"
)

// Generator answers every name under the root domain that no other zone
// claims with an authoritative NXDOMAIN.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (r *Generator) HandleQuestion(_ *handler.Request) ([]dns.RR, int, error) {
	return nil, dns.RcodeNameError, nil
}

func (r *Generator) GetName() string {
	return "apex"
}
