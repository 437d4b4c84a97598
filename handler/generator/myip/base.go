package myip

import (
	"net"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// Generator echoes the client address, as A for IPv4 clients and AAAA otherwise.
type Generator struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		log: log,
	}
}

func (r *Generator) HandleQuestion(req *handler.Request) ([]dns.RR, int, error) {
	remoteIP := req.RemoteIP
	if remoteIP == nil {
		r.log.Debug("No client IP for transport, answering 0.0.0.0", zap.String("name", req.Question.Name))
		remoteIP = net.IPv4zero
	}

	var rr dns.RR
	if ip4 := remoteIP.To4(); ip4 != nil {
		rr = util.FillSynthHeader(&dns.A{
			A: ip4,
		}, req.Question.Name, dns.TypeA)
	} else {
		rr = util.FillSynthHeader(&dns.AAAA{
			AAAA: remoteIP.To16(),
		}, req.Question.Name, dns.TypeAAAA)
	}

	return []dns.RR{rr}, dns.RcodeSuccess, nil
}

func (r *Generator) GetName() string {
	return "myip"
}
