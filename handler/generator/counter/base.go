package counter

import (
	"strconv"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
)

// Generator reports the request counter value after counting the request itself.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (r *Generator) HandleQuestion(req *handler.Request) ([]dns.RR, int, error) {
	return []dns.RR{
		util.NewTXT(req.Question.Name, strconv.FormatUint(req.Count, 10)),
	}, dns.RcodeSuccess, nil
}

func (r *Generator) GetName() string {
	return "counter"
}
