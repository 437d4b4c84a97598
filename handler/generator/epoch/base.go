package epoch

import (
	"fmt"
	"strings"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/util"
	"github.com/miekg/dns"
)

const epochLabel = "epoch"

// Generator answers epoch.<seconds>.<zone> with the timestamp as UTC calendar time.
type Generator struct {
	zone string
}

func New(zone string) *Generator {
	return &Generator{
		zone: dns.CanonicalName(zone),
	}
}

func (r *Generator) HandleQuestion(req *handler.Request) ([]dns.RR, int, error) {
	label, err := r.timestampLabel(req.Question.Name)
	if err != nil {
		return nil, dns.RcodeServerFailure, err
	}

	formatted, err := Format(label)
	if err != nil {
		return nil, dns.RcodeServerFailure, fmt.Errorf("%w: %w", handler.ErrInvalidEpochQuery, err)
	}

	return []dns.RR{
		util.NewTXT(req.Question.Name, formatted),
	}, dns.RcodeSuccess, nil
}

func (r *Generator) timestampLabel(name string) (string, error) {
	name = dns.CanonicalName(name)
	if !dns.IsSubDomain(r.zone, name) || name == r.zone {
		return "", fmt.Errorf("%w: %s is not below %s", handler.ErrInvalidEpochQuery, name, r.zone)
	}

	labels := dns.SplitDomainName(strings.TrimSuffix(name, "."+r.zone))
	if len(labels) != 2 || labels[0] != epochLabel {
		return "", fmt.Errorf("%w: expected %s.<seconds>.%s, got %s", handler.ErrInvalidEpochQuery, epochLabel, r.zone, name)
	}
	return labels[1], nil
}

func (r *Generator) GetName() string {
	return "epoch"
}
