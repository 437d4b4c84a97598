package zone

import (
	"errors"
	"fmt"
	"slices"

	"github.com/miekg/dns"
)

var ErrInvalidDomain = errors.New("zone: invalid root domain")

// Kind is one of the zones served under the root domain.
type Kind int

const (
	Root Kind = iota
	Counter
	MyIP
	Coin
	Dice
	CIDR
	Time

	numKinds
)

var kindLabels = [numKinds]string{
	Root:    "",
	Counter: "counter",
	MyIP:    "myip",
	Coin:    "coin",
	Dice:    "dice",
	CIDR:    "cidr",
	Time:    "time",
}

// Order in which names are matched against zones.
// Root is a suffix of every other zone and must stay last.
var precedence = []Kind{MyIP, Counter, Coin, Dice, CIDR, Time, Root}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	if k == Root {
		return "root"
	}
	return kindLabels[k]
}

// Kinds returns every zone kind in precedence order.
func Kinds() []Kind {
	return slices.Clone(precedence)
}

// Zones holds the canonical names of all zones for one root domain.
// It is immutable after New.
type Zones struct {
	names [numKinds]string
}

func New(root string) (*Zones, error) {
	if _, ok := dns.IsDomainName(root); !ok || root == "" || root == "." {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDomain, root)
	}

	root = dns.CanonicalName(root)

	z := &Zones{}
	for k, label := range kindLabels {
		if label == "" {
			z.names[k] = root
			continue
		}
		z.names[k] = label + "." + root
	}
	return z, nil
}

// Name returns the canonical name of the given zone.
func (z *Zones) Name(k Kind) string {
	if k < 0 || k >= numKinds {
		return ""
	}
	return z.names[k]
}

// Classify maps a query name to the most specific zone it belongs to.
func (z *Zones) Classify(name string) (Kind, bool) {
	name = dns.CanonicalName(name)
	for _, k := range precedence {
		if dns.IsSubDomain(z.names[k], name) {
			return k, true
		}
	}
	return Root, false
}
