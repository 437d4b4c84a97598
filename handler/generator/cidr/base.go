package cidr

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/util"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/miekg/dns"
)

type cacheKey struct {
	addr      netip.Addr
	prefixLen int
}

// Generator answers <address>.<prefix>.cidr.<root> with the range of the prefix.
// Addresses are dash encoded, e.g. 192-0-2-1 or 2001-db8--1.
type Generator struct {
	zone  string
	cache *lru.Cache[cacheKey, Range]
}

// New returns a generator for the given cidr zone name. A cacheSize of 0
// disables range caching.
func New(zone string, cacheSize int) (*Generator, error) {
	gen := &Generator{
		zone: dns.CanonicalName(zone),
	}

	if cacheSize > 0 {
		cache, err := lru.New[cacheKey, Range](cacheSize)
		if err != nil {
			return nil, err
		}
		gen.cache = cache
	}

	return gen, nil
}

func (r *Generator) HandleQuestion(req *handler.Request) ([]dns.RR, int, error) {
	addr, prefixLen, err := r.parseName(req.Question.Name)
	if err != nil {
		return nil, dns.RcodeServerFailure, err
	}

	ipRange, err := r.usableRange(addr, prefixLen)
	if err != nil {
		return nil, dns.RcodeServerFailure, fmt.Errorf("%w: %w", handler.ErrInvalidCidrQuery, err)
	}

	return []dns.RR{
		util.NewTXT(req.Question.Name, ipRange.String()),
	}, dns.RcodeSuccess, nil
}

func (r *Generator) parseName(name string) (netip.Addr, int, error) {
	name = dns.CanonicalName(name)
	if !dns.IsSubDomain(r.zone, name) || name == r.zone {
		return netip.Addr{}, 0, fmt.Errorf("%w: %s is not below %s", handler.ErrInvalidCidrQuery, name, r.zone)
	}

	labels := dns.SplitDomainName(strings.TrimSuffix(name, "."+r.zone))
	if len(labels) != 2 {
		return netip.Addr{}, 0, fmt.Errorf("%w: expected <address>.<prefix>.%s, got %s", handler.ErrInvalidCidrQuery, r.zone, name)
	}

	addr, ok := DecodeAddr(labels[0])
	if !ok {
		return netip.Addr{}, 0, fmt.Errorf("%w: %w %q", handler.ErrInvalidCidrQuery, ErrInvalidAddress, labels[0])
	}

	prefixLen, err := strconv.ParseUint(labels[1], 10, 8)
	if err != nil {
		return netip.Addr{}, 0, fmt.Errorf("%w: %w %q", handler.ErrInvalidCidrQuery, ErrInvalidPrefixLength, labels[1])
	}

	return addr, int(prefixLen), nil
}

func (r *Generator) usableRange(addr netip.Addr, prefixLen int) (Range, error) {
	if r.cache == nil {
		return UsableRange(addr, prefixLen)
	}

	key := cacheKey{addr: addr, prefixLen: prefixLen}
	ipRange, ok := r.cache.Get(key)
	if ok {
		return ipRange, nil
	}

	ipRange, err := UsableRange(addr, prefixLen)
	if err != nil {
		return Range{}, err
	}
	r.cache.Add(key, ipRange)
	return ipRange, nil
}

// DecodeAddr parses a dash encoded address label. IPv4 uses one dash per dot,
// IPv6 one dash per colon.
func DecodeAddr(label string) (netip.Addr, bool) {
	if strings.Count(label, "-") == 3 {
		addr, err := netip.ParseAddr(strings.ReplaceAll(label, "-", "."))
		if err == nil && addr.Is4() {
			return addr, true
		}
	}

	addr, err := netip.ParseAddr(strings.ReplaceAll(label, "-", ":"))
	if err != nil || !addr.Is6() || addr.Zone() != "" {
		return netip.Addr{}, false
	}
	return addr, true
}

func (r *Generator) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.Len()
}

func (r *Generator) GetName() string {
	return "cidr"
}

func (r *Generator) Refresh() error {
	if r.cache != nil {
		r.cache.Purge()
	}
	return nil
}

func (r *Generator) Start() error {
	return nil
}

func (r *Generator) Stop() error {
	return r.Refresh()
}
