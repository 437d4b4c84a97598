package cidr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/netip"
)

var (
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidPrefixLength = errors.New("invalid prefix length")
)

// Range is the span of addresses covered by a prefix, network address to
// broadcast address inclusive.
type Range struct {
	Start netip.Addr
	End   netip.Addr
}

func (r Range) String() string {
	return fmt.Sprintf("Usable IP Range: %s - %s", r.Start, r.End)
}

// UsableRange clears the host bits of addr for Start and sets them for End.
func UsableRange(addr netip.Addr, prefixLen int) (Range, error) {
	if !addr.IsValid() || addr.Zone() != "" {
		return Range{}, fmt.Errorf("%w: %s", ErrInvalidAddress, addr)
	}

	bits := addr.BitLen()
	if prefixLen < 0 || prefixLen > bits {
		return Range{}, fmt.Errorf("%w: /%d for %d bit address", ErrInvalidPrefixLength, prefixLen, bits)
	}

	if addr.Is4() {
		return usableRange4(addr, prefixLen), nil
	}
	return usableRange6(addr, prefixLen), nil
}

func usableRange4(addr netip.Addr, prefixLen int) Range {
	b := addr.As4()
	ip := binary.BigEndian.Uint32(b[:])

	// Shifts by 32 yield 0 in Go
	hostMask := uint32(math.MaxUint32) >> prefixLen

	var start, end [4]byte
	binary.BigEndian.PutUint32(start[:], ip&^hostMask)
	binary.BigEndian.PutUint32(end[:], ip|hostMask)

	return Range{
		Start: netip.AddrFrom4(start),
		End:   netip.AddrFrom4(end),
	}
}

func usableRange6(addr netip.Addr, prefixLen int) Range {
	b := addr.As16()
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var hiMask, loMask uint64
	if prefixLen < 64 {
		hiMask = math.MaxUint64 >> prefixLen
		loMask = math.MaxUint64
	} else {
		loMask = math.MaxUint64 >> (prefixLen - 64)
	}

	var start, end [16]byte
	binary.BigEndian.PutUint64(start[:8], hi&^hiMask)
	binary.BigEndian.PutUint64(start[8:], lo&^loMask)
	binary.BigEndian.PutUint64(end[:8], hi|hiMask)
	binary.BigEndian.PutUint64(end[8:], lo|loMask)

	return Range{
		Start: netip.AddrFrom16(start),
		End:   netip.AddrFrom16(end),
	}
}
