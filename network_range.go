package edgetrust

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strconv"
	"strings"
)

// NetworkRange is a base address plus a prefix length.
//
// The zero value matches nothing. Values are immutable once parsed.
type NetworkRange struct {
	addr netip.Addr
	bits uint8
}

// ParseRange parses s in the form "<address>/<prefixLength>".
//
// The slash is mandatory: a bare address is rejected rather than read as a
// host route. The prefix length must fit the address family (0-32 for IPv4,
// 0-128 for IPv6). Bits beyond the prefix in the base address are kept as
// given; they never take part in matching.
func ParseRange(s string) (NetworkRange, error) {
	addrPart, bitsPart, ok := strings.Cut(s, "/")
	if !ok {
		return NetworkRange{}, rangeParseError(s, "missing prefix length separator")
	}
	if strings.Contains(bitsPart, "/") {
		return NetworkRange{}, rangeParseError(s, "multiple prefix length separators")
	}

	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return NetworkRange{}, rangeParseError(s, fmt.Sprintf("invalid address: %v", err))
	}
	if addr.Zone() != "" {
		return NetworkRange{}, rangeParseError(s, "zoned addresses are not allowed")
	}

	// ParseUint would accept "+8"; require plain decimal digits.
	if bitsPart == "" || strings.TrimLeft(bitsPart, "0123456789") != "" {
		return NetworkRange{}, rangeParseError(s, "prefix length must be a non-negative integer")
	}

	bits, err := strconv.ParseUint(bitsPart, 10, 8)
	if err != nil || int(bits) > addr.BitLen() {
		return NetworkRange{}, rangeParseError(s, fmt.Sprintf("prefix length out of range for %d-bit address", addr.BitLen()))
	}

	return NetworkRange{addr: addr, bits: uint8(bits)}, nil
}

// MustParseRange is like ParseRange but panics on error.
func MustParseRange(s string) NetworkRange {
	r, err := ParseRange(s)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in range %q: %v", s, err))
	}
	return r
}

func rangeParseError(input, reason string) *RangeParseError {
	return &RangeParseError{Err: ErrInvalidRange, Input: input, Reason: reason}
}

// Addr returns the base address.
func (r NetworkRange) Addr() netip.Addr {
	return r.addr
}

// Bits returns the prefix length.
func (r NetworkRange) Bits() int {
	return int(r.bits)
}

// IsValid reports whether r was produced by a successful parse.
func (r NetworkRange) IsValid() bool {
	return r.addr.IsValid()
}

// Family returns the address family of r, or 0 for the zero value.
func (r NetworkRange) Family() Family {
	switch {
	case r.addr.Is4():
		return FamilyIPv4
	case r.addr.Is6():
		return FamilyIPv6
	default:
		return 0
	}
}

// Prefix converts r to a masked netip.Prefix.
func (r NetworkRange) Prefix() netip.Prefix {
	if !r.IsValid() {
		return netip.Prefix{}
	}
	return netip.PrefixFrom(r.addr, int(r.bits)).Masked()
}

// String returns r in "<address>/<prefixLength>" form.
func (r NetworkRange) String() string {
	if !r.IsValid() {
		return "invalid NetworkRange"
	}
	return r.addr.String() + "/" + strconv.Itoa(int(r.bits))
}

// Contains reports whether addr falls inside r.
//
// Addresses of the other family never match, including IPv4-mapped IPv6
// addresses against IPv4 ranges. Callers that accept mapped peers should
// unmap them first.
func (r NetworkRange) Contains(addr netip.Addr) bool {
	if !r.IsValid() || !addr.IsValid() {
		return false
	}

	if r.addr.Is4() {
		if !addr.Is4() {
			return false
		}
		return contains4(r.addr.As4(), addr.As4(), r.bits)
	}

	if !addr.Is6() {
		return false
	}
	return contains6(r.addr.As16(), addr.As16(), int(r.bits))
}

// IsInRange reports whether addr falls inside r.
func IsInRange(addr netip.Addr, r NetworkRange) bool {
	return r.Contains(addr)
}

func contains4(base, addr [4]byte, bits uint8) bool {
	// Shifting a uint32 by 32 yields 0, so /0 masks everything away.
	mask := ^uint32(0) << (32 - uint32(bits))
	return binary.BigEndian.Uint32(base[:])&mask == binary.BigEndian.Uint32(addr[:])&mask
}

func contains6(base, addr [16]byte, bits int) bool {
	for bitIndex := range bits {
		if addrBit(base[:], bitIndex) != addrBit(addr[:], bitIndex) {
			return false
		}
	}
	return true
}

// addrBit returns the bit at bitIndex, counting from the most significant bit
// of addr.
func addrBit(addr []byte, bitIndex int) int {
	byteIndex := bitIndex / 8
	shift := uint(7 - (bitIndex % 8))
	if ((addr[byteIndex] >> shift) & 1) == 1 {
		return 1
	}
	return 0
}
