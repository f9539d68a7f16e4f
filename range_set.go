package edgetrust

import "net/netip"

// RangeSet is a published, read-only set of trusted network ranges.
//
// A RangeSet is never mutated after construction and is safe for concurrent
// use without locking. A nil *RangeSet contains nothing.
type RangeSet struct {
	ranges   []NetworkRange
	strategy MatchStrategy
	trie     *rangeTrie
}

// NewRangeSet builds a RangeSet over a copy of ranges.
//
// An unknown strategy falls back to MatchLinear.
func NewRangeSet(strategy MatchStrategy, ranges ...NetworkRange) *RangeSet {
	if !strategy.valid() {
		strategy = MatchLinear
	}

	set := &RangeSet{
		ranges:   cloneRanges(ranges),
		strategy: strategy,
	}
	if strategy == MatchTrie {
		set.trie = buildRangeTrie(set.ranges)
	}

	return set
}

// Contains reports whether addr matches at least one range in s.
func (s *RangeSet) Contains(addr netip.Addr) bool {
	if s == nil || !addr.IsValid() {
		return false
	}

	if s.trie != nil {
		return s.trie.contains(addr)
	}

	for _, r := range s.ranges {
		if r.Contains(addr) {
			return true
		}
	}

	return false
}

// Ranges returns a copy of the ranges in publication order.
func (s *RangeSet) Ranges() []NetworkRange {
	if s == nil {
		return nil
	}
	return cloneRanges(s.ranges)
}

// Len returns the number of ranges in s.
func (s *RangeSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ranges)
}

// Strategy returns the strategy s matches with.
func (s *RangeSet) Strategy() MatchStrategy {
	if s == nil {
		return MatchLinear
	}
	return s.strategy
}

// CountByFamily returns the number of IPv4 and IPv6 ranges in s.
func (s *RangeSet) CountByFamily() (ipv4, ipv6 int) {
	if s == nil {
		return 0, 0
	}

	for _, r := range s.ranges {
		switch r.Family() {
		case FamilyIPv4:
			ipv4++
		case FamilyIPv6:
			ipv6++
		}
	}

	return ipv4, ipv6
}

func cloneRanges(ranges []NetworkRange) []NetworkRange {
	if ranges == nil {
		return nil
	}
	cloned := make([]NetworkRange, len(ranges))
	copy(cloned, ranges)
	return cloned
}
