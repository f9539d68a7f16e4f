package edgetrust

import (
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRangeSet_Contains(t *testing.T) {
	ranges := []NetworkRange{
		MustParseRange("10.0.0.0/8"),
		MustParseRange("172.64.0.0/13"),
		MustParseRange("2001:db8::/32"),
		MustParseRange("2400:cb00::1/128"),
	}

	tests := []struct {
		name string
		ip   string
		want bool
	}{
		{name: "IPv4 in range", ip: "10.42.1.2", want: true},
		{name: "IPv4 in second range", ip: "172.64.0.1", want: true},
		{name: "IPv4 out of range", ip: "11.0.0.1", want: false},
		{name: "IPv6 in range", ip: "2001:db8::1", want: true},
		{name: "IPv6 host exact", ip: "2400:cb00::1", want: true},
		{name: "IPv6 host neighbour", ip: "2400:cb00::2", want: false},
		{name: "IPv6 out of range", ip: "2606:4700::1", want: false},
	}

	for _, strategy := range []MatchStrategy{MatchLinear, MatchTrie} {
		set := NewRangeSet(strategy, ranges...)

		for _, tt := range tests {
			t.Run(strategy.String()+"/"+tt.name, func(t *testing.T) {
				if got := set.Contains(netip.MustParseAddr(tt.ip)); got != tt.want {
					t.Fatalf("Contains(%s) = %v, want %v", tt.ip, got, tt.want)
				}
			})
		}
	}
}

func TestRangeSet_ZeroPrefix(t *testing.T) {
	for _, strategy := range []MatchStrategy{MatchLinear, MatchTrie} {
		t.Run(strategy.String(), func(t *testing.T) {
			v4Set := NewRangeSet(strategy, MustParseRange("0.0.0.0/0"))
			if !v4Set.Contains(netip.MustParseAddr("8.8.8.8")) {
				t.Fatal("expected IPv4 set to trust all IPv4 addresses")
			}
			if v4Set.Contains(netip.MustParseAddr("2001:4860:4860::8888")) {
				t.Fatal("expected IPv4 set to reject IPv6 addresses")
			}

			v6Set := NewRangeSet(strategy, MustParseRange("::/0"))
			if !v6Set.Contains(netip.MustParseAddr("2001:4860:4860::8888")) {
				t.Fatal("expected IPv6 set to trust all IPv6 addresses")
			}
			if v6Set.Contains(netip.MustParseAddr("8.8.8.8")) {
				t.Fatal("expected IPv6 set to reject IPv4 addresses")
			}
		})
	}
}

func TestRangeSet_StrategiesAgree(t *testing.T) {
	ranges, err := ParseRangeList(testIPv4List + testIPv6List + "192.0.2.0/24\n192.0.2.128/25\n10.1.2.3/8\n")
	if err != nil {
		t.Fatalf("ParseRangeList() error = %v", err)
	}

	linear := NewRangeSet(MatchLinear, ranges...)
	trie := NewRangeSet(MatchTrie, ranges...)

	addrs := []string{
		"173.245.48.1", "173.245.64.0", "103.21.247.255", "103.21.248.0",
		"172.71.255.255", "172.72.0.0", "192.0.2.1", "192.0.2.200", "192.0.3.1",
		"10.255.255.255", "11.0.0.0", "2400:cb00::1", "2400:cb01::1",
		"2606:4700:ffff::1", "2606:4701::", "::1", "0.0.0.0",
	}

	for _, a := range addrs {
		addr := netip.MustParseAddr(a)
		if got, want := trie.Contains(addr), linear.Contains(addr); got != want {
			t.Fatalf("trie.Contains(%s) = %v, linear.Contains = %v", a, got, want)
		}
	}
}

func TestRangeSet_NilAndEmpty(t *testing.T) {
	var nilSet *RangeSet
	addr := netip.MustParseAddr("172.64.0.1")

	if nilSet.Contains(addr) {
		t.Fatal("nil set matched an address")
	}
	if nilSet.Len() != 0 || nilSet.Ranges() != nil {
		t.Fatal("nil set reported ranges")
	}

	for _, strategy := range []MatchStrategy{MatchLinear, MatchTrie} {
		if NewRangeSet(strategy).Contains(addr) {
			t.Fatalf("empty %s set matched an address", strategy)
		}
	}
}

func TestRangeSet_ImmutableCopies(t *testing.T) {
	ranges := []NetworkRange{MustParseRange("10.0.0.0/8"), MustParseRange("2001:db8::/32")}
	set := NewRangeSet(MatchLinear, ranges...)

	ranges[0] = MustParseRange("192.0.2.0/24")
	returned := set.Ranges()
	returned[1] = MustParseRange("192.0.2.0/24")

	if diff := cmp.Diff([]string{"10.0.0.0/8", "2001:db8::/32"}, rangeStrings(set.Ranges())); diff != "" {
		t.Fatalf("set mutated through caller slices (-want +got):\n%s", diff)
	}

	ipv4, ipv6 := set.CountByFamily()
	if ipv4 != 1 || ipv6 != 1 {
		t.Fatalf("CountByFamily() = (%d, %d), want (1, 1)", ipv4, ipv6)
	}
}

func TestNewRangeSet_UnknownStrategyFallsBack(t *testing.T) {
	set := NewRangeSet(MatchStrategy(99), MustParseRange("10.0.0.0/8"))

	if set.Strategy() != MatchLinear {
		t.Fatalf("Strategy() = %v, want linear", set.Strategy())
	}
	if !set.Contains(netip.MustParseAddr("10.0.0.1")) {
		t.Fatal("expected fallback set to match")
	}
}
