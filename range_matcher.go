package edgetrust

import "net/netip"

// MatchStrategy selects how a RangeSet evaluates membership.
type MatchStrategy int

const (
	// Start at 1 to avoid zero-value confusion and make invalid strategies
	// explicit.
	//
	// MatchLinear scans ranges in order and stops at the first match.
	MatchLinear MatchStrategy = iota + 1
	// MatchTrie looks addresses up in a per-family binary prefix trie built
	// when the set is published.
	MatchTrie
)

// String returns the canonical text representation of s.
func (s MatchStrategy) String() string {
	switch s {
	case MatchLinear:
		return "linear"
	case MatchTrie:
		return "trie"
	default:
		return "unknown"
	}
}

// valid reports whether s is a supported strategy.
func (s MatchStrategy) valid() bool {
	return s == MatchLinear || s == MatchTrie
}

type rangeTrie struct {
	ipv4Root *prefixTrieNode
	ipv6Root *prefixTrieNode
}

type prefixTrieNode struct {
	children [2]*prefixTrieNode
	terminal bool
}

func buildRangeTrie(ranges []NetworkRange) *rangeTrie {
	trie := &rangeTrie{}

	for _, r := range ranges {
		if !r.IsValid() {
			continue
		}

		if r.addr.Is4() {
			if trie.ipv4Root == nil {
				trie.ipv4Root = &prefixTrieNode{}
			}

			bytes := r.addr.As4()
			insertPrefix(trie.ipv4Root, bytes[:], r.Bits())
			continue
		}

		if trie.ipv6Root == nil {
			trie.ipv6Root = &prefixTrieNode{}
		}

		bytes := r.addr.As16()
		insertPrefix(trie.ipv6Root, bytes[:], r.Bits())
	}

	return trie
}

func insertPrefix(root *prefixTrieNode, addr []byte, bits int) {
	node := root
	for bitIndex := range bits {
		if node.terminal {
			// A shorter prefix already covers everything below.
			return
		}

		bit := addrBit(addr, bitIndex)
		child := node.children[bit]
		if child == nil {
			child = &prefixTrieNode{}
			node.children[bit] = child
		}
		node = child
	}

	node.terminal = true
}

func (t *rangeTrie) contains(addr netip.Addr) bool {
	if addr.Is4() {
		bytes := addr.As4()
		return trieContains(t.ipv4Root, bytes[:])
	}

	bytes := addr.As16()
	return trieContains(t.ipv6Root, bytes[:])
}

func trieContains(root *prefixTrieNode, addr []byte) bool {
	node := root
	if node == nil {
		return false
	}

	if node.terminal {
		return true
	}

	for bitIndex := range len(addr) * 8 {
		node = node.children[addrBit(addr, bitIndex)]
		if node == nil {
			return false
		}
		if node.terminal {
			return true
		}
	}

	return false
}
