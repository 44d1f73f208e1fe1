package chain

import (
	"slices"
	"sort"
	"strings"
)

// LocalService is the service recorded on hops made by local exploits.
const LocalService = "LOCAL"

const (
	keyFieldSep = "|"
	keyHopEnd   = "->"
)

// Hop is one exploit application. For local hops From equals To and Service
// is LocalService.
type Hop struct {
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
	Exploit string `json:"exploit" yaml:"exploit"`
	Service string `json:"service" yaml:"service"`
}

// IsLocal reports whether the hop stays on its source system.
func (h Hop) IsLocal() bool {
	return h.From == h.To
}

// Key returns the hop's canonical key: from|service|exploit|to->
func (h Hop) Key() string {
	var sb strings.Builder
	h.writeKey(&sb)
	return sb.String()
}

func (h Hop) writeKey(sb *strings.Builder) {
	sb.WriteString(h.From)
	sb.WriteString(keyFieldSep)
	sb.WriteString(h.Service)
	sb.WriteString(keyFieldSep)
	sb.WriteString(h.Exploit)
	sb.WriteString(keyFieldSep)
	sb.WriteString(h.To)
	sb.WriteString(keyHopEnd)
}

// String renders the hop as "FROM -[SERVICE/EXPLOIT]-> TO".
func (h Hop) String() string {
	return h.From + " -[" + h.Service + "/" + h.Exploit + "]-> " + h.To
}

// Chain is an ordered sequence of hops from a start system to a target.
type Chain []Hop

// Key returns the concatenation of the hop keys. The empty chain has key "".
func (c Chain) Key() string {
	var sb strings.Builder
	for _, h := range c {
		h.writeKey(&sb)
	}
	return sb.String()
}

// Clone returns an independent copy of the chain.
func (c Chain) Clone() Chain {
	if c == nil {
		return Chain{}
	}
	return slices.Clone(c)
}

// Exploits returns the exploit names in hop order.
func (c Chain) Exploits() []string {
	names := make([]string, len(c))
	for i, h := range c {
		names[i] = h.Exploit
	}
	return names
}

// String renders the chain on a single line.
func (c Chain) String() string {
	if len(c) == 0 {
		return "(empty chain)"
	}
	parts := make([]string, len(c))
	for i, h := range c {
		parts[i] = h.String()
	}
	return strings.Join(parts, ", ")
}

// Compare orders chains by canonical key, then by length.
func Compare(a, b Chain) int {
	if c := strings.Compare(a.Key(), b.Key()); c != 0 {
		return c
	}
	return len(a) - len(b)
}

// Sort orders chains by canonical key, then by length. The order depends only
// on chain content, never on discovery order.
func Sort(chains []Chain) {
	keys := make([]string, len(chains))
	for i, c := range chains {
		keys[i] = c.Key()
	}
	sort.Stable(byKey{chains: chains, keys: keys})
}

type byKey struct {
	chains []Chain
	keys   []string
}

func (b byKey) Len() int { return len(b.chains) }

func (b byKey) Less(i, j int) bool {
	if b.keys[i] != b.keys[j] {
		return b.keys[i] < b.keys[j]
	}
	return len(b.chains[i]) < len(b.chains[j])
}

func (b byKey) Swap(i, j int) {
	b.chains[i], b.chains[j] = b.chains[j], b.chains[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
