package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHop_Key(t *testing.T) {
	h := Hop{From: "A", To: "B", Exploit: "Jump", Service: "SSH"}
	assert.Equal(t, "A|SSH|Jump|B->", h.Key())
	assert.Equal(t, "A -[SSH/Jump]-> B", h.String())
	assert.False(t, h.IsLocal())

	local := Hop{From: "B", To: "B", Exploit: "Escalate", Service: LocalService}
	assert.True(t, local.IsLocal())
	assert.Equal(t, "B|LOCAL|Escalate|B->", local.Key())
}

func TestChain_Key(t *testing.T) {
	assert.Equal(t, "", Chain{}.Key())
	assert.Equal(t, "", Chain(nil).Key())
	assert.Equal(t, "(empty chain)", Chain{}.String())

	c := baseline()
	assert.Equal(t, c[0].Key()+c[1].Key()+c[2].Key(), c.Key())
	assert.Equal(t, []string{smbGhost, lootCreds, passTheHash}, c.Exploits())
}

func TestChain_Clone(t *testing.T) {
	c := baseline()
	cp := c.Clone()
	cp[0].Exploit = "changed"
	assert.Equal(t, smbGhost, c[0].Exploit)

	empty := Chain(nil).Clone()
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSort(t *testing.T) {
	short := Chain{{From: "A", To: "B", Exploit: "X", Service: "S"}}
	long := Chain{
		{From: "A", To: "A", Exploit: "Y", Service: LocalService},
		{From: "A", To: "B", Exploit: "X", Service: "S"},
	}
	empty := Chain{}

	chains := []Chain{short, long, empty}
	Sort(chains)

	// "" < "A|LOCAL|..." < "A|S|..." byte-wise.
	assert.Equal(t, []Chain{empty, long, short}, chains)
	assert.Negative(t, Compare(empty, short))
	assert.Positive(t, Compare(short, long))
	assert.Zero(t, Compare(short, short.Clone()))
}

func TestSort_IndependentOfInputOrder(t *testing.T) {
	sc, start, target := corpSmall(t)
	chains, err := FindChains(sc, start, target, 4)
	if !assert.NoError(t, err) {
		return
	}

	reversed := make([]Chain, len(chains))
	for i, c := range chains {
		reversed[len(chains)-1-i] = c
	}
	Sort(reversed)
	assert.Equal(t, chains, reversed)
}
