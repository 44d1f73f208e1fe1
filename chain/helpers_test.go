package chain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/lateral/scenario"
)

const (
	smbGhost       = "CVE-2020-0796-SMBGhost"
	printNightmare = "CVE-2021-34527-PrintNightmare"
	lootCreds      = "LootCreds"
	passTheHash    = "PassTheHash"
)

func corpSmall(t *testing.T) (*scenario.Scenario, *scenario.System, *scenario.System) {
	t.Helper()
	sc := scenario.CorpSmall()
	start := sc.System("EMP-LAPTOP")
	target := sc.System("PAYROLL-DB")
	require.NotNil(t, start)
	require.NotNil(t, target)
	return sc, start, target
}

// baseline is the only three-hop chain in corp-small.
func baseline() Chain {
	return Chain{
		{From: "EMP-LAPTOP", To: "FILE-SRV", Exploit: smbGhost, Service: "SMB"},
		{From: "FILE-SRV", To: "FILE-SRV", Exploit: lootCreds, Service: LocalService},
		{From: "FILE-SRV", To: "PAYROLL-DB", Exploit: passTheHash, Service: "SSH"},
	}
}

// diamond is A -> {B, C} -> T where the first step uses a Limited(limit)
// SSH exploit and the second an unlimited HTTP exploit.
func diamond(t *testing.T, limit int) *scenario.Scenario {
	t.Helper()
	sc, err := scenario.NewBuilder("diamond").
		AddSystem(&scenario.System{Name: "A", OS: "Linux", InitialPrivilege: scenario.PrivUser}).
		AddSystem(&scenario.System{Name: "B", OS: "Linux", Services: []string{"SSH"}}).
		AddSystem(&scenario.System{Name: "C", OS: "Linux", Services: []string{"SSH"}}).
		AddSystem(&scenario.System{Name: "T", OS: "Linux", Services: []string{"HTTP"}}).
		Route("A", "B", "SSH").
		Route("A", "C", "SSH").
		Route("B", "T", "HTTP").
		Route("C", "T", "HTTP").
		AddExploit(&scenario.Exploit{
			Name:              "Jump",
			Access:            scenario.Lateral("SSH"),
			RequiredPrivilege: scenario.PrivUser,
			GrantsPrivilege:   scenario.PrivUser,
			Reuse:             scenario.Limited(limit),
		}).
		AddExploit(&scenario.Exploit{
			Name:              "Web",
			Access:            scenario.Lateral("HTTP"),
			RequiredPrivilege: scenario.PrivUser,
			GrantsPrivilege:   scenario.PrivUser,
		}).
		Build()
	require.NoError(t, err)
	return sc
}

// requireWellFormed asserts the structural chain properties every finder
// result must have.
func requireWellFormed(t *testing.T, sc *scenario.Scenario, start, target *scenario.System, maxHops int, c Chain) {
	t.Helper()

	require.LessOrEqual(t, len(c), maxHops, "chain %s exceeds hop budget", c)
	require.True(t, ValidateChain(sc, start, target, c), "chain %s failed validation: %v", c, Validate(sc, start, target, c))

	if start == target {
		require.Empty(t, c)
		return
	}
	require.NotEmpty(t, c)
	require.Equal(t, start.Name, c[0].From)
	require.Equal(t, target.Name, c[len(c)-1].To)

	seen := map[string]bool{start.Name: true}
	for i, h := range c {
		if i > 0 {
			require.Equal(t, c[i-1].To, h.From, "hop %d breaks continuity", i)
		}
		if i < len(c)-1 {
			require.NotEqual(t, target.Name, h.To, "hop %d reaches the target early", i)
		}
		if !h.IsLocal() {
			require.False(t, seen[h.To], "hop %d revisits %s", i, h.To)
			seen[h.To] = true
		}
	}
}
