package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/lateral/scenario"
)

func keys(chains []Chain) []string {
	out := make([]string, len(chains))
	for i, c := range chains {
		out[i] = c.Key()
	}
	return out
}

func TestFindChains_CorpSmallMax3(t *testing.T) {
	sc, start, target := corpSmall(t)

	chains, err := FindChains(sc, start, target, 3)
	require.NoError(t, err)
	require.Len(t, chains, 1)

	want := "EMP-LAPTOP|SMB|CVE-2020-0796-SMBGhost|FILE-SRV->" +
		"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
		"FILE-SRV|SSH|PassTheHash|PAYROLL-DB->"
	assert.Equal(t, want, chains[0].Key())
	assert.Equal(t, baseline(), chains[0])
	assert.True(t, ValidateChain(sc, start, target, chains[0]))
}

func TestFindChains_CorpSmallMax4(t *testing.T) {
	sc, start, target := corpSmall(t)

	chains, err := FindChains(sc, start, target, 4)
	require.NoError(t, err)

	want := []string{
		"EMP-LAPTOP|LOCAL|CVE-2021-34527-PrintNightmare|EMP-LAPTOP->" +
			"EMP-LAPTOP|SMB|CVE-2020-0796-SMBGhost|FILE-SRV->" +
			"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
			"FILE-SRV|SSH|PassTheHash|PAYROLL-DB->",
		"EMP-LAPTOP|SMB|CVE-2020-0796-SMBGhost|FILE-SRV->" +
			"FILE-SRV|LOCAL|CVE-2021-34527-PrintNightmare|FILE-SRV->" +
			"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
			"FILE-SRV|SSH|PassTheHash|PAYROLL-DB->",
		"EMP-LAPTOP|SMB|CVE-2020-0796-SMBGhost|FILE-SRV->" +
			"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
			"FILE-SRV|LOCAL|CVE-2021-34527-PrintNightmare|FILE-SRV->" +
			"FILE-SRV|SSH|PassTheHash|PAYROLL-DB->",
		"EMP-LAPTOP|SMB|CVE-2020-0796-SMBGhost|FILE-SRV->" +
			"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
			"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
			"FILE-SRV|SSH|PassTheHash|PAYROLL-DB->",
		"EMP-LAPTOP|SMB|CVE-2020-0796-SMBGhost|FILE-SRV->" +
			"FILE-SRV|LOCAL|LootCreds|FILE-SRV->" +
			"FILE-SRV|SSH|PassTheHash|PAYROLL-DB->",
	}
	assert.Equal(t, want, keys(chains))

	for i, c := range chains {
		assert.True(t, ValidateChain(sc, start, target, c), "chain #%d failed validation", i)
	}
}

func TestFindChains_Deterministic(t *testing.T) {
	sc, start, target := corpSmall(t)

	first, err := FindChains(sc, start, target, 4)
	require.NoError(t, err)
	second, err := FindChains(sc, start, target, 4)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	other, err := FindChains(scenario.CorpSmall(), start, target, 4)
	require.Error(t, err, "systems from another scenario instance are foreign")
	assert.Nil(t, other)
}

func TestFindChains_Properties(t *testing.T) {
	tests := []struct {
		name     string
		scenario func() *scenario.Scenario
		start    string
		target   string
		maxHops  int
	}{
		{"corp-small to db", scenario.CorpSmall, "EMP-LAPTOP", "PAYROLL-DB", 5},
		{"corp-small to file server", scenario.CorpSmall, "EMP-LAPTOP", "FILE-SRV", 4},
		{"corp-small from db back to laptop", scenario.CorpSmall, "PAYROLL-DB", "EMP-LAPTOP", 4},
		{"ops-mid to api", scenario.OpsMid, "WORKSTATION-01", "APP-API", 5},
		{"ops-mid to db", scenario.OpsMid, "WORKSTATION-01", "APP-DB", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := tt.scenario()
			start, target := sc.System(tt.start), sc.System(tt.target)

			for hops := 0; hops <= tt.maxHops; hops++ {
				chains, err := FindChains(sc, start, target, hops)
				require.NoError(t, err)

				seen := make(map[string]bool, len(chains))
				for i, c := range chains {
					requireWellFormed(t, sc, start, target, hops, c)
					assert.False(t, seen[c.Key()], "duplicate chain %s", c)
					seen[c.Key()] = true
					if i > 0 {
						assert.Negative(t, Compare(chains[i-1], c), "chains %d and %d out of order", i-1, i)
					}
				}
			}
		})
	}
}

func TestFindChains_MonotonicInBudget(t *testing.T) {
	sc, start, target := corpSmall(t)

	var prev map[string]bool
	for hops := 0; hops <= 6; hops++ {
		chains, err := FindChains(sc, start, target, hops)
		require.NoError(t, err)

		cur := make(map[string]bool, len(chains))
		for _, c := range chains {
			cur[c.Key()] = true
		}
		for k := range prev {
			assert.True(t, cur[k], "chain %q lost when budget grew to %d", k, hops)
		}
		prev = cur
	}
}

func TestFindChains_StartIsTarget(t *testing.T) {
	sc, start, _ := corpSmall(t)

	for _, hops := range []int{0, 3} {
		chains, err := FindChains(sc, start, start, hops)
		require.NoError(t, err)
		require.Len(t, chains, 1)
		assert.Empty(t, chains[0])
		assert.True(t, ValidateChain(sc, start, start, chains[0]))
	}
}

func TestFindChains_Unsatisfiable(t *testing.T) {
	sc, start, target := corpSmall(t)

	for _, hops := range []int{0, 1, 2} {
		chains, err := FindChains(sc, start, target, hops)
		require.NoError(t, err)
		assert.NotNil(t, chains)
		assert.Empty(t, chains)
	}
}

func TestFindChains_MalformedInput(t *testing.T) {
	sc, start, target := corpSmall(t)
	stranger := &scenario.System{Name: "EMP-LAPTOP"}

	tests := []struct {
		name    string
		sc      *scenario.Scenario
		start   *scenario.System
		target  *scenario.System
		maxHops int
		wantErr error
	}{
		{"nil scenario", nil, start, target, 3, ErrNilScenario},
		{"nil start", sc, nil, target, 3, ErrNilSystem},
		{"nil target", sc, start, nil, 3, ErrNilSystem},
		{"foreign start", sc, stranger, target, 3, ErrForeignSystem},
		{"foreign target", sc, start, stranger, 3, ErrForeignSystem},
		{"negative budget", sc, start, target, -1, ErrNegativeMaxHops},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chains, err := FindChains(tt.sc, tt.start, tt.target, tt.maxHops)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, chains)
		})
	}
}

func TestFindChains_LimitedBudgetIsPerChain(t *testing.T) {
	sc := diamond(t, 1)
	start, target := sc.System("A"), sc.System("T")

	chains, err := FindChains(sc, start, target, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"A|SSH|Jump|B->B|HTTP|Web|T->",
		"A|SSH|Jump|C->C|HTTP|Web|T->",
	}, keys(chains))

	none, err := FindChains(diamond(t, 0), sc.System("A"), sc.System("T"), 2)
	require.Error(t, err, "systems belong to the other diamond instance")
	assert.Nil(t, none)

	zero := diamond(t, 0)
	none, err = FindChains(zero, zero.System("A"), zero.System("T"), 2)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFindChains_OncePerSystemScope(t *testing.T) {
	sc, err := scenario.NewBuilder("once").
		AddSystem(&scenario.System{Name: "A", OS: "Windows 10", Services: []string{"SMB"}, InitialPrivilege: scenario.PrivUser}).
		AddSystem(&scenario.System{Name: "B", OS: "Windows 10", Services: []string{"SMB"}}).
		Route("A", "B", "SMB").
		AddExploit(&scenario.Exploit{
			Name:              "Escalate",
			Access:            scenario.Local(),
			RequiredPrivilege: scenario.PrivUser,
			GrantsPrivilege:   scenario.PrivAdmin,
			Reuse:             scenario.OncePerSystem(),
		}).
		AddExploit(&scenario.Exploit{
			Name:              "Worm",
			Access:            scenario.Lateral("SMB"),
			RequiredPrivilege: scenario.PrivAdmin,
			GrantsPrivilege:   scenario.PrivUser,
			Reuse:             scenario.OncePerSystem(),
		}).
		Build()
	require.NoError(t, err)

	chains, err := FindChains(sc, sc.System("A"), sc.System("B"), 4)
	require.NoError(t, err)

	// Escalate may run once on A; a second local run on A is rejected.
	assert.Equal(t, []string{"A|LOCAL|Escalate|A->A|SMB|Worm|B->"}, keys(chains))
}

func TestSearch_UndoIsExact(t *testing.T) {
	tests := []struct {
		name     string
		scenario func() *scenario.Scenario
		start    string
		target   string
		maxHops  int
	}{
		{"corp-small", scenario.CorpSmall, "EMP-LAPTOP", "PAYROLL-DB", 5},
		{"ops-mid", scenario.OpsMid, "WORKSTATION-01", "APP-DB", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := tt.scenario()
			start := sc.System(tt.start)

			s := &search{
				exploits: sc.Exploits(),
				target:   sc.System(tt.target),
				maxHops:  tt.maxHops,
				state:    NewState(sc, start),
			}
			before := s.state.Clone()

			s.visit(start)

			assert.True(t, before.Equal(s.state), "state changed across search")
			assert.Empty(t, s.path)
			assert.Positive(t, s.stats.Applied)
		})
	}
}

func TestSearch_Stats(t *testing.T) {
	sc, start, target := corpSmall(t)

	res, err := Search(sc, start, target, 4)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Stats.Solutions)
	assert.Len(t, res.Chains, 5)
	assert.Greater(t, res.Stats.Nodes, res.Stats.Solutions)
	assert.Equal(t, res.Stats.Nodes-1, res.Stats.Applied, "every application opens exactly one node")
	assert.Positive(t, res.Stats.Rejected)
}

func TestFindChains_ParallelRoutesYieldOneHop(t *testing.T) {
	sc, err := scenario.NewBuilder("parallel").
		AddSystem(&scenario.System{Name: "A", OS: "Linux", InitialPrivilege: scenario.PrivUser}).
		AddSystem(&scenario.System{Name: "B", OS: "Linux", Services: []string{"SSH", "HTTP"}}).
		Route("A", "B", "HTTP").
		Route("A", "B", "SSH").
		Route("A", "B", "SSH", "HTTP").
		AddExploit(&scenario.Exploit{Name: "SSH-Login", Access: scenario.Lateral("SSH"), GrantsPrivilege: scenario.PrivUser}).
		Build()
	require.NoError(t, err)

	chains, err := FindChains(sc, sc.System("A"), sc.System("B"), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"A|SSH|SSH-Login|B->"}, keys(chains))
}
