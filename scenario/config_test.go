package scenario_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/lateral/chain"
	"github.com/zero-day-ai/lateral/scenario"
)

func TestLoad_YAML(t *testing.T) {
	sc, err := scenario.Load("testdata/lab.yaml")
	require.NoError(t, err)

	assert.Equal(t, "lab", sc.Name())
	assert.Equal(t, scenario.PrivUser, sc.System("WS").InitialPrivilege)

	hash := sc.Exploit("Hash")
	require.NotNil(t, hash)
	assert.Equal(t, scenario.Lateral("SSH"), hash.Access)
	assert.Equal(t, scenario.Limited(2), hash.Reuse)

	loot := sc.Exploit("Loot")
	require.NotNil(t, loot)
	assert.True(t, loot.Access.IsLocal())
	assert.True(t, loot.LootsCredentials)
	assert.Equal(t, scenario.Unlimited(), loot.Reuse)

	chains, err := chain.FindChains(sc, sc.System("WS"), sc.System("DB"), 3)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "WS|SMB|Ghost|SRV->SRV|LOCAL|Loot|SRV->SRV|SSH|Hash|DB->", chains[0].Key())
}

func TestLoad_JSON(t *testing.T) {
	sc, err := scenario.Load("testdata/lab.json")
	require.NoError(t, err)

	chains, err := chain.FindChains(sc, sc.System("WS"), sc.System("DB"), 1)
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "WS|SSH|SSH-Login|DB->", chains[0].Key())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
		return p
	}

	tests := []struct {
		name     string
		path     string
		contains string
		invalid  bool
	}{
		{"unsupported extension", write("lab.toml", ""), "unsupported scenario format", false},
		{"missing file", filepath.Join(dir, "missing.yaml"), "failed to read", false},
		{"malformed yaml", write("bad.yaml", "systems: [\n"), "failed to parse YAML", false},
		{"malformed json", write("bad.json", "{"), "failed to parse JSON", false},
		{"bad privilege", write("priv.yaml", "systems:\n  - name: A\n    privilege: root\n"), "unknown privilege", true},
		{"bad reuse", write("reuse.yaml", "exploits:\n  - name: X\n    reuse: twice\n"), "unknown reuse policy", true},
		{"route to unknown system", write("route.yaml", "systems:\n  - name: A\nroutes:\n  - from: A\n    to: B\n"), "unknown system", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := scenario.Load(tt.path)
			require.Error(t, err)
			assert.Nil(t, sc)
			assert.Contains(t, err.Error(), tt.contains)
			if tt.invalid {
				assert.ErrorIs(t, err, scenario.ErrInvalidScenario)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	for _, name := range scenario.CatalogNames() {
		for _, format := range []scenario.Format{scenario.FormatYAML, scenario.FormatJSON} {
			t.Run(name+"/"+string(format), func(t *testing.T) {
				orig, _ := scenario.Lookup(name)
				data, err := scenario.Marshal(orig, format)
				require.NoError(t, err)

				back, err := scenario.Parse(data, format)
				require.NoError(t, err)
				assert.Equal(t, scenario.ToDocument(orig), scenario.ToDocument(back))

				for _, s := range orig.Systems() {
					for _, tgt := range orig.Systems() {
						want, err := chain.FindChains(orig, s, tgt, 4)
						require.NoError(t, err)
						got, err := chain.FindChains(back, back.System(s.Name), back.System(tgt.Name), 4)
						require.NoError(t, err)
						assert.Equal(t, want, got, "%s -> %s", s.Name, tgt.Name)
					}
				}
			})
		}
	}
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := scenario.Parse([]byte("{}"), scenario.Format("toml"))
	assert.Error(t, err)

	_, err = scenario.Marshal(scenario.CorpSmall(), scenario.Format("toml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]scenario.Format{
		"a.yaml": scenario.FormatYAML,
		"a.YML":  scenario.FormatYAML,
		"a.json": scenario.FormatJSON,
	} {
		got, err := scenario.FormatFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := scenario.FormatFromPath("a")
	assert.Error(t, err)
}
