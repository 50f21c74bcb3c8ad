package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscovery_Label(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{
			name:     "pokemon prefix with hyphenated set",
			filename: "prezzi_pokemon_Paradox-Rift.xlsx",
			expected: "Paradox Rift",
		},
		{
			name:     "dataframe prefix",
			filename: "df_prezzi_obsidian_flames.xlsx",
			expected: "Obsidian Flames",
		},
		{
			name:     "dataframe prefix without separator",
			filename: "df_prezziScarlatto.xlsx",
			expected: "Scarlatto",
		},
		{
			name:     "plain prezzi prefix",
			filename: "prezzi_temporal_forces.xlsx",
			expected: "Temporal Forces",
		},
		{
			name:     "numeric set named by number",
			filename: "df_prezzi151-x.xlsx",
			expected: "151",
		},
		{
			name:     "151 anywhere in the stem",
			filename: "prezzi_pokemon_151.xlsx",
			expected: "151",
		},
		{
			name:     "no known prefix",
			filename: "shrouded_fable.xlsx",
			expected: "Shrouded Fable",
		},
		{
			name:     "uppercase extension",
			filename: "prezzi_pokemon_paldea.XLSX",
			expected: "Paldea",
		},
	}

	d := NewDiscovery(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.Label(tt.filename))
		})
	}
}

func TestDiscovery_LabelOverrides(t *testing.T) {
	d := NewDiscovery(map[string]string{"151": "Set 151 (IT)"})

	assert.Equal(t, "Set 151 (IT)", d.Label("prezzi_pokemon_151.xlsx"))
	assert.Equal(t, "Paldea", d.Label("prezzi_pokemon_paldea.xlsx"))
}

func TestDiscovery_Discover(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prezzi_pokemon_b.xlsx"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prezzi_pokemon_a.xlsx"), []byte("aaaa"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0o755))

	d := NewDiscovery(nil)
	labels, names, signature := d.Discover(dir)

	assert.Equal(t, []string{"prezzi_pokemon_a.xlsx", "prezzi_pokemon_b.xlsx"}, names)
	assert.Equal(t, map[string]string{
		"prezzi_pokemon_a.xlsx": "A",
		"prezzi_pokemon_b.xlsx": "B",
	}, labels)
	assert.Equal(t, Signature{
		{Name: "prezzi_pokemon_a.xlsx", Size: 4},
		{Name: "prezzi_pokemon_b.xlsx", Size: 2},
	}, signature)
}

func TestDiscovery_Discover_MissingDir(t *testing.T) {
	d := NewDiscovery(nil)
	labels, names, signature := d.Discover(filepath.Join(t.TempDir(), "does-not-exist"))

	assert.Empty(t, labels)
	assert.Empty(t, names)
	assert.Empty(t, signature)
}

func TestSignature_Equal(t *testing.T) {
	base := Signature{{Name: "a.xlsx", Size: 10}, {Name: "b.xlsx", Size: 20}}

	tests := []struct {
		name     string
		other    Signature
		expected bool
	}{
		{name: "identical", other: Signature{{Name: "a.xlsx", Size: 10}, {Name: "b.xlsx", Size: 20}}, expected: true},
		{name: "size changed", other: Signature{{Name: "a.xlsx", Size: 11}, {Name: "b.xlsx", Size: 20}}, expected: false},
		{name: "file removed", other: Signature{{Name: "a.xlsx", Size: 10}}, expected: false},
		{name: "order differs", other: Signature{{Name: "b.xlsx", Size: 20}, {Name: "a.xlsx", Size: 10}}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, base.Equal(tt.other))
		})
	}

	assert.True(t, Signature{}.Equal(Signature{}))
	assert.True(t, Signature(nil).Equal(Signature{}))
}
