package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip_DisplayNames(t *testing.T) {
	for _, name := range AllDisplayNames() {
		key := ToStorageKey(name)
		assert.Equal(t, name, ToDisplayName(key), "round trip for %q", name)
	}
}

func TestRoundTrip_StorageKeys(t *testing.T) {
	for _, key := range AllStorageKeys() {
		assert.Equal(t, key, ToStorageKey(ToDisplayName(key)), "round trip for %q", key)
	}
}

func TestLegacyLateralWindow(t *testing.T) {
	name := ToDisplayName(LegacyLateralWindowKey)
	assert.Equal(t, "Vitre avant gauche", name)

	// The legacy key is lossy: mapping the fallback label forward lands on
	// the specific window key, not the legacy one.
	assert.Equal(t, "vitre_avant_gauche", ToStorageKey(name))
	assert.NotEqual(t, LegacyLateralWindowKey, ToStorageKey(name))
}

func TestToStorageKey_FallbackSlug(t *testing.T) {
	assert.Equal(t, "becquet_arriere", ToStorageKey("Becquet arrière"))
	assert.Equal(t, "antenne", ToStorageKey("Antenne"))
	assert.Equal(t, "enjoliveur_av_2", ToStorageKey("  Enjoliveur (AV) #2  "))
	assert.Equal(t, "", ToStorageKey(""))
}

func TestToDisplayName_FallbackTitle(t *testing.T) {
	assert.Equal(t, "Marche Pied Gauche", ToDisplayName("marche_pied_gauche"))
	assert.Equal(t, "Inconnu", ToDisplayName("inconnu"))
}

func TestHasMapping(t *testing.T) {
	assert.True(t, HasMapping("Capot"))
	assert.True(t, HasMapping("Rétroviseur droit"))
	assert.False(t, HasMapping("capot"))
	assert.False(t, HasMapping("Becquet arrière"))
}

func TestStorageKeysAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, key := range AllStorageKeys() {
		require.False(t, seen[key], "duplicate storage key %q", key)
		seen[key] = true
	}
}

func TestCommonZoneKeys(t *testing.T) {
	assert.Equal(t, "capot", ToStorageKey("Capot"))
	assert.Equal(t, "toit", ToStorageKey("Toit"))
}

func TestHitRegions_CoverCatalog(t *testing.T) {
	for _, name := range AllDisplayNames() {
		r, ok := HitRegion(name)
		require.True(t, ok, "missing hit-region for %q", name)
		assert.Greater(t, r.W, 0)
		assert.Greater(t, r.H, 0)
		assert.LessOrEqual(t, r.X+r.W, DiagramWidth)
		assert.LessOrEqual(t, r.Y+r.H, DiagramHeight)
	}
}

func TestDiagramSVG(t *testing.T) {
	svg := string(DiagramSVG(func(name string) bool { return name == "Capot" }))

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, "<title>Capot</title>")
	// Exactly one damaged fill for the single selected zone.
	assert.Equal(t, 1, strings.Count(svg, FillDamaged))
	assert.Contains(t, svg, FillNeutral)

	empty := string(DiagramSVG(nil))
	assert.NotContains(t, empty, FillDamaged)
}
