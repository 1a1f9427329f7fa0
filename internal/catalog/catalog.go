package catalog

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Zone links the label shown on the vehicle diagram to the identifier
// persisted in the database.
type Zone struct {
	DisplayName string
	StorageKey  string
}

// zones is the fixed catalog of addressable vehicle parts. Display names are
// the labels carried by the diagram hit-regions; storage keys are what ends
// up in the request_damages table.
var zones = []Zone{
	{"Pare-chocs avant", "pare_chocs_avant"},
	{"Pare-chocs arrière", "pare_chocs_arriere"},
	{"Capot", "capot"},
	{"Toit", "toit"},
	{"Coffre", "coffre"},
	{"Calandre", "calandre"},
	{"Aile avant gauche", "aile_avant_gauche"},
	{"Aile avant droite", "aile_avant_droite"},
	{"Aile arrière gauche", "aile_arriere_gauche"},
	{"Aile arrière droite", "aile_arriere_droite"},
	{"Porte avant gauche", "porte_avant_gauche"},
	{"Porte avant droite", "porte_avant_droite"},
	{"Porte arrière gauche", "porte_arriere_gauche"},
	{"Porte arrière droite", "porte_arriere_droite"},
	{"Bas de caisse gauche", "bas_de_caisse_gauche"},
	{"Bas de caisse droit", "bas_de_caisse_droit"},
	{"Rétroviseur gauche", "retroviseur_gauche"},
	{"Rétroviseur droit", "retroviseur_droit"},
	{"Pare-brise", "pare_brise"},
	{"Lunette arrière", "lunette_arriere"},
	{"Vitre avant gauche", "vitre_avant_gauche"},
	{"Vitre avant droite", "vitre_avant_droite"},
	{"Vitre arrière gauche", "vitre_arriere_gauche"},
	{"Vitre arrière droite", "vitre_arriere_droite"},
	{"Phare avant gauche", "phare_avant_gauche"},
	{"Phare avant droit", "phare_avant_droit"},
	{"Feu arrière gauche", "feu_arriere_gauche"},
	{"Feu arrière droit", "feu_arriere_droit"},
	{"Jante avant gauche", "jante_avant_gauche"},
	{"Jante avant droite", "jante_avant_droite"},
	{"Jante arrière gauche", "jante_arriere_gauche"},
	{"Jante arrière droite", "jante_arriere_droite"},
}

// LegacyLateralWindowKey is the pre-split "lateral window" storage key still
// present in rows created before the window zones were broken out into four
// specific zones. It has no single correct display name anymore.
const LegacyLateralWindowKey = "vitre_laterale"

// legacyLateralWindowFallback is the one canonical label the legacy key is
// rendered as. The choice is arbitrary but must stay fixed: changing it would
// relabel historical reports.
const legacyLateralWindowFallback = "Vitre avant gauche"

var (
	byDisplay = make(map[string]string, len(zones))
	byStorage = make(map[string]string, len(zones))
	// displayOrder preserves catalog order for stable rendering.
	displayOrder = make(map[string]int, len(zones))
)

func init() {
	for i, z := range zones {
		byDisplay[z.DisplayName] = z.StorageKey
		// First entry wins on reverse lookups so the mapping stays stable
		// even if a future merge introduces a duplicate key.
		if _, ok := byStorage[z.StorageKey]; !ok {
			byStorage[z.StorageKey] = z.DisplayName
		}
		displayOrder[z.DisplayName] = i
	}
	byStorage[LegacyLateralWindowKey] = legacyLateralWindowFallback
}

// ToStorageKey resolves a display name to its storage key. Unknown names fall
// back to a deterministic slug so the function is total: persisting a zone
// never fails on a label the catalog does not know.
func ToStorageKey(displayName string) string {
	if key, ok := byDisplay[displayName]; ok {
		return key
	}
	return Slug(displayName)
}

// ToDisplayName resolves a storage key back to a display label. Unknown keys
// fall back to a title-cased, underscores-to-spaces rendering. The legacy
// lateral window key resolves to one fixed fallback label.
func ToDisplayName(storageKey string) string {
	if name, ok := byStorage[storageKey]; ok {
		return name
	}
	return titleFromKey(storageKey)
}

// HasMapping reports whether a display name is part of the fixed catalog.
func HasMapping(displayName string) bool {
	_, ok := byDisplay[displayName]
	return ok
}

// AllDisplayNames returns every catalog label in diagram order.
func AllDisplayNames() []string {
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = z.DisplayName
	}
	return names
}

// AllStorageKeys returns every catalog storage key, sorted.
func AllStorageKeys() []string {
	keys := make([]string, len(zones))
	for i, z := range zones {
		keys[i] = z.StorageKey
	}
	sort.Strings(keys)
	return keys
}

// DisplayOrder returns the catalog position of a label, or len(catalog) for
// labels outside the catalog, so unknown zones sort last but deterministically.
func DisplayOrder(displayName string) int {
	if i, ok := displayOrder[displayName]; ok {
		return i
	}
	return len(zones)
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug lowercases a label, strips diacritics and replaces every run of
// non-alphanumeric characters with a single underscore.
func Slug(displayName string) string {
	stripped, _, err := transform.String(stripDiacritics, displayName)
	if err != nil {
		stripped = displayName
	}
	stripped = strings.ToLower(stripped)

	var b strings.Builder
	lastUnderscore := true
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func titleFromKey(storageKey string) string {
	parts := strings.Split(storageKey, "_")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		out = append(out, string(r))
	}
	return strings.Join(out, " ")
}
