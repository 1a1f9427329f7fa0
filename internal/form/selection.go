package form

import (
	"encoding/json"
	"sort"

	"expertise-backend/internal/catalog"
)

// Selection is the set of zones marked damaged in one form session.
// Zones are held by display name; storage keys are resolved at persistence
// time through the catalog.
type Selection struct {
	zones map[string]struct{}
}

func NewSelection(names ...string) Selection {
	s := Selection{zones: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.zones[n] = struct{}{}
	}
	return s
}

// Toggle adds the zone if absent and removes it if present. Toggling the same
// zone twice restores the previous set.
func (s *Selection) Toggle(zoneName string) {
	if s.zones == nil {
		s.zones = make(map[string]struct{})
	}
	if _, ok := s.zones[zoneName]; ok {
		delete(s.zones, zoneName)
	} else {
		s.zones[zoneName] = struct{}{}
	}
}

func (s Selection) Has(zoneName string) bool {
	_, ok := s.zones[zoneName]
	return ok
}

func (s Selection) Count() int {
	return len(s.zones)
}

// List returns the selected zones in diagram order, unknown names last, so
// rendering and persistence are stable.
func (s Selection) List() []string {
	names := make([]string, 0, len(s.zones))
	for n := range s.zones {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := catalog.DisplayOrder(names[i]), catalog.DisplayOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

// StorageKeys resolves the selection to storage keys, in List order.
func (s Selection) StorageKeys() []string {
	names := s.List()
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = catalog.ToStorageKey(n)
	}
	return keys
}

// FromStorageKeys rebuilds a display-name selection from persisted keys, as
// the admin report view does.
func FromStorageKeys(keys []string) Selection {
	s := NewSelection()
	for _, k := range keys {
		s.zones[catalog.ToDisplayName(k)] = struct{}{}
	}
	return s
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.List())
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	*s = NewSelection(names...)
	return nil
}

// SelectorMode controls whether diagram clicks mutate the selection.
type SelectorMode int

const (
	ModeInteractive SelectorMode = iota
	ModeReadOnly
)

// Selector pairs a selection with a rendering mode. Report views use the
// read-only mode over the same selection data.
type Selector struct {
	Selection *Selection
	Mode      SelectorMode
}

// Click toggles the zone in interactive mode and is a no-op otherwise.
// It reports whether the selection changed.
func (sel *Selector) Click(zoneName string) bool {
	if sel.Mode != ModeInteractive {
		return false
	}
	sel.Selection.Toggle(zoneName)
	return true
}

// ZoneFill returns the fill for a zone as a pure function of the selection.
func (sel *Selector) ZoneFill(zoneName string) string {
	if sel.Selection != nil && sel.Selection.Has(zoneName) {
		return catalog.FillDamaged
	}
	return catalog.FillNeutral
}
