package form

import (
	"encoding/json"
	"testing"

	"expertise-backend/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggle_Involution(t *testing.T) {
	s := NewSelection("Capot", "Toit")
	before := s.List()

	s.Toggle("Aile avant gauche")
	assert.True(t, s.Has("Aile avant gauche"))
	s.Toggle("Aile avant gauche")
	assert.False(t, s.Has("Aile avant gauche"))
	assert.Equal(t, before, s.List())

	// Also holds when the zone was already selected.
	s.Toggle("Capot")
	s.Toggle("Capot")
	assert.Equal(t, before, s.List())
}

func TestList_StableDiagramOrder(t *testing.T) {
	s := NewSelection("Toit", "Capot", "Zone Custom")
	// Capot precedes Toit in the catalog; unknown zones come last.
	assert.Equal(t, []string{"Capot", "Toit", "Zone Custom"}, s.List())
}

func TestStorageKeys(t *testing.T) {
	s := NewSelection("Capot", "Toit")
	assert.Equal(t, []string{"capot", "toit"}, s.StorageKeys())
}

func TestFromStorageKeys(t *testing.T) {
	s := FromStorageKeys([]string{"capot", "vitre_laterale"})
	assert.True(t, s.Has("Capot"))
	assert.True(t, s.Has("Vitre avant gauche"))
	assert.Equal(t, 2, s.Count())
}

func TestSelection_JSONRoundTrip(t *testing.T) {
	s := NewSelection("Capot", "Toit")
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `["Capot","Toit"]`, string(data))

	var back Selection
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.List(), back.List())
}

func TestSelector_Modes(t *testing.T) {
	s := NewSelection()
	interactive := Selector{Selection: &s, Mode: ModeInteractive}

	assert.True(t, interactive.Click("Capot"))
	assert.True(t, s.Has("Capot"))
	assert.Equal(t, catalog.FillDamaged, interactive.ZoneFill("Capot"))
	assert.Equal(t, catalog.FillNeutral, interactive.ZoneFill("Toit"))

	readOnly := Selector{Selection: &s, Mode: ModeReadOnly}
	assert.False(t, readOnly.Click("Toit"))
	assert.False(t, s.Has("Toit"))
	// The same selection data drives the read-only rendering.
	assert.Equal(t, catalog.FillDamaged, readOnly.ZoneFill("Capot"))
}
