package catalog

import (
	"fmt"
	"strings"
)

// Region is a rectangular hit-region on the diagram, in viewbox units.
type Region struct {
	X, Y, W, H int
}

// Diagram viewbox. The car is drawn top-down, front to the left.
const (
	DiagramWidth  = 800
	DiagramHeight = 400
)

// regions places one hit-region per catalog zone. Coordinates are static and
// independent of any selection.
var regions = map[string]Region{
	"Pare-chocs avant":     {20, 120, 40, 160},
	"Calandre":             {60, 150, 30, 100},
	"Capot":                {90, 110, 150, 180},
	"Pare-brise":           {240, 120, 60, 160},
	"Toit":                 {300, 110, 200, 180},
	"Lunette arrière":      {500, 120, 60, 160},
	"Coffre":               {560, 110, 150, 180},
	"Pare-chocs arrière":   {710, 120, 40, 160},
	"Aile avant gauche":    {90, 60, 120, 45},
	"Aile avant droite":    {90, 295, 120, 45},
	"Aile arrière gauche":  {560, 60, 120, 45},
	"Aile arrière droite":  {560, 295, 120, 45},
	"Porte avant gauche":   {240, 60, 130, 45},
	"Porte avant droite":   {240, 295, 130, 45},
	"Porte arrière gauche": {375, 60, 130, 45},
	"Porte arrière droite": {375, 295, 130, 45},
	"Bas de caisse gauche": {240, 20, 265, 35},
	"Bas de caisse droit":  {240, 345, 265, 35},
	"Rétroviseur gauche":   {225, 35, 30, 20},
	"Rétroviseur droit":    {225, 345, 30, 20},
	"Vitre avant gauche":   {250, 108, 55, 10},
	"Vitre avant droite":   {250, 282, 55, 10},
	"Vitre arrière gauche": {385, 108, 55, 10},
	"Vitre arrière droite": {385, 282, 55, 10},
	"Phare avant gauche":   {30, 90, 40, 25},
	"Phare avant droit":    {30, 285, 40, 25},
	"Feu arrière gauche":   {730, 90, 35, 25},
	"Feu arrière droit":    {730, 285, 35, 25},
	"Jante avant gauche":   {130, 15, 70, 40},
	"Jante avant droite":   {130, 345, 70, 40},
	"Jante arrière gauche": {600, 15, 70, 40},
	"Jante arrière droite": {600, 345, 70, 40},
}

// HitRegion returns the shape for a display name.
func HitRegion(displayName string) (Region, bool) {
	r, ok := regions[displayName]
	return r, ok
}

// Fills used by both the interactive selector and the report snapshot.
const (
	FillDamaged = "#e74c3c"
	FillNeutral = "#d5dbdb"
)

// DiagramSVG renders the zone catalog as an SVG document with the selected
// zones highlighted. Used for the damage snapshot stored with a submission.
func DiagramSVG(selected func(displayName string) bool) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d">`, DiagramWidth, DiagramHeight)
	b.WriteString(`<rect width="100%" height="100%" fill="#ffffff"/>`)
	for _, z := range zones {
		r, ok := regions[z.DisplayName]
		if !ok {
			continue
		}
		fill := FillNeutral
		if selected != nil && selected(z.DisplayName) {
			fill = FillDamaged
		}
		fmt.Fprintf(&b,
			`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" stroke="#2c3e50" stroke-width="1"><title>%s</title></rect>`,
			r.X, r.Y, r.W, r.H, fill, z.DisplayName)
	}
	b.WriteString(`</svg>`)
	return []byte(b.String())
}
