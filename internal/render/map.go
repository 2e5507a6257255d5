// Package render draws the network as one encoded polyline per bus line.
package render

import (
	"github.com/twpayne/go-polyline"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
)

// DefaultPalette is used when the caller does not supply colours.
var DefaultPalette = []string{"green", "rgb(255,160,0)", "red"}

// Line is one bus drawn over the stops it visits, in travel order.
type Line struct {
	Bus      string `json:"bus"`
	Color    string `json:"color"`
	Polyline string `json:"polyline"`
	Points   int    `json:"points"`
}

// MapView is the whole network. Bounds cover every stop that is served by
// a line; unserved stops are not drawn.
type MapView struct {
	Bounds *geo.Bounds `json:"bounds,omitempty"`
	Lines  []Line      `json:"lines"`
}

// Map renders every non-empty bus in number order. Colours are taken from
// palette round-robin; an empty palette means DefaultPalette.
func Map(cat *catalogue.Catalogue, palette []string) MapView {
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	view := MapView{Lines: []Line{}}
	if bounds, ok := cat.RegionBounds(); ok {
		view.Bounds = &bounds
	}

	for _, bus := range cat.SortedBuses() {
		if len(bus.Route) == 0 {
			continue
		}
		coords := traversal(cat, bus)
		view.Lines = append(view.Lines, Line{
			Bus:      bus.Number,
			Color:    palette[len(view.Lines)%len(palette)],
			Polyline: string(polyline.EncodeCoords(coords)),
			Points:   len(coords),
		})
	}
	return view
}

// traversal lists [lat, lng] pairs for the full trip. A linear bus rides
// back along its stops, so the return leg is appended reversed.
func traversal(cat *catalogue.Catalogue, bus catalogue.Bus) [][]float64 {
	route := bus.Route
	coords := make([][]float64, 0, len(route)*2)
	for _, id := range route {
		c := cat.Stop(id).Coordinates
		coords = append(coords, []float64{c.Lat, c.Lng})
	}
	if bus.IsCircular {
		return coords
	}
	for i := len(route) - 2; i >= 0; i-- {
		c := cat.Stop(route[i]).Coordinates
		coords = append(coords, []float64{c.Lat, c.Lng})
	}
	return coords
}
