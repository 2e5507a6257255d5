package catalogue

import "transitcatalogue.org/internal/geo"

// RegionBounds calculates the geographic boundaries of the network from the
// stops served by at least one line. ok is false when no line has stops.
func (c *Catalogue) RegionBounds() (bounds geo.Bounds, ok bool) {
	first := true
	for _, bus := range c.SortedBuses() {
		for _, id := range bus.Route {
			coords := c.stops[id].Coordinates
			if first {
				bounds = geo.Point(coords)
				first = false
				continue
			}
			bounds = bounds.Extend(coords)
		}
	}
	return bounds, !first
}
