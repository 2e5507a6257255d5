package catalogue

import (
	"math"
	"sort"

	"transitcatalogue.org/internal/geo"
)

// StopsNear returns the stops within radius meters of center, closest
// first, ties broken by name. Stops whose name was re-added are only
// reported under their latest entry.
func (c *Catalogue) StopsNear(center geo.Coordinates, radius float64) []Stop {
	if radius <= 0 || math.IsNaN(radius) {
		return []Stop{}
	}
	box := geo.BoundsAround(center, radius)

	type candidate struct {
		stop     Stop
		distance float64
	}
	var candidates []candidate

	c.spatial.Search(box.Min(), box.Max(), func(_, _ [2]float64, id StopID) bool {
		stop := c.stops[id]
		if c.stopsByName[stop.Name] != id {
			return true
		}
		d := geo.Distance(center, stop.Coordinates)
		if d <= radius {
			candidates = append(candidates, candidate{stop: stop, distance: d})
		}
		return true
	})

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].stop.Name < candidates[j].stop.Name
	})

	stops := make([]Stop, len(candidates))
	for i, cand := range candidates {
		stops[i] = cand.stop
	}
	return stops
}
