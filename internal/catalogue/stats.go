package catalogue

import "transitcatalogue.org/internal/geo"

// BusInfo summarises one full trip of a line: forward only for circular
// routes, forward and back for linear ones.
type BusInfo struct {
	StopCount       int
	UniqueStopCount int
	RouteLength     int
	GeoLength       float64
}

// Curvature is the ratio of road distance to straight-line distance.
func (b BusInfo) Curvature() float64 {
	if b.GeoLength == 0 {
		return 0
	}
	return float64(b.RouteLength) / b.GeoLength
}

// BusInfo computes the statistics of a line. The zero value is returned for
// unknown numbers; check FindBus first to tell the two apart.
func (c *Catalogue) BusInfo(number string) BusInfo {
	bus, ok := c.FindBus(number)
	if !ok || len(bus.Route) == 0 {
		return BusInfo{}
	}
	route := bus.Route

	var info BusInfo
	if bus.IsCircular {
		info.StopCount = len(route)
	} else {
		info.StopCount = len(route)*2 - 1
	}

	unique := make(map[StopID]struct{}, len(route))
	for _, id := range route {
		unique[id] = struct{}{}
	}
	info.UniqueStopCount = len(unique)

	for i := 1; i < len(route); i++ {
		from, to := route[i-1], route[i]
		geoDistance := geo.Distance(c.stops[from].Coordinates, c.stops[to].Coordinates)
		if bus.IsCircular {
			info.RouteLength += c.Distance(from, to)
			info.GeoLength += geoDistance
		} else {
			info.RouteLength += c.Distance(from, to) + c.Distance(to, from)
			info.GeoLength += geoDistance * 2
		}
	}
	return info
}

// StopBuses is BusesThroughStop under the name used by stat requests.
func (c *Catalogue) StopBuses(name string) []string {
	return c.BusesThroughStop(name)
}
