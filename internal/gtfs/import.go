package gtfs

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/OneBusAway/go-gtfs"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
	"transitcatalogue.org/internal/logging"
)

// Summary counts what an import added and what it had to leave out.
type Summary struct {
	Stops         int
	Buses         int
	Distances     int
	SkippedStops  int
	SkippedRoutes int
}

// Populate adds the stops and routes of staticData to cat.
//
// Stops without coordinates are skipped. Every route becomes a bus whose
// stops are those of its longest trip; the bus is circular when that trip
// ends where it started. Road distances come from shape_dist_traveled when
// the feed has it, otherwise from the great-circle distance rounded to the
// metre. Names shared by several stops or routes get the feed id appended.
func Populate(ctx context.Context, cat *catalogue.Catalogue, staticData *gtfs.Static) (Summary, error) {
	logger := logging.FromContext(ctx).With(slog.String("component", "gtfs_import"))
	var summary Summary

	stopNames := uniqueStopNames(staticData.Stops)
	for _, s := range staticData.Stops {
		if s.Latitude == nil || s.Longitude == nil {
			summary.SkippedStops++
			continue
		}
		cat.AddStop(stopNames[s.Id], geo.Coordinates{Lat: *s.Latitude, Lng: *s.Longitude})
		summary.Stops++
	}

	longest := longestTrips(staticData.Trips)
	routes := make([]gtfs.Route, len(staticData.Routes))
	copy(routes, staticData.Routes)
	sort.Slice(routes, func(i, j int) bool { return routes[i].Id < routes[j].Id })
	busNames := uniqueRouteNames(routes)

	seen := make(map[[2]string]struct{})
	for _, route := range routes {
		trip, ok := longest[route.Id]
		if !ok {
			summary.SkippedRoutes++
			continue
		}
		stopTimes := usableStopTimes(trip)
		if len(stopTimes) == 0 {
			summary.SkippedRoutes++
			continue
		}

		names := make([]string, len(stopTimes))
		for i, st := range stopTimes {
			names[i] = stopNames[st.Stop.Id]
		}

		for i := 1; i < len(stopTimes); i++ {
			from, to := names[i-1], names[i]
			key := [2]string{from, to}
			if _, done := seen[key]; done || from == to {
				continue
			}
			seen[key] = struct{}{}
			if err := cat.SetDistance(from, to, segmentLength(stopTimes[i-1], stopTimes[i])); err != nil {
				return summary, fmt.Errorf("route %s: %w", route.Id, err)
			}
			summary.Distances++
		}

		circular := len(stopTimes) > 1 && stopTimes[0].Stop.Id == stopTimes[len(stopTimes)-1].Stop.Id
		if _, err := cat.AddBus(busNames[route.Id], names, circular); err != nil {
			return summary, fmt.Errorf("route %s: %w", route.Id, err)
		}
		summary.Buses++
	}

	logging.LogOperation(logger, "gtfs_imported",
		slog.Int("stops", summary.Stops),
		slog.Int("buses", summary.Buses),
		slog.Int("distances", summary.Distances),
		slog.Int("skipped_stops", summary.SkippedStops),
		slog.Int("skipped_routes", summary.SkippedRoutes))
	return summary, nil
}

// longestTrips picks, per route id, the trip with the most stop times. Ties
// go to the smallest trip id so the choice does not depend on feed order.
func longestTrips(trips []gtfs.ScheduledTrip) map[string]*gtfs.ScheduledTrip {
	best := make(map[string]*gtfs.ScheduledTrip)
	for i := range trips {
		trip := &trips[i]
		if trip.Route == nil || len(trip.StopTimes) == 0 {
			continue
		}
		current, ok := best[trip.Route.Id]
		if !ok ||
			len(trip.StopTimes) > len(current.StopTimes) ||
			(len(trip.StopTimes) == len(current.StopTimes) && trip.ID < current.ID) {
			best[trip.Route.Id] = trip
		}
	}
	return best
}

// usableStopTimes returns the trip's stop times in sequence order, without
// stops that were not imported.
func usableStopTimes(trip *gtfs.ScheduledTrip) []gtfs.ScheduledStopTime {
	stopTimes := make([]gtfs.ScheduledStopTime, 0, len(trip.StopTimes))
	for _, st := range trip.StopTimes {
		if st.Stop == nil || st.Stop.Latitude == nil || st.Stop.Longitude == nil {
			continue
		}
		stopTimes = append(stopTimes, st)
	}
	sort.SliceStable(stopTimes, func(i, j int) bool {
		return stopTimes[i].StopSequence < stopTimes[j].StopSequence
	})
	return stopTimes
}

func segmentLength(from, to gtfs.ScheduledStopTime) int {
	if from.ShapeDistanceTraveled != nil && to.ShapeDistanceTraveled != nil {
		if delta := *to.ShapeDistanceTraveled - *from.ShapeDistanceTraveled; delta > 0 {
			return int(math.Round(delta))
		}
	}
	return int(math.Round(geo.Distance(
		geo.Coordinates{Lat: *from.Stop.Latitude, Lng: *from.Stop.Longitude},
		geo.Coordinates{Lat: *to.Stop.Latitude, Lng: *to.Stop.Longitude},
	)))
}

func uniqueStopNames(stops []gtfs.Stop) map[string]string {
	counts := make(map[string]int)
	for _, s := range stops {
		counts[s.Name]++
	}
	names := make(map[string]string, len(stops))
	for _, s := range stops {
		name := s.Name
		if name == "" {
			name = s.Id
		} else if counts[name] > 1 {
			name = fmt.Sprintf("%s [%s]", name, s.Id)
		}
		names[s.Id] = name
	}
	return names
}

func routeName(r gtfs.Route) string {
	switch {
	case r.ShortName != "":
		return r.ShortName
	case r.LongName != "":
		return r.LongName
	}
	return r.Id
}

func uniqueRouteNames(routes []gtfs.Route) map[string]string {
	counts := make(map[string]int)
	for _, r := range routes {
		counts[routeName(r)]++
	}
	names := make(map[string]string, len(routes))
	for _, r := range routes {
		name := routeName(r)
		if counts[name] > 1 && name != r.Id {
			name = fmt.Sprintf("%s [%s]", name, r.Id)
		}
		names[r.Id] = name
	}
	return names
}
