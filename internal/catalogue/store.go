// Package catalogue is the in-memory store of stops, bus lines and road
// distances, plus the per-line statistics computed from it.
//
// Entities live in append-only slices and are addressed by integer handles.
// A handle returned by AddStop or AddBus stays valid for the lifetime of the
// Catalogue; re-adding a name only repoints the name index.
//
// A Catalogue is not safe for concurrent mutation. Once loading is finished
// it may be read from any number of goroutines.
package catalogue

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/rtree"
	"transitcatalogue.org/internal/geo"
)

var ErrUnknownStop = errors.New("unknown stop")

type StopID int

type BusID int

type Stop struct {
	ID          StopID
	Name        string
	Coordinates geo.Coordinates
}

// Bus is a bus line. A circular route lists its first stop again at the
// end; a linear route lists the stops one way only and is ridden back.
type Bus struct {
	ID         BusID
	Number     string
	Route      []StopID
	IsCircular bool
}

type stopPair struct {
	from, to StopID
}

type Catalogue struct {
	stops []Stop
	buses []Bus

	stopsByName   map[string]StopID
	busesByNumber map[string]BusID

	// busesForStop holds the numbers of the lines visiting a stop, as a set.
	busesForStop map[StopID]map[string]struct{}

	distances map[stopPair]int

	spatial rtree.RTreeG[StopID]
}

func New() *Catalogue {
	return &Catalogue{
		stopsByName:   make(map[string]StopID),
		busesByNumber: make(map[string]BusID),
		busesForStop:  make(map[StopID]map[string]struct{}),
		distances:     make(map[stopPair]int),
	}
}

// AddStop stores a stop and indexes it by name and position.
func (c *Catalogue) AddStop(name string, coords geo.Coordinates) StopID {
	id := StopID(len(c.stops))
	c.stops = append(c.stops, Stop{ID: id, Name: name, Coordinates: coords})
	c.stopsByName[name] = id

	p := geo.Point(coords)
	c.spatial.Insert(p.Min(), p.Max(), id)
	return id
}

// AddBus resolves stopNames against the stops added so far and stores the
// line. Every name must already be known.
func (c *Catalogue) AddBus(number string, stopNames []string, isCircular bool) (BusID, error) {
	route := make([]StopID, 0, len(stopNames))
	for _, name := range stopNames {
		id, ok := c.stopsByName[name]
		if !ok {
			return 0, fmt.Errorf("bus %q references %q: %w", number, name, ErrUnknownStop)
		}
		route = append(route, id)
	}

	id := BusID(len(c.buses))
	c.buses = append(c.buses, Bus{ID: id, Number: number, Route: route, IsCircular: isCircular})
	c.busesByNumber[number] = id

	for _, stopID := range route {
		set, ok := c.busesForStop[stopID]
		if !ok {
			set = make(map[string]struct{})
			c.busesForStop[stopID] = set
		}
		set[number] = struct{}{}
	}
	return id, nil
}

// SetDistance records the road distance from one stop to another. The
// reverse direction is left untouched.
func (c *Catalogue) SetDistance(from, to string, meters int) error {
	fromID, ok := c.stopsByName[from]
	if !ok {
		return fmt.Errorf("distance from %q: %w", from, ErrUnknownStop)
	}
	toID, ok := c.stopsByName[to]
	if !ok {
		return fmt.Errorf("distance to %q: %w", to, ErrUnknownStop)
	}
	c.distances[stopPair{fromID, toID}] = meters
	return nil
}

// Distance returns the road distance from one stop to another. When only the
// reverse direction is known it is used instead; when neither is, the
// distance is 0.
func (c *Catalogue) Distance(from, to StopID) int {
	if d, ok := c.distances[stopPair{from, to}]; ok {
		return d
	}
	if d, ok := c.distances[stopPair{to, from}]; ok {
		return d
	}
	return 0
}

// DistanceByName is Distance for callers holding names. Unknown names
// resolve to 0.
func (c *Catalogue) DistanceByName(from, to string) int {
	fromID, ok := c.stopsByName[from]
	if !ok {
		return 0
	}
	toID, ok := c.stopsByName[to]
	if !ok {
		return 0
	}
	return c.Distance(fromID, toID)
}

func (c *Catalogue) FindStop(name string) (Stop, bool) {
	id, ok := c.stopsByName[name]
	if !ok {
		return Stop{}, false
	}
	return c.stops[id], true
}

func (c *Catalogue) FindBus(number string) (Bus, bool) {
	id, ok := c.busesByNumber[number]
	if !ok {
		return Bus{}, false
	}
	return c.buses[id], true
}

// Stop returns the stop behind a handle. The handle must come from AddStop.
func (c *Catalogue) Stop(id StopID) Stop {
	return c.stops[id]
}

// Bus returns the line behind a handle. The handle must come from AddBus.
func (c *Catalogue) Bus(id BusID) Bus {
	return c.buses[id]
}

// BusesThroughStop returns the numbers of every line visiting the named stop
// in lexicographic order. It is empty both for unknown stops and for stops
// no line visits.
func (c *Catalogue) BusesThroughStop(name string) []string {
	id, ok := c.stopsByName[name]
	if !ok {
		return []string{}
	}
	set := c.busesForStop[id]
	numbers := make([]string, 0, len(set))
	for number := range set {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)
	return numbers
}

// SortedStops returns the currently indexed stops ordered by name.
func (c *Catalogue) SortedStops() []Stop {
	stops := make([]Stop, 0, len(c.stopsByName))
	for _, id := range c.stopsByName {
		stops = append(stops, c.stops[id])
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].Name < stops[j].Name })
	return stops
}

// SortedBuses returns the currently indexed lines ordered by number.
func (c *Catalogue) SortedBuses() []Bus {
	buses := make([]Bus, 0, len(c.busesByNumber))
	for _, id := range c.busesByNumber {
		buses = append(buses, c.buses[id])
	}
	sort.Slice(buses, func(i, j int) bool { return buses[i].Number < buses[j].Number })
	return buses
}

// StopCount and BusCount count indexed names, not stored entries.
func (c *Catalogue) StopCount() int { return len(c.stopsByName) }
func (c *Catalogue) BusCount() int  { return len(c.busesByNumber) }
