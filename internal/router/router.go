package router

import (
	"transitcatalogue.org/internal/graph"
)

// ItemKind tells a Wait step from a Ride step.
type ItemKind int

const (
	Wait ItemKind = iota
	Ride
)

func (k ItemKind) String() string {
	if k == Ride {
		return "Bus"
	}
	return "Wait"
}

// Item is one step of an itinerary. Wait items carry StopName; Ride items
// carry Bus and SpanCount. Time is in minutes.
type Item struct {
	Kind      ItemKind
	StopName  string
	Bus       string
	SpanCount int
	Time      float64
}

// Itinerary is the fastest way between two stops.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}

// Router is the built routing graph. It is immutable and safe for
// concurrent use.
type Router struct {
	settings Settings
	vertices map[string]graph.VertexID
	edges    []edgeInfo
	engine   *graph.Router[float64]
}

func (r *Router) Settings() Settings {
	return r.settings
}

// VertexCount and EdgeCount describe the size of the built graph.
func (r *Router) VertexCount() int { return r.engine.Graph().VertexCount() }
func (r *Router) EdgeCount() int   { return r.engine.Graph().EdgeCount() }

// FindRoute returns the fastest itinerary from one stop to another. ok is
// false when there is no route, and also when either name was unknown at
// build time; callers are expected to check names beforehand.
func (r *Router) FindRoute(from, to string) (Itinerary, bool) {
	fromVertex, ok := r.vertices[from]
	if !ok {
		return Itinerary{}, false
	}
	toVertex, ok := r.vertices[to]
	if !ok {
		return Itinerary{}, false
	}

	info, ok := r.engine.BuildRoute(fromVertex, toVertex)
	if !ok {
		return Itinerary{}, false
	}

	itinerary := Itinerary{
		TotalTime: info.Weight,
		Items:     make([]Item, 0, len(info.Edges)),
	}
	g := r.engine.Graph()
	for _, edgeID := range info.Edges {
		meta := r.edges[edgeID]
		weight := g.Edge(edgeID).Weight
		switch meta.kind {
		case waitEdge:
			itinerary.Items = append(itinerary.Items, Item{Kind: Wait, StopName: meta.stopName, Time: weight})
		case rideEdge:
			itinerary.Items = append(itinerary.Items, Item{Kind: Ride, Bus: meta.busNumber, SpanCount: meta.spanCount, Time: weight})
		}
	}
	return itinerary, true
}
