// Package router turns a loaded catalogue into a time-weighted graph and
// answers fastest-itinerary queries over it.
//
// Every stop owns two vertices. Its arrival vertex leads to its departure
// vertex through a Wait edge worth the boarding time. Every bus contributes
// one Ride edge per pair of route positions i<j, from the departure vertex of
// stop i to the arrival vertex of stop j, so a whole ride of any length is a
// single edge and changing buses can only happen at a stop.
package router

import (
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/graph"
)

// Settings are the timing parameters of the network.
type Settings struct {
	// BusWaitTime is the boarding time in minutes.
	BusWaitTime int
	// BusVelocity is the bus speed in km/h.
	BusVelocity float64
}

// metersPerMinute converts the configured velocity.
func (s Settings) metersPerMinute() float64 {
	return s.BusVelocity * 1000 / 60
}

// rideTime returns the minutes needed to cover meters.
func (s Settings) rideTime(meters int) float64 {
	return float64(meters) / s.metersPerMinute()
}

type edgeKind int

const (
	waitEdge edgeKind = iota
	rideEdge
)

// edgeInfo is the meaning of a graph edge, indexed by edge id.
type edgeInfo struct {
	kind      edgeKind
	stopName  string
	busNumber string
	spanCount int
}

// Build constructs the routing graph for the catalogue as it is now. The
// catalogue must be fully loaded; later changes to it are not reflected.
// Velocity must be positive.
func Build(cat *catalogue.Catalogue, settings Settings) *Router {
	stops := cat.SortedStops()
	g := graph.NewDirectedWeightedGraph[float64](len(stops) * 2)

	b := &builder{
		cat:      cat,
		settings: settings,
		graph:    g,
		vertices: make(map[string]graph.VertexID, len(stops)),
	}
	b.addStops(stops)
	for _, bus := range cat.SortedBuses() {
		b.addBus(bus)
	}

	return &Router{
		settings: settings,
		vertices: b.vertices,
		edges:    b.edges,
		engine:   graph.NewRouter(g),
	}
}

type builder struct {
	cat      *catalogue.Catalogue
	settings Settings
	graph    *graph.DirectedWeightedGraph[float64]
	vertices map[string]graph.VertexID
	edges    []edgeInfo
}

func (b *builder) addEdge(e graph.Edge[float64], info edgeInfo) {
	id := b.graph.AddEdge(e)
	if int(id) != len(b.edges) {
		panic("router: edge ids out of step with edge info")
	}
	b.edges = append(b.edges, info)
}

func (b *builder) addStops(stops []catalogue.Stop) {
	for i, stop := range stops {
		arrival := graph.VertexID(2 * i)
		b.vertices[stop.Name] = arrival
		b.addEdge(
			graph.Edge[float64]{From: arrival, To: arrival + 1, Weight: float64(b.settings.BusWaitTime)},
			edgeInfo{kind: waitEdge, stopName: stop.Name},
		)
	}
}

func (b *builder) addBus(bus catalogue.Bus) {
	route := bus.Route
	vertexOf := func(id catalogue.StopID) graph.VertexID {
		return b.vertices[b.cat.Stop(id).Name]
	}

	for i := 0; i < len(route); i++ {
		forward, backward := 0, 0
		for j := i + 1; j < len(route); j++ {
			forward += b.cat.Distance(route[j-1], route[j])
			backward += b.cat.Distance(route[j], route[j-1])
			info := edgeInfo{kind: rideEdge, busNumber: bus.Number, spanCount: j - i}

			b.addEdge(graph.Edge[float64]{
				From:   vertexOf(route[i]) + 1,
				To:     vertexOf(route[j]),
				Weight: b.settings.rideTime(forward),
			}, info)

			if !bus.IsCircular {
				b.addEdge(graph.Edge[float64]{
					From:   vertexOf(route[j]) + 1,
					To:     vertexOf(route[i]),
					Weight: b.settings.rideTime(backward),
				}, info)
			}
		}
	}
}
