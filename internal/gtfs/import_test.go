package gtfs

import (
	"context"
	"math"
	"testing"

	"github.com/OneBusAway/go-gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
)

func ptr(f float64) *float64 { return &f }

func stopTime(stop *gtfs.Stop, seq int, shapeDist *float64) gtfs.ScheduledStopTime {
	return gtfs.ScheduledStopTime{Stop: stop, StopSequence: seq, ShapeDistanceTraveled: shapeDist}
}

func sampleFeed() *gtfs.Static {
	static := &gtfs.Static{
		Stops: []gtfs.Stop{
			{Id: "s1", Name: "Alpha", Latitude: ptr(47.600), Longitude: ptr(-122.330)},
			{Id: "s2", Name: "Beta", Latitude: ptr(47.610), Longitude: ptr(-122.320)},
			{Id: "s3", Name: "Gamma", Latitude: ptr(47.620), Longitude: ptr(-122.310)},
			{Id: "node", Name: "Pathway node"},
		},
		Routes: []gtfs.Route{
			{Id: "r2", ShortName: "20"},
			{Id: "r1", ShortName: "10"},
			{Id: "r3", LongName: "Ghost Line"},
		},
	}
	alpha, beta, gamma, node := &static.Stops[0], &static.Stops[1], &static.Stops[2], &static.Stops[3]
	r2, r1 := &static.Routes[0], &static.Routes[1]

	static.Trips = []gtfs.ScheduledTrip{
		{
			ID:    "t1-short",
			Route: r1,
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(alpha, 1, nil),
				stopTime(beta, 2, nil),
			},
		},
		{
			ID:    "t1-long",
			Route: r1,
			// Listed out of order; the sequence numbers decide.
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(gamma, 30, ptr(2500)),
				stopTime(node, 15, nil),
				stopTime(alpha, 5, ptr(0)),
				stopTime(beta, 10, ptr(1200.4)),
			},
		},
		{
			ID:    "t2",
			Route: r2,
			StopTimes: []gtfs.ScheduledStopTime{
				stopTime(gamma, 1, nil),
				stopTime(alpha, 2, nil),
				stopTime(gamma, 3, nil),
			},
		},
	}
	return static
}

func TestPopulate(t *testing.T) {
	cat := catalogue.New()

	summary, err := Populate(context.Background(), cat, sampleFeed())
	require.NoError(t, err)

	assert.Equal(t, Summary{Stops: 3, Buses: 2, Distances: 4, SkippedStops: 1, SkippedRoutes: 1}, summary)
	assert.Equal(t, 3, cat.StopCount())
	assert.Equal(t, 2, cat.BusCount())

	_, ok := cat.FindStop("Pathway node")
	assert.False(t, ok, "stops without coordinates are skipped")
	_, ok = cat.FindBus("Ghost Line")
	assert.False(t, ok, "routes without trips are skipped")
}

func TestPopulate_LongestTripAndShapeDistances(t *testing.T) {
	cat := catalogue.New()
	_, err := Populate(context.Background(), cat, sampleFeed())
	require.NoError(t, err)

	bus, ok := cat.FindBus("10")
	require.True(t, ok)
	assert.False(t, bus.IsCircular)
	require.Len(t, bus.Route, 3)
	assert.Equal(t, "Alpha", cat.Stop(bus.Route[0]).Name)
	assert.Equal(t, "Gamma", cat.Stop(bus.Route[2]).Name)

	assert.Equal(t, 1200, cat.DistanceByName("Alpha", "Beta"))
	assert.Equal(t, 1300, cat.DistanceByName("Beta", "Gamma"))

	info := cat.BusInfo("10")
	assert.Equal(t, 5, info.StopCount)
	assert.Equal(t, 2*(1200+1300), info.RouteLength)
}

func TestPopulate_CircularRouteUsesGreatCircle(t *testing.T) {
	cat := catalogue.New()
	_, err := Populate(context.Background(), cat, sampleFeed())
	require.NoError(t, err)

	bus, ok := cat.FindBus("20")
	require.True(t, ok)
	assert.True(t, bus.IsCircular)

	alpha := geo.Coordinates{Lat: 47.600, Lng: -122.330}
	gamma := geo.Coordinates{Lat: 47.620, Lng: -122.310}
	want := int(math.Round(geo.Distance(gamma, alpha)))
	assert.Equal(t, want, cat.DistanceByName("Gamma", "Alpha"))
	assert.Equal(t, want+cat.DistanceByName("Alpha", "Gamma"), cat.BusInfo("20").RouteLength)
}

func TestPopulate_DuplicateNames(t *testing.T) {
	static := &gtfs.Static{
		Stops: []gtfs.Stop{
			{Id: "c1", Name: "Central", Latitude: ptr(1), Longitude: ptr(1)},
			{Id: "c2", Name: "Central", Latitude: ptr(1.001), Longitude: ptr(1.001)},
			{Id: "x", Latitude: ptr(2), Longitude: ptr(2)},
		},
		Routes: []gtfs.Route{
			{Id: "a", ShortName: "5"},
			{Id: "b", ShortName: "5"},
		},
	}
	c1, c2, x := &static.Stops[0], &static.Stops[1], &static.Stops[2]
	static.Trips = []gtfs.ScheduledTrip{
		{ID: "ta", Route: &static.Routes[0], StopTimes: []gtfs.ScheduledStopTime{stopTime(c1, 1, nil), stopTime(x, 2, nil)}},
		{ID: "tb", Route: &static.Routes[1], StopTimes: []gtfs.ScheduledStopTime{stopTime(c2, 1, nil), stopTime(x, 2, nil)}},
	}

	cat := catalogue.New()
	_, err := Populate(context.Background(), cat, static)
	require.NoError(t, err)

	for _, name := range []string{"Central [c1]", "Central [c2]", "x"} {
		_, ok := cat.FindStop(name)
		assert.True(t, ok, name)
	}
	for _, number := range []string{"5 [a]", "5 [b]"} {
		_, ok := cat.FindBus(number)
		assert.True(t, ok, number)
	}
	assert.Equal(t, []string{"5 [a]", "5 [b]"}, cat.StopBuses("x"))
}

func TestPopulate_EmptyFeed(t *testing.T) {
	cat := catalogue.New()

	summary, err := Populate(context.Background(), cat, &gtfs.Static{})
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
}
