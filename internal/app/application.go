package app

import (
	"log/slog"
	"sync"

	"transitcatalogue.org/internal/appconf"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/clock"
	"transitcatalogue.org/internal/geo"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/metrics"
	"transitcatalogue.org/internal/render"
	"transitcatalogue.org/internal/router"
)

// Application holds the loaded network and everything needed to answer
// queries about it. Fill the catalogue first; the routing graph is built
// once, on the first route query or an explicit BuildRouter call, and the
// catalogue must not change afterwards.
type Application struct {
	Config    appconf.Config
	Logger    *slog.Logger
	Catalogue *catalogue.Catalogue
	Clock     clock.Clock
	Metrics   *metrics.Metrics

	// Palette colours the map; empty means render.DefaultPalette.
	Palette []string

	routerOnce sync.Once
	routes     *router.Cache
}

// New wires an Application around an empty catalogue. A nil logger, clock
// or metrics gets a working default.
func New(cfg appconf.Config, logger *slog.Logger, clk clock.Clock, m *metrics.Metrics) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if m == nil {
		m = metrics.NewWithLogger(logger)
	}
	return &Application{
		Config:    cfg,
		Logger:    logger,
		Catalogue: catalogue.New(),
		Clock:     clk,
		Metrics:   m,
	}
}

// RoutingSettings converts the configured routing defaults.
func (app *Application) RoutingSettings() router.Settings {
	return router.Settings{
		BusWaitTime: app.Config.Routing.BusWaitTime,
		BusVelocity: app.Config.Routing.BusVelocity,
	}
}

// BuildRouter builds the routing graph from the current catalogue using
// the configured routing settings. Only the first call does any work.
func (app *Application) BuildRouter() *router.Cache {
	app.routerOnce.Do(func() {
		logger := app.Logger.With(slog.String("component", "router_builder"))
		settings := app.RoutingSettings()

		app.Metrics.ObserveCatalogue(app.Catalogue.StopCount(), app.Catalogue.BusCount())

		start := app.Clock.Now()
		r := router.Build(app.Catalogue, settings)
		elapsed := clock.Since(app.Clock, start)

		app.routes = router.NewCache(r, app.Config.RouteCacheSize)
		app.Metrics.ObserveGraph(r.VertexCount(), r.EdgeCount(), elapsed)

		logging.LogOperation(logger, "routing_graph_built",
			slog.Int("vertices", r.VertexCount()),
			slog.Int("edges", r.EdgeCount()),
			slog.Int("bus_wait_time", settings.BusWaitTime),
			slog.Float64("bus_velocity", settings.BusVelocity),
			slog.Duration("duration", elapsed))
	})
	return app.routes
}

func (app *Application) IsStopName(name string) bool {
	_, ok := app.Catalogue.FindStop(name)
	return ok
}

func (app *Application) IsBusNumber(number string) bool {
	_, ok := app.Catalogue.FindBus(number)
	return ok
}

// BusStat returns the statistics of a bus; found is false for an unknown
// number.
func (app *Application) BusStat(number string) (catalogue.BusInfo, bool) {
	found := app.IsBusNumber(number)
	app.Metrics.ObserveStatRequest("Bus", found)
	if !found {
		return catalogue.BusInfo{}, false
	}
	return app.Catalogue.BusInfo(number), true
}

// StopBuses lists the buses through a stop. An existing stop without buses
// returns an empty list and found=true.
func (app *Application) StopBuses(name string) ([]string, bool) {
	found := app.IsStopName(name)
	app.Metrics.ObserveStatRequest("Stop", found)
	if !found {
		return nil, false
	}
	return app.Catalogue.StopBuses(name), true
}

// Route finds the fastest itinerary between two stops. found is false
// when either stop is unknown or no route exists.
func (app *Application) Route(from, to string) (router.Itinerary, bool) {
	if !app.IsStopName(from) || !app.IsStopName(to) {
		app.Metrics.ObserveStatRequest("Route", false)
		return router.Itinerary{}, false
	}

	routes := app.BuildRouter()
	start := app.Clock.Now()
	itinerary, found, hit := routes.FindRoute(from, to)
	app.Metrics.ObserveRouteQuery(clock.Since(app.Clock, start), hit)
	app.Metrics.ObserveStatRequest("Route", found)

	if app.Config.Verbose {
		app.Logger.Debug("route query",
			slog.String("component", "router"),
			slog.String("from", from),
			slog.String("to", to),
			slog.Bool("found", found),
			slog.Bool("cache_hit", hit))
	}
	return itinerary, found
}

// Map renders the whole network.
func (app *Application) Map() render.MapView {
	app.Metrics.ObserveStatRequest("Map", true)
	return render.Map(app.Catalogue, app.Palette)
}

// NearbyStops lists the stops within radius meters of center, nearest
// first. A non-positive radius uses the configured default.
func (app *Application) NearbyStops(center geo.Coordinates, radius float64) []catalogue.Stop {
	if radius <= 0 {
		radius = app.Config.NearbyRadius
	}
	return app.Catalogue.StopsNear(center, radius)
}

func (app *Application) SortedStops() []catalogue.Stop {
	return app.Catalogue.SortedStops()
}

func (app *Application) SortedBuses() []catalogue.Bus {
	return app.Catalogue.SortedBuses()
}
