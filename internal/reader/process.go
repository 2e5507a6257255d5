package reader

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/logging"
	"transitcatalogue.org/internal/render"
	"transitcatalogue.org/internal/router"
)

// NotFound is the error_message of every negative answer.
const NotFound = "not found"

// Handler answers the individual queries. found is false for an unknown
// bus or stop, and for a route that does not exist.
type Handler interface {
	BusStat(number string) (info catalogue.BusInfo, found bool)
	StopBuses(name string) (buses []string, found bool)
	Route(from, to string) (itinerary router.Itinerary, found bool)
	Map() render.MapView
}

type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

type BusResponse struct {
	RequestID       int     `json:"request_id"`
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

// RouteItem is a Wait item (StopName set) or a Bus item (Bus and SpanCount
// set).
type RouteItem struct {
	Type      string  `json:"type"`
	StopName  string  `json:"stop_name,omitempty"`
	Bus       string  `json:"bus,omitempty"`
	SpanCount int     `json:"span_count,omitempty"`
	Time      float64 `json:"time"`
}

type RouteResponse struct {
	RequestID int         `json:"request_id"`
	TotalTime float64     `json:"total_time"`
	Items     []RouteItem `json:"items"`
}

type MapResponse struct {
	RequestID int            `json:"request_id"`
	Map       render.MapView `json:"map"`
}

// Answer produces the response to a single request. The result is one of
// the *Response types of this package.
func Answer(h Handler, req StatRequest) (any, error) {
	switch req.Type {
	case TypeBus:
		info, ok := h.BusStat(req.Name)
		if !ok {
			return ErrorResponse{RequestID: req.ID, ErrorMessage: NotFound}, nil
		}
		return BusResponse{
			RequestID:       req.ID,
			Curvature:       info.Curvature(),
			RouteLength:     info.RouteLength,
			StopCount:       info.StopCount,
			UniqueStopCount: info.UniqueStopCount,
		}, nil

	case TypeStop:
		buses, ok := h.StopBuses(req.Name)
		if !ok {
			return ErrorResponse{RequestID: req.ID, ErrorMessage: NotFound}, nil
		}
		return StopResponse{RequestID: req.ID, Buses: buses}, nil

	case TypeRoute:
		itinerary, ok := h.Route(req.From, req.To)
		if !ok {
			return ErrorResponse{RequestID: req.ID, ErrorMessage: NotFound}, nil
		}
		return routeResponse(req.ID, itinerary), nil

	case TypeMap:
		return MapResponse{RequestID: req.ID, Map: h.Map()}, nil
	}
	return nil, fmt.Errorf("stat request %d: %w: %q", req.ID, ErrUnknownRequestType, req.Type)
}

func routeResponse(id int, itinerary router.Itinerary) RouteResponse {
	resp := RouteResponse{
		RequestID: id,
		TotalTime: itinerary.TotalTime,
		Items:     make([]RouteItem, 0, len(itinerary.Items)),
	}
	for _, item := range itinerary.Items {
		ri := RouteItem{Type: item.Kind.String(), Time: item.Time}
		if item.Kind == router.Wait {
			ri.StopName = item.StopName
		} else {
			ri.Bus = item.Bus
			ri.SpanCount = item.SpanCount
		}
		resp.Items = append(resp.Items, ri)
	}
	return resp
}

// Process answers reqs on up to workers goroutines. Responses come back in
// request order whatever the number of workers. workers <= 0 means one per
// CPU.
func Process(ctx context.Context, h Handler, reqs []StatRequest, workers int) ([]any, error) {
	logger := logging.FromContext(ctx).With(slog.String("component", "stat_processor"))
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	responses := make([]any, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			resp, err := Answer(h, req)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.LogError(logger, "Failed to process stat requests", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.LogOperation(logger, "stat_requests_processed",
		slog.Int("count", len(reqs)),
		slog.Int("workers", workers))
	return responses, nil
}
