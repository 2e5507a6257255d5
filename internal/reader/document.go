// Package reader loads a network from a request document and answers the
// document's stat requests.
//
// Two input formats are understood: the JSON request document and the
// older line-oriented text format. Both are turned into the same
// BaseRequest and StatRequest values.
package reader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"transitcatalogue.org/internal/catalogue"
	"transitcatalogue.org/internal/geo"
)

const (
	TypeStop  = "Stop"
	TypeBus   = "Bus"
	TypeRoute = "Route"
	TypeMap   = "Map"
)

var ErrUnknownRequestType = errors.New("unknown request type")

// Document is the JSON request document.
type Document struct {
	BaseRequests    []BaseRequest    `json:"base_requests"`
	RoutingSettings *RoutingSettings `json:"routing_settings,omitempty"`
	RenderSettings  *RenderSettings  `json:"render_settings,omitempty"`
	StatRequests    []StatRequest    `json:"stat_requests"`
}

// BaseRequest describes one stop or one bus. Which fields are meaningful
// depends on Type.
type BaseRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`

	Latitude      float64        `json:"latitude,omitempty"`
	Longitude     float64        `json:"longitude,omitempty"`
	RoadDistances map[string]int `json:"road_distances,omitempty"`

	Stops       []string `json:"stops,omitempty"`
	IsRoundtrip bool     `json:"is_roundtrip,omitempty"`
}

type RoutingSettings struct {
	BusWaitTime int     `json:"bus_wait_time"`
	BusVelocity float64 `json:"bus_velocity"`
}

// RenderSettings only carries what the map renderer uses; the remaining
// drawing options of the document are ignored.
type RenderSettings struct {
	ColorPalette []Color `json:"color_palette"`
}

// Palette returns the colours as plain strings.
func (s *RenderSettings) Palette() []string {
	if s == nil {
		return nil
	}
	palette := make([]string, len(s.ColorPalette))
	for i, c := range s.ColorPalette {
		palette[i] = string(c)
	}
	return palette
}

// Color is a colour given either by name or as an [r, g, b] or
// [r, g, b, opacity] array.
type Color string

func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Color(name)
		return nil
	}

	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("color must be a string or an array: %w", err)
	}
	switch len(parts) {
	case 3:
		*c = Color(fmt.Sprintf("rgb(%d,%d,%d)", int(parts[0]), int(parts[1]), int(parts[2])))
	case 4:
		*c = Color(fmt.Sprintf("rgba(%d,%d,%d,%g)", int(parts[0]), int(parts[1]), int(parts[2]), parts[3]))
	default:
		return fmt.Errorf("color array must have 3 or 4 elements, got %d", len(parts))
	}
	return nil
}

// StatRequest is one query. Name is used by Bus and Stop, From and To by
// Route; Map takes no arguments.
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Decode reads a JSON request document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("error decoding request document: %w", err)
	}
	return &doc, nil
}

// ApplyBaseRequests fills cat from reqs. All stops are added first, then
// every road distance, then the buses, so requests may reference stops
// that appear later in the list.
func ApplyBaseRequests(cat *catalogue.Catalogue, reqs []BaseRequest) error {
	for _, req := range reqs {
		switch req.Type {
		case TypeStop:
			cat.AddStop(req.Name, geo.Coordinates{Lat: req.Latitude, Lng: req.Longitude})
		case TypeBus:
		default:
			return fmt.Errorf("base request %q: %w: %q", req.Name, ErrUnknownRequestType, req.Type)
		}
	}

	for _, req := range reqs {
		if req.Type != TypeStop {
			continue
		}
		neighbours := make([]string, 0, len(req.RoadDistances))
		for name := range req.RoadDistances {
			neighbours = append(neighbours, name)
		}
		sort.Strings(neighbours)
		for _, name := range neighbours {
			if err := cat.SetDistance(req.Name, name, req.RoadDistances[name]); err != nil {
				return fmt.Errorf("error loading road distances: %w", err)
			}
		}
	}

	for _, req := range reqs {
		if req.Type != TypeBus {
			continue
		}
		if _, err := cat.AddBus(req.Name, req.Stops, req.IsRoundtrip); err != nil {
			return fmt.Errorf("error loading bus: %w", err)
		}
	}
	return nil
}
