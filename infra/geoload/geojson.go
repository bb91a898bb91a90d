// Package geoload parses GeoJSON road and charging-point files into the
// in-memory forms the simulation consumes. Malformed input here is the one
// fatal error class: it is surfaced during initialization, never during the
// step loop.
package geoload

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/mobilitylabs/evsim/core/geo"
	"github.com/mobilitylabs/evsim/core/roadnet"
	"github.com/mobilitylabs/evsim/core/sim"
)

// Roads without a length property fall back to this many meters, matching
// the source data conventions.
const defaultEdgeLengthM = 100.0

type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LoadRoadNetwork reads a GeoJSON FeatureCollection of LineString roads
// carrying u, v and length properties.
func LoadRoadNetwork(path string) (*roadnet.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roads file: %w", err)
	}
	defer f.Close()
	net, err := ParseRoadNetwork(f)
	if err != nil {
		return nil, fmt.Errorf("parse roads file %s: %w", path, err)
	}
	return net, nil
}

// ParseRoadNetwork builds a network from GeoJSON road features. Each
// LineString contributes its endpoints as nodes and one weighted edge.
func ParseRoadNetwork(r io.Reader) (*roadnet.Network, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	net := roadnet.New()
	for i, ft := range fc.Features {
		if ft.Geometry.Type != "LineString" {
			continue
		}
		u, ok := intProperty(ft.Properties, "u")
		if !ok {
			return nil, fmt.Errorf("road feature %d: missing node property u", i)
		}
		v, ok := intProperty(ft.Properties, "v")
		if !ok {
			return nil, fmt.Errorf("road feature %d: missing node property v", i)
		}
		var coords [][]float64
		if err := json.Unmarshal(ft.Geometry.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("road feature %d: coordinates: %w", i, err)
		}
		if len(coords) < 2 || len(coords[0]) < 2 || len(coords[len(coords)-1]) < 2 {
			return nil, fmt.Errorf("road feature %d: a LineString needs two endpoints", i)
		}
		start, end := coords[0], coords[len(coords)-1]
		// GeoJSON positions are (lon, lat).
		if err := net.AddNode(u, start[1], start[0]); err != nil {
			return nil, fmt.Errorf("road feature %d: %w", i, err)
		}
		if err := net.AddNode(v, end[1], end[0]); err != nil {
			return nil, fmt.Errorf("road feature %d: %w", i, err)
		}
		length := defaultEdgeLengthM
		if l, ok := floatProperty(ft.Properties, "length"); ok {
			length = l
		}
		if err := net.AddEdge(u, v, length); err != nil {
			return nil, fmt.Errorf("road feature %d: %w", i, err)
		}
	}
	if net.NumNodes() == 0 {
		return nil, fmt.Errorf("no road features found")
	}
	return net, nil
}

// LoadStations reads charging stations from a GeoJSON file of Point
// features. Stations without a capacity property draw a port count from
// rng, keeping scenario generation reproducible under a fixed seed.
func LoadStations(path string, rng *rand.Rand) ([]*sim.Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stations file: %w", err)
	}
	defer f.Close()
	stations, err := ParseStations(f, rng)
	if err != nil {
		return nil, fmt.Errorf("parse stations file %s: %w", path, err)
	}
	return stations, nil
}

// ParseStations builds stations from GeoJSON Point features. Ids are
// assigned sequentially in file order.
func ParseStations(r io.Reader, rng *rand.Rand) ([]*sim.Station, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}
	var stations []*sim.Station
	for i, ft := range fc.Features {
		if ft.Geometry.Type != "Point" {
			continue
		}
		var coords []float64
		if err := json.Unmarshal(ft.Geometry.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("station feature %d: coordinates: %w", i, err)
		}
		if len(coords) < 2 {
			return nil, fmt.Errorf("station feature %d: a Point needs lon and lat", i)
		}
		capacity := 0
		if c, ok := intProperty(ft.Properties, "capacity"); ok {
			capacity = int(c)
		} else {
			capacity = 2 + rng.Intn(5)
		}
		st, err := sim.NewStation(len(stations), geo.New(coords[1], coords[0]), capacity)
		if err != nil {
			return nil, fmt.Errorf("station feature %d: %w", i, err)
		}
		stations = append(stations, st)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("no charging point features found")
	}
	return stations, nil
}

func intProperty(props map[string]any, key string) (int64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func floatProperty(props map[string]any, key string) (float64, bool) {
	v, ok := props[key]
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}
