package geoload

import (
	"math/rand"
	"strings"
	"testing"
)

const roadsFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[2.35, 48.85], [2.36, 48.86]]},
      "properties": {"u": 1, "v": 2, "length": 1500}
    },
    {
      "type": "Feature",
      "geometry": {"type": "LineString", "coordinates": [[2.36, 48.86], [2.37, 48.85]]},
      "properties": {"u": 2, "v": 3}
    },
    {
      "type": "Feature",
      "geometry": {"type": "Point", "coordinates": [2.35, 48.85]},
      "properties": {}
    }
  ]
}`

func TestParseRoadNetwork(t *testing.T) {
	net, err := ParseRoadNetwork(strings.NewReader(roadsFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if net.NumNodes() != 3 {
		t.Fatalf("expected 3 nodes, got %d", net.NumNodes())
	}
	if net.NumEdges() != 2 {
		t.Fatalf("expected 2 edges, got %d", net.NumEdges())
	}
	if got, ok := net.EdgeLengthM(1, 2); !ok || got != 1500 {
		t.Fatalf("expected explicit length 1500, got %v (ok=%v)", got, ok)
	}
	// No length property falls back to the default.
	if got, ok := net.EdgeLengthM(2, 3); !ok || got != defaultEdgeLengthM {
		t.Fatalf("expected default length, got %v (ok=%v)", got, ok)
	}
	// Positions are (lon, lat) in the file.
	loc, ok := net.NodeLocation(1)
	if !ok || loc.Lat != 48.85 || loc.Lon != 2.35 {
		t.Fatalf("unexpected node 1 location: %+v", loc)
	}
}

func TestParseRoadNetworkErrors(t *testing.T) {
	cases := map[string]string{
		"not json":    `{]`,
		"missing u":   `{"features":[{"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"v":2}}]}`,
		"missing v":   `{"features":[{"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]},"properties":{"u":1}}]}`,
		"one point":   `{"features":[{"geometry":{"type":"LineString","coordinates":[[0,0]]},"properties":{"u":1,"v":2}}]}`,
		"no features": `{"features":[]}`,
		"bad coords":  `{"features":[{"geometry":{"type":"LineString","coordinates":[[200,95],[1,1]]},"properties":{"u":1,"v":2}}]}`,
	}
	for name, doc := range cases {
		if _, err := ParseRoadNetwork(strings.NewReader(doc)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseStations(t *testing.T) {
	doc := `{
	  "features": [
	    {"geometry": {"type": "Point", "coordinates": [2.35, 48.85]}, "properties": {"capacity": 4}},
	    {"geometry": {"type": "Point", "coordinates": [2.36, 48.86]}, "properties": {}},
	    {"geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}, "properties": {"u":1,"v":2}}
	  ]
	}`
	rng := rand.New(rand.NewSource(1))
	stations, err := ParseStations(strings.NewReader(doc), rng)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d", len(stations))
	}
	if stations[0].ID != 0 || stations[1].ID != 1 {
		t.Fatalf("expected sequential ids, got %d and %d", stations[0].ID, stations[1].ID)
	}
	if stations[0].Capacity != 4 {
		t.Fatalf("expected explicit capacity 4, got %d", stations[0].Capacity)
	}
	if c := stations[1].Capacity; c < 2 || c > 6 {
		t.Fatalf("expected drawn capacity in [2,6], got %d", c)
	}
	if stations[0].Location.Lat != 48.85 || stations[0].Location.Lon != 2.35 {
		t.Fatalf("unexpected station location: %+v", stations[0].Location)
	}
}

func TestParseStationsDeterministicDraw(t *testing.T) {
	doc := `{"features":[{"geometry":{"type":"Point","coordinates":[2.35,48.85]},"properties":{}}]}`
	s1, err := ParseStations(strings.NewReader(doc), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	s2, err := ParseStations(strings.NewReader(doc), rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s1[0].Capacity != s2[0].Capacity {
		t.Fatalf("same seed drew different capacities: %d vs %d", s1[0].Capacity, s2[0].Capacity)
	}
}

func TestParseStationsErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := map[string]string{
		"no points":  `{"features":[]}`,
		"bad coords": `{"features":[{"geometry":{"type":"Point","coordinates":[2.35]},"properties":{}}]}`,
	}
	for name, doc := range cases {
		if _, err := ParseStations(strings.NewReader(doc), rng); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
