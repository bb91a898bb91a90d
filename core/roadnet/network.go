// Package roadnet models the road network as an undirected graph of
// intersections weighted by edge length. Routing is delegated to gonum's
// shortest-path implementation; the network itself only resolves nearest
// nodes and exposes edge geometry to the movement code.
package roadnet

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/mobilitylabs/evsim/core/geo"
)

// node attaches coordinates to a graph node id.
type node struct {
	id  int64
	loc geo.Location
}

func (n node) ID() int64 { return n.id }

// Network is an undirected road graph weighted by edge length in meters.
// It is built once at startup and read-only afterwards; none of its methods
// mutate state after construction.
type Network struct {
	g   *simple.WeightedUndirectedGraph
	ids []int64 // ascending, fixes the nearest-node scan order
}

// New returns an empty network.
func New() *Network {
	return &Network{g: simple.NewWeightedUndirectedGraph(0, math.Inf(1))}
}

// AddNode registers an intersection. Re-adding an existing id is a no-op so
// loaders can emit the same endpoint for every road that touches it.
// Invalid coordinates are a setup-time error.
func (n *Network) AddNode(id int64, lat, lon float64) error {
	loc := geo.AtNode(lat, lon, id)
	if !loc.Valid() {
		return fmt.Errorf("node %d: invalid coordinates (%v, %v)", id, lat, lon)
	}
	if n.g.Node(id) != nil {
		return nil
	}
	n.g.AddNode(node{id: id, loc: loc})
	i := sort.Search(len(n.ids), func(i int) bool { return n.ids[i] >= id })
	n.ids = append(n.ids, 0)
	copy(n.ids[i+1:], n.ids[i:])
	n.ids[i] = id
	return nil
}

// AddEdge connects two previously added nodes with the given length in
// meters. Both endpoints must exist.
func (n *Network) AddEdge(u, v int64, lengthM float64) error {
	if u == v {
		return fmt.Errorf("edge (%d,%d): self loops are not allowed", u, v)
	}
	if lengthM <= 0 || math.IsNaN(lengthM) || math.IsInf(lengthM, 0) {
		return fmt.Errorf("edge (%d,%d): invalid length %v", u, v, lengthM)
	}
	nu := n.g.Node(u)
	if nu == nil {
		return fmt.Errorf("edge (%d,%d): unknown node %d", u, v, u)
	}
	nv := n.g.Node(v)
	if nv == nil {
		return fmt.Errorf("edge (%d,%d): unknown node %d", u, v, v)
	}
	n.g.SetWeightedEdge(n.g.NewWeightedEdge(nu, nv, lengthM))
	return nil
}

// NumNodes returns the number of intersections.
func (n *Network) NumNodes() int { return len(n.ids) }

// NumEdges returns the number of road segments.
func (n *Network) NumEdges() int { return n.g.Edges().Len() }

// NodeIDs returns all node ids in ascending order.
func (n *Network) NodeIDs() []int64 {
	out := make([]int64, len(n.ids))
	copy(out, n.ids)
	return out
}

// NodeLocation returns the coordinates of a node.
func (n *Network) NodeLocation(id int64) (geo.Location, bool) {
	gn := n.g.Node(id)
	if gn == nil {
		return geo.Location{}, false
	}
	return gn.(node).loc, true
}

// EdgeLengthM returns the length in meters of the edge between u and v.
func (n *Network) EdgeLengthM(u, v int64) (float64, bool) {
	if n.g.Edge(u, v) == nil {
		return 0, false
	}
	w, ok := n.g.Weight(u, v)
	if !ok {
		return 0, false
	}
	return w, true
}

// NearestNode returns the node closest to loc by great-circle distance.
// Nodes are scanned in ascending id order, so distance ties resolve to the
// lowest id and repeated runs behave identically.
func (n *Network) NearestNode(loc geo.Location) (int64, bool) {
	if len(n.ids) == 0 {
		return 0, false
	}
	best := n.ids[0]
	bestD := math.Inf(1)
	for _, id := range n.ids {
		nd := n.g.Node(id).(node)
		if d := loc.DistanceTo(nd.loc); d < bestD {
			bestD = d
			best = id
		}
	}
	return best, true
}

// ShortestPath returns the node sequence of the minimum-length route between
// the nodes nearest to from and to. An empty result means no route exists or
// an endpoint could not be resolved; callers treat that as "no movement
// possible", never as a fatal condition.
func (n *Network) ShortestPath(from, to geo.Location) []int64 {
	u, ok := n.NearestNode(from)
	if !ok {
		return nil
	}
	v, ok := n.NearestNode(to)
	if !ok {
		return nil
	}
	if u == v {
		return []int64{u}
	}
	sp := path.DijkstraFrom(n.g.Node(u), n.g)
	nodes, _ := sp.To(v)
	if len(nodes) == 0 {
		return nil
	}
	out := make([]int64, len(nodes))
	for i, gn := range nodes {
		out[i] = gn.ID()
	}
	return out
}
