package aggregates

import (
	"errors"
	"fmt"
	"sort"

	"loangraph/domain/core/valueobjects"
)

// neighborSet holds the neighbors of one node
type neighborSet map[valueobjects.NodeID]struct{}

// SimilarityGraph is an undirected simple graph over applicant records.
//
// Adjacency is stored as an arena indexed by NodeID; a nil entry means the
// node has no edges and is not part of the graph. Invariants:
//   - j in Neighbors(i) iff i in Neighbors(j)
//   - a node is never its own neighbor
//   - a node is present iff it has at least one edge
//
// A SimilarityGraph is immutable once returned by AdjacencyBuilder.Freeze.
type SimilarityGraph struct {
	adjacency []neighborSet
	nodeCount int
	edgeCount int
}

// AdjacencyBuilder accumulates edges for a single graph build.
// It is not safe for concurrent use.
type AdjacencyBuilder struct {
	graph  *SimilarityGraph
	frozen bool
}

// NewAdjacencyBuilder creates a builder for a graph over size records
func NewAdjacencyBuilder(size int) *AdjacencyBuilder {
	if size < 0 {
		size = 0
	}
	return &AdjacencyBuilder{
		graph: &SimilarityGraph{
			adjacency: make([]neighborSet, size),
		},
	}
}

// Connect adds the undirected edge a-b, creating neighbor sets lazily.
// Connecting an already connected pair is a no-op.
func (b *AdjacencyBuilder) Connect(a, c valueobjects.NodeID) error {
	if b.frozen {
		return errors.New("graph already frozen")
	}
	if a.Equals(c) {
		return errors.New("cannot connect node to itself")
	}
	size := len(b.graph.adjacency)
	if a.Int() < 0 || a.Int() >= size || c.Int() < 0 || c.Int() >= size {
		return fmt.Errorf("edge %s-%s out of range for %d records", a, c, size)
	}

	g := b.graph
	if _, exists := g.adjacency[a][c]; exists {
		return nil
	}
	g.insert(a, c)
	g.insert(c, a)
	g.edgeCount++
	return nil
}

// Freeze returns the finished graph; the builder cannot be used afterwards
func (b *AdjacencyBuilder) Freeze() *SimilarityGraph {
	b.frozen = true
	return b.graph
}

func (g *SimilarityGraph) insert(from, to valueobjects.NodeID) {
	set := g.adjacency[from]
	if set == nil {
		set = make(neighborSet)
		g.adjacency[from] = set
		g.nodeCount++
	}
	set[to] = struct{}{}
}

// Size returns the number of records the graph was built over
func (g *SimilarityGraph) Size() int {
	return len(g.adjacency)
}

// NodeCount returns the number of nodes with at least one edge
func (g *SimilarityGraph) NodeCount() int {
	return g.nodeCount
}

// EdgeCount returns the number of undirected edges
func (g *SimilarityGraph) EdgeCount() int {
	return g.edgeCount
}

// IsolatedCount returns the number of records with no edge
func (g *SimilarityGraph) IsolatedCount() int {
	return len(g.adjacency) - g.nodeCount
}

// HasNode reports whether id is present, i.e. has at least one edge
func (g *SimilarityGraph) HasNode(id valueobjects.NodeID) bool {
	if id.Int() < 0 || id.Int() >= len(g.adjacency) {
		return false
	}
	return g.adjacency[id] != nil
}

// Connected reports whether a and b share an edge
func (g *SimilarityGraph) Connected(a, b valueobjects.NodeID) bool {
	if !g.HasNode(a) {
		return false
	}
	_, ok := g.adjacency[a][b]
	return ok
}

// Degree returns the number of neighbors of id, 0 when absent
func (g *SimilarityGraph) Degree(id valueobjects.NodeID) int {
	if !g.HasNode(id) {
		return 0
	}
	return len(g.adjacency[id])
}

// Neighbors returns the neighbors of id in ascending order, nil when absent
func (g *SimilarityGraph) Neighbors(id valueobjects.NodeID) []valueobjects.NodeID {
	if !g.HasNode(id) {
		return nil
	}
	neighbors := make([]valueobjects.NodeID, 0, len(g.adjacency[id]))
	for n := range g.adjacency[id] {
		neighbors = append(neighbors, n)
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })
	return neighbors
}

// NodeIDs returns the present nodes in ascending order
func (g *SimilarityGraph) NodeIDs() []valueobjects.NodeID {
	ids := make([]valueobjects.NodeID, 0, g.nodeCount)
	for i, set := range g.adjacency {
		if set != nil {
			ids = append(ids, valueobjects.NodeID(i))
		}
	}
	return ids
}

// ForEachNode calls fn for every present node with its degree, in ascending id order
func (g *SimilarityGraph) ForEachNode(fn func(id valueobjects.NodeID, degree int)) {
	for i, set := range g.adjacency {
		if set != nil {
			fn(valueobjects.NodeID(i), len(set))
		}
	}
}

// Adjacency returns a copy of the adjacency list keyed by node.
// Isolated records are absent from the result.
func (g *SimilarityGraph) Adjacency() map[valueobjects.NodeID][]valueobjects.NodeID {
	adjacency := make(map[valueobjects.NodeID][]valueobjects.NodeID, g.nodeCount)
	for _, id := range g.NodeIDs() {
		adjacency[id] = g.Neighbors(id)
	}
	return adjacency
}

// Validate checks the graph invariants
func (g *SimilarityGraph) Validate() error {
	present := 0
	halfEdges := 0
	for i, set := range g.adjacency {
		if set == nil {
			continue
		}
		id := valueobjects.NodeID(i)
		if len(set) == 0 {
			return fmt.Errorf("node %s present without neighbors", id)
		}
		present++
		halfEdges += len(set)
		for n := range set {
			if n.Equals(id) {
				return fmt.Errorf("node %s has a self-loop", id)
			}
			if !g.Connected(n, id) {
				return fmt.Errorf("edge %s-%s is not symmetric", id, n)
			}
		}
	}
	if present != g.nodeCount {
		return errors.New("node count mismatch")
	}
	if halfEdges != 2*g.edgeCount {
		return errors.New("edge count mismatch")
	}
	return nil
}
