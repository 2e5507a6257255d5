// Package graph provides a directed weighted graph with a fixed vertex set
// and a single-source shortest path search over it.
package graph

// Weight is the set of numeric types an edge weight may have.
type Weight interface {
	~int | ~int32 | ~int64 | ~uint32 | ~float32 | ~float64
}

type VertexID int

type EdgeID int

type Edge[W Weight] struct {
	From   VertexID
	To     VertexID
	Weight W
}

// DirectedWeightedGraph stores edges in insertion order and keeps, for each
// vertex, the outgoing edge ids in insertion order as well. Searches rely on
// that order for reproducible results.
type DirectedWeightedGraph[W Weight] struct {
	edges    []Edge[W]
	incident [][]EdgeID
}

func NewDirectedWeightedGraph[W Weight](vertexCount int) *DirectedWeightedGraph[W] {
	return &DirectedWeightedGraph[W]{
		incident: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends e and returns its id. Both endpoints must be below
// VertexCount.
func (g *DirectedWeightedGraph[W]) AddEdge(e Edge[W]) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.incident[e.From] = append(g.incident[e.From], id)
	return id
}

func (g *DirectedWeightedGraph[W]) VertexCount() int {
	return len(g.incident)
}

func (g *DirectedWeightedGraph[W]) EdgeCount() int {
	return len(g.edges)
}

func (g *DirectedWeightedGraph[W]) Edge(id EdgeID) Edge[W] {
	return g.edges[id]
}

// IncidentEdges returns the outgoing edges of v. The slice must not be
// modified.
func (g *DirectedWeightedGraph[W]) IncidentEdges(v VertexID) []EdgeID {
	return g.incident[v]
}
