package graph

import "container/heap"

// RouteInfo is a shortest path: its total weight and the edges walked from
// origin to destination.
type RouteInfo[W Weight] struct {
	Weight W
	Edges  []EdgeID
}

// Router answers shortest path queries over a graph that is no longer
// modified. It holds no per-query state, so concurrent BuildRoute calls are
// safe.
type Router[W Weight] struct {
	graph *DirectedWeightedGraph[W]
}

func NewRouter[W Weight](g *DirectedWeightedGraph[W]) *Router[W] {
	return &Router[W]{graph: g}
}

func (r *Router[W]) Graph() *DirectedWeightedGraph[W] {
	return r.graph
}

// BuildRoute runs Dijkstra from one vertex and returns the cheapest path to
// another. ok is false when to is unreachable or either vertex is out of
// range. All weights must be non-negative.
//
// Among equally cheap paths the result is fixed: vertices leave the queue in
// (distance, id) order, edges are relaxed in insertion order, and a path is
// only replaced by a strictly cheaper one.
func (r *Router[W]) BuildRoute(from, to VertexID) (RouteInfo[W], bool) {
	n := r.graph.VertexCount()
	if from < 0 || int(from) >= n || to < 0 || int(to) >= n {
		return RouteInfo[W]{}, false
	}
	if from == to {
		return RouteInfo[W]{Edges: []EdgeID{}}, true
	}

	dist := make([]W, n)
	reached := make([]bool, n)
	done := make([]bool, n)
	prevEdge := make([]EdgeID, n)
	for i := range prevEdge {
		prevEdge[i] = -1
	}

	queue := &priorityQueue[W]{}
	reached[from] = true
	heap.Push(queue, item[W]{vertex: from})

	for queue.Len() > 0 {
		current := heap.Pop(queue).(item[W])
		v := current.vertex
		if done[v] {
			continue
		}
		done[v] = true
		if v == to {
			break
		}

		for _, edgeID := range r.graph.IncidentEdges(v) {
			e := r.graph.Edge(edgeID)
			if done[e.To] {
				continue
			}
			candidate := dist[v] + e.Weight
			if !reached[e.To] || candidate < dist[e.To] {
				reached[e.To] = true
				dist[e.To] = candidate
				prevEdge[e.To] = edgeID
				heap.Push(queue, item[W]{vertex: e.To, priority: candidate})
			}
		}
	}

	if !done[to] {
		return RouteInfo[W]{}, false
	}

	var edges []EdgeID
	for v := to; v != from; {
		edgeID := prevEdge[v]
		edges = append(edges, edgeID)
		v = r.graph.Edge(edgeID).From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return RouteInfo[W]{Weight: dist[to], Edges: edges}, true
}

type item[W Weight] struct {
	vertex   VertexID
	priority W
}

// priorityQueue implements heap.Interface. Stale entries are skipped on pop
// instead of being re-prioritised in place.
type priorityQueue[W Weight] []item[W]

func (pq priorityQueue[W]) Len() int { return len(pq) }

func (pq priorityQueue[W]) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority < pq[j].priority
	}
	return pq[i].vertex < pq[j].vertex
}

func (pq priorityQueue[W]) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue[W]) Push(x any) {
	*pq = append(*pq, x.(item[W]))
}

func (pq *priorityQueue[W]) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}
