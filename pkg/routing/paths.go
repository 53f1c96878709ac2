// Package routing computes equal-cost multipath routes over a topology graph
// and reduces them to the next-hop sets the forwarding tables are built from.
package routing

import (
	"container/heap"

	"github.com/flowplane-net/flowplane/pkg/topology"
	"github.com/flowplane-net/flowplane/pkg/util"
)

// MaxPathsPerDest caps the enumerated equal-cost paths per destination.
// Path sets grow combinatorially when equal-cost choices compound across
// hops; only first hops matter downstream, so dropping the excess loses
// nothing the table builder needs.
const MaxPathsPerDest = 64

// Path is an ordered switch sequence starting at the search source.
// Consecutive switches are adjacent in the graph.
type Path []string

// PathSet maps each reachable destination to all its minimal-cost paths.
// The source maps to exactly one trivial path of length zero. Unreachable
// switches are absent.
type PathSet map[string][]Path

// queueItem is a tentative-distance entry in the priority queue. Stale
// entries for already-finalized switches are discarded on pop.
type queueItem struct {
	dist int
	node string
}

type distQueue []queueItem

func (q distQueue) Len() int { return len(q) }
func (q distQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q distQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(queueItem)) }
func (q *distQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ComputeAllPaths runs a Dijkstra search from source that tracks, per
// destination, the set of all minimal-cost paths instead of a single
// predecessor.
//
// The equal-cost merge is the subtle part: when dist[u]+cost equals the known
// dist[v] exactly, u's paths extended by v are appended to v's set even if v
// was already finalized. Any predecessor contributing an equal-cost path has
// a finalized distance no greater than the shared minimum, so the merge is
// correct regardless of queue processing order. Skipping all relaxation for
// visited switches would silently drop valid ECMP paths.
func ComputeAllPaths(g topology.Graph, source string) PathSet {
	dist := map[string]int{source: 0}
	paths := PathSet{source: {Path{source}}}
	visited := make(map[string]bool)

	pq := &distQueue{{dist: 0, node: source}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(queueItem)
		u := item.node
		if visited[u] {
			continue
		}
		visited[u] = true
		d := dist[u]

		for _, v := range g.Neighbors(u) {
			e, _ := g.Edge(u, v)
			nd := d + e.Cost

			cur, seen := dist[v]
			switch {
			case !seen || nd < cur:
				dist[v] = nd
				paths[v] = extendAll(paths[u], v, nil)
				heap.Push(pq, queueItem{dist: nd, node: v})
			case nd == cur:
				paths[v] = extendAll(paths[u], v, paths[v])
				if len(paths[v]) > MaxPathsPerDest {
					util.Debugf("capping equal-cost paths to %s at %d (had %d)",
						v, MaxPathsPerDest, len(paths[v]))
					paths[v] = paths[v][:MaxPathsPerDest]
				}
			}
		}
	}

	return paths
}

// extendAll appends every path in src extended by next to dst.
func extendAll(src []Path, next string, dst []Path) []Path {
	for _, p := range src {
		np := make(Path, len(p)+1)
		copy(np, p)
		np[len(p)] = next
		dst = append(dst, np)
	}
	return dst
}

// Cost returns the total edge cost along p, or -1 if p is not a valid
// walk in g.
func (p Path) Cost(g topology.Graph) int {
	total := 0
	for i := 1; i < len(p); i++ {
		e, ok := g.Edge(p[i-1], p[i])
		if !ok {
			return -1
		}
		total += e.Cost
	}
	return total
}
