package dataflow

import (
	"container/heap"
	"iter"
)

// TopologicalOrder yields every node after all of its parents. Among nodes
// that are ready at the same time, the earliest inserted comes first.
// Nodes are produced lazily; the graph must not be mutated mid-iteration.
func (g *Graph) TopologicalOrder() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		rank := make(map[NodeID]int, len(g.order))
		pending := make(map[NodeID]int, len(g.order))
		ready := &rankQueue{rank: rank}
		for i, id := range g.order {
			rank[id] = i
			pending[id] = len(g.parents[id])
		}
		for _, id := range g.order {
			if pending[id] == 0 {
				heap.Push(ready, id)
			}
		}

		for ready.Len() > 0 {
			id := heap.Pop(ready).(NodeID)
			if !yield(g.nodes[id]) {
				return
			}
			for _, c := range g.children[id] {
				pending[c]--
				if pending[c] == 0 {
					heap.Push(ready, c)
				}
			}
		}
	}
}

type rankQueue struct {
	ids  []NodeID
	rank map[NodeID]int
}

func (q *rankQueue) Len() int           { return len(q.ids) }
func (q *rankQueue) Less(i, j int) bool { return q.rank[q.ids[i]] < q.rank[q.ids[j]] }
func (q *rankQueue) Swap(i, j int)      { q.ids[i], q.ids[j] = q.ids[j], q.ids[i] }
func (q *rankQueue) Push(x any)         { q.ids = append(q.ids, x.(NodeID)) }
func (q *rankQueue) Pop() any {
	last := q.ids[len(q.ids)-1]
	q.ids = q.ids[:len(q.ids)-1]
	return last
}
