// Package route precomputes shortest paths between the critical stations
// of a rail network.
package route

import (
	"container/heap"

	"freight-simulator/internal/rail"
)

// Tree is the result of one single-source search. Dist holds every reached
// station, the source included at 0. Prev holds every reached station
// except the source, mapped to its predecessor on the way from Source.
type Tree struct {
	Source string
	Dist   map[string]int
	Prev   map[string]string
}

type queueItem struct {
	station string
	dist    int
	seq     int // push order, breaks distance ties
	index   int
}

type queue []*queueItem

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].seq < q[j].seq
}

func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *queue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*q)
	*q = append(*q, item)
}

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

// ShortestPaths runs Dijkstra from source over the network's directed
// connections. Unreachable stations are absent from both maps. Among
// equally short routes the first one discovered is kept.
func ShortestPaths(n *rail.Network, source string) (*Tree, error) {
	if _, err := n.Station(source); err != nil {
		return nil, err
	}
	t := &Tree{
		Source: source,
		Dist:   map[string]int{source: 0},
		Prev:   make(map[string]string),
	}
	visited := make(map[string]bool)

	pq := make(queue, 0)
	heap.Init(&pq)
	seq := 0
	heap.Push(&pq, &queueItem{station: source, dist: 0, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(*queueItem)
		if visited[cur.station] {
			continue
		}
		visited[cur.station] = true

		neighbours, err := n.Neighbours(cur.station)
		if err != nil {
			return nil, err
		}
		for _, nb := range neighbours {
			if visited[nb.Station] {
				continue
			}
			alt := cur.dist + nb.Duration
			if d, seen := t.Dist[nb.Station]; seen && alt >= d {
				continue
			}
			t.Dist[nb.Station] = alt
			t.Prev[nb.Station] = cur.station
			seq++
			heap.Push(&pq, &queueItem{station: nb.Station, dist: alt, seq: seq})
		}
	}
	return t, nil
}
