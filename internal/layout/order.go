package layout

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// sweeps is the number of alternating barycenter passes.
const sweeps = 8

// layering is a ranked DAG in which every edge joins adjacent ranks. Nodes
// with an index at or above size are dummies inserted on long edges.
type layering struct {
	size  int
	rank  []int
	ranks [][]int
	preds [][]int
	succs [][]int
}

func newLayering(size int, rank []int, edges [][2]int) *layering {
	l := &layering{size: size, rank: append([]int(nil), rank...)}
	l.preds = make([][]int, size)
	l.succs = make([][]int, size)

	link := func(u, v int) {
		l.succs[u] = append(l.succs[u], v)
		l.preds[v] = append(l.preds[v], u)
	}
	for _, e := range edges {
		u, v := e[0], e[1]
		for r := l.rank[u] + 1; r < l.rank[v]; r++ {
			d := len(l.rank)
			l.rank = append(l.rank, r)
			l.preds = append(l.preds, nil)
			l.succs = append(l.succs, nil)
			link(u, d)
			u = d
		}
		link(u, v)
	}

	maxRank := 0
	for _, r := range l.rank {
		if r > maxRank {
			maxRank = r
		}
	}
	l.ranks = make([][]int, maxRank+1)
	for v, r := range l.rank {
		l.ranks[r] = append(l.ranks[r], v)
	}
	return l
}

// positions returns the index of every node within its rank.
func (l *layering) positions() []int {
	pos := make([]int, len(l.rank))
	for _, layer := range l.ranks {
		for i, v := range layer {
			pos[v] = i
		}
	}
	return pos
}

// order reduces edge crossings with alternating down and up barycenter
// sweeps and keeps the best ordering seen.
func (l *layering) order() {
	best := cloneRanks(l.ranks)
	fewest := l.crossings()
	for i := 0; i < sweeps && fewest > 0; i++ {
		if i%2 == 0 {
			for r := 1; r < len(l.ranks); r++ {
				l.reorder(r, l.preds)
			}
		} else {
			for r := len(l.ranks) - 2; r >= 0; r-- {
				l.reorder(r, l.succs)
			}
		}
		if c := l.crossings(); c < fewest {
			fewest = c
			best = cloneRanks(l.ranks)
		}
	}
	l.ranks = best
}

// reorder sorts rank r by the mean position of each node's neighbours in
// the fixed adjacent rank. Nodes without neighbours keep their position.
func (l *layering) reorder(r int, adj [][]int) {
	pos := l.positions()
	layer := l.ranks[r]
	bary := make(map[int]float64, len(layer))
	for i, v := range layer {
		if len(adj[v]) == 0 {
			bary[v] = float64(i)
			continue
		}
		xs := make([]float64, len(adj[v]))
		for j, u := range adj[v] {
			xs[j] = float64(pos[u])
		}
		bary[v] = stat.Mean(xs, nil)
	}
	sort.SliceStable(layer, func(i, j int) bool {
		return bary[layer[i]] < bary[layer[j]]
	})
}

// crossings counts pairs of edges that cross between adjacent ranks.
func (l *layering) crossings() int {
	pos := l.positions()
	total := 0
	for r := 0; r+1 < len(l.ranks); r++ {
		var segs [][2]int
		for _, u := range l.ranks[r] {
			for _, v := range l.succs[u] {
				segs = append(segs, [2]int{pos[u], pos[v]})
			}
		}
		for i := range segs {
			for j := i + 1; j < len(segs); j++ {
				a, b := segs[i], segs[j]
				if (a[0] < b[0] && a[1] > b[1]) || (a[0] > b[0] && a[1] < b[1]) {
					total++
				}
			}
		}
	}
	return total
}

func cloneRanks(ranks [][]int) [][]int {
	out := make([][]int, len(ranks))
	for i, layer := range ranks {
		out[i] = append([]int(nil), layer...)
	}
	return out
}
