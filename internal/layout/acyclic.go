package layout

// acyclic returns the edges of an n-node graph with every back edge found by
// a depth-first search (started from nodes in index order) reversed. Self
// loops and duplicate edges are dropped.
func acyclic(n int, edges [][2]int) [][2]int {
	out := make([][]int, n)
	for _, e := range edges {
		out[e[0]] = append(out[e[0]], e[1])
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make([]uint8, n)
	seen := make(map[[2]int]bool, len(edges))
	var dag [][2]int
	add := func(u, v int) {
		e := [2]int{u, v}
		if u == v || seen[e] {
			return
		}
		seen[e] = true
		dag = append(dag, e)
	}

	var visit func(u int)
	visit = func(u int) {
		state[u] = active
		for _, v := range out[u] {
			switch state[v] {
			case active:
				add(v, u)
			case unvisited:
				add(u, v)
				visit(v)
			default:
				add(u, v)
			}
		}
		state[u] = done
	}
	for u := 0; u < n; u++ {
		if state[u] == unvisited {
			visit(u)
		}
	}
	return dag
}
