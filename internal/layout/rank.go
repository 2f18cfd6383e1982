package layout

// assignRanks gives every node of a DAG the length of the longest path
// reaching it, then pulls sources next to their nearest successor so that
// leaf prerequisites do not sit far to the left.
func assignRanks(n int, edges [][2]int) []int {
	in := make([]int, n)
	out := make([][]int, n)
	for _, e := range edges {
		out[e[0]] = append(out[e[0]], e[1])
		in[e[1]]++
	}
	sources := make([]bool, n)
	var queue []int
	for u := 0; u < n; u++ {
		if in[u] == 0 {
			sources[u] = true
			queue = append(queue, u)
		}
	}

	rank := make([]int, n)
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range out[u] {
			if rank[u]+1 > rank[v] {
				rank[v] = rank[u] + 1
			}
			in[v]--
			if in[v] == 0 {
				queue = append(queue, v)
			}
		}
	}

	// tighten
	for u := 0; u < n; u++ {
		if !sources[u] || len(out[u]) == 0 {
			continue
		}
		nearest := rank[out[u][0]]
		for _, v := range out[u][1:] {
			if rank[v] < nearest {
				nearest = rank[v]
			}
		}
		rank[u] = nearest - 1
	}
	return rank
}
