package dependency

import (
	"errors"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ErrCycle is returned when the dependency graph contains a cycle.
var ErrCycle = errors.New("dependency cycle detected")

// CycleError names the resources taking part in each cycle. Members are
// listed in declaration order.
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c, ", ")
	}
	return ErrCycle.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is match ErrCycle.
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// Resolve orders resources so that every edge source comes before its target.
// It returns:
// - ordered: names in topological order (prerequisites first)
// - tiers: names grouped into provisioning waves (wave 0 = no prerequisites,
//   wave 1 = only prerequisites in wave 0, etc.)
// Ties are broken by declaration order. Edges naming unknown resources are ignored.
func Resolve(names []string, edges []Edge) (ordered []string, tiers [][]string, err error) {
	if len(names) == 0 {
		return nil, nil, nil
	}

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	// target depends on source => inDegree[target] = number of distinct sources
	inDegree := make([]int, len(names))
	out := make([][]int, len(names))
	linked := make(map[[2]int]bool)
	for _, e := range edges {
		u, okU := index[e.Source]
		v, okV := index[e.Target]
		if !okU || !okV || u == v || linked[[2]int{u, v}] {
			continue
		}
		linked[[2]int{u, v}] = true
		out[u] = append(out[u], v)
		inDegree[v]++
	}

	var queue []int
	for i := range names {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	ordered = make([]string, 0, len(names))
	for len(queue) > 0 {
		tier := make([]string, len(queue))
		for i, u := range queue {
			tier[i] = names[u]
		}
		tiers = append(tiers, tier)

		var next []int
		for _, u := range queue {
			ordered = append(ordered, names[u])
			for _, v := range out[u] {
				inDegree[v]--
				if inDegree[v] == 0 {
					next = append(next, v)
				}
			}
		}
		sort.Ints(next)
		queue = next
	}

	if len(ordered) != len(names) {
		return nil, nil, &CycleError{Cycles: cycles(len(names), out, names)}
	}
	return ordered, tiers, nil
}

// Cycles returns the groups of resources that depend on each other,
// in declaration order. It returns nil for an acyclic graph.
func Cycles(names []string, edges []Edge) [][]string {
	_, _, err := Resolve(names, edges)
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce.Cycles
	}
	return nil
}

// cycles finds the strongly connected components with more than one member.
func cycles(n int, out [][]int, names []string) [][]string {
	g := simple.NewDirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for u, vs := range out {
		for _, v := range vs {
			g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
		}
	}

	var groups [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		members := make([]int, len(scc))
		for i, node := range scc {
			members[i] = int(node.ID())
		}
		sort.Ints(members)
		groups = append(groups, members)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	result := make([][]string, len(groups))
	for i, members := range groups {
		result[i] = make([]string, len(members))
		for j, m := range members {
			result[i][j] = names[m]
		}
	}
	return result
}
