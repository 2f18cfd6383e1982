package layout

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/blueprint-graph/compiler/internal/dependency"
)

// Options controls node size and spacing.
type Options struct {
	NodeWidth   float64
	NodeHeight  float64
	NodeSep     float64 // between nodes of one rank
	RankSep     float64 // between ranks
	TierSpacing float64 // between category bands
	BaseOffset  float64 // y of band 0
}

// DefaultOptions returns the canvas defaults.
func DefaultOptions() Options {
	return Options{
		NodeWidth:   350,
		NodeHeight:  120,
		NodeSep:     30,
		RankSep:     60,
		TierSpacing: 200,
		BaseOffset:  0,
	}
}

// Engine places resource nodes. It keeps no state between calls and is safe
// for concurrent use.
type Engine struct {
	opts Options
}

// New returns an engine. Zero Options mean DefaultOptions; otherwise zero
// sizes and negative gaps fall back to the defaults. TierSpacing is raised to
// at least NodeHeight+NodeSep so neighbouring bands never overlap.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts == (Options{}) {
		return &Engine{opts: def}
	}
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = def.NodeWidth
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = def.NodeHeight
	}
	if opts.NodeSep < 0 {
		opts.NodeSep = def.NodeSep
	}
	if opts.RankSep < 0 {
		opts.RankSep = def.RankSep
	}
	if opts.TierSpacing <= 0 {
		opts.TierSpacing = def.TierSpacing
	}
	if floor := opts.NodeHeight + opts.NodeSep; opts.TierSpacing < floor {
		opts.TierSpacing = floor
	}
	return &Engine{opts: opts}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Layout returns a copy of nodes with tier, rank, order, size and position
// set. The flow runs left to right along edges. Each connected component is
// laid out on its own and stacked below the previous one; then every node is
// moved to the band of its tier and nodes sharing a band are pushed right
// until none overlap. Edges naming unknown nodes are ignored.
func (e *Engine) Layout(nodes []Node, edges []dependency.Edge) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	if len(out) == 0 {
		return out
	}

	index := make(map[string]int, len(out))
	for i := range out {
		if _, dup := index[out[i].ID]; !dup {
			index[out[i].ID] = i
		}
	}
	var pairs [][2]int
	for _, edge := range edges {
		u, okU := index[edge.Source]
		v, okV := index[edge.Target]
		if okU && okV && u != v {
			pairs = append(pairs, [2]int{u, v})
		}
	}

	generic := e.generic(len(out), pairs)
	for i := range out {
		out[i].Width = e.opts.NodeWidth
		out[i].Height = e.opts.NodeHeight
		out[i].Tier = TierOf(out[i].Category)
		out[i].Rank = generic[i].rank
		out[i].Order = generic[i].order
		out[i].Position = Position{
			X: generic[i].x,
			Y: float64(out[i].Tier)*e.opts.TierSpacing + e.opts.BaseOffset,
		}
	}
	e.pack(out, generic)
	return out
}

// generic runs the layered pass on every connected component and stacks the
// components vertically.
func (e *Engine) generic(n int, pairs [][2]int) []placement {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for _, p := range pairs {
		g.SetEdge(simple.Edge{F: simple.Node(p[0]), T: simple.Node(p[1])})
	}

	var components [][]int
	for _, cc := range topo.ConnectedComponents(g) {
		members := make([]int, len(cc))
		for i, node := range cc {
			members[i] = int(node.ID())
		}
		sort.Ints(members)
		components = append(components, members)
	}
	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	out := make([]placement, n)
	top := 0.0
	for _, members := range components {
		local := make(map[int]int, len(members))
		for i, m := range members {
			local[m] = i
		}
		var sub [][2]int
		for _, p := range pairs {
			u, ok := local[p[0]]
			if !ok {
				continue
			}
			sub = append(sub, [2]int{u, local[p[1]]})
		}

		dag := acyclic(len(members), sub)
		l := newLayering(len(members), assignRanks(len(members), dag), dag)
		l.order()
		placed, height := place(l, e.opts)
		for i, m := range members {
			p := placed[i]
			p.y += top
			out[m] = p
		}
		top += height + e.opts.NodeSep
	}
	return out
}

// pack removes overlaps inside each band. Nodes are visited in generic
// layout order and pushed right past the previous node of their tier.
func (e *Engine) pack(nodes []Node, generic []placement) {
	byTier := make(map[int][]int)
	var tiers []int
	for i := range nodes {
		t := nodes[i].Tier
		if _, ok := byTier[t]; !ok {
			tiers = append(tiers, t)
		}
		byTier[t] = append(byTier[t], i)
	}
	sort.Ints(tiers)

	step := e.opts.NodeWidth + e.opts.NodeSep
	for _, t := range tiers {
		members := byTier[t]
		sort.SliceStable(members, func(a, b int) bool {
			pa, pb := generic[members[a]], generic[members[b]]
			if pa.x != pb.x {
				return pa.x < pb.x
			}
			return pa.y < pb.y
		})
		for k := 1; k < len(members); k++ {
			prev := nodes[members[k-1]].Position.X
			cur := &nodes[members[k]].Position
			if cur.X < prev+step {
				cur.X = prev + step
			}
		}
	}
}
