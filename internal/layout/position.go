package layout

// placement is the generic coordinate of one real node within its component.
type placement struct {
	rank, order int
	x, y        float64
}

// place assigns coordinates to the real nodes of an ordered layering: x
// follows the rank, y the order within the rank, each rank centred on the
// tallest. It returns the placements and the height of the component.
func place(l *layering, opts Options) ([]placement, float64) {
	slotY := opts.NodeHeight + opts.NodeSep
	slotX := opts.NodeWidth + opts.RankSep

	tallest := 0
	for _, layer := range l.ranks {
		if len(layer) > tallest {
			tallest = len(layer)
		}
	}
	height := span(tallest, opts)

	out := make([]placement, l.size)
	for r, layer := range l.ranks {
		offset := (height - span(len(layer), opts)) / 2
		for i, v := range layer {
			if v >= l.size {
				continue
			}
			out[v] = placement{
				rank:  r,
				order: i,
				x:     float64(r) * slotX,
				y:     offset + float64(i)*slotY,
			}
		}
	}
	return out, height
}

// span is the height of n stacked nodes.
func span(n int, opts Options) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*opts.NodeHeight + float64(n-1)*opts.NodeSep
}
