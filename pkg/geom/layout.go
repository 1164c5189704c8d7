package geom

// Layout holds the bounding boxes measured by the view, keyed by node id.
// The engine never computes layout itself; the canvas reports it.
type Layout map[string]Rect

// Rect returns the reported box for id
func (l Layout) Rect(id string) (Rect, bool) {
	if l == nil {
		return Rect{}, false
	}
	r, ok := l[id]
	return r, ok
}

// Merge overwrites entries of l with the ones in other
func (l Layout) Merge(other Layout) Layout {
	out := make(Layout, len(l)+len(other))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// LayoutReport is what the canvas sends after each render or scroll.
type LayoutReport struct {
	Viewport Rect   `json:"viewport"`
	Scroll   Point  `json:"scroll"`
	Boxes    Layout `json:"boxes"`
}
