package dragdrop

import (
	"github.com/Notifuse/visualeditor/pkg/geom"
)

const (
	DefaultScrollEdge  = 40.0
	DefaultScrollSpeed = 12.0
)

// Scroller is the scroll container moved during a drag
type Scroller interface {
	ScrollBy(dy float64)
}

// AutoScroller scrolls the canvas while the pointer stays near the top or
// bottom edge of the viewport. It is driven by a frame timer through Tick.
type AutoScroller struct {
	edge     float64
	speed    float64
	velocity float64
	target   Scroller
}

func NewAutoScroller(edge, speed float64, target Scroller) *AutoScroller {
	return &AutoScroller{edge: edge, speed: speed, target: target}
}

// Update recomputes the scroll velocity from the pointer position. The
// closer to the edge, the faster.
func (a *AutoScroller) Update(p geom.Point, viewport geom.Rect) {
	a.velocity = 0
	if viewport.IsEmpty() || a.edge <= 0 {
		return
	}
	top := viewport.Y + a.edge
	bottom := viewport.Y + viewport.Height - a.edge
	switch {
	case p.Y < top:
		a.velocity = -a.speed * ratio(top-p.Y, a.edge)
	case p.Y > bottom:
		a.velocity = a.speed * ratio(p.Y-bottom, a.edge)
	}
}

func ratio(depth, edge float64) float64 {
	return geom.Clamp(depth/edge, 0, 1)
}

// Velocity is the step applied on the next tick
func (a *AutoScroller) Velocity() float64 {
	return a.velocity
}

// Tick applies one step and returns it
func (a *AutoScroller) Tick() float64 {
	if a.velocity == 0 {
		return 0
	}
	if a.target != nil {
		a.target.ScrollBy(a.velocity)
	}
	return a.velocity
}

// Stop halts scrolling
func (a *AutoScroller) Stop() {
	a.velocity = 0
}

// ScrollOffset is a Scroller that only accumulates the offset, for views
// that apply it themselves
type ScrollOffset struct {
	Y float64
}

func (s *ScrollOffset) ScrollBy(dy float64) {
	s.Y += dy
}
