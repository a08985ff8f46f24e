package worm

import (
	"fmt"
	"math"
)

// MoveType is the effective direction of travel at the end of a move.
type MoveType uint8

const (
	Up MoveType = iota
	Down
	Left
	Right
)

func (t MoveType) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("MoveType(%d)", uint8(t))
}

// ShapeKind selects how a segment is drawn.
type ShapeKind uint8

const (
	Straight ShapeKind = iota
	Arc
)

// Shape is the rendering geometry of a move, relative to the segment start.
// For arcs the pivot is the circle centre and the radius is the move size;
// the segment runs from angle Start to Start+Sweep.
type Shape struct {
	Kind   ShapeKind
	Pivot  Point
	Start  float64
	Sweep  float64
	Radius float64
}

// Move is one catalog entry.
type Move struct {
	Name   string
	Type   MoveType
	Offset Point
	Shape  Shape
}

// Next returns the joint reached by applying the move at p.
func (m Move) Next(p Point) Point { return p.Add(m.Offset) }

// PreDraw draws the part of the segment from p to q not yet consumed at
// completion c: the oldest segment of a worm retires from its start.
func (m Move) PreDraw(c float64, p, q Point, cv Canvas) {
	c = clampF(c, 0, 1)
	if m.Shape.Kind == Straight {
		from := Lerp(p, q, c)
		if from == q {
			return
		}
		cv.DrawLine(from.X, from.Y, q.X, q.Y)
		return
	}
	m.drawArc(p, c, 1, cv)
}

// Draw draws the complete segment from p to q.
func (m Move) Draw(p, q Point, cv Canvas) {
	if m.Shape.Kind == Straight {
		cv.DrawLine(p.X, p.Y, q.X, q.Y)
		return
	}
	m.drawArc(p, 0, 1, cv)
}

// PostDraw draws the part of the segment from p to q grown so far at
// completion c: the newest segment of a worm grows out of p.
func (m Move) PostDraw(c float64, p, q Point, cv Canvas) {
	c = clampF(c, 0, 1)
	if m.Shape.Kind == Straight {
		to := Lerp(p, q, c)
		if to == p {
			return
		}
		cv.DrawLine(p.X, p.Y, to.X, to.Y)
		return
	}
	m.drawArc(p, 0, c, cv)
}

// drawArc emits the arc between fractions t0 and t1 of the sweep. The
// canvas wants the range in clockwise order, so counter-clockwise moves
// hand it over reversed.
func (m Move) drawArc(p Point, t0, t1 float64, cv Canvas) {
	if t1 <= t0 {
		return
	}
	s := m.Shape
	a0 := s.Start + t0*s.Sweep
	a1 := s.Start + t1*s.Sweep
	if a1 < a0 {
		a0, a1 = a1, a0
	}
	centre := p.Add(s.Pivot)
	d := 2 * s.Radius
	cv.DrawArc(centre.X, centre.Y, d, d, a0, a1)
}

const (
	quarter = math.Pi / 2
	half    = math.Pi
	threeQ  = 3 * math.Pi / 2
)

// moveDef is a catalog row in unit grid steps. Arcs have a pivot in unit
// steps, a start angle and a signed sweep; straights leave them zero.
type moveDef struct {
	name   string
	typ    MoveType
	dx, dy float64
	arc    bool
	px, py float64
	start  float64
	sweep  float64
}

// Diagonals are named after the heading they leave with and the heading
// they arrive with; the arrival heading is their type.
var catalog = [...]moveDef{
	{name: "up", typ: Up, dx: 0, dy: -1},
	{name: "down", typ: Down, dx: 0, dy: 1},
	{name: "left", typ: Left, dx: -1, dy: 0},
	{name: "right", typ: Right, dx: 1, dy: 0},

	{name: "down_and_left", typ: Left, dx: -1, dy: 1, arc: true, px: -1, py: 0, start: 0, sweep: quarter},
	{name: "down_and_right", typ: Right, dx: 1, dy: 1, arc: true, px: 1, py: 0, start: half, sweep: -quarter},
	{name: "up_and_left", typ: Left, dx: -1, dy: -1, arc: true, px: -1, py: 0, start: 0, sweep: -quarter},
	{name: "up_and_right", typ: Right, dx: 1, dy: -1, arc: true, px: 1, py: 0, start: half, sweep: quarter},
	{name: "left_and_up", typ: Up, dx: -1, dy: -1, arc: true, px: 0, py: -1, start: quarter, sweep: quarter},
	{name: "left_and_down", typ: Down, dx: -1, dy: 1, arc: true, px: 0, py: 1, start: threeQ, sweep: -quarter},
	{name: "right_and_up", typ: Up, dx: 1, dy: -1, arc: true, px: 0, py: -1, start: quarter, sweep: -quarter},
	{name: "right_and_down", typ: Down, dx: 1, dy: 1, arc: true, px: 0, py: 1, start: threeQ, sweep: quarter},
}

// Successor names per type: the straight continuation first, then the two
// arcs that start heading the same way and bend a quarter turn.
var successorNames = [4][3]string{
	Up:    {"up", "up_and_left", "up_and_right"},
	Down:  {"down", "down_and_left", "down_and_right"},
	Left:  {"left", "left_and_up", "left_and_down"},
	Right: {"right", "right_and_up", "right_and_down"},
}

// MoveCount is the number of catalog entries.
const MoveCount = len(catalog)

// Catalog holds the moves scaled to one grid size.
type Catalog struct {
	size  float64
	moves [MoveCount]Move
	index map[string]int
	succ  [4][3]Move
}

// NewCatalog builds the move table for a grid of spacing size.
func NewCatalog(size float64) *Catalog {
	c := &Catalog{size: size, index: make(map[string]int, MoveCount)}
	for i, d := range catalog {
		m := Move{
			Name:   d.name,
			Type:   d.typ,
			Offset: Point{X: d.dx * size, Y: d.dy * size},
		}
		if d.arc {
			m.Shape = Shape{
				Kind:   Arc,
				Pivot:  Point{X: d.px * size, Y: d.py * size},
				Start:  d.start,
				Sweep:  d.sweep,
				Radius: size,
			}
		}
		c.moves[i] = m
		c.index[d.name] = i
	}
	for t, names := range successorNames {
		for j, n := range names {
			c.succ[t][j] = c.moves[c.index[n]]
		}
	}
	return c
}

// Size is the grid spacing.
func (c *Catalog) Size() float64 { return c.size }

// Moves returns all entries in catalog order.
func (c *Catalog) Moves() []Move { return c.moves[:] }

// Move looks up an entry by key, e.g. "down_and_left".
func (c *Catalog) Move(name string) (Move, bool) {
	i, ok := c.index[name]
	if !ok {
		return Move{}, false
	}
	return c.moves[i], true
}

// Successors returns the three moves that may follow a move of type t.
func (c *Catalog) Successors(t MoveType) [3]Move { return c.succ[t] }

// Follows reports whether next may legally follow a move of type prev.
func (c *Catalog) Follows(prev MoveType, next Move) bool {
	for _, m := range c.succ[prev] {
		if m.Name == next.Name {
			return true
		}
	}
	return false
}
