package worm

import "math"

// Picker chooses the move that follows prev from joint p.
type Picker func(p Point, prev Move) Move

// Worm is a rolling run of joints. moves[i] leads from points[i] to
// points[i+1]; the last segment is the one currently growing.
type Worm struct {
	points     []Point
	moves      []Move
	completion float64
	color      RGB
}

// Points returns a copy of the joints, oldest first.
func (w *Worm) Points() []Point {
	out := make([]Point, len(w.points))
	copy(out, w.points)
	return out
}

// Moves returns a copy of the segment moves, oldest first.
func (w *Worm) Moves() []Move {
	out := make([]Move, len(w.moves))
	copy(out, w.moves)
	return out
}

func (w *Worm) Completion() float64 { return w.completion }
func (w *Worm) Color() RGB          { return w.color }

// Head is the newest joint.
func (w *Worm) Head() Point { return w.points[len(w.points)-1] }

// Render draws every segment. The oldest one is drawn as far as it has not
// yet retired, the newest as far as it has grown.
func (w *Worm) Render(cv Canvas) {
	cv.SetColor(w.color)
	last := len(w.moves) - 1
	for i, m := range w.moves {
		p, q := w.points[i], w.points[i+1]
		if p == q {
			continue
		}
		switch i {
		case 0:
			m.PreDraw(w.completion, p, q, cv)
		case last:
			m.PostDraw(w.completion, p, q, cv)
		default:
			m.Draw(p, q, cv)
		}
	}
}

// Advance grows the head by elapsedMs*rate and reports whether the worm
// completed a step. At most one step happens per call: whole steps beyond
// the first are folded away so a long stall cannot make a worm jump.
func (w *Worm) Advance(elapsedMs, rate float64, pick Picker) bool {
	d := elapsedMs * rate
	if !(d > 0) {
		return false
	}
	w.completion += d
	if w.completion < 1.0 {
		return false
	}
	w.completion = math.Mod(w.completion, 1.0)
	w.step(pick)
	return true
}

// step drops the oldest joint and appends one new segment at the head.
func (w *Worm) step(pick Picker) {
	head := w.points[len(w.points)-1]
	prev := w.moves[len(w.moves)-1]

	copy(w.points, w.points[1:])
	copy(w.moves, w.moves[1:])

	next := pick(head, prev)
	w.moves[len(w.moves)-1] = next
	w.points[len(w.points)-1] = next.Next(head)
}
