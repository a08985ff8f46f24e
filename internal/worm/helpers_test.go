package worm

import (
	"math"
	"testing"
)

type call struct {
	op    string
	args  []float64
	color RGB
}

// recorder is a Canvas that keeps every call.
type recorder struct {
	w, h  float64
	calls []call
}

func newRecorder(w, h float64) *recorder { return &recorder{w: w, h: h} }

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) SetColor(c RGB)            { r.calls = append(r.calls, call{op: "color", color: c}) }
func (r *recorder) DrawLine(x1, y1, x2, y2 float64) {
	r.calls = append(r.calls, call{op: "line", args: []float64{x1, y1, x2, y2}})
}
func (r *recorder) DrawArc(cx, cy, w, h, start, end float64) {
	r.calls = append(r.calls, call{op: "arc", args: []float64{cx, cy, w, h, start, end}})
}

func (r *recorder) ops(op string) []call {
	var out []call
	for _, c := range r.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearPoint(p, q Point) bool { return near(p.X, q.X) && near(p.Y, q.Y) }

func wantArgs(t *testing.T, c call, want ...float64) {
	t.Helper()
	if len(c.args) != len(want) {
		t.Fatalf("%s args = %v, want %v", c.op, c.args, want)
	}
	for i := range want {
		if !near(c.args[i], want[i]) {
			t.Fatalf("%s args = %v, want %v", c.op, c.args, want)
		}
	}
}

// checkWorm verifies the length, grid and adjacency invariants.
func checkWorm(t *testing.T, cat *Catalog, w *Worm, pointsN int) {
	t.Helper()
	if len(w.points) != pointsN || len(w.moves) != pointsN-1 {
		t.Fatalf("len(points)=%d len(moves)=%d, want %d and %d", len(w.points), len(w.moves), pointsN, pointsN-1)
	}
	for i, m := range w.moves {
		d := w.points[i+1].Sub(w.points[i])
		if !nearPoint(d, m.Next(Point{})) {
			t.Fatalf("segment %d: delta %v does not match move %s offset %v", i, d, m.Name, m.Offset)
		}
		if i > 0 && !cat.Follows(w.moves[i-1].Type, m) {
			t.Fatalf("segment %d: %s may not follow %s", i, m.Name, w.moves[i-1].Name)
		}
	}
	if w.completion < 0 || w.completion >= 1 {
		t.Fatalf("completion = %v, want [0,1)", w.completion)
	}
}

// straightWorm builds a worm walking down from start.
func straightWorm(cat *Catalog, start Point, n int) *Worm {
	down, _ := cat.Move("down")
	w := &Worm{
		points: make([]Point, n),
		moves:  make([]Move, n-1),
		color:  RGB{R: 1, G: 2, B: 3},
	}
	w.points[0] = start
	for i := 1; i < n; i++ {
		w.moves[i-1] = down
		w.points[i] = down.Next(w.points[i-1])
	}
	return w
}
