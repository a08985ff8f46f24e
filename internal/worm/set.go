package worm

import "math"

const (
	DefaultPoints     = 5
	DefaultMoveSize   = 50.0
	DefaultGrowthRate = 0.001 // completion per millisecond
	MarginSteps       = 3     // edge margin in grid steps
)

// Params sizes a WormSet.
type Params struct {
	Worms      int
	Points     int
	MoveSize   float64
	GrowthRate float64
}

// DefaultParams returns one worm per palette colour.
func DefaultParams(colors int) Params {
	return Params{
		Worms:      colors,
		Points:     DefaultPoints,
		MoveSize:   DefaultMoveSize,
		GrowthRate: DefaultGrowthRate,
	}
}

// WormSet owns all worms and the state shared by their updates.
type WormSet struct {
	params  Params
	catalog *Catalog
	rng     *Rand
	palette []RGB
	worms   []*Worm

	// Events receives EventStep and EventReset. It may be nil.
	Events *EventBus
}

var fallbackColor = RGB{R: 100, G: 100, B: 100}

// Initialize creates the worms for a w x h viewport. Each worm starts on a
// random grid joint inside the margins with a random first move; every
// later move goes through PickNextMove.
func Initialize(p Params, w, h float64, palette []RGB, rng *Rand) *WormSet {
	if p.Points < 2 {
		p.Points = 2
	}
	if p.Worms < 0 {
		p.Worms = 0
	}
	if p.MoveSize <= 0 {
		p.MoveSize = DefaultMoveSize
	}
	if p.GrowthRate <= 0 {
		p.GrowthRate = DefaultGrowthRate
	}
	if rng == nil {
		rng = NewRand(1)
	}
	if len(palette) == 0 {
		palette = []RGB{fallbackColor}
	}
	s := &WormSet{
		params:  p,
		catalog: NewCatalog(p.MoveSize),
		rng:     rng,
		palette: palette,
	}
	s.populate(w, h)
	return s
}

// Reset discards every worm and seeds a fresh set for the given viewport.
func (s *WormSet) Reset(w, h float64) {
	s.populate(w, h)
	s.Events.Emit(Event{Type: EventReset, Worm: -1})
}

func (s *WormSet) populate(w, h float64) {
	s.worms = make([]*Worm, s.params.Worms)
	for i := range s.worms {
		s.worms[i] = s.newWorm(s.palette[i%len(s.palette)], w, h)
	}
}

func (s *WormSet) newWorm(col RGB, w, h float64) *Worm {
	n := s.params.Points
	wm := &Worm{
		points: make([]Point, n),
		moves:  make([]Move, n-1),
		color:  col,
	}
	wm.points[0] = s.startPoint(w, h)
	moves := s.catalog.Moves()
	wm.moves[0] = moves[s.rng.Intn(len(moves))]
	wm.points[1] = wm.moves[0].Next(wm.points[0])
	for i := 2; i < n; i++ {
		m := s.PickNextMove(wm.points[i-1], wm.moves[i-2], w, h)
		wm.moves[i-1] = m
		wm.points[i] = m.Next(wm.points[i-1])
	}
	return wm
}

// startPoint picks a grid joint inside the margins, or the centre when the
// viewport leaves no room.
func (s *WormSet) startPoint(w, h float64) Point {
	return Point{X: s.gridCoord(w), Y: s.gridCoord(h)}
}

func (s *WormSet) gridCoord(extent float64) float64 {
	size := s.params.MoveSize
	margin := s.Margin()
	span := extent - 2*margin
	if span < 0 {
		return math.Floor(extent/2/size) * size
	}
	steps := int(span / size)
	return margin + float64(s.rng.Range(0, steps))*size
}

// Margin is the distance from an edge inside which moves heading towards
// that edge are refused.
func (s *WormSet) Margin() float64 { return MarginSteps * s.params.MoveSize }

func (s *WormSet) Catalog() *Catalog { return s.catalog }
func (s *WormSet) Params() Params    { return s.params }

// Worms returns the live worms. Callers must not modify them.
func (s *WormSet) Worms() []*Worm { return s.worms }

// typeSet is a bitmask of MoveTypes.
type typeSet uint8

func (ts typeSet) has(t MoveType) bool { return ts&(1<<t) != 0 }
func (ts *typeSet) add(t MoveType)     { *ts |= 1 << t }

func (s *WormSet) forbidden(p Point, w, h float64) typeSet {
	margin := s.Margin()
	var ts typeSet
	if p.Y <= margin {
		ts.add(Up)
	}
	if p.Y > h-margin {
		ts.add(Down)
	}
	if p.X <= margin {
		ts.add(Left)
	}
	if p.X > w-margin {
		ts.add(Right)
	}
	return ts
}

// PickNextMove chooses uniformly among the legal successors of prev whose
// type does not head into a nearby edge of the w x h viewport.
func (s *WormSet) PickNextMove(p Point, prev Move, w, h float64) Move {
	cands := s.catalog.Successors(prev.Type)
	forbid := s.forbidden(p, w, h)
	if forbid == 0 {
		return cands[s.rng.Intn(len(cands))]
	}
	var allowed [3]Move
	n := 0
	for _, m := range cands {
		if !forbid.has(m.Type) {
			allowed[n] = m
			n++
		}
	}
	if n == 0 {
		// Only reachable when an axis of the viewport is shorter than two
		// margins, so both of its edges forbid at once. A legal successor
		// wins over containment here.
		return cands[s.rng.Intn(len(cands))]
	}
	return allowed[s.rng.Intn(n)]
}

// Render draws every worm at its current completion.
func (s *WormSet) Render(cv Canvas) {
	for _, w := range s.worms {
		w.Render(cv)
	}
}

// Advance moves every worm forward by elapsedMs against a w x h viewport.
// It returns the number of worms that completed a step.
func (s *WormSet) Advance(elapsedMs, w, h float64) int {
	stepped := 0
	for i, wm := range s.worms {
		pick := func(p Point, prev Move) Move { return s.PickNextMove(p, prev, w, h) }
		if !wm.Advance(elapsedMs, s.params.GrowthRate, pick) {
			continue
		}
		stepped++
		s.Events.Emit(Event{
			Type:  EventStep,
			Worm:  i,
			Move:  wm.moves[len(wm.moves)-1].Type,
			Point: wm.Head(),
		})
	}
	return stepped
}

// AdvanceAndRender is the per-frame entry point: draw, then grow. A paused
// frame does nothing at all.
func (s *WormSet) AdvanceAndRender(cv Canvas, elapsedMs float64, paused bool) {
	if paused {
		return
	}
	w, h := cv.Size()
	s.Render(cv)
	s.Advance(elapsedMs, w, h)
}
