package term

import (
	"context"
	"io"
	"log"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"worms/internal/worm"
)

// maxFrame caps the time fed into one update after a stall.
const maxFrame = 100 * time.Millisecond

// Options configure one terminal session.
type Options struct {
	Params     worm.Params
	Palette    []worm.RGB
	Background worm.RGB
	Seed       uint64
	FPS        int
	Log        *log.Logger
}

type keyAction int

const (
	keyPause keyAction = iota
	keyReset
	keyQuit
)

// classifyKey maps a key press: Esc, Ctrl-C and q quit, r resets, anything
// else toggles pause.
func classifyKey(ev *tcell.EventKey) keyAction {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return keyQuit
	case tcell.KeyRune:
		switch unicode.ToLower(ev.Rune()) {
		case 'q':
			return keyQuit
		case 'r':
			return keyReset
		}
	}
	return keyPause
}

type session struct {
	screen tcell.Screen
	canvas *Canvas
	set    *worm.WormSet
	paused bool
	log    *log.Logger
}

func newSession(screen tcell.Screen, opts Options) *session {
	logger := opts.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	canvas := NewCanvas(screen, opts.Background)
	w, h := canvas.Size()
	set := worm.Initialize(opts.Params, w, h, opts.Palette, worm.NewRand(opts.Seed))

	bus := worm.NewEventBus()
	bus.Subscribe(worm.EventReset, func(worm.Event) {
		logger.Printf("reset: %d worms", len(set.Worms()))
	})
	bus.Subscribe(worm.EventPause, func(e worm.Event) {
		logger.Printf("paused=%v", e.On)
	})
	set.Events = bus

	return &session{
		screen: screen,
		canvas: canvas,
		set:    set,
		log:    logger,
	}
}

// handle applies one screen event and reports whether the session is over.
func (s *session) handle(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventError:
		return true, ev
	case *tcell.EventResize:
		s.canvas.Resize()
		s.screen.Sync()
	case *tcell.EventKey:
		switch classifyKey(ev) {
		case keyQuit:
			return true, nil
		case keyReset:
			w, h := s.canvas.Size()
			s.set.Reset(w, h)
		case keyPause:
			s.paused = !s.paused
			s.set.Events.Emit(worm.Event{Type: worm.EventPause, Worm: -1, On: s.paused})
		}
	}
	return false, nil
}

// frame redraws the screen and advances the worms by dt. Paused worms are
// still drawn, frozen.
func (s *session) frame(dt time.Duration) {
	if dt > maxFrame {
		dt = maxFrame
	}
	s.canvas.Clear()
	ms := float64(dt) / float64(time.Millisecond)
	s.set.AdvanceAndRender(s.canvas, ms, s.paused)
	if s.paused {
		s.set.Render(s.canvas)
	}
	s.canvas.Flush()
}

// Run animates worms on an initialised screen until the user quits, the
// screen fails, or ctx is done. The caller owns screen and finalises it.
func Run(ctx context.Context, screen tcell.Screen, opts Options) error {
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	s := newSession(screen, opts)
	screen.HideCursor()
	screen.Clear()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	go screen.ChannelEvents(events, quit)
	defer close(quit)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()
	s.frame(0)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			done, err := s.handle(ev)
			if done {
				return err
			}
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			s.frame(dt)
		}
	}
}
