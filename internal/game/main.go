//go:build !android

package game

import (
	"fmt"
	"io"
	"log"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"worms/internal/worm"
)

// Options configure the desktop window.
type Options struct {
	Width, Height int
	Title         string

	Params     worm.Params
	Palette    []worm.RGB
	Background worm.RGB
	Seed       uint64

	Sound  bool
	Volume float64

	Log *log.Logger
}

// RunDesktop opens a window and animates worms in it until the window is
// closed or the user quits. It must be called from the main goroutine.
func RunDesktop(opts Options) error {
	runtime.LockOSThread()

	logger := opts.Log
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	window, err := initWindow(opts.Width, opts.Height, opts.Title)
	if err != nil {
		return err
	}
	defer glfw.Terminate()
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}

	// GL state.
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.Enable(gl.MULTISAMPLE)

	rend, err := NewRenderer()
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer rend.Destroy()

	winW, winH := window.GetSize()
	set := worm.Initialize(opts.Params, float64(winW), float64(winH), opts.Palette, worm.NewRand(opts.Seed))
	bus := worm.NewEventBus()
	set.Events = bus
	bus.Subscribe(worm.EventReset, func(worm.Event) {
		logger.Printf("reset: %d worms", len(set.Worms()))
	})
	bus.Subscribe(worm.EventPause, func(e worm.Event) {
		logger.Printf("paused=%v", e.On)
	})

	var audio *AudioSystem
	if opts.Sound {
		if audio, err = InitAudio(opts.Volume); err != nil {
			logger.Printf("audio init failed (continuing without sound): %v", err)
			audio = nil
		} else {
			audio.Attach(bus)
		}
	}

	logger.Printf("desktop: %d worms, %dx%d, seed %d", len(set.Worms()), winW, winH, opts.Seed)

	input := NewInput(window)
	paused := false

	last := glfw.GetTime()
	for !window.ShouldClose() {
		now := glfw.GetTime()
		dt := now - last
		last = now
		if dt > MaxFrameDelta {
			dt = MaxFrameDelta
		}

		glfw.PollEvents()
		if input.JustPressed(window, glfw.KeyEscape) {
			window.SetShouldClose(true)
			continue
		}

		winW, winH = window.GetSize()
		fbW, fbH := window.GetFramebufferSize()
		if fbW <= 0 || fbH <= 0 || winW <= 0 || winH <= 0 {
			continue
		}

		quit := false
		for _, key := range input.Released() {
			switch classifyKey(key) {
			case keyQuit:
				quit = true
			case keyReset:
				set.Reset(float64(winW), float64(winH))
			case keyPause:
				paused = !paused
				bus.Emit(worm.Event{Type: worm.EventPause, Worm: -1, On: paused})
			}
		}
		if quit {
			window.SetShouldClose(true)
			continue
		}

		rend.BeginFrame(winW, winH, fbW, fbH, opts.Background)
		set.AdvanceAndRender(rend, dt*1000, paused)
		if paused {
			set.Render(rend)
		}
		rend.EndFrame()
		audio.Flush()

		window.SwapBuffers()
	}
	return nil
}
