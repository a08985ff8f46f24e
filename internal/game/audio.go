//go:build !android

package game

import (
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"worms/internal/sound"
	"worms/internal/worm"
)

// maxVoices limits overlapping plucks so a burst of steps cannot clip.
const maxVoices = 4

// AudioSystem plays one step pluck per frame in which any worm stepped.
type AudioSystem struct {
	ctx    *oto.Context
	ready  chan struct{}
	volume float64
	bank   map[worm.MoveType][]byte

	pending bool
	next    worm.MoveType
	voices  int32
}

// InitAudio initializes the audio system.
func InitAudio(volume float64) (*AudioSystem, error) {
	ctx, ready, err := oto.NewContext(sound.SampleRate, sound.ChannelCount, sound.BitDepth)
	if err != nil {
		return nil, err
	}
	return &AudioSystem{
		ctx:    ctx,
		ready:  ready,
		volume: clampF(volume, 0, 1),
		bank:   sound.StepBank(),
	}, nil
}

// Attach subscribes the pluck to worm steps on bus.
func (a *AudioSystem) Attach(bus *worm.EventBus) {
	bus.Subscribe(worm.EventStep, a.onStep)
}

func (a *AudioSystem) onStep(e worm.Event) {
	if a.pending {
		return
	}
	a.pending = true
	a.next = e.Move
}

// Flush plays the pluck queued during this frame, if any.
func (a *AudioSystem) Flush() {
	if a == nil || !a.pending {
		return
	}
	a.pending = false
	a.play(a.bank[a.next])
}

func (a *AudioSystem) play(samples []byte) {
	if len(samples) == 0 {
		return
	}
	select {
	case <-a.ready:
	default:
		return
	}
	if atomic.LoadInt32(&a.voices) >= maxVoices {
		return
	}
	atomic.AddInt32(&a.voices, 1)
	go func() {
		defer atomic.AddInt32(&a.voices, -1)
		player := a.ctx.NewPlayer(sound.NewReader(samples))
		player.SetVolume(a.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		player.Close()
	}()
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
