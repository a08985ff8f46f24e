//go:build !android

package game

import "github.com/go-gl/glfw/v3.3/glfw"

type Input struct {
	prevKeys map[glfw.Key]bool
	released []glfw.Key
}

// NewInput installs a key callback on window that records key releases.
func NewInput(window *glfw.Window) *Input {
	in := &Input{
		prevKeys: make(map[glfw.Key]bool),
	}
	window.SetKeyCallback(in.onKey)
	return in
}

func (in *Input) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Release {
		in.released = append(in.released, key)
	}
}

// Released returns the keys released since the last call. The slice is
// reused by the next PollEvents.
func (in *Input) Released() []glfw.Key {
	keys := in.released
	in.released = in.released[:0]
	return keys
}

func (in *Input) JustPressed(window *glfw.Window, key glfw.Key) bool {
	down := window.GetKey(key) == glfw.Press
	jp := down && !in.prevKeys[key]
	in.prevKeys[key] = down
	return jp
}

type keyAction int

const (
	keyPause keyAction = iota
	keyReset
	keyQuit
)

// classifyKey maps a released key: Esc and Q quit, R resets, anything
// else toggles pause.
func classifyKey(key glfw.Key) keyAction {
	switch key {
	case glfw.KeyEscape, glfw.KeyQ:
		return keyQuit
	case glfw.KeyR:
		return keyReset
	}
	return keyPause
}
