package game

// Window defaults.
const (
	WindowWidth  = 1280
	WindowHeight = 800
	WindowTitle  = "worms"
)

// MaxFrameDelta caps the seconds fed into one update after a stall.
const MaxFrameDelta = 0.1

// Line buffer sizing: floats per vertex (x, y, r, g, b) and the initial
// vertex capacity of the streaming VBO.
const (
	lineVertexFloats = 5
	initialLineVerts = 4096
)
