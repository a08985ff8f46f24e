package term

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"worms/internal/worm"
)

// Braille cells are 2 dots wide and 4 dots tall.
const (
	dotsX = 2
	dotsY = 4

	brailleBase = 0x2800
)

// brailleBits maps a dot inside a cell to its bit in the braille block.
var brailleBits = [dotsX][dotsY]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Canvas is a worm.Canvas that draws braille dots onto a tcell.Screen.
// One canvas unit is one dot.
type Canvas struct {
	screen     tcell.Screen
	cols, rows int
	dots       []uint8
	colors     []worm.RGB
	color      worm.RGB
	bg         tcell.Style
	arc        []worm.Point
}

func NewCanvas(screen tcell.Screen, bg worm.RGB) *Canvas {
	c := &Canvas{
		screen: screen,
		bg:     tcell.StyleDefault.Background(rgb(bg)),
	}
	c.Resize()
	return c
}

func rgb(c worm.RGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Resize picks up the current screen size and clears the canvas.
func (c *Canvas) Resize() {
	c.cols, c.rows = c.screen.Size()
	if c.cols < 0 {
		c.cols = 0
	}
	if c.rows < 0 {
		c.rows = 0
	}
	n := c.cols * c.rows
	c.dots = make([]uint8, n)
	c.colors = make([]worm.RGB, n)
}

func (c *Canvas) Size() (float64, float64) {
	return float64(c.cols * dotsX), float64(c.rows * dotsY)
}

func (c *Canvas) SetColor(col worm.RGB) { c.color = col }

// DrawLine plots the dots along the segment, one per unit step on its
// longer axis.
func (c *Canvas) DrawLine(x1, y1, x2, y2 float64) {
	dx, dy := x2-x1, y2-y1
	n := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if n == 0 {
		c.plot(x1, y1)
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.plot(x1+dx*t, y1+dy*t)
	}
}

// DrawArc draws the elliptical arc as a polyline. Worms only use circles,
// so w is taken as the diameter.
func (c *Canvas) DrawArc(cx, cy, w, h, start, end float64) {
	c.arc = worm.ArcPoints(c.arc[:0], cx, cy, w/2, start, end, 0)
	for i := 1; i < len(c.arc); i++ {
		p, q := c.arc[i-1], c.arc[i]
		c.DrawLine(p.X, p.Y, q.X, q.Y)
	}
}

func (c *Canvas) plot(x, y float64) {
	ix, iy := int(math.Floor(x+0.5)), int(math.Floor(y+0.5))
	if ix < 0 || iy < 0 || ix >= c.cols*dotsX || iy >= c.rows*dotsY {
		return
	}
	cell := (iy/dotsY)*c.cols + ix/dotsX
	c.dots[cell] |= brailleBits[ix%dotsX][iy%dotsY]
	c.colors[cell] = c.color
}

func (c *Canvas) Clear() {
	for i := range c.dots {
		c.dots[i] = 0
	}
}

// Flush copies the dots to the screen and shows it.
func (c *Canvas) Flush() {
	for y := 0; y < c.rows; y++ {
		for x := 0; x < c.cols; x++ {
			i := y*c.cols + x
			if c.dots[i] == 0 {
				c.screen.SetContent(x, y, ' ', nil, c.bg)
				continue
			}
			st := c.bg.Foreground(rgb(c.colors[i]))
			c.screen.SetContent(x, y, rune(brailleBase+int(c.dots[i])), nil, st)
		}
	}
	c.screen.Show()
}
